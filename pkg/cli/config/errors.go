package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrDuplicateUserID = goerr.New("duplicate user ID in presence overrides")
	ErrMissingUserID   = goerr.New("presence override requires a user ID")
	ErrInvalidStatus   = goerr.New("invalid presence status")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	EntryIndexKey = "entry_index"
)
