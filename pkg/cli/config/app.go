package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// AppConfig is the optional TOML application configuration.
type AppConfig struct {
	Presence []PresenceOverride `toml:"presence"`
}

// PresenceOverride pins the displayed status of one user.
type PresenceOverride struct {
	UserID string `toml:"user_id"`
	Status string `toml:"status"`
}

// Validate checks if the PresenceOverride is valid
func (p *PresenceOverride) Validate() error {
	if p.UserID == "" {
		return goerr.Wrap(ErrMissingUserID, "presence override without user_id")
	}
	if !types.PresenceStatus(p.Status).IsValid() {
		return goerr.Wrap(ErrInvalidStatus, "presence override status must be one of online/idle/dnd/offline",
			goerr.V(types.UserKey, p.UserID), goerr.V("status", p.Status))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	seen := make(map[string]bool)
	for i, p := range a.Presence {
		if err := p.Validate(); err != nil {
			return goerr.Wrap(err, "invalid presence override",
				goerr.V(EntryIndexKey, i))
		}
		if seen[p.UserID] {
			return goerr.Wrap(ErrDuplicateUserID, "each user may appear once",
				goerr.V(types.UserKey, p.UserID))
		}
		seen[p.UserID] = true
	}
	return nil
}

// PresenceOverrides returns the overrides as a lookup map.
func (a *AppConfig) PresenceOverrides() map[types.UserID]types.PresenceStatus {
	if len(a.Presence) == 0 {
		return nil
	}
	out := make(map[types.UserID]types.PresenceStatus, len(a.Presence))
	for _, p := range a.Presence {
		out[types.UserID(p.UserID)] = types.PresenceStatus(p.Status)
	}
	return out
}

// App holds the CLI flag for the application configuration file
type App struct {
	configPath string
}

// Flags returns CLI flags for app configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the TOML application configuration",
			Sources:     cli.EnvVars("UCONTROL_CONFIG"),
			Destination: &a.configPath,
		},
	}
}

// Configure loads and validates the TOML file. No path means an empty,
// valid configuration.
func (a *App) Configure() (*AppConfig, error) {
	if a.configPath == "" {
		return &AppConfig{}, nil
	}

	data, err := os.ReadFile(a.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "configuration file does not exist",
				goerr.V(ConfigPathKey, a.configPath))
		}
		return nil, goerr.Wrap(err, "failed to read configuration",
			goerr.V(ConfigPathKey, a.configPath))
	}

	var cfg AppConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML",
			goerr.V(ConfigPathKey, a.configPath))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "configuration validation failed",
			goerr.V(ConfigPathKey, a.configPath))
	}
	return &cfg, nil
}
