package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// GuildID identifies a guild (server)
type GuildID string

// ChannelID identifies a channel, including DM channels
type ChannelID string

// UserID identifies a user
type UserID string

// MessageID identifies a message within a channel's loaded window
type MessageID string

func (id GuildID) String() string   { return string(id) }
func (id ChannelID) String() string { return string(id) }
func (id UserID) String() string    { return string(id) }
func (id MessageID) String() string { return string(id) }

// Validate checks if the guild ID is non-empty
func (id GuildID) Validate() error {
	if id == "" {
		return goerr.New("guild ID is required")
	}
	return nil
}

// Validate checks if the channel ID is non-empty
func (id ChannelID) Validate() error {
	if id == "" {
		return goerr.New("channel ID is required")
	}
	return nil
}

// Validate checks if the user ID is non-empty
func (id UserID) Validate() error {
	if id == "" {
		return goerr.New("user ID is required")
	}
	return nil
}

// Validate checks if the message ID is non-empty
func (id MessageID) Validate() error {
	if id == "" {
		return goerr.New("message ID is required")
	}
	return nil
}

const pendingIDPrefix = "pending-"

// NewPendingMessageID returns a locally generated ID for an optimistic
// message that has not been confirmed by the backend yet.
func NewPendingMessageID() MessageID {
	return MessageID(pendingIDPrefix + uuid.NewString())
}

// IsPending reports whether the ID was generated locally by
// NewPendingMessageID rather than assigned by the backend.
func (id MessageID) IsPending() bool {
	return len(id) > len(pendingIDPrefix) && id[:len(pendingIDPrefix)] == pendingIDPrefix
}
