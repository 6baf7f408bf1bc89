package types

import "strings"

// PresenceStatus represents a user's presence
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceIdle    PresenceStatus = "idle"
	PresenceDND     PresenceStatus = "dnd"
	PresenceOffline PresenceStatus = "offline"
)

// AllPresenceStatuses returns all valid presence statuses
func AllPresenceStatuses() []PresenceStatus {
	return []PresenceStatus{
		PresenceOnline,
		PresenceIdle,
		PresenceDND,
		PresenceOffline,
	}
}

// IsValid checks if the presence status is valid
func (s PresenceStatus) IsValid() bool {
	switch s {
	case PresenceOnline, PresenceIdle, PresenceDND, PresenceOffline:
		return true
	default:
		return false
	}
}

// String returns the string representation of the presence status
func (s PresenceStatus) String() string {
	return string(s)
}

// ParsePresenceStatus lower-cases s and returns the matching status.
// Unrecognized or empty values normalize to PresenceOffline.
func ParsePresenceStatus(s string) PresenceStatus {
	status := PresenceStatus(strings.ToLower(s))
	if !status.IsValid() {
		return PresenceOffline
	}
	return status
}
