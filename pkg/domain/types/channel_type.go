package types

import "strings"

// ChannelType represents the kind of a channel
type ChannelType string

const (
	ChannelTypeText     ChannelType = "TEXT"
	ChannelTypeVoice    ChannelType = "VOICE"
	ChannelTypeCategory ChannelType = "CATEGORY"
	ChannelTypeForum    ChannelType = "FORUM"
	ChannelTypeNews     ChannelType = "NEWS"
	ChannelTypeUnknown  ChannelType = "UNKNOWN"
)

// AllChannelTypes returns all valid channel types
func AllChannelTypes() []ChannelType {
	return []ChannelType{
		ChannelTypeText,
		ChannelTypeVoice,
		ChannelTypeCategory,
		ChannelTypeForum,
		ChannelTypeNews,
		ChannelTypeUnknown,
	}
}

// IsValid checks if the channel type is valid
func (t ChannelType) IsValid() bool {
	switch t {
	case ChannelTypeText,
		ChannelTypeVoice,
		ChannelTypeCategory,
		ChannelTypeForum,
		ChannelTypeNews,
		ChannelTypeUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the channel type
func (t ChannelType) String() string {
	return string(t)
}

// ParseChannelType parses a string into a ChannelType. Unrecognized values
// normalize to ChannelTypeUnknown so that new backend channel kinds do not
// break the channel list.
func ParseChannelType(s string) ChannelType {
	t := ChannelType(strings.ToUpper(s))
	if !t.IsValid() {
		return ChannelTypeUnknown
	}
	return t
}
