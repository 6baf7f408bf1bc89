package types

// ViewMode represents which surface the client is currently showing
type ViewMode string

const (
	// ViewModeGuild shows a guild's channel list and member list
	ViewModeGuild ViewMode = "GUILD"
	// ViewModeDM shows the direct message list
	ViewModeDM ViewMode = "DM"
)

// IsValid checks if the view mode is valid
func (m ViewMode) IsValid() bool {
	switch m {
	case ViewModeGuild, ViewModeDM:
		return true
	default:
		return false
	}
}

// String returns the string representation of the view mode
func (m ViewMode) String() string {
	return string(m)
}
