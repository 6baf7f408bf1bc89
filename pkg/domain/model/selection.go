package model

import "github.com/cottonlesergal/ucontrol/pkg/domain/types"

// Selection is the current view selection. Exactly one of ChannelID or
// DMUserID is meaningful at a time, matching Mode.
type Selection struct {
	Mode      types.ViewMode
	GuildID   types.GuildID
	ChannelID types.ChannelID
	DMUserID  types.UserID
}

// NewSelection returns the initial selection: the DM home view with nothing
// selected.
func NewSelection() Selection {
	return Selection{Mode: types.ViewModeDM}
}

// IsGuildView reports whether the guild surface is active
func (s Selection) IsGuildView() bool {
	return s.Mode == types.ViewModeGuild
}

// IsDMView reports whether the direct message surface is active
func (s Selection) IsDMView() bool {
	return s.Mode == types.ViewModeDM
}

// MessageRelevant reports whether a message-style event for msg applies to
// the currently viewed scope. Guild view: the event's channel must be the
// selected channel. DM view: the event's author or recipient must be the
// selected DM user.
func (s Selection) MessageRelevant(msg Message) bool {
	if s.IsGuildView() {
		return s.ChannelID != "" && msg.ChannelID == s.ChannelID
	}
	if s.DMUserID == "" {
		return false
	}
	return msg.AuthorID() == s.DMUserID || msg.RecipientID == s.DMUserID
}

// TypingRelevant reports whether a typing event for channelID/userID applies
// to the currently viewed scope.
func (s Selection) TypingRelevant(channelID types.ChannelID, userID types.UserID) bool {
	if s.IsGuildView() {
		return s.ChannelID != "" && channelID == s.ChannelID
	}
	return s.DMUserID != "" && userID == s.DMUserID
}
