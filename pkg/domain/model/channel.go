package model

import (
	"sort"

	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// Channel represents a guild channel or a DM channel
type Channel struct {
	ID       types.ChannelID   `json:"id" firestore:"id"`
	GuildID  types.GuildID     `json:"guildId,omitempty" firestore:"guild_id,omitempty"`
	Name     string            `json:"name" firestore:"name"`
	Type     types.ChannelType `json:"type" firestore:"type"`
	ParentID types.ChannelID   `json:"parentId,omitempty" firestore:"parent_id,omitempty"`
	Position int               `json:"position" firestore:"position"`
	Topic    string            `json:"topic,omitempty" firestore:"topic,omitempty"`
}

// IsCategory reports whether the channel is a category container
func (c Channel) IsCategory() bool {
	return c.Type == types.ChannelTypeCategory
}

// Merge applies non-zero fields of in on top of c and returns the result.
// Position is merged unconditionally: zero is a valid position and the
// backend always includes it in channel payloads.
func (c Channel) Merge(in Channel) Channel {
	out := c
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.Type != "" {
		out.Type = in.Type
	}
	if in.ParentID != "" {
		out.ParentID = in.ParentID
	}
	if in.GuildID != "" {
		out.GuildID = in.GuildID
	}
	if in.Topic != "" {
		out.Topic = in.Topic
	}
	out.Position = in.Position
	return out
}

// ChannelGroup is a category with its member channels, ordered by position.
type ChannelGroup struct {
	Category *Channel
	Channels []Channel
}

// GroupChannels arranges channels into render order: uncategorized channels
// first, then each category with its children sorted by position. Channels
// referencing a missing category fall back to the uncategorized group, and
// categories are flattened one level deep.
func GroupChannels(channels []Channel) []ChannelGroup {
	categories := make(map[types.ChannelID]*ChannelGroup)
	var order []types.ChannelID
	var loose []Channel

	for _, ch := range channels {
		if ch.IsCategory() {
			if _, ok := categories[ch.ID]; !ok {
				c := ch
				categories[ch.ID] = &ChannelGroup{Category: &c}
				order = append(order, ch.ID)
			}
		}
	}

	for _, ch := range channels {
		if ch.IsCategory() {
			continue
		}
		if ch.ParentID != "" {
			if grp, ok := categories[ch.ParentID]; ok {
				grp.Channels = append(grp.Channels, ch)
				continue
			}
		}
		loose = append(loose, ch)
	}

	sort.SliceStable(loose, func(i, j int) bool {
		return loose[i].Position < loose[j].Position
	})

	groups := make([]ChannelGroup, 0, len(order)+1)
	if len(loose) > 0 {
		groups = append(groups, ChannelGroup{Channels: loose})
	}
	for _, id := range order {
		grp := categories[id]
		sort.SliceStable(grp.Channels, func(i, j int) bool {
			return grp.Channels[i].Position < grp.Channels[j].Position
		})
		groups = append(groups, *grp)
	}
	return groups
}

// FirstTextChannel returns the first text channel in render order, or nil.
func FirstTextChannel(channels []Channel) *Channel {
	for _, grp := range GroupChannels(channels) {
		for _, ch := range grp.Channels {
			if ch.Type == types.ChannelTypeText {
				c := ch
				return &c
			}
		}
	}
	return nil
}
