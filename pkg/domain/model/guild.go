package model

import "github.com/cottonlesergal/ucontrol/pkg/domain/types"

// Guild represents a server the bot belongs to
type Guild struct {
	ID      types.GuildID `json:"id" firestore:"id"`
	Name    string        `json:"name" firestore:"name"`
	IconURL string        `json:"iconUrl,omitempty" firestore:"icon_url,omitempty"`
}

// Merge applies non-zero fields of in on top of g and returns the result.
// The receiver is not modified.
func (g Guild) Merge(in Guild) Guild {
	out := g
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.IconURL != "" {
		out.IconURL = in.IconURL
	}
	return out
}
