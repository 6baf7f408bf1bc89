package model

import "github.com/cottonlesergal/ucontrol/pkg/domain/types"

// User represents a user visible to the client. The same user may appear in
// both the guild member list and the DM list; those are independent
// denormalized copies kept in sync by ID.
type User struct {
	ID          types.UserID         `json:"id" firestore:"id"`
	Username    string               `json:"username" firestore:"username"`
	DisplayName string               `json:"displayName,omitempty" firestore:"display_name,omitempty"`
	AvatarURL   string               `json:"avatarUrl,omitempty" firestore:"avatar_url,omitempty"`
	Status      types.PresenceStatus `json:"status,omitempty" firestore:"status,omitempty"`
	Bot         bool                 `json:"isBot,omitempty" firestore:"bot,omitempty"`
	Owner       bool                 `json:"isOwner,omitempty" firestore:"owner,omitempty"`
}

// Name returns the preferred display name
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Merge applies non-zero fields of in on top of u and returns the result.
// Boolean flags only flip to true; the backend never retracts bot or owner
// in a partial payload.
func (u User) Merge(in User) User {
	out := u
	if in.Username != "" {
		out.Username = in.Username
	}
	if in.DisplayName != "" {
		out.DisplayName = in.DisplayName
	}
	if in.AvatarURL != "" {
		out.AvatarURL = in.AvatarURL
	}
	if in.Status != "" {
		out.Status = types.ParsePresenceStatus(in.Status.String())
	}
	if in.Bot {
		out.Bot = true
	}
	if in.Owner {
		out.Owner = true
	}
	return out
}
