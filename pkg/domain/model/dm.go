package model

import "github.com/cottonlesergal/ucontrol/pkg/domain/types"

// DMChannelRecord binds a DM channel to its peer user in the shadow store.
type DMChannelRecord struct {
	ChannelID     types.ChannelID `json:"id" firestore:"id"`
	UserID        types.UserID    `json:"userId" firestore:"user_id"`
	LastMessageID types.MessageID `json:"lastMessageId,omitempty" firestore:"last_message_id,omitempty"`
}
