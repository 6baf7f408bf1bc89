package model

import (
	"encoding/json"

	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Envelope wraps all gateway messages with a type field.
type Envelope struct {
	Type types.EventType `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope creates an envelope with the given type and payload.
func NewEnvelope(eventType types.EventType, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal envelope payload",
			goerr.V(types.EventTypeKey, eventType))
	}
	return &Envelope{Type: eventType, Data: raw}, nil
}

// ParseEnvelope parses a raw gateway frame into an envelope.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, goerr.Wrap(types.ErrParse, "failed to parse envelope",
			goerr.V("raw", string(data)))
	}
	return &env, nil
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return goerr.Wrap(types.ErrParse, "failed to decode envelope payload",
			goerr.V(types.EventTypeKey, e.Type))
	}
	return nil
}

// WelcomePayload accompanies WELCOME after the connection is accepted.
type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message,omitempty"`
}

// AckPayload accompanies ACK for an acknowledged client action.
type AckPayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// MessageDeletePayload accompanies MESSAGE_DELETE.
type MessageDeletePayload struct {
	ID        types.MessageID `json:"id"`
	ChannelID types.ChannelID `json:"channelId,omitempty"`
}

// StatusUpdatePayload accompanies USER_UPDATE_STATUS.
type StatusUpdatePayload struct {
	UserID    types.UserID `json:"userId"`
	UserName  string       `json:"userName,omitempty"`
	OldStatus string       `json:"oldStatus,omitempty"`
	NewStatus string       `json:"newStatus"`
	Owner     bool         `json:"isOwner,omitempty"`
}

// PresencePayload accompanies PRESENCE_UPDATE.
type PresencePayload struct {
	UserID types.UserID `json:"userId"`
	Status string       `json:"status"`
}

// TypingPayload accompanies TYPING_START and outbound TYPING.
type TypingPayload struct {
	ChannelID types.ChannelID `json:"channelId,omitempty"`
	UserID    types.UserID    `json:"userId"`
	GuildID   types.GuildID   `json:"guildId,omitempty"`
}

// MemberPayload accompanies GUILD_MEMBER_JOIN and GUILD_MEMBER_LEAVE.
type MemberPayload struct {
	GuildID         types.GuildID   `json:"guildId"`
	User            *User           `json:"user,omitempty"`
	UserID          types.UserID    `json:"userId,omitempty"`
	Username        string          `json:"username,omitempty"`
	SystemChannelID types.ChannelID `json:"systemChannelId,omitempty"`
}

// ChannelDeletePayload accompanies CHANNEL_DELETE.
type ChannelDeletePayload struct {
	ID      types.ChannelID `json:"id"`
	GuildID types.GuildID   `json:"guildId,omitempty"`
}

// GuildLeavePayload accompanies a guild removal inside GUILD_UPDATE.
type GuildLeavePayload struct {
	ID   types.GuildID `json:"id"`
	Left bool          `json:"left,omitempty"`
}

// VoiceStatePayload accompanies VOICE_STATE_UPDATE.
type VoiceStatePayload struct {
	GuildID   types.GuildID   `json:"guildId"`
	ChannelID types.ChannelID `json:"channelId,omitempty"`
	UserID    types.UserID    `json:"userId"`
}

// IdentifyPayload is sent by the client on connect.
type IdentifyPayload struct {
	BotID types.UserID `json:"botId"`
}

// SubscribeChannelPayload is sent to scope push delivery to a channel.
type SubscribeChannelPayload struct {
	ChannelID types.ChannelID `json:"channelId"`
}

// SubscribeDMPayload is sent to scope push delivery to a DM conversation.
type SubscribeDMPayload struct {
	UserID types.UserID `json:"userId"`
}

// PingPayload is the periodic keep-alive.
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}
