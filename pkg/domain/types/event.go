package types

// EventType identifies a push envelope delivered over the gateway.
// The set is closed: unknown names parse to EventUnknown and are handled by
// a logged-and-ignored default, never by silent omission.
type EventType string

const (
	// Server -> client
	EventWelcome         EventType = "WELCOME"
	EventAck             EventType = "ACK"
	EventPong            EventType = "PONG"
	EventMessageReceived EventType = "MESSAGE_RECEIVED"
	EventMessageUpdate   EventType = "MESSAGE_UPDATE"
	EventMessageDelete   EventType = "MESSAGE_DELETE"
	EventUserUpdate      EventType = "USER_UPDATE"
	EventUserStatus      EventType = "USER_UPDATE_STATUS"
	EventPresenceUpdate  EventType = "PRESENCE_UPDATE"
	EventTypingStart     EventType = "TYPING_START"
	EventMemberJoin      EventType = "GUILD_MEMBER_JOIN"
	EventMemberLeave     EventType = "GUILD_MEMBER_LEAVE"
	EventChannelCreate   EventType = "CHANNEL_CREATE"
	EventChannelUpdate   EventType = "CHANNEL_UPDATE"
	EventChannelDelete   EventType = "CHANNEL_DELETE"
	EventGuildUpdate     EventType = "GUILD_UPDATE"
	EventVoiceState      EventType = "VOICE_STATE_UPDATE"
	EventRefreshDMList   EventType = "REFRESH_DM_LIST"

	// Client -> server
	EventIdentify         EventType = "IDENTIFY"
	EventSubscribeChannel EventType = "SUBSCRIBE_CHANNEL"
	EventSubscribeDM      EventType = "SUBSCRIBE_DM"
	EventTyping           EventType = "TYPING"
	EventPing             EventType = "PING"

	EventUnknown EventType = ""
)

// AllInboundEvents returns the server -> client event types
func AllInboundEvents() []EventType {
	return []EventType{
		EventWelcome,
		EventAck,
		EventPong,
		EventMessageReceived,
		EventMessageUpdate,
		EventMessageDelete,
		EventUserUpdate,
		EventUserStatus,
		EventPresenceUpdate,
		EventTypingStart,
		EventMemberJoin,
		EventMemberLeave,
		EventChannelCreate,
		EventChannelUpdate,
		EventChannelDelete,
		EventGuildUpdate,
		EventVoiceState,
		EventRefreshDMList,
	}
}

// IsValid checks if the event type is a recognized inbound or outbound type
func (t EventType) IsValid() bool {
	switch t {
	case EventWelcome, EventAck, EventPong,
		EventMessageReceived, EventMessageUpdate, EventMessageDelete,
		EventUserUpdate, EventUserStatus, EventPresenceUpdate,
		EventTypingStart,
		EventMemberJoin, EventMemberLeave,
		EventChannelCreate, EventChannelUpdate, EventChannelDelete,
		EventGuildUpdate, EventVoiceState, EventRefreshDMList,
		EventIdentify, EventSubscribeChannel, EventSubscribeDM,
		EventTyping, EventPing:
		return true
	default:
		return false
	}
}

// String returns the string representation of the event type
func (t EventType) String() string {
	return string(t)
}

// ParseEventType parses a string into an EventType. Unrecognized names
// return EventUnknown.
func ParseEventType(s string) EventType {
	t := EventType(s)
	if !t.IsValid() {
		return EventUnknown
	}
	return t
}
