package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy for the client core.
var (
	// ErrNetwork means the request never reached the server or no response
	// arrived (DNS failure, timeout, abort). It carries no HTTP status.
	ErrNetwork = goerr.New("network error")

	// ErrAPI means the server answered with a non-2xx status. The wrapping
	// error carries the status code and the server-supplied message if any.
	ErrAPI = goerr.New("api error")

	// ErrParse means a push envelope could not be decoded.
	ErrParse = goerr.New("malformed envelope")

	// ErrNotFoundLocal means an entity was absent from the state store during
	// an update/delete reconciliation. It is benign and never escalated.
	ErrNotFoundLocal = goerr.New("entity not present in local state")
)

// Context keys for error values
const (
	StatusKey    = "status"
	EndpointKey  = "endpoint"
	EventTypeKey = "event_type"
	ChannelKey   = "channel_id"
	GuildKey     = "guild_id"
	UserKey      = "user_id"
	MessageKey   = "message_id"
)
