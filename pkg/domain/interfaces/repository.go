package interfaces

import (
	"context"

	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ErrShadowNotFound is returned by shadow reads when no record exists.
// Callers treat it as a cache miss, not a failure.
var ErrShadowNotFound = goerr.New("shadow record not found")

// ShadowRepository mirrors entities fetched from the transport into a
// secondary store. It is never the system of record: every caller treats its
// failures as non-fatal, and the client must remain fully functional with the
// shadow absent entirely.
type ShadowRepository interface {
	User() UserShadow
	Channel() ChannelShadow
	Message() MessageShadow
	DM() DMShadow

	Close() error
}

// UserShadowQuery filters shadow user listings.
type UserShadowQuery struct {
	Status types.PresenceStatus
	Name   string
	Limit  int
}

// UserShadow stores user mirrors.
type UserShadow interface {
	// Ensure creates a placeholder record for userID unless one already
	// exists. Existing records are never overwritten by placeholder data.
	Ensure(ctx context.Context, userID types.UserID, username string) error
	Save(ctx context.Context, user *model.User) error
	Get(ctx context.Context, userID types.UserID) (*model.User, error)
	List(ctx context.Context, opts UserShadowQuery) ([]*model.User, error)
	PatchStatus(ctx context.Context, userID types.UserID, status types.PresenceStatus) error
}

// ChannelShadow stores channel mirrors.
type ChannelShadow interface {
	// Ensure creates a placeholder record for channelID unless one already
	// exists. Existing records are never overwritten by placeholder data.
	Ensure(ctx context.Context, channelID types.ChannelID, name string) error
	Save(ctx context.Context, channel *model.Channel) error
	Get(ctx context.Context, channelID types.ChannelID) (*model.Channel, error)
}

// MessageShadow stores message mirrors. Save must first ensure the owning
// channel and the author exist, so later local queries never dangle.
type MessageShadow interface {
	Save(ctx context.Context, msg *model.Message) error
	ListByChannel(ctx context.Context, channelID types.ChannelID, query MessageQuery) ([]*model.Message, error)
}

// DMShadow records DM channel bindings.
type DMShadow interface {
	Put(ctx context.Context, rec *model.DMChannelRecord) error
	GetByUser(ctx context.Context, userID types.UserID) (*model.DMChannelRecord, error)
}
