package interfaces

import (
	"context"

	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

// MessageQuery carries optional pagination cursors for message listing.
type MessageQuery struct {
	Before types.MessageID
	After  types.MessageID
	Limit  int
}

// IsZero reports whether no cursor or limit is set
func (q MessageQuery) IsZero() bool {
	return q.Before == "" && q.After == "" && q.Limit == 0
}

// APIClient is the request/response side of the transport adapter. Non-2xx
// responses fail with types.ErrAPI, transport-level failures with
// types.ErrNetwork. No retries happen at this layer.
type APIClient interface {
	GetBotUser(ctx context.Context) (*model.User, error)
	GetBotOwner(ctx context.Context) (*model.User, error)

	ListGuilds(ctx context.Context) ([]model.Guild, error)
	GetGuild(ctx context.Context, guildID types.GuildID) (*model.Guild, error)
	ListGuildChannels(ctx context.Context, guildID types.GuildID) ([]model.Channel, error)
	ListGuildMembers(ctx context.Context, guildID types.GuildID) ([]model.User, error)

	ListDMUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, userID types.UserID) (*model.User, error)
	OpenDMChannel(ctx context.Context, userID types.UserID) (*model.Channel, error)
	UpdateUserStatus(ctx context.Context, userID types.UserID, status types.PresenceStatus) error

	ListMessages(ctx context.Context, channelID types.ChannelID, query MessageQuery) ([]model.Message, error)
	PostMessage(ctx context.Context, channelID types.ChannelID, content string) (*model.Message, error)
}
