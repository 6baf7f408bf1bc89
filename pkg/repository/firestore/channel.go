package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

const channelsCollection = "channels"

type channelShadow struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.ChannelShadow = &channelShadow{}

func newChannelShadow(client *firestore.Client) *channelShadow {
	return &channelShadow{client: client}
}

func (r *channelShadow) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + channelsCollection)
	}
	return r.client.Collection(channelsCollection)
}

// Ensure creates a placeholder document unless one already exists. An
// existing document is never overwritten by placeholder data.
func (r *channelShadow) Ensure(ctx context.Context, channelID types.ChannelID, name string) error {
	if err := channelID.Validate(); err != nil {
		return err
	}

	_, err := r.collection().Doc(string(channelID)).Get(ctx)
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to check channel existence",
			goerr.V(types.ChannelKey, channelID))
	}

	if name == "" {
		name = "Unknown Channel"
	}
	placeholder := &model.Channel{
		ID:   channelID,
		Name: name,
		Type: types.ChannelTypeUnknown,
	}
	if _, err := r.collection().Doc(string(channelID)).Create(ctx, placeholder); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return goerr.Wrap(err, "failed to create channel placeholder",
			goerr.V(types.ChannelKey, channelID))
	}
	return nil
}

func (r *channelShadow) Save(ctx context.Context, channel *model.Channel) error {
	if err := channel.ID.Validate(); err != nil {
		return err
	}

	if _, err := r.collection().Doc(string(channel.ID)).Set(ctx, channel); err != nil {
		return goerr.Wrap(err, "failed to save channel",
			goerr.V(types.ChannelKey, channel.ID))
	}
	return nil
}

func (r *channelShadow) Get(ctx context.Context, channelID types.ChannelID) (*model.Channel, error) {
	doc, err := r.collection().Doc(string(channelID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "channel not found",
				goerr.V(types.ChannelKey, channelID))
		}
		return nil, goerr.Wrap(err, "failed to get channel",
			goerr.V(types.ChannelKey, channelID))
	}

	var channel model.Channel
	if err := doc.DataTo(&channel); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal channel",
			goerr.V(types.ChannelKey, channelID))
	}
	return &channel, nil
}
