package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
)

type Firestore struct {
	client  *firestore.Client
	user    *userShadow
	channel *channelShadow
	message *messageShadow
	dm      *dmShadow
}

var _ interfaces.ShadowRepository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.user.collectionPrefix = prefix
		f.channel.collectionPrefix = prefix
		f.message.collectionPrefix = prefix
		f.dm.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	userRepo := newUserShadow(client)
	channelRepo := newChannelShadow(client)

	f := &Firestore{
		client:  client,
		user:    userRepo,
		channel: channelRepo,
		message: newMessageShadow(client, userRepo, channelRepo),
		dm:      newDMShadow(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) User() interfaces.UserShadow {
	return f.user
}

func (f *Firestore) Channel() interfaces.ChannelShadow {
	return f.channel
}

func (f *Firestore) Message() interfaces.MessageShadow {
	return f.message
}

func (f *Firestore) DM() interfaces.DMShadow {
	return f.dm
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
