package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

const messagesCollection = "messages"

type messageShadow struct {
	client           *firestore.Client
	collectionPrefix string
	users            *userShadow
	channels         *channelShadow
}

var _ interfaces.MessageShadow = &messageShadow{}

func newMessageShadow(client *firestore.Client, users *userShadow, channels *channelShadow) *messageShadow {
	return &messageShadow{
		client:   client,
		users:    users,
		channels: channels,
	}
}

func (r *messageShadow) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + messagesCollection)
	}
	return r.client.Collection(messagesCollection)
}

// Save mirrors a message. The owning channel and the author are ensured
// first, as placeholders if unknown, so local queries never dangle.
func (r *messageShadow) Save(ctx context.Context, msg *model.Message) error {
	if err := msg.ID.Validate(); err != nil {
		return err
	}
	if err := msg.ChannelID.Validate(); err != nil {
		return err
	}

	if err := r.channels.Ensure(ctx, msg.ChannelID, ""); err != nil {
		return err
	}
	if msg.Author != nil && msg.Author.ID != "" {
		if err := r.users.Ensure(ctx, msg.Author.ID, msg.Author.Username); err != nil {
			return err
		}
	}

	record := *msg
	doc := r.collection().Doc(string(msg.ID))
	snapshot, err := doc.Get(ctx)
	switch {
	case err == nil:
		// Partial payloads must not zero out richer mirrored fields.
		var existing model.Message
		if err := snapshot.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal existing message",
				goerr.V(types.MessageKey, msg.ID))
		}
		record = existing.Merge(*msg)
	case status.Code(err) == codes.NotFound:
		// First sighting of this message.
	default:
		return goerr.Wrap(err, "failed to check existing message",
			goerr.V(types.MessageKey, msg.ID))
	}

	if _, err := doc.Set(ctx, &record); err != nil {
		return goerr.Wrap(err, "failed to save message",
			goerr.V(types.MessageKey, msg.ID), goerr.V(types.ChannelKey, msg.ChannelID))
	}
	return nil
}

func (r *messageShadow) ListByChannel(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]*model.Message, error) {
	q := r.collection().Query.
		Where("channel_id", "==", string(channelID)).
		OrderBy("timestamp", firestore.Asc)

	if query.After != "" {
		ts, err := r.messageTimestamp(ctx, query.After)
		if err != nil {
			return nil, err
		}
		q = q.StartAfter(ts)
	}
	if query.Before != "" {
		ts, err := r.messageTimestamp(ctx, query.Before)
		if err != nil {
			return nil, err
		}
		q = q.EndBefore(ts)
	}
	if query.Limit > 0 {
		// Newest entries win, matching the backend's pagination.
		q = q.LimitToLast(query.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var messages []*model.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages",
				goerr.V(types.ChannelKey, channelID))
		}

		var msg model.Message
		if err := doc.DataTo(&msg); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message",
				goerr.V("doc_id", doc.Ref.ID))
		}
		messages = append(messages, &msg)
	}

	return messages, nil
}

func (r *messageShadow) messageTimestamp(ctx context.Context, id types.MessageID) (int64, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, goerr.Wrap(interfaces.ErrShadowNotFound, "cursor message not found",
				goerr.V(types.MessageKey, id))
		}
		return 0, goerr.Wrap(err, "failed to resolve cursor message",
			goerr.V(types.MessageKey, id))
	}

	var msg model.Message
	if err := doc.DataTo(&msg); err != nil {
		return 0, goerr.Wrap(err, "failed to unmarshal cursor message",
			goerr.V(types.MessageKey, id))
	}
	return msg.Timestamp, nil
}
