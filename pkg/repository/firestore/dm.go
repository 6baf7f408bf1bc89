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

const dmChannelsCollection = "dm_channels"

type dmShadow struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.DMShadow = &dmShadow{}

func newDMShadow(client *firestore.Client) *dmShadow {
	return &dmShadow{client: client}
}

func (r *dmShadow) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + dmChannelsCollection)
	}
	return r.client.Collection(dmChannelsCollection)
}

// Records are keyed by the peer user: a bot account holds at most one DM
// channel per user.
func (r *dmShadow) Put(ctx context.Context, record *model.DMChannelRecord) error {
	if err := record.UserID.Validate(); err != nil {
		return err
	}

	if _, err := r.collection().Doc(string(record.UserID)).Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to save DM channel record",
			goerr.V(types.UserKey, record.UserID))
	}
	return nil
}

func (r *dmShadow) GetByUser(ctx context.Context, userID types.UserID) (*model.DMChannelRecord, error) {
	doc, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "DM channel record not found",
				goerr.V(types.UserKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to get DM channel record",
			goerr.V(types.UserKey, userID))
	}

	var record model.DMChannelRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal DM channel record",
			goerr.V(types.UserKey, userID))
	}
	return &record, nil
}
