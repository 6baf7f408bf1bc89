package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

type dmShadow struct {
	mu      sync.RWMutex
	records map[types.UserID]*model.DMChannelRecord
}

var _ interfaces.DMShadow = &dmShadow{}

func newDMShadow() *dmShadow {
	return &dmShadow{
		records: make(map[types.UserID]*model.DMChannelRecord),
	}
}

func (r *dmShadow) Put(ctx context.Context, record *model.DMChannelRecord) error {
	if err := record.UserID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recordCopy := *record
	r.records[record.UserID] = &recordCopy
	return nil
}

func (r *dmShadow) GetByUser(ctx context.Context, userID types.UserID) (*model.DMChannelRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[userID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "DM channel record not found",
			goerr.V(types.UserKey, userID))
	}

	recordCopy := *record
	return &recordCopy, nil
}
