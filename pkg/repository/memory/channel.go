package memory

import (
	"context"
	"sync"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type channelShadow struct {
	mu       sync.RWMutex
	channels map[types.ChannelID]*model.Channel
}

var _ interfaces.ChannelShadow = &channelShadow{}

func newChannelShadow() *channelShadow {
	return &channelShadow{
		channels: make(map[types.ChannelID]*model.Channel),
	}
}

// Ensure creates a placeholder record unless one already exists. A richer
// existing record is never replaced by placeholder data.
func (r *channelShadow) Ensure(ctx context.Context, channelID types.ChannelID, name string) error {
	if err := channelID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[channelID]; exists {
		return nil
	}
	if name == "" {
		name = "Unknown Channel"
	}
	r.channels[channelID] = &model.Channel{
		ID:   channelID,
		Name: name,
		Type: types.ChannelTypeUnknown,
	}
	return nil
}

func (r *channelShadow) Save(ctx context.Context, channel *model.Channel) error {
	if err := channel.ID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	channelCopy := *channel
	r.channels[channel.ID] = &channelCopy
	return nil
}

func (r *channelShadow) Get(ctx context.Context, channelID types.ChannelID) (*model.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel, ok := r.channels[channelID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "channel not found",
			goerr.V(types.ChannelKey, channelID))
	}

	channelCopy := *channel
	return &channelCopy, nil
}
