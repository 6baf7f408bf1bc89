package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

type messageShadow struct {
	users    *userShadow
	channels *channelShadow

	mu       sync.RWMutex
	messages map[types.ChannelID][]*model.Message
}

var _ interfaces.MessageShadow = &messageShadow{}

func newMessageShadow(users *userShadow, channels *channelShadow) *messageShadow {
	return &messageShadow{
		users:    users,
		channels: channels,
		messages: make(map[types.ChannelID][]*model.Message),
	}
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

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.messages[msg.ChannelID]
	msgCopy := *msg
	for i, existing := range bucket {
		if existing.ID == msg.ID {
			// Partial payloads must not zero out richer mirrored fields.
			merged := existing.Merge(msgCopy)
			bucket[i] = &merged
			return nil
		}
	}
	r.messages[msg.ChannelID] = append(bucket, &msgCopy)
	return nil
}

func (r *messageShadow) ListByChannel(ctx context.Context, channelID types.ChannelID, query interfaces.MessageQuery) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.messages[channelID]
	sorted := make([]model.Message, 0, len(bucket))
	for _, m := range bucket {
		sorted = append(sorted, *m)
	}
	model.SortMessages(sorted)

	// Cursor positions are resolved against the timestamp-ordered window.
	lo, hi := 0, len(sorted)
	if query.After != "" {
		found := false
		for i, m := range sorted {
			if m.ID == query.After {
				lo = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "cursor message not found",
				goerr.V(types.MessageKey, query.After))
		}
	}
	if query.Before != "" {
		found := false
		for i, m := range sorted {
			if m.ID == query.Before {
				hi = i
				found = true
				break
			}
		}
		if !found {
			return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "cursor message not found",
				goerr.V(types.MessageKey, query.Before))
		}
	}
	if lo > hi {
		lo = hi
	}

	window := sorted[lo:hi]
	if query.Limit > 0 && len(window) > query.Limit {
		// Keep the newest entries, matching the backend's behavior.
		window = window[len(window)-query.Limit:]
	}

	result := make([]*model.Message, len(window))
	for i := range window {
		m := window[i]
		result[i] = &m
	}
	return result, nil
}
