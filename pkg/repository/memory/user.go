package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type userShadow struct {
	mu    sync.RWMutex
	users map[types.UserID]*model.User
}

var _ interfaces.UserShadow = &userShadow{}

func newUserShadow() *userShadow {
	return &userShadow{
		users: make(map[types.UserID]*model.User),
	}
}

// Ensure creates a placeholder record unless one already exists. A richer
// existing record is never replaced by placeholder data.
func (r *userShadow) Ensure(ctx context.Context, userID types.UserID, username string) error {
	if err := userID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[userID]; exists {
		return nil
	}
	if username == "" {
		username = "Unknown User"
	}
	r.users[userID] = &model.User{
		ID:       userID,
		Username: username,
		Status:   types.PresenceOffline,
	}
	return nil
}

func (r *userShadow) Save(ctx context.Context, user *model.User) error {
	if err := user.ID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userCopy := *user
	r.users[user.ID] = &userCopy
	return nil
}

func (r *userShadow) Get(ctx context.Context, userID types.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "user not found",
			goerr.V(types.UserKey, userID))
	}

	userCopy := *user
	return &userCopy, nil
}

func (r *userShadow) List(ctx context.Context, opts interfaces.UserShadowQuery) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		if opts.Status != "" && user.Status != opts.Status {
			continue
		}
		if opts.Name != "" && !strings.Contains(strings.ToLower(user.Name()), strings.ToLower(opts.Name)) {
			continue
		}
		userCopy := *user
		result = append(result, &userCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (r *userShadow) PatchStatus(ctx context.Context, userID types.UserID, status types.PresenceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return goerr.Wrap(interfaces.ErrShadowNotFound, "user not found",
			goerr.V(types.UserKey, userID))
	}
	user.Status = status
	return nil
}
