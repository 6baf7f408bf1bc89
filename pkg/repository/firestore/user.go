package firestore

import (
	"context"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
)

const usersCollection = "users"

type userShadow struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserShadow = &userShadow{}

func newUserShadow(client *firestore.Client) *userShadow {
	return &userShadow{client: client}
}

func (r *userShadow) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + usersCollection)
	}
	return r.client.Collection(usersCollection)
}

// Ensure creates a placeholder document unless one already exists. An
// existing document is never overwritten by placeholder data.
func (r *userShadow) Ensure(ctx context.Context, userID types.UserID, username string) error {
	if err := userID.Validate(); err != nil {
		return err
	}

	_, err := r.collection().Doc(string(userID)).Get(ctx)
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to check user existence",
			goerr.V(types.UserKey, userID))
	}

	if username == "" {
		username = "Unknown User"
	}
	placeholder := &model.User{
		ID:       userID,
		Username: username,
		Status:   types.PresenceOffline,
	}
	if _, err := r.collection().Doc(string(userID)).Create(ctx, placeholder); err != nil {
		// Lost a race against another writer; the record exists, which is
		// all Ensure promises.
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return goerr.Wrap(err, "failed to create user placeholder",
			goerr.V(types.UserKey, userID))
	}
	return nil
}

func (r *userShadow) Save(ctx context.Context, user *model.User) error {
	if err := user.ID.Validate(); err != nil {
		return err
	}

	if _, err := r.collection().Doc(string(user.ID)).Set(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to save user",
			goerr.V(types.UserKey, user.ID))
	}
	return nil
}

func (r *userShadow) Get(ctx context.Context, userID types.UserID) (*model.User, error) {
	doc, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrShadowNotFound, "user not found",
				goerr.V(types.UserKey, userID))
		}
		return nil, goerr.Wrap(err, "failed to get user",
			goerr.V(types.UserKey, userID))
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user",
			goerr.V(types.UserKey, userID))
	}
	return &user, nil
}

func (r *userShadow) List(ctx context.Context, opts interfaces.UserShadowQuery) ([]*model.User, error) {
	query := r.collection().Query
	if opts.Status != "" {
		query = query.Where("status", "==", string(opts.Status))
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var user model.User
		if err := doc.DataTo(&user); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user",
				goerr.V("doc_id", doc.Ref.ID))
		}

		// Substring match cannot be pushed to the backend.
		if opts.Name != "" && !strings.Contains(strings.ToLower(user.Name()), strings.ToLower(opts.Name)) {
			continue
		}
		users = append(users, &user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Name() < users[j].Name()
	})

	if opts.Limit > 0 && len(users) > opts.Limit {
		users = users[:opts.Limit]
	}
	return users, nil
}

func (r *userShadow) PatchStatus(ctx context.Context, userID types.UserID, presence types.PresenceStatus) error {
	_, err := r.collection().Doc(string(userID)).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(presence)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrShadowNotFound, "user not found",
				goerr.V(types.UserKey, userID))
		}
		return goerr.Wrap(err, "failed to patch user status",
			goerr.V(types.UserKey, userID), goerr.V("status", presence))
	}
	return nil
}
