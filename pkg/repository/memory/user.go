package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

type userRepository struct {
	mu         sync.RWMutex
	users      map[model.UserID]*model.User
	byAirtable map[string]model.UserID
}

func newUserRepository() *userRepository {
	return &userRepository{
		users:      make(map[model.UserID]*model.User),
		byAirtable: make(map[string]model.UserID),
	}
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	if user.AirtableUserID == "" {
		return nil, goerr.New("user has no Airtable user ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	saved := copyUser(user)

	if id, ok := r.byAirtable[user.AirtableUserID]; ok {
		existing := r.users[id]
		saved.ID = existing.ID
		saved.CreatedAt = existing.CreatedAt
		if saved.Tokens.RefreshToken == "" {
			saved.Tokens.RefreshToken = existing.Tokens.RefreshToken
		}
	} else {
		if saved.ID == "" {
			saved.ID = model.UserID(uuid.NewString())
		}
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	r.users[saved.ID] = saved
	r.byAirtable[saved.AirtableUserID] = saved.ID
	return copyUser(saved), nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	return copyUser(user), nil
}

func (r *userRepository) GetByAirtableID(ctx context.Context, airtableUserID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAirtable[airtableUserID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("airtable_user_id", airtableUserID))
	}
	return copyUser(r.users[id]), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}
