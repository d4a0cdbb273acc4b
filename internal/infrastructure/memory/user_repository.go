package memory

import (
	"context"
	"sync"

	domacct "github.com/Zhima-Mochi/garmentshop/internal/domain/account"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domacct.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domacct.User)}
}

// Insert checks and writes under one lock, so concurrent registrations of the
// same username cannot both succeed.
func (r *UserRepository) Insert(ctx context.Context, user *domacct.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return domacct.ErrDuplicateUser
	}
	r.users[user.Username] = *user
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domacct.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, domacct.ErrUserNotFound
	}
	return &u, nil
}
