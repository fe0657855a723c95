package memory

import (
	"context"
	"strings"
	"sync"

	"petverse/internal/domain/users"
)

// UserRepo implementa users.Repository y users.PreferencesRepository.
type UserRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]users.User
	byEmail map[string]int64

	settings map[int64]users.Settings
	address  map[int64]users.Address
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:     make(map[int64]users.User),
		byEmail:  make(map[string]int64),
		settings: make(map[int64]users.Settings),
		address:  make(map[int64]users.Address),
	}
}

func (r *UserRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, taken := r.byEmail[key]; taken {
		return users.User{}, users.ErrEmailTaken
	}

	r.nextID++
	u.ID = r.nextID
	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetSettings(ctx context.Context, userID int64) (users.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings[userID], nil
}

func (r *UserRepo) SaveSettings(ctx context.Context, userID int64, s users.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[userID] = s
	return nil
}

func (r *UserRepo) GetAddress(ctx context.Context, userID int64) (users.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.address[userID], nil
}

func (r *UserRepo) SaveAddress(ctx context.Context, userID int64, a users.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.address[userID] = a
	return nil
}
