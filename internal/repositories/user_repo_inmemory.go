package repositories

import (
	"fmt"
	"sync"
	"time"

	"spatiality/internal/models"
)

// InMemoryUserRepository is an in-memory implementation of UserRepository.
// It mirrors the GORM implementation's semantics (monotonic IDs, managed
// timestamps) so services can be exercised without a database.
type InMemoryUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
}

// NewInMemoryUserRepository creates a new instance of InMemoryUserRepository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

// Create adds a new user, assigning a monotonically increasing ID.
func (r *InMemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %s already exists", user.Username)
		}
	}

	user.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// GetByUsername returns the user with the given username.
func (r *InMemoryUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// GetByID returns the user with the given ID.
func (r *InMemoryUserRepository) GetByID(id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// UpdateLocation overwrites the location triple and bumps updated_at.
func (r *InMemoryUserRepository) UpdateLocation(id uint, latitude, longitude float64, at time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	user.LastLatitude = &latitude
	user.LastLongitude = &longitude
	user.LastLocationTime = &at
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return &user, nil
}
