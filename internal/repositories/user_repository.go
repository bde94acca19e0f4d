package repositories

import (
	"errors"
	"time"

	"spatiality/internal/models"
)

// ErrNotFound is returned when no user matches the given lookup key.
var ErrNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	// UpdateLocation overwrites the location triple in a single update and
	// returns the refreshed user.
	UpdateLocation(id uint, latitude, longitude float64, at time.Time) (*models.User, error)
}
