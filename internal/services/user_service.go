package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"spatiality/internal/models"
	"spatiality/internal/repositories"
)

// Service-level errors. Handlers map these to HTTP status codes.
var (
	// ErrUsernameTaken is returned when registering an already-used username.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned when a lookup by ID matches no user.
	ErrUserNotFound = errors.New("user not found")
)

// EventPublisher publishes user lifecycle events to a message broker.
type EventPublisher interface {
	PublishUserRegistered(userID uint, username string) error
	PublishLocationUpdated(userID uint, latitude, longitude float64, at time.Time) error
}

// UserService handles business logic for registration, authentication,
// and location tracking.
type UserService struct {
	userRepo  repositories.UserRepository
	publisher EventPublisher // may be nil; events are then disabled
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, publisher EventPublisher) *UserService {
	return &UserService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *UserService) Register(username, password string) (*models.User, error) {
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishUserRegistered(user.ID, user.Username); err != nil {
			// Events are best-effort; the row is already committed.
			log.Printf("Failed to publish user.registered event for user %d: %v", user.ID, err)
		}
	}
	return user, nil
}

// Login verifies a username/password pair and returns the stored user.
// Unknown usernames and wrong passwords produce the same error.
func (s *UserService) Login(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateLocation overwrites the user's last known location with the given
// coordinates and the current time. Repeated coordinates are written again;
// only the timestamp distinguishes them.
func (s *UserService) UpdateLocation(userID uint, latitude, longitude float64) (*models.User, error) {
	now := time.Now().UTC()
	user, err := s.userRepo.UpdateLocation(userID, latitude, longitude, now)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishLocationUpdated(user.ID, latitude, longitude, now); err != nil {
			log.Printf("Failed to publish location.updated event for user %d: %v", user.ID, err)
		}
	}
	return user, nil
}

// GetUser returns the user with the given ID.
func (s *UserService) GetUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetLocation returns the user whose location fields the caller wants.
// The fields are nil until the first location update.
func (s *UserService) GetLocation(userID uint) (*models.User, error) {
	return s.GetUser(userID)
}
