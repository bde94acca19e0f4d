package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"spatiality/internal/models"
	"spatiality/internal/services"
)

// UserHandler handles HTTP requests for users and their locations.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Put("/:user_id/location", h.HandleUpdateLocation)
	userRoutes.Get("/:user_id/location", h.HandleGetLocation)
	userRoutes.Get("/:user_id", h.HandleGetUser)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LocationUpdateRequest represents the request body for a location update.
// Coordinates are pointers so that zero values pass the required check.
type LocationUpdateRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// LocationResponse is the serialized location triple.
type LocationResponse struct {
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	LastLocationTime *time.Time `json:"last_location_time"`
}

func locationResponse(user *models.User) LocationResponse {
	return LocationResponse{
		Latitude:         user.LastLatitude,
		Longitude:        user.LastLongitude,
		LastLocationTime: user.LastLocationTime,
	}
}

// validationErrorResponse turns validator errors into a 422 with a
// field-level error map. Validation always runs before any store access.
func (h *UserHandler) validationErrorResponse(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// parseUserID reads the :user_id path parameter. A non-numeric value is
// malformed input, rejected before any store access.
func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("user_id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func invalidUserID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Validation failed",
		"errors": map[string]string{
			"user_id": "Field 'user_id' must be an integer",
		},
	})
}

func userNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": "User not found",
	})
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return h.validationErrorResponse(c, err)
	}

	user, err := h.userService.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Username already registered",
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin handles user login. The failure response is identical for an
// unknown username and a wrong password.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return h.validationErrorResponse(c, err)
	}

	user, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid username or password",
			})
		}
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log in",
		})
	}

	return c.JSON(user)
}

// HandleUpdateLocation overwrites a user's last known location.
func (h *UserHandler) HandleUpdateLocation(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return invalidUserID(c)
	}

	var req LocationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing location update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return h.validationErrorResponse(c, err)
	}

	user, err := h.userService.UpdateLocation(userID, *req.Latitude, *req.Longitude)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return userNotFound(c)
		}
		log.Printf("Error updating location for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update location",
		})
	}

	return c.JSON(locationResponse(user))
}

// HandleGetLocation returns a user's last recorded location. All three
// fields are null if no location was ever recorded.
func (h *UserHandler) HandleGetLocation(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return invalidUserID(c)
	}

	user, err := h.userService.GetLocation(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return userNotFound(c)
		}
		log.Printf("Error getting location for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve location",
		})
	}

	return c.JSON(locationResponse(user))
}

// HandleGetUser returns the user projection by ID.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return invalidUserID(c)
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return userNotFound(c)
		}
		log.Printf("Error getting user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
		})
	}

	return c.JSON(user)
}
