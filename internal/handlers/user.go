package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/aora/backend/internal/models"
	"github.com/anonto42/aora/backend/internal/repositories"
)

const usersCollection = "users"

// fields that may be probed for availability during sign-up
var checkableUserFields = map[string]bool{"username": true, "email": true}

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.POST("/users", h.Register)
	g.GET("/users/me", h.GetProfile)
	g.GET("/users/exists", h.FieldExists)
}

// Register creates the profile document for the authenticated identity
func (h *UserHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.RegisterUser(c.Request().Context(), repositories.NewUser{
		AuthID:   getAuthIDFromContext(c),
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByAuthID(c.Request().Context(), getAuthIDFromContext(c))
	if err != nil {
		return repositoryError(err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
	}
	return c.JSON(http.StatusOK, user)
}

// FieldExists reports whether a username or email is already registered
func (h *UserHandler) FieldExists(c echo.Context) error {
	field := c.QueryParam("field")
	value := c.QueryParam("value")
	if !checkableUserFields[field] || value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "field must be username or email and value is required")
	}

	exists, err := h.userRepository.ExistsByField(c.Request().Context(), usersCollection, field, value)
	if err != nil {
		return repositoryError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}
