package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterhq/roster/engine/core"
	"github.com/rosterhq/roster/engine/user"
	"github.com/rosterhq/roster/engine/user/uc"
	"github.com/rosterhq/roster/pkg/logger"
)

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Name  string `json:"name"  binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Age   *int   `json:"age"   binding:"required,gte=0,lte=150"`
}

// UpdateUserRequest represents a partial update; absent fields are left unchanged
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"  binding:"omitempty"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
	Age   *int    `json:"age,omitempty"   binding:"omitempty,gte=0,lte=150"`
}

// UserResponse represents a successful response carrying a single user.
type UserResponse struct {
	Data    user.User `json:"data"`
	Message string    `json:"message"`
}

// UsersListResponse represents the response for listing users
type UsersListResponse struct {
	Users []*user.User `json:"users"`
}

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// internalErrorDetails is returned on 500 responses; the underlying error is
// logged server-side and never exposed to clients.
const internalErrorDetails = "An unexpected error occurred"

// Handler handles user-related HTTP requests
type Handler struct {
	factory *uc.Factory
}

// NewHandler creates a new user handler
func NewHandler(factory *uc.Factory) *Handler {
	return &Handler{
		factory: factory,
	}
}

// parseIDParam extracts a path parameter and parses it as a core.ID.
func (h *Handler) parseIDParam(c *gin.Context, param string, invalidMessage string) (core.ID, bool) {
	idStr := c.Param(param)
	id, err := core.ParseID(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidMessage, "details": err.Error()})
		return "", false
	}
	return id, true
}

// buildCreateUserInput validates the incoming request payload for user creation.
func (h *Handler) buildCreateUserInput(c *gin.Context) (*user.CreateUser, bool) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return nil, false
	}
	return &user.CreateUser{
		Name:  req.Name,
		Email: req.Email,
		Age:   *req.Age,
	}, true
}

// buildUpdateUserInput validates the request payload for updating user data.
func (h *Handler) buildUpdateUserInput(c *gin.Context, userID core.ID) (*user.UpdateUser, bool) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return nil, false
	}
	return &user.UpdateUser{
		ID:    userID,
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	}, true
}

// handleCreateUserError centralizes create user error logging and responses.
func (h *Handler) handleCreateUserError(ctx context.Context, c *gin.Context, err error) {
	log := logger.FromContext(ctx)
	log.Error("Failed to create user", "error", err)
	switch {
	case errors.Is(err, user.ErrEmailExists):
		c.JSON(
			http.StatusConflict,
			gin.H{
				"error":   "Email already exists",
				"details": "A user with this email address already exists",
			},
		)
	case errors.Is(err, user.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user data", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": internalErrorDetails})
	}
}

// handleUpdateUserError centralizes update user error logging and responses.
func (h *Handler) handleUpdateUserError(ctx context.Context, c *gin.Context, userID core.ID, err error) {
	log := logger.FromContext(ctx)
	log.Error("Failed to update user", "error", err, "user_id", userID)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		c.JSON(
			http.StatusNotFound,
			gin.H{"error": "User not found", "details": "The specified user does not exist"},
		)
	case errors.Is(err, user.ErrEmailExists):
		c.JSON(
			http.StatusConflict,
			gin.H{
				"error":   "Email already exists",
				"details": "Another user with this email address already exists",
			},
		)
	case errors.Is(err, user.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user data", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "details": internalErrorDetails})
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Description Create a new user with the given name, email and age
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	input, ok := h.buildCreateUserInput(c)
	if !ok {
		return
	}
	createUC := h.factory.CreateUser(input)
	created, err := createUC.Execute(ctx)
	if err != nil {
		h.handleCreateUserError(ctx, c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"data":    created,
		"message": "User created successfully",
	})
}

// GetUser godoc
// @Summary Get a user
// @Description Get a single user by ID
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	userID, ok := h.parseIDParam(c, "id", "Invalid user ID")
	if !ok {
		return
	}
	getUC := h.factory.GetUser(userID)
	found, err := getUC.Execute(ctx)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(
				http.StatusNotFound,
				gin.H{"error": "User not found", "details": "The specified user does not exist"},
			)
			return
		}
		log.Error("Failed to get user", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user", "details": internalErrorDetails})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    found,
		"message": "Success",
	})
}

// ListUsers godoc
// @Summary List all users
// @Description List all users, newest first
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	listUC := h.factory.ListUsers()
	users, err := listUC.Execute(ctx)
	if err != nil {
		log.Error("Failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users", "details": internalErrorDetails})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"users": users,
		},
		"message": "Success",
	})
}

// UpdateUser godoc
// @Summary Update a user
// @Description Partially update a user's name, email or age
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "User update details"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := h.parseIDParam(c, "id", "Invalid user ID")
	if !ok {
		return
	}
	input, ok := h.buildUpdateUserInput(c, userID)
	if !ok {
		return
	}
	updateUC := h.factory.UpdateUser(input)
	updated, err := updateUC.Execute(ctx)
	if err != nil {
		h.handleUpdateUserError(ctx, c, userID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":    updated,
		"message": "User updated successfully",
	})
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Delete a user by ID. Deleting the same ID twice yields 404.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	userID, ok := h.parseIDParam(c, "id", "Invalid user ID")
	if !ok {
		return
	}
	deleteUC := h.factory.DeleteUser(userID)
	if err := deleteUC.Execute(ctx); err != nil {
		log.Error("Failed to delete user", "error", err, "user_id", userID)
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(
				http.StatusNotFound,
				gin.H{"error": "User not found", "details": "The specified user does not exist"},
			)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user", "details": internalErrorDetails})
		return
	}
	c.Status(http.StatusNoContent)
}
