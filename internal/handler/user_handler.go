package handler

import (
	"errors"
	"io"
	"net/http"

	"user_management/internal/middleware"
	"user_management/internal/service"
	"user_management/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHandler handles user resource requests
type UserHandler struct {
	service service.UserService
	log     zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{service: s, log: log}
}

func respondValidation(c *gin.Context, err error) {
	var verr *validation.ValidationError
	if !errors.As(err, &verr) {
		verr = &validation.ValidationError{Details: []validation.FieldError{{Field: "body", Message: err.Error()}}}
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"details": verr.Details,
	})
}

// respondError maps service errors to responses. Anything unrecognised is
// handed to the error middleware as an internal error.
func (h *UserHandler) respondError(c *gin.Context, err error) {
	var forbidden *service.ForbiddenError
	switch {
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": forbidden.Reason})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
	default:
		_ = c.Error(err)
	}
}

// bindUpdateBody decodes the request body as a JSON object. An empty body is an empty update.
func bindUpdateBody(c *gin.Context) (map[string]any, error) {
	body := map[string]any{}
	if err := c.ShouldBindJSON(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, &validation.ValidationError{Details: []validation.FieldError{{Field: "body", Message: "must be a JSON object"}}}
	}
	if body == nil {
		// a literal null body
		return map[string]any{}, nil
	}
	return body, nil
}

func (h *UserHandler) FetchAllUsers(c *gin.Context) {
	h.log.Info().Msg("Getting users ...")

	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully retrieved users",
		"users":   users,
		"count":   len(users),
	})
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := validation.ValidateUserIdentifier(c.Param("id"))
	if err != nil {
		respondValidation(c, err)
		return
	}

	h.log.Info().Int64("user_id", id).Msg("Getting user by id")
	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully retrieved user",
		"user":    user,
	})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := validation.ValidateUserIdentifier(c.Param("id"))
	if err != nil {
		respondValidation(c, err)
		return
	}

	body, err := bindUpdateBody(c)
	if err != nil {
		respondValidation(c, err)
		return
	}
	changes, err := validation.ValidateUserUpdate(body)
	if err != nil {
		respondValidation(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.log.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("Updating user")
	user, err := h.service.UpdateUser(c.Request.Context(), actor, id, changes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := validation.ValidateUserIdentifier(c.Param("id"))
	if err != nil {
		respondValidation(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.log.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("Deleting user")
	user, err := h.service.DeleteUser(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"user":    user,
	})
}

// RegisterUserRoutes registers user routes. authMW attaches the actor when a token is present.
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	userRoutes := rg.Group("/users")
	userRoutes.Use(authMW)
	{
		userRoutes.GET("", h.FetchAllUsers)
		userRoutes.GET("/:id", h.GetUserByID)
		userRoutes.PUT("/:id", h.UpdateUser)
		userRoutes.PATCH("/:id", h.UpdateUser)
		userRoutes.DELETE("/:id", h.DeleteUser)
	}
}
