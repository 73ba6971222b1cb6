package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/session"
	"github.com/nati-dev/nati-console/internal/users"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserStore interface {
	GetUser(ctx context.Context, userID string) (users.UserInfo, error)
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context, limit, offset int) ([]users.UserInfo, int64, error)
}

type UserHandler struct {
	users    UserStore
	sessions *session.Manager
}

func NewUserHandler(store UserStore, sessions *session.Manager) *UserHandler {
	return &UserHandler{users: store, sessions: sessions}
}

// Me returns the caller's own account.
func (h *UserHandler) Me(c *gin.Context) {
	info, err := h.users.GetUser(c.Request.Context(), c.GetString("user_id"))
	if errors.Is(err, users.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Failed to load user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(info))
}

// DeleteUser removes the caller's account and drops its dashboard session,
// which stops the session's poller.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.GetString("user_id")

	err := h.users.DeleteUser(c.Request.Context(), userID)
	if errors.Is(err, users.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Failed to delete user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.sessions.Remove(userID)
	slog.Info("User deleted", "user_id", userID)
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "page_size", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	list, total, err := h.users.ListUsers(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.NewListUsersResponse(list, total, page, pageSize))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}
