package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/auth"
	"github.com/nati-dev/nati-console/internal/users"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Register(ctx context.Context, username, password string) (auth.Account, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(auth.Account), args.Error(1)
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (auth.Session, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(auth.Session), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetUser(ctx context.Context, userID string) (users.UserInfo, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(users.UserInfo), args.Error(1)
}

func (m *MockUserStore) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserStore) ListUsers(ctx context.Context, limit, offset int) ([]users.UserInfo, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]users.UserInfo), args.Get(1).(int64), args.Error(2)
}

func setupAuthRouter(a Authenticator) *gin.Engine {
	h := NewAuthHandler(a)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func TestRegister(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Register", mock.Anything, "dana", "password123").
		Return(auth.Account{ID: testUserID, Username: "dana", Role: "user"}, nil)
	a.On("Register", mock.Anything, "taken", "password123").
		Return(auth.Account{}, auth.ErrUsernameExists)
	a.On("Register", mock.Anything, "broken", "password123").
		Return(auth.Account{}, errors.New("connection reset"))
	r := setupAuthRouter(a)

	w := doJSON(t, r, http.MethodPost, "/auth/register", dto.RegisterRequest{Username: "dana", Password: "password123"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"`+testUserID+`","username":"dana","role":"user"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/auth/register", dto.RegisterRequest{Username: "taken", Password: "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/register", dto.RegisterRequest{Username: "broken", Password: "password123"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")

	w = doJSON(t, r, http.MethodPost, "/auth/register", dto.RegisterRequest{Username: "dana", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	a.AssertNumberOfCalls(t, "Register", 3)
}

func TestLogin(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := new(MockAuthenticator)
	a.On("Login", mock.Anything, "dana", "password123").Return(auth.Session{
		Account:   auth.Account{ID: testUserID, Username: "dana", Role: "user"},
		Token:     "signed",
		ExpiresAt: expires,
	}, nil)
	a.On("Login", mock.Anything, "dana", "nope-nope").Return(auth.Session{}, auth.ErrInvalidCredentials)
	r := setupAuthRouter(a)

	w := doJSON(t, r, http.MethodPost, "/auth/login", dto.LoginRequest{Username: "dana", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"token": "signed",
		"expires_at": "2026-03-01T12:00:00Z",
		"user": {"id": "`+testUserID+`", "username": "dana", "role": "user"}
	}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/auth/login", dto.LoginRequest{Username: "dana", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{"username": "dana"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func setupUserRouter(t *testing.T, store UserStore) *gin.Engine {
	h := NewUserHandler(store, newSessions(t, &stubLister{}, &recordingWriter{}))
	r := gin.New()
	r.Use(withUser(testUserID))
	r.GET("/users/me", h.Me)
	r.DELETE("/users/me", h.DeleteUser)
	r.GET("/users", h.ListUsers)
	return r
}

func TestMe(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := new(MockUserStore)
	store.On("GetUser", mock.Anything, testUserID).
		Return(users.UserInfo{ID: testUserID, Username: "dana", Role: "admin", CreatedAt: created}, nil).Once()
	store.On("GetUser", mock.Anything, testUserID).Return(users.UserInfo{}, users.ErrUserNotFound).Once()
	r := setupUserRouter(t, store)

	w := doJSON(t, r, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+testUserID+`","username":"dana","role":"admin","created_at":"2026-01-02T03:04:05Z"}`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser(t *testing.T) {
	store := new(MockUserStore)
	store.On("DeleteUser", mock.Anything, testUserID).Return(nil).Once()
	store.On("DeleteUser", mock.Anything, testUserID).Return(users.ErrUserNotFound).Once()
	r := setupUserRouter(t, store)

	assert.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, "/users/me", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodDelete, "/users/me", nil).Code)
}

func TestListUsers_Paging(t *testing.T) {
	store := new(MockUserStore)
	store.On("ListUsers", mock.Anything, 20, 0).Return([]users.UserInfo{{ID: "a", Username: "admin"}}, int64(1), nil)
	store.On("ListUsers", mock.Anything, 5, 10).Return([]users.UserInfo{}, int64(11), nil)
	r := setupUserRouter(t, store)

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		count    int
	}{
		{name: "defaults", query: "", page: 1, pageSize: 20, count: 1},
		{name: "explicit", query: "?page=3&page_size=5", page: 3, pageSize: 5, count: 0},
		{name: "out of range", query: "?page=-2&page_size=500", page: 1, pageSize: 20, count: 1},
		{name: "garbage", query: "?page=x&page_size=y", page: 1, pageSize: 20, count: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, "/users"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp dto.ListUsersResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.page, resp.Page)
			assert.Equal(t, tt.pageSize, resp.PageSize)
			assert.Len(t, resp.Users, tt.count)
		})
	}
}

func TestListUsers_StoreError(t *testing.T) {
	store := new(MockUserStore)
	store.On("ListUsers", mock.Anything, 20, 0).Return([]users.UserInfo(nil), int64(0), errors.New("boom"))
	r := setupUserRouter(t, store)

	assert.Equal(t, http.StatusInternalServerError, doJSON(t, r, http.MethodGet, "/users", nil).Code)
}
