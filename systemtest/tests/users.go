package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
)

func TestUserCRUD(t *testing.T, env *Env) {
	router := env.Router
	admin := login(t, env, dto.LoginRequest{Username: "admin", Password: "changeme"})
	member := signUp(t, env, "member")

	listUsers := func(t *testing.T, path, token string) dto.ListUsersResponse {
		t.Helper()
		rr := doJSONWithAuth(router, http.MethodGet, path, nil, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp dto.ListUsersResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp
	}

	t.Run("me", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/api/v1/users/me", nil, admin.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		var me dto.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
		assert.Equal(t, admin.ID, me.ID)
		assert.Equal(t, "admin", me.Role)
		assert.False(t, me.CreatedAt.IsZero())
	})

	t.Run("admin lists users", func(t *testing.T) {
		resp := listUsers(t, "/api/v1/users", admin.Token)
		assert.GreaterOrEqual(t, resp.Total, int64(2))
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 20, resp.PageSize)

		var names []string
		for _, u := range resp.Users {
			names = append(names, u.Username)
		}
		assert.Contains(t, names, "member")
	})

	t.Run("page size is honoured", func(t *testing.T) {
		resp := listUsers(t, "/api/v1/users?page=1&page_size=1", admin.Token)
		assert.Len(t, resp.Users, 1)
		assert.Equal(t, 1, resp.PageSize)
	})

	t.Run("members cannot list users", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, "/api/v1/users", nil, member.Token)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("anonymous requests are rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodGet, "/api/v1/users", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodGet, "/api/v1/users/me", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodDelete, "/api/v1/users/me", nil).Code)
	})

	t.Run("delete own account", func(t *testing.T) {
		leaving := signUp(t, env, "leaving")

		rr := doJSONWithAuth(router, http.MethodDelete, "/api/v1/users/me", nil, leaving.Token)
		require.Equal(t, http.StatusNoContent, rr.Code)

		rr = doJSON(router, http.MethodPost, "/auth/login", dto.LoginRequest{Username: "leaving", Password: "password123"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = doJSONWithAuth(router, http.MethodGet, "/api/v1/users/me", nil, leaving.Token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = doJSONWithAuth(router, http.MethodDelete, "/api/v1/users/me", nil, leaving.Token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
