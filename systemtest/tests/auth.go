package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/auth"
)

func TestRegister(t *testing.T, env *Env) {
	cases := []struct {
		name string
		body dto.RegisterRequest
		code int
	}{
		{"missing username", dto.RegisterRequest{Password: "password123"}, http.StatusBadRequest},
		{"username too short", dto.RegisterRequest{Username: "ab", Password: "password123"}, http.StatusBadRequest},
		{"password too short", dto.RegisterRequest{Username: "shortpw", Password: "short"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(env.Router, http.MethodPost, "/auth/register", tc.body)
			assert.Equal(t, tc.code, rr.Code)
		})
	}

	t.Run("new account gets the user role", func(t *testing.T) {
		rr := doJSON(env.Router, http.MethodPost, "/auth/register", dto.RegisterRequest{Username: "builder", Password: "password123"})
		require.Equal(t, http.StatusCreated, rr.Code)

		var acct dto.AccountResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &acct))
		assert.Equal(t, "builder", acct.Username)
		assert.Equal(t, "user", acct.Role)
		assert.NotEmpty(t, acct.ID)
	})

	t.Run("username taken", func(t *testing.T) {
		body := dto.RegisterRequest{Username: "twice", Password: "password123"}
		require.Equal(t, http.StatusCreated, doJSON(env.Router, http.MethodPost, "/auth/register", body).Code)
		assert.Equal(t, http.StatusConflict, doJSON(env.Router, http.MethodPost, "/auth/register", body).Code)

		body.Username = "  twice  "
		assert.Equal(t, http.StatusConflict, doJSON(env.Router, http.MethodPost, "/auth/register", body).Code)
	})
}

func TestLogin(t *testing.T, env *Env) {
	owner := signUp(t, env, "operator")

	t.Run("token carries the account", func(t *testing.T) {
		rr := doJSON(env.Router, http.MethodPost, "/auth/login", dto.LoginRequest{Username: "operator", Password: "password123"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, owner.ID, resp.User.ID)
		assert.Equal(t, "user", resp.User.Role)
		assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

		claims, err := auth.ValidateToken(env.JWTSecret, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, claims.UserID)
		assert.Equal(t, "operator", claims.Username)
	})

	for name, creds := range map[string]dto.LoginRequest{
		"wrong password": {Username: "operator", Password: "password124"},
		"unknown user":   {Username: "ghost", Password: "password123"},
	} {
		t.Run(name, func(t *testing.T) {
			rr := doJSON(env.Router, http.MethodPost, "/auth/login", creds)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"error":"invalid credentials"}`, rr.Body.String())
		})
	}
}
