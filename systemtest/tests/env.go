package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/commands"
	"github.com/nati-dev/nati-console/internal/usage"
)

// Env is the wired system under test.
type Env struct {
	Router    *gin.Engine
	JWTSecret string
	Agents    *agents.Service
	Commands  *commands.Service
	Usage     *usage.Store
}

type account struct {
	ID    string
	Token string
}

// signUp registers username and logs in.
func signUp(t *testing.T, env *Env, username string) account {
	t.Helper()

	creds := dto.LoginRequest{Username: username, Password: "password123"}
	rr := doJSON(env.Router, http.MethodPost, "/auth/register", dto.RegisterRequest(creds))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	return login(t, env, creds)
}

func login(t *testing.T, env *Env, creds dto.LoginRequest) account {
	t.Helper()

	rr := doJSON(env.Router, http.MethodPost, "/auth/login", creds)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return account{ID: resp.User.ID, Token: resp.Token}
}

func TestHealthCheck(t *testing.T, env *Env) {
	rr := doJSON(env.Router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	return doJSONWithAuth(router, method, path, body, "")
}

func doJSONWithAuth(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
