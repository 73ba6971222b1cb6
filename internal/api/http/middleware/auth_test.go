package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nati-dev/nati-console/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const secret = "middleware-secret"

func setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(JWTAuth(secret))
	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	}
	r.GET("/me", whoami)
	r.POST("/me", whoami)
	r.GET("/admin", RequireRole("admin"), whoami)
	return r
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := auth.GenerateToken(auth.Config{Secret: secret}, "user-1", "alice", role)
	require.NoError(t, err)
	return tok
}

func serve(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := setupRouter()

	w := serve(r, http.MethodGet, "/me", token(t, "user"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "garbage").Code)
}

func TestJWTAuth_QueryTokenOnlyForGet(t *testing.T) {
	r := setupRouter()
	tok := token(t, "user")

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/me?access_token="+tok, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/me?access_token="+tok, "").Code)
}

func TestRequireRole(t *testing.T) {
	r := setupRouter()

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin", token(t, "admin")).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", token(t, "user")).Code)
}

func TestRequireRole_WithoutJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", "").Code)
}

func TestJWTAuth_SetsClaims(t *testing.T) {
	r := gin.New()
	r.Use(JWTAuth(secret))
	r.GET("/claims", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":   c.GetString(UserIDKey),
			"name": c.GetString(UsernameKey),
			"role": c.GetString(RoleKey),
		})
	})

	w := serve(r, http.MethodGet, "/claims", token(t, "admin"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"user-1","name":"alice","role":"admin"}`, w.Body.String())
}

func TestJWTAuth_EmptyBearer(t *testing.T) {
	r := setupRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
