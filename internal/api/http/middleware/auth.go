package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nati-dev/nati-console/internal/auth"
)

// Keys set on the gin context by JWTAuth.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	RoleKey     = "role"
)

// JWTAuth rejects requests without a valid bearer token and exposes the
// token's claims under UserIDKey, UsernameKey and RoleKey.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			return
		}
		claims, err := auth.ValidateToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// bearerToken reads the Authorization header. EventSource cannot set headers,
// so GET requests may pass the token as ?access_token= instead.
func bearerToken(r *http.Request) (string, bool) {
	if tok, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found && tok != "" {
		return tok, true
	}
	if r.Method != http.MethodGet {
		return "", false
	}
	tok := r.URL.Query().Get("access_token")
	return tok, tok != ""
}

// RequireRole must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, c.GetString(RoleKey)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
