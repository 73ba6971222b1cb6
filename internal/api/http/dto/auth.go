package dto

import (
	"time"

	"github.com/nati-dev/nati-console/internal/auth"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AccountResponse is returned by /auth/register and embedded in the login reply.
type AccountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      AccountResponse `json:"user"`
}

func NewAccountResponse(a auth.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Username: a.Username, Role: a.Role}
}

func NewLoginResponse(s auth.Session) LoginResponse {
	return LoginResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC(),
		User:      NewAccountResponse(s.Account),
	}
}
