package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nati-dev/nati-console/internal/db/sqlc"
	"github.com/nati-dev/nati-console/internal/users"
)

const uniqueViolation = "23505"

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = users.ErrPasswordTooShort
)

// Account identifies a dashboard user.
type Account struct {
	ID       string
	Username string
	Role     string
}

// Session is a signed token for an Account.
type Session struct {
	Account
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	queries *sqlc.Queries
	config  Config
}

func NewService(queries *sqlc.Queries, config Config) *Service {
	return &Service{queries: queries, config: config}
}

// Register creates a user with the "user" role. Surrounding whitespace in the
// username is dropped.
func (s *Service) Register(ctx context.Context, username, password string) (Account, error) {
	hash, err := users.HashPassword(password)
	if err != nil {
		return Account{}, err
	}

	row, err := s.queries.CreateUser(ctx, sqlc.CreateUserParams{
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         sqlc.UserRoleUser,
	})
	if isUniqueViolation(err) {
		return Account{}, ErrUsernameExists
	}
	if err != nil {
		return Account{}, fmt.Errorf("create user: %w", err)
	}
	return accountOf(row), nil
}

// Login verifies the password and issues a Session. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	row, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !users.PasswordMatches(row.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	acct := accountOf(row)
	token, expiresAt, err := GenerateToken(s.config, acct.ID, acct.Username, acct.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Account: acct, Token: token, ExpiresAt: expiresAt}, nil
}

func accountOf(u sqlc.User) Account {
	return Account{
		ID:       uuid.UUID(u.ID.Bytes).String(),
		Username: u.Username,
		Role:     string(u.Role),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
