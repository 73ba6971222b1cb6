package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nati-dev/nati-console/internal/db/sqlc"
)

var ErrUserNotFound = errors.New("user not found")

// UserInfo is the public view of a users row; the password hash never leaves
// this package.
type UserInfo struct {
	ID        string
	Username  string
	Role      string
	CreatedAt time.Time
}

type Service struct {
	queries *sqlc.Queries
}

func NewService(queries *sqlc.Queries) *Service {
	return &Service{queries: queries}
}

func (s *Service) GetUser(ctx context.Context, userID string) (UserInfo, error) {
	id, ok := pgID(userID)
	if !ok {
		return UserInfo{}, ErrUserNotFound
	}
	row, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserInfo{}, ErrUserNotFound
	}
	if err != nil {
		return UserInfo{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return infoOf(row), nil
}

// DeleteUser removes the account. Agent state, commands, build logs and usage
// events go with it through ON DELETE CASCADE.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	id, _ := pgID(userID)
	if err := s.queries.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	return nil
}

// ListUsers returns one page ordered as the query orders it, plus the total
// row count.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]UserInfo, int64, error) {
	rows, err := s.queries.ListUsersPaginated(ctx, sqlc.ListUsersPaginatedParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page := make([]UserInfo, 0, len(rows))
	for _, row := range rows {
		page = append(page, infoOf(row))
	}
	return page, total, nil
}

func pgID(s string) (pgtype.UUID, bool) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

func infoOf(u sqlc.User) UserInfo {
	return UserInfo{
		ID:        uuid.UUID(u.ID.Bytes).String(),
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Time,
	}
}
