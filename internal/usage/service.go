package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nati-dev/nati-console/internal/db/sqlc"
)

const StatusSuccess = "success"

var ErrInvalidUserID = errors.New("invalid user ID")

// Source loads successful usage events of a user inside a range.
type Source interface {
	ListSuccessful(ctx context.Context, userID string, r Range) ([]Event, error)
}

type Store struct {
	queries *sqlc.Queries
}

func NewStore(queries *sqlc.Queries) *Store {
	return &Store{queries: queries}
}

func (s *Store) ListSuccessful(ctx context.Context, userID string, r Range) ([]Event, error) {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	rows, err := s.queries.ListUsageEventsInRange(ctx, sqlc.ListUsageEventsInRangeParams{
		UserID:  pgtype.UUID{Bytes: parsedUserID, Valid: true},
		Status:  StatusSuccess,
		StartAt: pgtype.Timestamptz{Time: r.Start, Valid: true},
		EndAt:   pgtype.Timestamptz{Time: r.End, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}

	events := make([]Event, len(rows))
	for i, row := range rows {
		events[i] = Event{
			ID:               uuid.UUID(row.ID.Bytes).String(),
			Model:            row.ModelName,
			PromptTokens:     int64(row.PromptTokens),
			CompletionTokens: int64(row.CompletionTokens),
			TotalTokens:      int64(row.TotalTokens),
			Cost:             row.Cost.String,
			ResponseTimeMs:   int64(row.ResponseTimeMs.Int32),
			Project:          row.ProjectName.String,
			CreatedAt:        row.CreatedAt.Time,
		}
	}
	return events, nil
}

// RecordParams describes a usage event written by the desktop app or CLI.
type RecordParams struct {
	UserID           string
	Model            string
	PromptTokens     int32
	CompletionTokens int32
	TotalTokens      int32
	Cost             string
	ResponseTimeMs   *int32
	Status           string
	Project          string
	CreatedAt        time.Time
}

func (s *Store) Record(ctx context.Context, p RecordParams) (string, error) {
	parsedUserID, err := uuid.Parse(p.UserID)
	if err != nil {
		return "", ErrInvalidUserID
	}
	if p.Status == "" {
		p.Status = StatusSuccess
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	params := sqlc.InsertUsageEventParams{
		UserID:           pgtype.UUID{Bytes: parsedUserID, Valid: true},
		ModelName:        p.Model,
		PromptTokens:     p.PromptTokens,
		CompletionTokens: p.CompletionTokens,
		TotalTokens:      p.TotalTokens,
		Cost:             pgtype.Text{String: p.Cost, Valid: p.Cost != ""},
		Status:           p.Status,
		ProjectName:      pgtype.Text{String: p.Project, Valid: p.Project != ""},
		CreatedAt:        pgtype.Timestamptz{Time: p.CreatedAt, Valid: true},
	}
	if p.ResponseTimeMs != nil {
		params.ResponseTimeMs = pgtype.Int4{Int32: *p.ResponseTimeMs, Valid: true}
	}

	id, err := s.queries.InsertUsageEvent(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to insert usage event: %w", err)
	}
	return uuid.UUID(id.Bytes).String(), nil
}

type Service struct {
	source Source
	loc    *time.Location
}

func NewService(source Source, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{source: source, loc: loc}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Summarize aggregates r and compares it with the preceding period of the
// same length. A failed previous-period fetch leaves trends at zero.
func (s *Service) Summarize(ctx context.Context, userID string, r Range) (Summary, error) {
	current, err := s.source.ListSuccessful(ctx, userID, r)
	if err != nil {
		return Empty(r), err
	}
	summary := Aggregate(current, r, s.loc)

	prevRange := r.Previous()
	previous, err := s.source.ListSuccessful(ctx, userID, prevRange)
	if err != nil {
		slog.Warn("Failed to load previous usage period", "user_id", userID, "error", err)
		return summary, nil
	}
	summary.Trends = CompareTrends(summary, Aggregate(previous, prevRange, s.loc))
	return summary, nil
}
