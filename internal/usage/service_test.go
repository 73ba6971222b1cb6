package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListSuccessful(ctx context.Context, userID string, r Range) ([]Event, error) {
	args := m.Called(ctx, userID, r)
	events, _ := args.Get(0).([]Event)
	return events, args.Error(1)
}

func TestSummarize_ComputesTrendsAgainstPreviousPeriod(t *testing.T) {
	r, err := CustomRange("2026-03-08", "2026-03-14", time.UTC)
	require.NoError(t, err)

	source := new(MockSource)
	source.On("ListSuccessful", mock.Anything, "user-1", r).Return([]Event{
		{ID: "1", Model: "gpt-4", TotalTokens: 150, ResponseTimeMs: 1000, CreatedAt: day(9, 1)},
	}, nil)
	source.On("ListSuccessful", mock.Anything, "user-1", r.Previous()).Return([]Event{
		{ID: "0", Model: "gpt-4", TotalTokens: 100, ResponseTimeMs: 2000, CreatedAt: day(2, 1)},
	}, nil)

	svc := NewService(source, time.UTC)
	s, err := svc.Summarize(context.Background(), "user-1", r)
	require.NoError(t, err)

	assert.Equal(t, int64(150), s.TotalTokens)
	assert.Equal(t, 50, s.Trends.Tokens)
	assert.Equal(t, 0, s.Trends.Requests)
	assert.Equal(t, 50, s.Trends.ResponseTime)
	source.AssertExpectations(t)
}

func TestSummarize_CurrentFetchFails(t *testing.T) {
	source := new(MockSource)
	source.On("ListSuccessful", mock.Anything, "user-1", march).Return(nil, errors.New("connection refused"))

	svc := NewService(source, time.UTC)
	s, err := svc.Summarize(context.Background(), "user-1", march)
	require.Error(t, err)
	assert.Empty(t, s.Models)
	assert.NotNil(t, s.Models)
}

func TestSummarize_PreviousFetchFailsKeepsCurrent(t *testing.T) {
	source := new(MockSource)
	source.On("ListSuccessful", mock.Anything, "user-1", march).Return([]Event{
		{ID: "1", Model: "gpt-4", TotalTokens: 10, CreatedAt: day(9, 1)},
	}, nil)
	source.On("ListSuccessful", mock.Anything, "user-1", march.Previous()).Return(nil, errors.New("timeout"))

	svc := NewService(source, time.UTC)
	s, err := svc.Summarize(context.Background(), "user-1", march)
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.TotalTokens)
	assert.Equal(t, Trends{}, s.Trends)
}
