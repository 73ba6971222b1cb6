package usage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

func TestPresetRange(t *testing.T) {
	tests := []struct {
		preset Preset
		start  time.Time
		end    time.Time
	}{
		{Preset24h, now.Add(-24 * time.Hour), now},
		{Preset7d, now.AddDate(0, 0, -7), now},
		{Preset30d, now.AddDate(0, 0, -30), now},
		{Preset90d, now.AddDate(0, 0, -90), now},
		{PresetThisMonth, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), now},
		{PresetLastMonth, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).Add(-time.Microsecond)},
		{PresetThisYear, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), now},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			r, err := PresetRange(tt.preset, now)
			require.NoError(t, err)
			assert.True(t, tt.start.Equal(r.Start), "start %s", r.Start)
			assert.True(t, tt.end.Equal(r.End), "end %s", r.End)
		})
	}
}

func TestPresetRange_Unknown(t *testing.T) {
	_, err := PresetRange("fortnight", now)
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestCustomRange(t *testing.T) {
	r, err := CustomRange("2026-03-08", "2026-03-14", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC), r.Start)
	assert.True(t, r.Contains(time.Date(2026, time.March, 14, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)))

	_, err = CustomRange("2026-03-14", "2026-03-08", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = CustomRange("yesterday", "2026-03-08", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRangePrevious(t *testing.T) {
	r, err := CustomRange("2026-03-08", "2026-03-14", time.UTC)
	require.NoError(t, err)

	prev := r.Previous()
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.Equal(t, r.Start.Add(-time.Microsecond), prev.End)
	assert.Equal(t, r.End.Sub(r.Start), prev.End.Sub(prev.Start))
}
