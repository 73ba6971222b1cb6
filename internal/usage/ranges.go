package usage

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("invalid date range")

type Preset string

const (
	Preset24h       Preset = "24h"
	Preset7d        Preset = "7d"
	Preset30d       Preset = "30d"
	Preset90d       Preset = "90d"
	PresetThisMonth Preset = "this_month"
	PresetLastMonth Preset = "last_month"
	PresetThisYear  Preset = "this_year"
)

const customDateLayout = "2006-01-02"

// Range is an inclusive time window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Previous returns the window of equal length ending just before r.Start.
func (r Range) Previous() Range {
	span := r.End.Sub(r.Start) + time.Microsecond
	return Range{
		Start: r.Start.Add(-span),
		End:   r.Start.Add(-time.Microsecond),
	}
}

// PresetRange resolves a preset relative to now, in now's location.
func PresetRange(p Preset, now time.Time) (Range, error) {
	now = now.Truncate(time.Microsecond)
	loc := now.Location()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	switch p {
	case Preset24h:
		return Range{Start: now.Add(-24 * time.Hour), End: now}, nil
	case Preset7d:
		return Range{Start: now.AddDate(0, 0, -7), End: now}, nil
	case Preset30d:
		return Range{Start: now.AddDate(0, 0, -30), End: now}, nil
	case Preset90d:
		return Range{Start: now.AddDate(0, 0, -90), End: now}, nil
	case PresetThisMonth:
		return Range{Start: startOfMonth, End: now}, nil
	case PresetLastMonth:
		return Range{Start: startOfMonth.AddDate(0, -1, 0), End: startOfMonth.Add(-time.Microsecond)}, nil
	case PresetThisYear:
		return Range{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc), End: now}, nil
	default:
		return Range{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidRange, p)
	}
}

// CustomRange builds a range covering whole calendar days from start to end
// (YYYY-MM-DD, both inclusive) in loc.
func CustomRange(start, end string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.Local
	}
	s, err := time.ParseInLocation(customDateLayout, start, loc)
	if err != nil {
		return Range{}, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
	}
	e, err := time.ParseInLocation(customDateLayout, end, loc)
	if err != nil {
		return Range{}, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
	}
	if e.Before(s) {
		return Range{}, fmt.Errorf("%w: end before start", ErrInvalidRange)
	}
	return Range{Start: s, End: e.AddDate(0, 0, 1).Add(-time.Microsecond)}, nil
}
