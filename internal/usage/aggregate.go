package usage

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	TopProjectLimit = 5
	dayLayout       = "2006-01-02"
)

// Event is one successful AI request as stored in usage_events.
type Event struct {
	ID               string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	Cost             string
	ResponseTimeMs   int64
	Project          string
	CreatedAt        time.Time
}

// Tokens prefers the recorded total and falls back to prompt+completion.
func (e Event) Tokens() int64 {
	if e.TotalTokens > 0 {
		return e.TotalTokens
	}
	return e.PromptTokens + e.CompletionTokens
}

// CostValue parses the stored decimal string. Anything unparsable counts as 0.
func (e Event) CostValue() float64 {
	return ParseCost(e.Cost)
}

func ParseCost(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

type Trends struct {
	Tokens       int `json:"tokens"`
	Cost         int `json:"cost"`
	Requests     int `json:"requests"`
	ResponseTime int `json:"response_time"`
}

type ModelUsage struct {
	Model    string   `json:"model"`
	Provider Provider `json:"provider"`
	Tokens   int64    `json:"tokens"`
	Cost     float64  `json:"cost"`
	Requests int      `json:"requests"`
	Display
}

type DailyUsage struct {
	Date      string             `json:"date"`
	Tokens    int64              `json:"tokens"`
	Cost      float64            `json:"cost"`
	Requests  int                `json:"requests"`
	Providers map[Provider]int64 `json:"providers"`
}

type ProjectUsage struct {
	Name     string  `json:"name"`
	Tokens   int64   `json:"tokens"`
	Cost     float64 `json:"cost"`
	Requests int     `json:"requests"`
}

// Summary is the dashboard view of one date range.
type Summary struct {
	Range           Range          `json:"range"`
	TotalTokens     int64          `json:"total_tokens"`
	TotalCost       float64        `json:"total_cost"`
	TotalRequests   int            `json:"total_requests"`
	AvgResponseTime float64        `json:"avg_response_time"`
	Trends          Trends         `json:"trends"`
	Models          []ModelUsage   `json:"models"`
	Daily           []DailyUsage   `json:"daily"`
	TopProjects     []ProjectUsage `json:"top_projects"`
}

// Empty returns the zero summary for r with non-nil slices.
func Empty(r Range) Summary {
	return Summary{
		Range:       r,
		Models:      []ModelUsage{},
		Daily:       []DailyUsage{},
		TopProjects: []ProjectUsage{},
	}
}

// Trend is the rounded percentage change from previous to current.
func Trend(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Floor(100*(current-previous)/previous + 0.5))
}

// CompareTrends fills cur.Trends against prev. A slower average response time
// is reported as a negative trend.
func CompareTrends(cur, prev Summary) Trends {
	return Trends{
		Tokens:       Trend(float64(cur.TotalTokens), float64(prev.TotalTokens)),
		Cost:         Trend(cur.TotalCost, prev.TotalCost),
		Requests:     Trend(float64(cur.TotalRequests), float64(prev.TotalRequests)),
		ResponseTime: -Trend(cur.AvgResponseTime, prev.AvgResponseTime),
	}
}

// Aggregate reduces events inside r to a Summary. Days are calendar dates in
// loc. The result does not depend on the order of events.
func Aggregate(events []Event, r Range, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	out := Empty(r)

	rows := make([]Event, 0, len(events))
	for _, e := range events {
		if r.Contains(e.CreatedAt) {
			rows = append(rows, e)
		}
	}
	if len(rows) == 0 {
		return out
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})

	models := map[string]*ModelUsage{}
	days := map[string]*DailyUsage{}
	projects := map[string]*ProjectUsage{}
	var latencyMs int64

	for _, e := range rows {
		tokens := e.Tokens()
		cost := e.CostValue()
		provider := Classify(e.Model)

		out.TotalTokens += tokens
		out.TotalCost += cost
		out.TotalRequests++
		latencyMs += e.ResponseTimeMs

		name := strings.ToLower(strings.TrimSpace(e.Model))
		m, ok := models[name]
		if !ok {
			m = &ModelUsage{Model: name, Provider: provider, Display: provider.Display()}
			models[name] = m
		}
		m.Tokens += tokens
		m.Cost += cost
		m.Requests++

		date := e.CreatedAt.In(loc).Format(dayLayout)
		d, ok := days[date]
		if !ok {
			d = &DailyUsage{Date: date, Providers: map[Provider]int64{}}
			days[date] = d
		}
		d.Tokens += tokens
		d.Cost += cost
		d.Requests++
		d.Providers[provider] += tokens

		if p := strings.TrimSpace(e.Project); p != "" {
			pu, ok := projects[p]
			if !ok {
				pu = &ProjectUsage{Name: p}
				projects[p] = pu
			}
			pu.Tokens += tokens
			pu.Cost += cost
			pu.Requests++
		}
	}

	out.AvgResponseTime = float64(latencyMs) / float64(out.TotalRequests) / 1000

	for _, m := range models {
		out.Models = append(out.Models, *m)
	}
	sort.Slice(out.Models, func(i, j int) bool {
		if out.Models[i].Tokens != out.Models[j].Tokens {
			return out.Models[i].Tokens > out.Models[j].Tokens
		}
		return out.Models[i].Model < out.Models[j].Model
	})

	for _, d := range days {
		out.Daily = append(out.Daily, *d)
	}
	sort.Slice(out.Daily, func(i, j int) bool {
		return out.Daily[i].Date < out.Daily[j].Date
	})

	for _, p := range projects {
		out.TopProjects = append(out.TopProjects, *p)
	}
	sort.Slice(out.TopProjects, func(i, j int) bool {
		if out.TopProjects[i].Tokens != out.TopProjects[j].Tokens {
			return out.TopProjects[i].Tokens > out.TopProjects[j].Tokens
		}
		return out.TopProjects[i].Name < out.TopProjects[j].Name
	})
	if len(out.TopProjects) > TopProjectLimit {
		out.TopProjects = out.TopProjects[:TopProjectLimit]
	}

	return out
}
