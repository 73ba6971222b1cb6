package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/session"
	"github.com/nati-dev/nati-console/internal/usage"
)

const defaultUsagePreset = usage.Preset7d

type Summarizer interface {
	Summarize(ctx context.Context, userID string, r usage.Range) (usage.Summary, error)
	Location() *time.Location
}

type UsageHandler struct {
	usageService Summarizer
	sessions     *session.Manager
	now          func() time.Time
}

func NewUsageHandler(usageService Summarizer, sessions *session.Manager) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
		sessions:     sessions,
		now:          time.Now,
	}
}

// Summary returns the usage dashboard for ?preset= or ?start=&end=
// (YYYY-MM-DD). When the backend is unreachable the last good summary for the
// same range is returned with stale=true.
// GET /api/v1/usage
func (h *UsageHandler) Summary(c *gin.Context) {
	userID := c.GetString("user_id")
	loc := h.usageService.Location()

	var (
		r        usage.Range
		cacheKey string
		preset   string
		err      error
	)
	if start, end := c.Query("start"), c.Query("end"); start != "" || end != "" {
		r, err = usage.CustomRange(start, end, loc)
		cacheKey = session.CustomUsageKey(start, end)
	} else {
		preset = c.DefaultQuery("preset", string(defaultUsagePreset))
		r, err = usage.PresetRange(usage.Preset(preset), h.now().In(loc))
		cacheKey = preset
	}
	if err != nil {
		if errors.Is(err, usage.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	s := h.sessions.Get(userID)
	summary, err := h.usageService.Summarize(c.Request.Context(), userID, r)
	if err != nil {
		slog.Error("Failed to load usage", "user_id", userID, "range", cacheKey, "error", err)
		cached, ok := s.CachedUsage(cacheKey)
		if !ok {
			cached = usage.Empty(r)
		}
		c.JSON(http.StatusOK, dto.UsageResponse{Summary: cached, Preset: preset, Stale: true})
		return
	}

	s.StoreUsage(cacheKey, summary)
	c.JSON(http.StatusOK, dto.UsageResponse{Summary: summary, Preset: preset})
}
