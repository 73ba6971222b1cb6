package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/db"
)

type HealthHandler struct {
	pinger db.Pinger
}

// NewHealthHandler reports liveness; with a non-nil pinger it also reports
// database reachability.
func NewHealthHandler(pinger db.Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

func (h *HealthHandler) Check(ctx *gin.Context) {
	resp := dto.HealthResponse{Status: "ok"}
	if h.pinger != nil {
		if db.Healthy(ctx.Request.Context(), h.pinger) {
			resp.Database = "ok"
		} else {
			resp.Database = "unavailable"
		}
	}
	ctx.JSON(http.StatusOK, resp)
}
