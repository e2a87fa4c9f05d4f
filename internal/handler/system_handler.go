package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/marksheet-analytics/internal/database"
	"github.com/stemsi/marksheet-analytics/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler serves the liveness endpoint.
type SystemHandler struct {
	check     func(ctx context.Context) database.Status
	startTime time.Time
}

func NewSystemHandler(check func(ctx context.Context) database.Status) *SystemHandler {
	return &SystemHandler{check: check, startTime: time.Now()}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := h.check(ctx)
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}

	response.Success(c, code, gin.H{
		"status":       state,
		"dependencies": status,
		"uptime":       time.Since(h.startTime).Truncate(time.Second).String(),
	})
}
