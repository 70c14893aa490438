package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

// SystemHandler serves health and readiness probes
type SystemHandler struct {
	BaseHandler
	db        *sql.DB
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *sql.DB, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		startedAt:   time.Now(),
	}
}

// Health handles GET /health. It reports liveness only and never touches
// downstream dependencies.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	}))
}

// Ready handles GET /ready. It verifies the database connection and reports
// 503 when the store is unreachable.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrCodeInternal, "database unreachable"))
			return
		}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ready"}))
}
