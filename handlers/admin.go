package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/rwa-intake/migration"
	"go.uber.org/zap"
)

type BackfillRunner interface {
	Run(ctx context.Context) (migration.Report, error)
}

type AdminHandler struct {
	backfill BackfillRunner
	log      *zap.Logger
}

func NewAdminHandler(backfill BackfillRunner, log *zap.Logger) *AdminHandler {
	return &AdminHandler{backfill: backfill, log: log}
}

// RunBackfill handles POST /api/admin/migrations/early-access.
func (h *AdminHandler) RunBackfill(c *gin.Context) {
	subject, _ := c.Get("subject")
	h.log.Info("backfill requested", zap.Any("operator", subject))

	report, err := h.backfill.Run(c.Request.Context())
	if err != nil {
		h.log.Error("backfill aborted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Backfill aborted",
			"report":  report,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}
