package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/rwa-intake/config"
	"github.com/yourusername/rwa-intake/middleware"
	"github.com/yourusername/rwa-intake/migration"
	"go.uber.org/zap"
)

type MockBackfill struct {
	RunFunc func(ctx context.Context) (migration.Report, error)
}

func (m *MockBackfill) Run(ctx context.Context) (migration.Report, error) {
	return m.RunFunc(ctx)
}

func TestRunBackfill(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "test-secret"}

	adminToken, _ := middleware.GenerateToken("op-1", "admin", cfg.JWTSecret, time.Hour)
	userToken, _ := middleware.GenerateToken("op-2", "user", cfg.JWTSecret, time.Hour)

	route := func(runner BackfillRunner) *gin.Engine {
		router := gin.New()
		router.POST("/api/admin/migrations/early-access",
			middleware.JwtAuthMiddleware(cfg),
			middleware.RequireRole("admin"),
			NewAdminHandler(runner, zap.NewNop()).RunBackfill,
		)
		return router
	}

	call := func(router *gin.Engine, token string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/api/admin/migrations/early-access", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	ok := &MockBackfill{RunFunc: func(ctx context.Context) (migration.Report, error) {
		return migration.Report{Created: 3, Skipped: 1, Errored: 2}, nil
	}}

	t.Run("Admin runs backfill", func(t *testing.T) {
		w := call(route(ok), adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, map[string]any{"created": 3.0, "skipped": 1.0, "errored": 2.0}, body["report"])
	})

	t.Run("Non admin is forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, call(route(ok), userToken).Code)
	})

	t.Run("Anonymous is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call(route(ok), "").Code)
	})

	t.Run("Aborted run", func(t *testing.T) {
		failing := &MockBackfill{RunFunc: func(ctx context.Context) (migration.Report, error) {
			return migration.Report{Created: 1}, errors.New("list pending submissions: connection reset")
		}}
		w := call(route(failing), adminToken)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}
