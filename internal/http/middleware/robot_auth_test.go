package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

func robotRouter(t *testing.T, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := gin.New()
	rm := NewRobotAuthMiddleware(log, apiKey)
	r.POST("/api/robot/v1/query", rm.RequireAPIKey(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRobotAuthAcceptsMatchingKey(t *testing.T) {
	r := robotRouter(t, "robot-key-1")

	req := httptest.NewRequest(http.MethodPost, "/api/robot/v1/query", nil)
	req.Header.Set("X-API-Key", "robot-key-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRobotAuthRejectsBadKey(t *testing.T) {
	r := robotRouter(t, "robot-key-1")

	for _, key := range []string{"", "wrong", "robot-key-12"} {
		req := httptest.NewRequest(http.MethodPost, "/api/robot/v1/query", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("key %q: expected 401, got %d", key, rec.Code)
		}
	}
}

func TestRobotAuthRejectsEverythingWhenUnconfigured(t *testing.T) {
	// deployments without a configured key must fail closed
	r := robotRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/robot/v1/query", nil)
	req.Header.Set("X-API-Key", "")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
