package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/pkg/ctxutil"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

const testSecret = "unit-test-secret"

func adminRouter(t *testing.T, roles ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := gin.New()
	am := NewAuthMiddleware(log, testSecret)
	r.GET("/api/admin/ping", am.RequireRole(roles...), func(c *gin.Context) {
		actor, ok := ctxutil.GetActor(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"actor_id": actor.ID, "role": actor.Role})
	})
	return r
}

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func adminToken(t *testing.T, secret, role string, sub uuid.UUID) string {
	return signToken(t, secret, jwt.MapClaims{
		"sub":    sub.String(),
		"org_id": uuid.NewString(),
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
}

func TestAuthAcceptsListedRole(t *testing.T) {
	r := adminRouter(t, RoleSuperadmin, RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, testSecret, RoleAdmin, uuid.New()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRejectsUnlistedRole(t *testing.T) {
	r := adminRouter(t, RoleSuperadmin)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, testSecret, RoleOperator, uuid.New()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	r := adminRouter(t, RoleAdmin)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Token abc",
		"wrong secret":   "Bearer " + adminToken(t, "some-other-secret", RoleAdmin, uuid.New()),
		"expired": "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub":  uuid.NewString(),
			"role": RoleAdmin,
			"exp":  time.Now().Add(-time.Hour).Unix(),
		}),
		"no subject": "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"role": RoleAdmin,
			"exp":  time.Now().Add(time.Hour).Unix(),
		}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
