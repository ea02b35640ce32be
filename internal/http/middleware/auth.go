package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/pkg/ctxutil"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// Roles accepted on admin endpoints.
const (
	RoleSuperadmin   = "superadmin"
	RoleAdmin        = "admin"
	RolePartnerAdmin = "partner_admin"
	RoleOperator     = "operator"
)

type adminClaims struct {
	OrganizationID string `json:"org_id"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		secret: []byte(jwtSecret),
	}
}

// RequireRole validates the bearer token, attaches the actor to the
// request context, and rejects callers whose role claim is not listed.
func (am *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		claims := &adminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return am.secret, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		actorID, err := uuid.Parse(claims.Subject)
		if err != nil || actorID == uuid.Nil {
			abortUnauthorized(c, "missing or invalid token")
			return
		}
		orgID, _ := uuid.Parse(claims.OrganizationID)
		if !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "forbidden", "code": "forbidden"},
			})
			return
		}
		ctx := ctxutil.WithActor(c.Request.Context(), ctxutil.Actor{
			ID:             actorID,
			OrganizationID: orgID,
			Role:           claims.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": msg, "code": "unauthorized"},
	})
}
