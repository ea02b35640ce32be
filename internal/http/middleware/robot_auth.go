package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type RobotAuthMiddleware struct {
	log    *logger.Logger
	apiKey string
}

func NewRobotAuthMiddleware(log *logger.Logger, apiKey string) *RobotAuthMiddleware {
	return &RobotAuthMiddleware{
		log:    log.With("middleware", "RobotAuthMiddleware"),
		apiKey: apiKey,
	}
}

// RequireAPIKey authenticates robot callers via X-API-Key. The compare is
// constant time and runs before any request body or query handling.
func (rm *RobotAuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader("X-API-Key")
		if rm.apiKey == "" || presented == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(rm.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "unauthorized", "code": "unauthorized"},
			})
			return
		}
		c.Next()
	}
}
