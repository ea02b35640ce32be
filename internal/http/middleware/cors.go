package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roomloop/roomloop-backend/internal/platform/envutil"
)

func CORS() gin.HandlerFunc {
	origins := []string{
		"http://localhost:80",
		"http://localhost:3000",
		"http://127.0.0.1:80",
		"http://127.0.0.1:3000",
	}
	if extra := envutil.String("CORS_ALLOWED_ORIGINS", ""); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-API-Key"},
		AllowCredentials: true,
	})
}
