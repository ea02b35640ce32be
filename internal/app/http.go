package app

import (
	"github.com/gin-gonic/gin"

	"github.com/roomloop/roomloop-backend/internal/http"
	httpH "github.com/roomloop/roomloop-backend/internal/http/handlers"
	httpMW "github.com/roomloop/roomloop-backend/internal/http/middleware"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type Middleware struct {
	Auth  *httpMW.AuthMiddleware
	Robot *httpMW.RobotAuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Robot     *httpH.RobotHandler
	Media     *httpH.MediaHandler
	Structure *httpH.StructureHandler
	Moment    *httpH.MomentHandler
	Delivery  *httpH.DeliveryHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:  httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
		Robot: httpMW.NewRobotAuthMiddleware(log, cfg.RobotAPIKey),
	}
}

func wireHandlers(log *logger.Logger, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Robot:     httpH.NewRobotHandler(log, svc.RobotQuery),
		Media:     httpH.NewMediaHandler(svc.Media, svc.FaceDetect, svc.Labeling, svc.Blur, svc.Review),
		Structure: httpH.NewStructureHandler(svc.Structure),
		Moment:    httpH.NewMomentHandler(svc.Moments, svc.Compiler),
		Delivery:  httpH.NewDeliveryHandler(svc.Delivery),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		AuthMiddleware:   middleware.Auth,
		RobotMiddleware:  middleware.Robot,
		HealthHandler:    handlers.Health,
		RobotHandler:     handlers.Robot,
		MediaHandler:     handlers.Media,
		StructureHandler: handlers.Structure,
		MomentHandler:    handlers.Moment,
		DeliveryHandler:  handlers.Delivery,
	})
}
