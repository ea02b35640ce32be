package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/roomloop/roomloop-backend/internal/http/handlers"
	httpMW "github.com/roomloop/roomloop-backend/internal/http/middleware"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware  *httpMW.AuthMiddleware
	RobotMiddleware *httpMW.RobotAuthMiddleware

	HealthHandler    *httpH.HealthHandler
	RobotHandler     *httpH.RobotHandler
	MediaHandler     *httpH.MediaHandler
	StructureHandler *httpH.StructureHandler
	MomentHandler    *httpH.MomentHandler
	DeliveryHandler  *httpH.DeliveryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("roomloop-backend"))
	r.Use(httpMW.CORS())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Robot surface: API-key only, no admin session.
	if cfg.RobotHandler != nil && cfg.RobotMiddleware != nil {
		robot := r.Group("/api/robot/v1")
		robot.Use(cfg.RobotMiddleware.RequireAPIKey())
		robot.POST("/query", cfg.RobotHandler.Query)
	}

	admin := r.Group("/api/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireRole(
			httpMW.RoleSuperadmin, httpMW.RoleAdmin, httpMW.RolePartnerAdmin,
		))
	}

	if cfg.StructureHandler != nil {
		admin.GET("/locations/:id/structure", cfg.StructureHandler.GetTree)
		admin.GET("/structure/reference-types", cfg.StructureHandler.ListReferenceTypes)
		admin.POST("/locations/:id/floors", cfg.StructureHandler.CreateFloor)
		admin.DELETE("/floors/:id", cfg.StructureHandler.DeleteFloor)
		admin.POST("/locations/:id/rooms", cfg.StructureHandler.CreateRoom)
		admin.DELETE("/rooms/:id", cfg.StructureHandler.DeleteRoom)
		admin.POST("/rooms/:id/targets", cfg.StructureHandler.CreateTarget)
		admin.DELETE("/targets/:id", cfg.StructureHandler.DeleteTarget)
		admin.POST("/targets/:id/actions", cfg.StructureHandler.CreateAction)
		admin.DELETE("/actions/:id", cfg.StructureHandler.DeleteAction)
	}

	if cfg.MediaHandler != nil {
		admin.POST("/locations/:id/media", cfg.MediaHandler.Upload)
		admin.GET("/locations/:id/media", cfg.MediaHandler.ListByLocation)
		admin.GET("/media/stats", cfg.MediaHandler.Stats)
		admin.GET("/media/:id", cfg.MediaHandler.GetMedia)
		admin.POST("/media/:id/detect-faces", cfg.MediaHandler.DetectFaces)
		admin.POST("/media/process-face-detection", cfg.MediaHandler.ProcessFaceDetection)
		admin.POST("/media/process-labeling", cfg.MediaHandler.ProcessLabeling)
		admin.POST("/media/:id/blur", cfg.MediaHandler.RequestBlur)
		admin.POST("/media/:id/blur-review", cfg.MediaHandler.BlurReview)
		admin.POST("/media/:id/training-review", cfg.MediaHandler.TrainingReview)
		admin.POST("/media/:id/reset", cfg.MediaHandler.ResetTrack)
	}

	if cfg.MomentHandler != nil {
		admin.POST("/moments", cfg.MomentHandler.Create)
		admin.GET("/moments", cfg.MomentHandler.List)
		admin.GET("/moments/:id", cfg.MomentHandler.Get)
		admin.PATCH("/moments/:id", cfg.MomentHandler.Update)
		admin.DELETE("/moments/:id", cfg.MomentHandler.Delete)
		admin.POST("/moments/generate", cfg.MomentHandler.Generate)
		admin.POST("/moments/:id/media", cfg.MomentHandler.LinkMedia)
		admin.DELETE("/moments/:id/media/:mediaId", cfg.MomentHandler.UnlinkMedia)
		admin.PUT("/locations/:id/preferences/:momentId", cfg.MomentHandler.SetPreference)
		admin.DELETE("/locations/:id/preferences/:momentId", cfg.MomentHandler.DeletePreference)
	}

	if cfg.DeliveryHandler != nil {
		admin.POST("/deliveries", cfg.DeliveryHandler.Create)
		admin.GET("/deliveries", cfg.DeliveryHandler.List)
		admin.GET("/deliveries/:id", cfg.DeliveryHandler.Get)
	}

	return r
}
