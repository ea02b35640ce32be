package app

import (
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/jobs"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
	"github.com/roomloop/roomloop-backend/internal/services"
)

type Services struct {
	Media      services.MediaService
	FaceDetect services.FaceDetectionService
	Labeling   services.LabelingService
	Blur       services.BlurService
	Review     services.ReviewService
	Structure  services.StructureService
	Moments    services.MomentService
	Compiler   services.CompilerService
	RobotQuery services.RobotQueryService
	Delivery   services.DeliveryService

	PipelineWorker *jobs.PipelineWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")

	faceDetect := services.NewFaceDetectionService(db, log, r.Media, c.GcpVideo)
	labeling := services.NewLabelingService(db, log, r.Media, c.GcpVideo)

	svc := Services{
		Media:      services.NewMediaService(db, log, r.Media, c.GcpBucket),
		FaceDetect: faceDetect,
		Labeling:   labeling,
		Blur:       services.NewBlurService(db, log, r.Media, c.Blur, c.GcpBucket),
		Review:     services.NewReviewService(db, log, r.Media),
		Structure:  services.NewStructureService(db, log, r.Floor, r.Room, r.Target, r.Action, r.RefType, c.Cache),
		Moments:    services.NewMomentService(db, log, r.Moment, r.Media, r.Preference),
		Compiler:   services.NewCompilerService(db, log, r.Task, r.Moment),
		RobotQuery: services.NewRobotQueryService(db, log, r.Moment, r.Media, r.Preference, r.Location, r.Task),
		Delivery:   services.NewDeliveryService(db, log, r.Delivery, r.Media),
	}
	svc.PipelineWorker = jobs.NewPipelineWorker(log, faceDetect, labeling)
	return svc, nil
}
