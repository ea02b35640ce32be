package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// ReviewService owns the training-approval gate. Approval is a human
// decision over the processed footage; only approved videos (with a
// settled blur track) ever leave the building in an export.
type ReviewService interface {
	SetTrainingStatus(ctx context.Context, mediaID uuid.UUID, to types.TrainingStatus, reviewerID uuid.UUID) (*types.MediaAsset, error)
}

type reviewService struct {
	db        *gorm.DB
	log       *logger.Logger
	mediaRepo repos.MediaRepo
}

func NewReviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	mediaRepo repos.MediaRepo,
) ReviewService {
	return &reviewService{
		db:        db,
		log:       baseLog.With("service", "ReviewService"),
		mediaRepo: mediaRepo,
	}
}

func (s *reviewService) SetTrainingStatus(ctx context.Context, mediaID uuid.UUID, to types.TrainingStatus, reviewerID uuid.UUID) (*types.MediaAsset, error) {
	dbc := dbctx.Context{Ctx: ctx}

	asset, err := s.mediaRepo.GetByID(dbc, mediaID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.NotFound("media_not_found", fmt.Errorf("media %s not found", mediaID))
	}

	from := asset.TrainingStatus
	if !types.CanTransitionTraining(from, to) {
		return nil, apierr.Conflict("invalid_training_transition",
			fmt.Errorf("training status %s cannot move to %s", from, to))
	}
	if to == types.TrainingApproved && !asset.BlurSettled() {
		return nil, apierr.Conflict("blur_not_settled",
			fmt.Errorf("media %s cannot be approved before its blur track settles", mediaID))
	}

	ok, err := s.mediaRepo.SetTrainingStatus(dbc, mediaID, from, to, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.Conflict("training_status_changed",
			fmt.Errorf("media %s training status changed concurrently", mediaID))
	}

	s.log.Info("training status updated",
		"media_id", mediaID,
		"from", from,
		"to", to,
	)
	return s.mediaRepo.GetByID(dbc, mediaID)
}
