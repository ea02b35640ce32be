package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/envutil"
	"github.com/roomloop/roomloop-backend/internal/platform/gcp"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// FaceDetectionService drains the face-detection track: it claims
// pending videos in small batches, runs the annotation API against the
// gs:// form of each video, and records windows where faces appear.
type FaceDetectionService interface {
	ProcessBatch(ctx context.Context) (int, error)
	DetectOne(ctx context.Context, mediaID uuid.UUID) (*types.MediaAsset, error)
}

type faceDetectionService struct {
	db         *gorm.DB
	log        *logger.Logger
	mediaRepo  repos.MediaRepo
	video      gcp.Video
	batchSize  int
	staleAfter time.Duration
}

func NewFaceDetectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	mediaRepo repos.MediaRepo,
	video gcp.Video,
) FaceDetectionService {
	return &faceDetectionService{
		db:         db,
		log:        baseLog.With("service", "FaceDetectionService"),
		mediaRepo:  mediaRepo,
		video:      video,
		batchSize:  envutil.Int("FACE_DETECTION_BATCH_SIZE", 5),
		staleAfter: envutil.Duration("PROCESSING_STALE_AFTER", 30*time.Minute),
	}
}

func (s *faceDetectionService) ProcessBatch(ctx context.Context) (int, error) {
	dbc := dbctx.Context{Ctx: ctx}
	claimed, err := s.mediaRepo.ClaimFacePending(dbc, s.batchSize, s.staleAfter)
	if err != nil {
		return 0, err
	}
	if len(claimed) == 0 {
		return 0, nil
	}
	s.log.Info("face detection batch claimed", "count", len(claimed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchSize)
	for _, asset := range claimed {
		asset := asset
		g.Go(func() error {
			s.processOne(gctx, asset)
			return nil
		})
	}
	_ = g.Wait()
	return len(claimed), nil
}

// processOne never returns an error: each asset settles its own outcome
// on the row so one bad video cannot wedge the batch.
func (s *faceDetectionService) processOne(ctx context.Context, asset *types.MediaAsset) {
	dbc := dbctx.Context{Ctx: ctx}
	log := s.log.With("media_id", asset.ID)

	gsURI, err := NormalizeToGSURI(asset.StorageURL)
	if err != nil {
		log.Warn("face detection skipped: unusable storage url", "error", err)
		if dbErr := s.mediaRepo.FailFaceDetection(dbc, asset.ID, err.Error()); dbErr != nil {
			log.Error("record face detection failure", "error", dbErr)
		}
		return
	}

	result, err := s.video.DetectFaces(ctx, gsURI)
	if err != nil {
		log.Error("face detection failed", "error", err)
		if dbErr := s.mediaRepo.FailFaceDetection(dbc, asset.ID, err.Error()); dbErr != nil {
			log.Error("record face detection failure", "error", dbErr)
		}
		return
	}

	raw, err := json.Marshal(result.Timestamps)
	if err != nil {
		log.Error("marshal face timestamps", "error", err)
		if dbErr := s.mediaRepo.FailFaceDetection(dbc, asset.ID, "encode face timestamps: "+err.Error()); dbErr != nil {
			log.Error("record face detection failure", "error", dbErr)
		}
		return
	}

	hasFaces := result.FaceCount > 0
	if err := s.mediaRepo.CompleteFaceDetection(dbc, asset.ID, hasFaces, result.FaceCount, datatypes.JSON(raw)); err != nil {
		log.Error("record face detection result", "error", err)
		return
	}
	log.Info("face detection completed", "face_count", result.FaceCount, "has_faces", hasFaces)
}

// DetectOne runs the face scan synchronously for a single asset, used by
// the on-demand admin endpoint. Claim rules match the batch path.
func (s *faceDetectionService) DetectOne(ctx context.Context, mediaID uuid.UUID) (*types.MediaAsset, error) {
	dbc := dbctx.Context{Ctx: ctx}
	asset, err := s.mediaRepo.GetByID(dbc, mediaID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.NotFound("media_not_found", fmt.Errorf("media %s not found", mediaID))
	}
	claimed, err := s.mediaRepo.ClaimFaceByID(dbc, mediaID, s.staleAfter)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apierr.Conflict("face_detection_not_claimable",
			fmt.Errorf("face detection for %s is %s", mediaID, asset.FaceDetectionStatus))
	}
	s.processOne(ctx, asset)
	return s.mediaRepo.GetByID(dbc, mediaID)
}
