package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/clients/blur"
	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/gcp"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// BlurService drives the blur track. Any asset not proven faceless is
// blurrable; the actual pixel work happens in the external blur service,
// and this side owns claims, result recording, and the human review gate
// over the blurred cut.
type BlurService interface {
	RequestBlur(ctx context.Context, mediaID uuid.UUID) error
	ApproveReview(ctx context.Context, mediaID uuid.UUID) error
	RejectReview(ctx context.Context, mediaID uuid.UUID) error
}

type blurService struct {
	db         *gorm.DB
	log        *logger.Logger
	mediaRepo  repos.MediaRepo
	blurClient blur.Client
	bucket     gcp.BucketService
}

func NewBlurService(
	db *gorm.DB,
	baseLog *logger.Logger,
	mediaRepo repos.MediaRepo,
	blurClient blur.Client,
	bucket gcp.BucketService,
) BlurService {
	return &blurService{
		db:         db,
		log:        baseLog.With("service", "BlurService"),
		mediaRepo:  mediaRepo,
		blurClient: blurClient,
		bucket:     bucket,
	}
}

func (s *blurService) RequestBlur(ctx context.Context, mediaID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	log := s.log.With("media_id", mediaID)

	asset, err := s.mediaRepo.GetByID(dbc, mediaID)
	if err != nil {
		return err
	}
	if asset == nil {
		return apierr.NotFound("media_not_found", fmt.Errorf("media %s not found", mediaID))
	}
	// an asset is only out of scope once detection has proven it faceless;
	// pending or processing detection blurs conservatively (empty face
	// list means the processor does a full-copy pass)
	if asset.FaceDetectionStatus == types.FaceDetectionCompleted && !asset.HasFaces {
		return apierr.Conflict("no_faces_detected", fmt.Errorf("media %s has no faces to blur", mediaID))
	}

	claimed, err := s.mediaRepo.ClaimForBlur(dbc, mediaID)
	if err != nil {
		return err
	}
	if !claimed {
		return apierr.Conflict("blur_already_in_progress",
			fmt.Errorf("media %s blur already claimed or settled", mediaID))
	}

	var faces []types.FaceTimestamp
	if len(asset.FaceTimestamps) > 0 {
		if err := json.Unmarshal(asset.FaceTimestamps, &faces); err != nil {
			msg := "decode face timestamps: " + err.Error()
			log.Error("blur request aborted", "error", msg)
			if dbErr := s.mediaRepo.FailBlur(dbc, mediaID, msg); dbErr != nil {
				log.Error("record blur failure", "error", dbErr)
			}
			return apierr.Internal("blur_failed", err)
		}
	}

	outputKey := blurredKeyFor(asset.StorageKey)
	resp, err := s.blurClient.BlurVideo(ctx, blur.Request{
		SourcePath: asset.StorageKey,
		OutputPath: outputKey,
		Faces:      faces,
		Bucket:     s.bucket.BucketName(),
	})
	if err != nil {
		log.Error("blur service failed", "error", err)
		if dbErr := s.mediaRepo.FailBlur(dbc, mediaID, err.Error()); dbErr != nil {
			log.Error("record blur failure", "error", dbErr)
		}
		return apierr.Internal("blur_failed", err)
	}

	blurredURL := resp.URL
	if blurredURL == "" {
		blurredURL = s.bucket.GetPublicURL(resp.OutputPath)
	}
	if err := s.mediaRepo.CompleteBlur(dbc, mediaID, resp.OutputPath, blurredURL); err != nil {
		log.Error("record blur result", "error", err)
		return err
	}
	log.Info("blur completed", "output_key", resp.OutputPath)
	return nil
}

func (s *blurService) ApproveReview(ctx context.Context, mediaID uuid.UUID) error {
	ok, err := s.mediaRepo.ApproveBlurReview(dbctx.Context{Ctx: ctx}, mediaID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.Conflict("blur_not_reviewable",
			fmt.Errorf("media %s has no completed blur awaiting review", mediaID))
	}
	return nil
}

// RejectReview throws the blurred cut away entirely; the asset drops
// back to the start of the blur track for another pass.
func (s *blurService) RejectReview(ctx context.Context, mediaID uuid.UUID) error {
	ok, err := s.mediaRepo.RejectBlurReview(dbctx.Context{Ctx: ctx}, mediaID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.Conflict("blur_not_reviewable",
			fmt.Errorf("media %s has no completed blur awaiting review", mediaID))
	}
	return nil
}

func blurredKeyFor(storageKey string) string {
	dir := path.Dir(storageKey)
	base := path.Base(storageKey)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if dir == "." || dir == "/" {
		return fmt.Sprintf("blurred/%s_blurred%s", name, ext)
	}
	return fmt.Sprintf("%s/blurred/%s_blurred%s", dir, name, ext)
}
