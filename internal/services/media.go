package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/gcp"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// MediaService owns the media asset lifecycle outside the processing
// workers: ingest, lookup, listings, operator track resets, and the
// pipeline stats rollup.
type MediaService interface {
	Upload(ctx context.Context, in UploadInput) (*types.MediaAsset, error)
	GetMedia(ctx context.Context, id uuid.UUID) (*types.MediaAsset, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID, f repos.MediaListFilters) ([]*types.MediaAsset, error)
	ResetTrack(ctx context.Context, mediaID uuid.UUID, track string) (*types.MediaAsset, error)
	Stats(ctx context.Context, orgID uuid.UUID) (*repos.MediaStatusCounts, error)
}

type UploadInput struct {
	OrganizationID uuid.UUID
	LocationID     uuid.UUID
	UploaderID     uuid.UUID
	FileName       string
	MimeType       string
	SizeBytes      int64
	Body           io.Reader
}

type mediaService struct {
	db        *gorm.DB
	log       *logger.Logger
	mediaRepo repos.MediaRepo
	bucket    gcp.BucketService
}

func NewMediaService(
	db *gorm.DB,
	baseLog *logger.Logger,
	mediaRepo repos.MediaRepo,
	bucket gcp.BucketService,
) MediaService {
	return &mediaService{
		db:        db,
		log:       baseLog.With("service", "MediaService"),
		mediaRepo: mediaRepo,
		bucket:    bucket,
	}
}

// Upload streams the video into the bucket and records the asset with all
// four processing tracks at their initial status.
func (s *mediaService) Upload(ctx context.Context, in UploadInput) (*types.MediaAsset, error) {
	if in.FileName == "" || in.Body == nil {
		return nil, apierr.Validation("file_required", fmt.Errorf("upload requires a file"))
	}
	if !strings.HasPrefix(in.MimeType, "video/") {
		return nil, apierr.Validation("unsupported_media_type",
			fmt.Errorf("unsupported mime type %q", in.MimeType))
	}

	key := storageKeyFor(in.LocationID, in.FileName)
	if err := s.bucket.UploadFile(ctx, key, in.Body); err != nil {
		return nil, apierr.Internal("upload_failed", err)
	}

	asset := &types.MediaAsset{
		OrganizationID: in.OrganizationID,
		LocationID:     in.LocationID,
		UploaderID:     in.UploaderID,
		FileName:       in.FileName,
		MimeType:       in.MimeType,
		MediaType:      "video",
		StorageKey:     key,
		StorageURL:     s.bucket.GetPublicURL(key),
		SizeBytes:      in.SizeBytes,
		UploadedAt:     time.Now(),
	}
	created, err := s.mediaRepo.Create(dbctx.Context{Ctx: ctx}, []*types.MediaAsset{asset})
	if err != nil {
		// the record is the source of truth; an orphaned object is
		// harmless and cheaper than a record without bytes
		if delErr := s.bucket.DeleteFile(ctx, key); delErr != nil {
			s.log.Warn("cleanup of orphaned upload failed", "storage_key", key, "error", delErr)
		}
		return nil, err
	}
	s.log.Info("media uploaded",
		"media_id", created[0].ID,
		"location_id", in.LocationID,
		"size_bytes", in.SizeBytes,
	)
	return created[0], nil
}

func (s *mediaService) GetMedia(ctx context.Context, id uuid.UUID) (*types.MediaAsset, error) {
	asset, err := s.mediaRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.NotFound("media_not_found", fmt.Errorf("media %s not found", id))
	}
	return asset, nil
}

func (s *mediaService) ListByLocation(ctx context.Context, locationID uuid.UUID, f repos.MediaListFilters) ([]*types.MediaAsset, error) {
	return s.mediaRepo.ListByLocation(dbctx.Context{Ctx: ctx}, locationID, f)
}

// ResetTrack moves a failed track back to its initial status so workers
// pick the asset up again. Only failed tracks reset; anything else is a
// conflict.
func (s *mediaService) ResetTrack(ctx context.Context, mediaID uuid.UUID, track string) (*types.MediaAsset, error) {
	dbc := dbctx.Context{Ctx: ctx}
	asset, err := s.mediaRepo.GetByID(dbc, mediaID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.NotFound("media_not_found", fmt.Errorf("media %s not found", mediaID))
	}

	var reset bool
	switch track {
	case "face_detection":
		reset, err = s.mediaRepo.ResetFaceTrack(dbc, mediaID)
	case "ai_labeling":
		reset, err = s.mediaRepo.ResetAITrack(dbc, mediaID)
	default:
		return nil, apierr.Validation("unknown_track", fmt.Errorf("unknown track %q", track))
	}
	if err != nil {
		return nil, err
	}
	if !reset {
		return nil, apierr.Conflict("track_not_resettable",
			fmt.Errorf("%s track for %s is not in a failed state", track, mediaID))
	}
	return s.mediaRepo.GetByID(dbc, mediaID)
}

func (s *mediaService) Stats(ctx context.Context, orgID uuid.UUID) (*repos.MediaStatusCounts, error) {
	return s.mediaRepo.CountByStatus(dbctx.Context{Ctx: ctx}, orgID)
}

func storageKeyFor(locationID uuid.UUID, fileName string) string {
	base := path.Base(fileName)
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("media/%s/%s_%s", locationID, uuid.NewString(), base)
}
