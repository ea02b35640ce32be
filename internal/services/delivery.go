package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// DeliveryService records handoffs of training-ready footage to robotics
// partners. A delivery only admits media that passed the export gate:
// approved for training, and either face-free or blurred with the blur
// reviewed and approved. Records are append-only.
type DeliveryService interface {
	CreateDelivery(ctx context.Context, in CreateDeliveryInput) (*types.Delivery, error)
	GetDelivery(ctx context.Context, id uuid.UUID) (*types.Delivery, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*types.Delivery, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]*types.Delivery, error)
}

type CreateDeliveryInput struct {
	OrganizationID uuid.UUID
	PartnerID      uuid.UUID
	MediaIDs       []uuid.UUID
	Notes          string
	CreatedBy      uuid.UUID
}

type deliveryService struct {
	db           *gorm.DB
	log          *logger.Logger
	deliveryRepo repos.DeliveryRepo
	mediaRepo    repos.MediaRepo
}

func NewDeliveryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	deliveryRepo repos.DeliveryRepo,
	mediaRepo repos.MediaRepo,
) DeliveryService {
	return &deliveryService{
		db:           db,
		log:          baseLog.With("service", "DeliveryService"),
		deliveryRepo: deliveryRepo,
		mediaRepo:    mediaRepo,
	}
}

func (s *deliveryService) CreateDelivery(ctx context.Context, in CreateDeliveryInput) (*types.Delivery, error) {
	mediaIDs := dedupeIDs(in.MediaIDs)
	if len(mediaIDs) == 0 {
		return nil, apierr.Validation("media_ids_required", fmt.Errorf("delivery requires at least one media id"))
	}

	dbc := dbctx.Context{Ctx: ctx}
	exportable, err := s.mediaRepo.ListExportable(dbc, in.OrganizationID, mediaIDs)
	if err != nil {
		return nil, err
	}
	exportableSet := make(map[uuid.UUID]*types.MediaAsset, len(exportable))
	for _, a := range exportable {
		exportableSet[a.ID] = a
	}

	var blocked []string
	for _, id := range mediaIDs {
		if exportableSet[id] == nil {
			blocked = append(blocked, id.String())
		}
	}
	if len(blocked) > 0 {
		return nil, apierr.Conflict("media_not_exportable",
			fmt.Errorf("media not cleared for delivery: %v", blocked))
	}

	var totalSize int64
	var totalDuration int
	for _, a := range exportable {
		totalSize += a.SizeBytes
		if a.DurationSeconds != nil {
			totalDuration += *a.DurationSeconds
		}
	}

	idsJSON, err := json.Marshal(mediaIDs)
	if err != nil {
		return nil, apierr.Internal("marshal_media_ids", err)
	}

	delivery := &types.Delivery{
		OrganizationID:       in.OrganizationID,
		PartnerID:            in.PartnerID,
		MediaIDs:             idsJSON,
		VideoCount:           len(mediaIDs),
		TotalSizeBytes:       totalSize,
		TotalDurationSeconds: totalDuration,
		Notes:                in.Notes,
		CreatedBy:            in.CreatedBy,
	}
	if _, err := s.deliveryRepo.Create(dbc, delivery); err != nil {
		return nil, err
	}

	s.log.Info("delivery recorded",
		"delivery_id", delivery.ID,
		"partner_id", delivery.PartnerID,
		"video_count", delivery.VideoCount,
		"total_size_bytes", delivery.TotalSizeBytes,
	)
	return delivery, nil
}

// dedupeIDs drops repeated ids while keeping first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *deliveryService) GetDelivery(ctx context.Context, id uuid.UUID) (*types.Delivery, error) {
	dbc := dbctx.Context{Ctx: ctx}
	delivery, err := s.deliveryRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, apierr.NotFound("delivery_not_found", fmt.Errorf("delivery %s not found", id))
	}
	return delivery, nil
}

func (s *deliveryService) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*types.Delivery, error) {
	return s.deliveryRepo.ListByOrganization(dbctx.Context{Ctx: ctx}, orgID)
}

func (s *deliveryService) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]*types.Delivery, error) {
	return s.deliveryRepo.ListByPartner(dbctx.Context{Ctx: ctx}, partnerID)
}
