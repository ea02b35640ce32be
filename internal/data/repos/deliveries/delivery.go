package deliveries

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// DeliveryRepo is append-only: export batches are a historical record
// and are never updated after creation.
type DeliveryRepo interface {
	Create(dbc dbctx.Context, delivery *types.Delivery) (*types.Delivery, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Delivery, error)
	ListByOrganization(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Delivery, error)
	ListByPartner(dbc dbctx.Context, partnerID uuid.UUID) ([]*types.Delivery, error)
}

type deliveryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeliveryRepo(db *gorm.DB, baseLog *logger.Logger) DeliveryRepo {
	return &deliveryRepo{
		db:  db,
		log: baseLog.With("repo", "DeliveryRepo"),
	}
}

func (r *deliveryRepo) Create(dbc dbctx.Context, delivery *types.Delivery) (*types.Delivery, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(delivery).Error; err != nil {
		return nil, err
	}
	return delivery, nil
}

func (r *deliveryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Delivery, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var d types.Delivery
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deliveryRepo) ListByOrganization(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Delivery, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Delivery
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *deliveryRepo) ListByPartner(dbc dbctx.Context, partnerID uuid.UUID) ([]*types.Delivery, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Delivery
	if err := transaction.WithContext(dbc.Ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
