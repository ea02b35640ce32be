package locations

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type LocationRepo interface {
	Create(dbc dbctx.Context, location *types.Location) (*types.Location, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Location, error)
	ListByOrganization(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Location, error)
}

type locationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) LocationRepo {
	return &locationRepo{
		db:  db,
		log: baseLog.With("repo", "LocationRepo"),
	}
}

func (r *locationRepo) Create(dbc dbctx.Context, location *types.Location) (*types.Location, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Location, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var loc types.Location
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) ListByOrganization(dbc dbctx.Context, orgID uuid.UUID) ([]*types.Location, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Location
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
