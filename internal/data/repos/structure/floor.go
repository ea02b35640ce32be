package structure

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// ErrFloorNotEmpty is returned when a floor delete is attempted while
// rooms are still assigned to it.
var ErrFloorNotEmpty = errors.New("floor still has rooms assigned")

type FloorRepo interface {
	Create(dbc dbctx.Context, floor *types.Floor) (*types.Floor, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Floor, error)
	ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Floor, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type floorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFloorRepo(db *gorm.DB, baseLog *logger.Logger) FloorRepo {
	return &floorRepo{
		db:  db,
		log: baseLog.With("repo", "FloorRepo"),
	}
}

func (r *floorRepo) Create(dbc dbctx.Context, floor *types.Floor) (*types.Floor, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(floor).Error; err != nil {
		return nil, err
	}
	return floor, nil
}

func (r *floorRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Floor, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var f types.Floor
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *floorRepo) ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Floor, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Floor
	if err := transaction.WithContext(dbc.Ctx).
		Where("location_id = ?", locationID).
		Order("sort_order ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *floorRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Floor{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete rejects the delete outright while rooms still reference the
// floor. The room count and the delete run in one transaction so a
// concurrent room assignment cannot slip between them.
func (r *floorRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var roomCount int64
		if err := txx.Model(&types.Room{}).
			Where("floor_id = ?", id).
			Count(&roomCount).Error; err != nil {
			return err
		}
		if roomCount > 0 {
			return ErrFloorNotEmpty
		}
		return txx.Where("id = ?", id).Delete(&types.Floor{}).Error
	})
}
