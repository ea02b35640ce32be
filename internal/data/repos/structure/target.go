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

type TargetRepo interface {
	Create(dbc dbctx.Context, target *types.Target) (*types.Target, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Target, error)
	ListByRoomIDs(dbc dbctx.Context, roomIDs []uuid.UUID) ([]*types.Target, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type targetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTargetRepo(db *gorm.DB, baseLog *logger.Logger) TargetRepo {
	return &targetRepo{
		db:  db,
		log: baseLog.With("repo", "TargetRepo"),
	}
}

func (r *targetRepo) Create(dbc dbctx.Context, target *types.Target) (*types.Target, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(target).Error; err != nil {
		return nil, err
	}
	return target, nil
}

func (r *targetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Target, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var t types.Target
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *targetRepo) ListByRoomIDs(dbc dbctx.Context, roomIDs []uuid.UUID) ([]*types.Target, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Target
	if len(roomIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("room_id IN ?", roomIDs).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *targetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Target{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *targetRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("target_id = ?", id).Delete(&types.Action{}).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", id).Delete(&types.Target{}).Error
	})
}
