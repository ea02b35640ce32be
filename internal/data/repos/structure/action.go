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

type ActionRepo interface {
	Create(dbc dbctx.Context, action *types.Action) (*types.Action, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Action, error)
	ListByTargetIDs(dbc dbctx.Context, targetIDs []uuid.UUID) ([]*types.Action, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type actionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionRepo(db *gorm.DB, baseLog *logger.Logger) ActionRepo {
	return &actionRepo{
		db:  db,
		log: baseLog.With("repo", "ActionRepo"),
	}
}

func (r *actionRepo) Create(dbc dbctx.Context, action *types.Action) (*types.Action, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(action).Error; err != nil {
		return nil, err
	}
	return action, nil
}

func (r *actionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Action, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var a types.Action
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *actionRepo) ListByTargetIDs(dbc dbctx.Context, targetIDs []uuid.UUID) ([]*types.Action, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Action
	if len(targetIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("target_id IN ?", targetIDs).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *actionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Action{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *actionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Action{}).Error
}
