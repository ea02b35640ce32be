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

type RoomRepo interface {
	Create(dbc dbctx.Context, room *types.Room) (*types.Room, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Room, error)
	ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Room, error)
	ListWithoutFloor(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Room, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	CountByLocation(dbc dbctx.Context, locationID uuid.UUID) (int64, error)
}

type roomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoomRepo(db *gorm.DB, baseLog *logger.Logger) RoomRepo {
	return &roomRepo{
		db:  db,
		log: baseLog.With("repo", "RoomRepo"),
	}
}

func (r *roomRepo) Create(dbc dbctx.Context, room *types.Room) (*types.Room, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Room, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var room types.Room
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Room, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Room
	if err := transaction.WithContext(dbc.Ctx).
		Where("location_id = ?", locationID).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roomRepo) ListWithoutFloor(dbc dbctx.Context, locationID uuid.UUID) ([]*types.Room, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Room
	if err := transaction.WithContext(dbc.Ctx).
		Where("location_id = ? AND floor_id IS NULL", locationID).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *roomRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Room{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the room and everything hanging off it: targets and
// their actions go in the same transaction.
func (r *roomRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var targetIDs []uuid.UUID
		if err := txx.Model(&types.Target{}).
			Where("room_id = ?", id).
			Pluck("id", &targetIDs).Error; err != nil {
			return err
		}
		if len(targetIDs) > 0 {
			if err := txx.Where("target_id IN ?", targetIDs).Delete(&types.Action{}).Error; err != nil {
				return err
			}
			if err := txx.Where("id IN ?", targetIDs).Delete(&types.Target{}).Error; err != nil {
				return err
			}
		}
		return txx.Where("id = ?", id).Delete(&types.Room{}).Error
	})
}

func (r *roomRepo) CountByLocation(dbc dbctx.Context, locationID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Room{}).
		Where("location_id = ?", locationID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
