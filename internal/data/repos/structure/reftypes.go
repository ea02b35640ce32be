package structure

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// RefTypeRepo serves the shared vocabulary tables (room, target, and
// action types). These are read-mostly seed data.
type RefTypeRepo interface {
	ListRoomTypes(dbc dbctx.Context) ([]*types.RoomType, error)
	ListTargetTypes(dbc dbctx.Context) ([]*types.TargetType, error)
	ListActionTypes(dbc dbctx.Context) ([]*types.ActionType, error)
	GetRoomTypesByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*types.RoomType, error)
	GetTargetTypesByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*types.TargetType, error)
	GetActionTypesByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*types.ActionType, error)
}

type refTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRefTypeRepo(db *gorm.DB, baseLog *logger.Logger) RefTypeRepo {
	return &refTypeRepo{
		db:  db,
		log: baseLog.With("repo", "RefTypeRepo"),
	}
}

func (r *refTypeRepo) ListRoomTypes(dbc dbctx.Context) ([]*types.RoomType, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RoomType
	if err := transaction.WithContext(dbc.Ctx).
		Order("display_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *refTypeRepo) ListTargetTypes(dbc dbctx.Context) ([]*types.TargetType, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TargetType
	if err := transaction.WithContext(dbc.Ctx).
		Order("display_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *refTypeRepo) ListActionTypes(dbc dbctx.Context) ([]*types.ActionType, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ActionType
	if err := transaction.WithContext(dbc.Ctx).
		Order("display_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *refTypeRepo) GetRoomTypesByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*types.RoomType, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uuid.UUID]*types.RoomType{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*types.RoomType
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *refTypeRepo) GetTargetTypesByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*types.TargetType, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uuid.UUID]*types.TargetType{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*types.TargetType
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *refTypeRepo) GetActionTypesByIDs(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*types.ActionType, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uuid.UUID]*types.ActionType{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*types.ActionType
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}
