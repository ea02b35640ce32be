package moments

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type PreferenceRepo interface {
	Upsert(dbc dbctx.Context, pref *types.LocationPreference) (*types.LocationPreference, error)
	Get(dbc dbctx.Context, locationID, momentID uuid.UUID) (*types.LocationPreference, error)
	GetForMoments(dbc dbctx.Context, locationID uuid.UUID, momentIDs []uuid.UUID) (map[uuid.UUID]*types.LocationPreference, error)
	ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.LocationPreference, error)
	Delete(dbc dbctx.Context, locationID, momentID uuid.UUID) (bool, error)
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{
		db:  db,
		log: baseLog.With("repo", "PreferenceRepo"),
	}
}

// Upsert keeps the single-row-per-(location,moment) invariant without a
// read-modify-write window: concurrent writers collapse onto the unique
// index and last write wins.
func (r *preferenceRepo) Upsert(dbc dbctx.Context, pref *types.LocationPreference) (*types.LocationPreference, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	pref.UpdatedAt = now
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "location_id"}, {Name: "moment_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"custom_instruction": pref.CustomInstruction,
				"created_by":         pref.CreatedBy,
				"updated_at":         now,
			}),
		}).
		Create(pref).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, pref.LocationID, pref.MomentID)
}

func (r *preferenceRepo) Get(dbc dbctx.Context, locationID, momentID uuid.UUID) (*types.LocationPreference, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var pref types.LocationPreference
	err := transaction.WithContext(dbc.Ctx).
		Where("location_id = ? AND moment_id = ?", locationID, momentID).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepo) GetForMoments(dbc dbctx.Context, locationID uuid.UUID, momentIDs []uuid.UUID) (map[uuid.UUID]*types.LocationPreference, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uuid.UUID]*types.LocationPreference{}
	if locationID == uuid.Nil || len(momentIDs) == 0 {
		return out, nil
	}
	var prefs []*types.LocationPreference
	if err := transaction.WithContext(dbc.Ctx).
		Where("location_id = ? AND moment_id IN ?", locationID, momentIDs).
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	for _, p := range prefs {
		out[p.MomentID] = p
	}
	return out, nil
}

func (r *preferenceRepo) ListByLocation(dbc dbctx.Context, locationID uuid.UUID) ([]*types.LocationPreference, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LocationPreference
	if err := transaction.WithContext(dbc.Ctx).
		Where("location_id = ?", locationID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *preferenceRepo) Delete(dbc dbctx.Context, locationID, momentID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("location_id = ? AND moment_id = ?", locationID, momentID).
		Delete(&types.LocationPreference{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
