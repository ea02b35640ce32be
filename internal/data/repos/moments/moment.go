package moments

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// QueryFilters are the typed predicates the robot query engine binds as
// SQL parameters. Zero values mean "no filter".
type QueryFilters struct {
	OrganizationID uuid.UUID
	LocationID     uuid.UUID
	TaskID         uuid.UUID
	TaskTitle      string
	MomentType     types.MomentType
	RoomLocation   string
	ActionVerb     string
	Keywords       []string
	Tags           []string
	VerifiedOnly   bool
	MinConfidence  *float64
	Limit          int
}

type MomentRepo interface {
	Create(dbc dbctx.Context, moments []*types.Moment) ([]*types.Moment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Moment, error)
	ListByTask(dbc dbctx.Context, taskID uuid.UUID) ([]*types.Moment, error)
	MaxSequenceByTask(dbc dbctx.Context, taskID uuid.UUID) (int, error)
	ExistingTitlesByTask(dbc dbctx.Context, taskID uuid.UUID) (map[string]bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error

	Query(dbc dbctx.Context, f QueryFilters) ([]*types.Moment, error)

	LinkMedia(dbc dbctx.Context, links []*types.MomentMedia) error
	UnlinkMedia(dbc dbctx.Context, momentID, mediaID uuid.UUID) error
	MediaLinksByMomentIDs(dbc dbctx.Context, momentIDs []uuid.UUID) ([]*types.MomentMedia, error)
}

type momentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMomentRepo(db *gorm.DB, baseLog *logger.Logger) MomentRepo {
	return &momentRepo{
		db:  db,
		log: baseLog.With("repo", "MomentRepo"),
	}
}

func (r *momentRepo) Create(dbc dbctx.Context, moments []*types.Moment) ([]*types.Moment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(moments) == 0 {
		return []*types.Moment{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&moments).Error; err != nil {
		return nil, err
	}
	return moments, nil
}

func (r *momentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Moment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var m types.Moment
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *momentRepo) ListByTask(dbc dbctx.Context, taskID uuid.UUID) ([]*types.Moment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Moment
	if err := transaction.WithContext(dbc.Ctx).
		Where("task_id = ?", taskID).
		Order("sequence_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MaxSequenceByTask returns the highest sequence_order a task has ever
// held, 0 when the task has no moments. Sequence numbers are never
// reused, so new moments start one past this even after deletions.
func (r *momentRepo) MaxSequenceByTask(dbc dbctx.Context, taskID uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var max int
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Moment{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(MAX(sequence_order), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *momentRepo) ExistingTitlesByTask(dbc dbctx.Context, taskID uuid.UUID) (map[string]bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var titles []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Moment{}).
		Where("task_id = ?", taskID).
		Pluck("title", &titles).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(titles))
	for _, t := range titles {
		out[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return out, nil
}

func (r *momentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Moment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *momentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("moment_id = ?", id).Delete(&types.MomentMedia{}).Error; err != nil {
			return err
		}
		if err := txx.Where("moment_id = ?", id).Delete(&types.LocationPreference{}).Error; err != nil {
			return err
		}
		return txx.Where("id = ?", id).Delete(&types.Moment{}).Error
	})
}

// Query builds the moment scan from typed predicates only; every filter
// value travels as a bound parameter. Keyword overlap uses the jsonb
// existence operator through its function form so the driver placeholder
// survives GORM's rewriting.
func (r *momentRepo) Query(dbc dbctx.Context, f QueryFilters) ([]*types.Moment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Moment{})

	if f.OrganizationID != uuid.Nil {
		q = q.Where("organization_id = ?", f.OrganizationID)
	}
	if f.LocationID != uuid.Nil {
		q = q.Where("location_id = ?", f.LocationID)
	}
	if f.TaskID != uuid.Nil {
		q = q.Where("task_id = ?", f.TaskID)
	}
	if strings.TrimSpace(f.TaskTitle) != "" {
		q = q.Where("task_id IN (SELECT id FROM tasks WHERE title ILIKE ?)",
			"%"+strings.TrimSpace(f.TaskTitle)+"%")
	}
	if f.MomentType != "" {
		q = q.Where("moment_type = ?", f.MomentType)
	}
	if strings.TrimSpace(f.RoomLocation) != "" {
		q = q.Where("LOWER(room_location) = LOWER(?)", strings.TrimSpace(f.RoomLocation))
	}
	if strings.TrimSpace(f.ActionVerb) != "" {
		q = q.Where("LOWER(action_verb) = LOWER(?)", strings.TrimSpace(f.ActionVerb))
	}
	if len(f.Keywords) > 0 {
		kws := make([]string, 0, len(f.Keywords))
		for _, k := range f.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				kws = append(kws, k)
			}
		}
		if len(kws) > 0 {
			q = q.Where("jsonb_exists_any(keywords, ARRAY[?]::text[])", kws)
		}
	}
	if len(f.Tags) > 0 {
		tags := make([]string, 0, len(f.Tags))
		for _, t := range f.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				tags = append(tags, t)
			}
		}
		if len(tags) > 0 {
			q = q.Where("jsonb_exists_any(tags, ARRAY[?]::text[])", tags)
		}
	}
	if f.VerifiedOnly {
		q = q.Where("human_verified = ?", true)
	}
	if f.MinConfidence != nil {
		q = q.Where("confidence_score >= ?", *f.MinConfidence)
	}

	limit := clampLimit(f.Limit)

	var out []*types.Moment
	if err := q.Order("sequence_order ASC, created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 500
)

// clampLimit applies the default for unset limits and caps oversized
// ones rather than resetting them.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}

func (r *momentRepo) LinkMedia(dbc dbctx.Context, links []*types.MomentMedia) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(links) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).Create(&links).Error
}

func (r *momentRepo) UnlinkMedia(dbc dbctx.Context, momentID, mediaID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("moment_id = ? AND media_id = ?", momentID, mediaID).
		Delete(&types.MomentMedia{}).Error
}

func (r *momentRepo) MediaLinksByMomentIDs(dbc dbctx.Context, momentIDs []uuid.UUID) ([]*types.MomentMedia, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MomentMedia
	if len(momentIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("moment_id IN ?", momentIDs).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
