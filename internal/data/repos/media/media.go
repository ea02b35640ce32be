package media

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

var ErrStateConflict = errors.New("media status changed concurrently")

type StatusCounts struct {
	Total         int64 `json:"total"`
	FacePending   int64 `json:"face_pending"`
	FaceFailed    int64 `json:"face_failed"`
	BlurPending   int64 `json:"blur_pending"`
	AwaitingBlur  int64 `json:"awaiting_blur_review"`
	AIPending     int64 `json:"ai_pending"`
	AIFailed      int64 `json:"ai_failed"`
	TrainingReady int64 `json:"training_ready"`
}

// ListFilters narrows media listings by per-track status. Empty fields
// match everything.
type ListFilters struct {
	FaceStatus     string
	BlurStatus     string
	AIStatus       string
	TrainingStatus string
}

type MediaRepo interface {
	Create(dbc dbctx.Context, assets []*types.MediaAsset) ([]*types.MediaAsset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.MediaAsset, error)
	ListByLocation(dbc dbctx.Context, locationID uuid.UUID, f ListFilters) ([]*types.MediaAsset, error)
	ListByOrganization(dbc dbctx.Context, orgID uuid.UUID) ([]*types.MediaAsset, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error

	ClaimFacePending(dbc dbctx.Context, batch int, staleAfter time.Duration) ([]*types.MediaAsset, error)
	ClaimFaceByID(dbc dbctx.Context, id uuid.UUID, staleAfter time.Duration) (bool, error)
	CompleteFaceDetection(dbc dbctx.Context, id uuid.UUID, hasFaces bool, faceCount int, timestamps datatypes.JSON) error
	FailFaceDetection(dbc dbctx.Context, id uuid.UUID, detectErr string) error
	ResetFaceTrack(dbc dbctx.Context, id uuid.UUID) (bool, error)

	ClaimForBlur(dbc dbctx.Context, id uuid.UUID) (bool, error)
	CompleteBlur(dbc dbctx.Context, id uuid.UUID, blurredKey, blurredURL string) error
	FailBlur(dbc dbctx.Context, id uuid.UUID, blurErr string) error
	ApproveBlurReview(dbc dbctx.Context, id uuid.UUID) (bool, error)
	RejectBlurReview(dbc dbctx.Context, id uuid.UUID) (bool, error)

	ClaimAIPending(dbc dbctx.Context, batch int, staleAfter time.Duration) ([]*types.MediaAsset, error)
	CompleteAI(dbc dbctx.Context, id uuid.UUID, roomType string, actionTypes, objectLabels datatypes.JSON, quality float64, durationSeconds *int) error
	FailAI(dbc dbctx.Context, id uuid.UUID, aiErr string) error
	ResetAITrack(dbc dbctx.Context, id uuid.UUID) (bool, error)

	SetTrainingStatus(dbc dbctx.Context, id uuid.UUID, from, to types.TrainingStatus, reviewerID uuid.UUID) (bool, error)
	ListExportable(dbc dbctx.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*types.MediaAsset, error)
	CountByStatus(dbc dbctx.Context, orgID uuid.UUID) (*StatusCounts, error)
}

type mediaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaRepo(db *gorm.DB, baseLog *logger.Logger) MediaRepo {
	return &mediaRepo{
		db:  db,
		log: baseLog.With("repo", "MediaRepo"),
	}
}

func (r *mediaRepo) Create(dbc dbctx.Context, assets []*types.MediaAsset) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(assets) == 0 {
		return []*types.MediaAsset{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *mediaRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var asset types.MediaAsset
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *mediaRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MediaAsset
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) ListByLocation(dbc dbctx.Context, locationID uuid.UUID, f ListFilters) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("location_id = ?", locationID)
	if f.FaceStatus != "" {
		q = q.Where("face_detection_status = ?", f.FaceStatus)
	}
	if f.BlurStatus != "" {
		q = q.Where("blur_status = ?", f.BlurStatus)
	}
	if f.AIStatus != "" {
		q = q.Where("ai_status = ?", f.AIStatus)
	}
	if f.TrainingStatus != "" {
		q = q.Where("training_status = ?", f.TrainingStatus)
	}
	var out []*types.MediaAsset
	if err := q.Order("uploaded_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) ListByOrganization(dbc dbctx.Context, orgID uuid.UUID) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MediaAsset
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ?", orgID).
		Order("uploaded_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.MediaAsset{}).Error
}

// ClaimFacePending atomically moves up to batch assets from pending (or
// stale processing) to processing on the face track. SKIP LOCKED keeps
// concurrent workers from double-claiming.
func (r *mediaRepo) ClaimFacePending(dbc dbctx.Context, batch int, staleAfter time.Duration) ([]*types.MediaAsset, error) {
	return r.claimTrack(dbc, batch, staleAfter,
		"face_detection_status", "face_claimed_at",
		string(types.FaceDetectionPending), string(types.FaceDetectionProcessing))
}

// ClaimFaceByID claims a single asset for an on-demand face scan. Eligible
// when the track is pending, failed, or stuck in stale processing.
func (r *mediaRepo) ClaimFaceByID(dbc dbctx.Context, id uuid.UUID, staleAfter time.Duration) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	staleCutoff := now.Add(-staleAfter)
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where(`
      id = ?
      AND media_type = ?
      AND (
        face_detection_status IN ?
        OR (face_detection_status = ? AND (face_claimed_at IS NULL OR face_claimed_at < ?))
      )
    `, id, "video",
			[]string{string(types.FaceDetectionPending), string(types.FaceDetectionFailed)},
			string(types.FaceDetectionProcessing), staleCutoff).
		Updates(map[string]interface{}{
			"face_detection_status": types.FaceDetectionProcessing,
			"face_detection_error":  "",
			"face_claimed_at":       now,
			"updated_at":            now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClaimAIPending is the labeling-track twin of ClaimFacePending.
func (r *mediaRepo) ClaimAIPending(dbc dbctx.Context, batch int, staleAfter time.Duration) ([]*types.MediaAsset, error) {
	return r.claimTrack(dbc, batch, staleAfter,
		"ai_status", "ai_claimed_at",
		string(types.AIPending), string(types.AIProcessing))
}

func (r *mediaRepo) claimTrack(dbc dbctx.Context, batch int, staleAfter time.Duration, statusCol, claimCol, pending, processing string) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if batch <= 0 {
		batch = 1
	}
	now := time.Now()
	staleCutoff := now.Add(-staleAfter)

	var claimed []*types.MediaAsset
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var candidates []*types.MediaAsset
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          `+statusCol+` = ?
          OR (
            `+statusCol+` = ?
            AND (`+claimCol+` IS NULL OR `+claimCol+` < ?)
          )
        )
        AND media_type = ?
      `, pending, processing, staleCutoff, "video").
			Order("uploaded_at ASC").
			Limit(batch)
		if err := q.Find(&candidates).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID)
		}
		if err := txx.Model(&types.MediaAsset{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				statusCol:    processing,
				claimCol:     now,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		claimed = candidates
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *mediaRepo) CompleteFaceDetection(dbc dbctx.Context, id uuid.UUID, hasFaces bool, faceCount int, timestamps datatypes.JSON) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND face_detection_status = ?", id, types.FaceDetectionProcessing).
		Updates(map[string]interface{}{
			"face_detection_status": types.FaceDetectionCompleted,
			"face_detection_error":  "",
			"face_detected_at":      now,
			"has_faces":             hasFaces,
			"face_count":            faceCount,
			"face_timestamps":       timestamps,
			"updated_at":            now,
		}).Error
}

func (r *mediaRepo) FailFaceDetection(dbc dbctx.Context, id uuid.UUID, detectErr string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND face_detection_status = ?", id, types.FaceDetectionProcessing).
		Updates(map[string]interface{}{
			"face_detection_status": types.FaceDetectionFailed,
			"face_detection_error":  detectErr,
			"updated_at":            time.Now(),
		}).Error
}

func (r *mediaRepo) ResetFaceTrack(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND face_detection_status = ?", id, types.FaceDetectionFailed).
		Updates(map[string]interface{}{
			"face_detection_status": types.FaceDetectionPending,
			"face_detection_error":  "",
			"face_claimed_at":       nil,
			"updated_at":            time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClaimForBlur moves an asset onto the blur track. Eligible unless the
// asset is provably faceless (detection completed, no faces) or its blur
// is already in flight or approved; detection still pending or processing
// stays conservatively blurrable with a full-copy pass.
func (r *mediaRepo) ClaimForBlur(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND blur_status IN ? AND NOT (face_detection_status = ? AND has_faces = ?)",
			id, []string{string(types.BlurNone), string(types.BlurFailed)}, types.FaceDetectionCompleted, false).
		Updates(map[string]interface{}{
			"blur_status":     types.BlurProcessing,
			"blur_error":      "",
			"blur_claimed_at": time.Now(),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *mediaRepo) CompleteBlur(dbc dbctx.Context, id uuid.UUID, blurredKey, blurredURL string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND blur_status = ?", id, types.BlurProcessing).
		Updates(map[string]interface{}{
			"blur_status":   types.BlurComplete,
			"blur_error":    "",
			"blurred_key":   blurredKey,
			"blurred_url":   blurredURL,
			"blur_approved": false,
			"updated_at":    time.Now(),
		}).Error
}

func (r *mediaRepo) FailBlur(dbc dbctx.Context, id uuid.UUID, blurErr string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND blur_status = ?", id, types.BlurProcessing).
		Updates(map[string]interface{}{
			"blur_status": types.BlurFailed,
			"blur_error":  blurErr,
			"updated_at":  time.Now(),
		}).Error
}

func (r *mediaRepo) ApproveBlurReview(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND blur_status = ?", id, types.BlurComplete).
		Updates(map[string]interface{}{
			"blur_approved": true,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RejectBlurReview fully resets the blur track so the asset can be
// re-blurred from scratch.
func (r *mediaRepo) RejectBlurReview(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND blur_status = ?", id, types.BlurComplete).
		Updates(map[string]interface{}{
			"blur_status":     types.BlurNone,
			"blur_error":      "",
			"blurred_key":     "",
			"blurred_url":     "",
			"blur_approved":   false,
			"blur_claimed_at": nil,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *mediaRepo) CompleteAI(dbc dbctx.Context, id uuid.UUID, roomType string, actionTypes, objectLabels datatypes.JSON, quality float64, durationSeconds *int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	updates := map[string]interface{}{
		"ai_status":       types.AICompleted,
		"ai_error":        "",
		"ai_processed_at": now,
		"room_type":       roomType,
		"action_types":    actionTypes,
		"object_labels":   objectLabels,
		"quality_score":   quality,
		"updated_at":      now,
	}
	if durationSeconds != nil {
		updates["duration_seconds"] = *durationSeconds
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND ai_status = ?", id, types.AIProcessing).
		Updates(updates).Error
}

func (r *mediaRepo) FailAI(dbc dbctx.Context, id uuid.UUID, aiErr string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND ai_status = ?", id, types.AIProcessing).
		Updates(map[string]interface{}{
			"ai_status":  types.AIFailed,
			"ai_error":   aiErr,
			"updated_at": time.Now(),
		}).Error
}

func (r *mediaRepo) ResetAITrack(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND ai_status = ?", id, types.AIFailed).
		Updates(map[string]interface{}{
			"ai_status":     types.AIPending,
			"ai_error":      "",
			"ai_claimed_at": nil,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetTrainingStatus performs a compare-and-swap on the training track so
// two reviewers cannot silently overwrite each other.
func (r *mediaRepo) SetTrainingStatus(dbc dbctx.Context, id uuid.UUID, from, to types.TrainingStatus, reviewerID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ? AND training_status = ?", id, from).
		Updates(map[string]interface{}{
			"training_status":      to,
			"training_reviewed_by": reviewerID,
			"training_reviewed_at": now,
			"updated_at":           now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListExportable returns only assets that are approved for training AND
// whose blur pipeline is settled: either no faces were found, or the
// blurred cut exists and passed review.
func (r *mediaRepo) ListExportable(dbc dbctx.Context, orgID uuid.UUID, ids []uuid.UUID) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MediaAsset
	if len(ids) == 0 {
		return out, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Where("id IN ? AND organization_id = ?", ids, orgID).
		Where("training_status = ?", types.TrainingApproved).
		Where(`
      (
        (face_detection_status = ? AND has_faces = ?)
        OR (blur_status = ? AND blur_approved = ?)
      )
    `, types.FaceDetectionCompleted, false, types.BlurComplete, true).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) CountByStatus(dbc dbctx.Context, orgID uuid.UUID) (*StatusCounts, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	base := func() *gorm.DB {
		return transaction.WithContext(dbc.Ctx).
			Model(&types.MediaAsset{}).
			Where("organization_id = ?", orgID)
	}
	out := &StatusCounts{}
	if err := base().Count(&out.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("face_detection_status = ?", types.FaceDetectionPending).Count(&out.FacePending).Error; err != nil {
		return nil, err
	}
	if err := base().Where("face_detection_status = ?", types.FaceDetectionFailed).Count(&out.FaceFailed).Error; err != nil {
		return nil, err
	}
	if err := base().Where("face_detection_status = ? AND has_faces = ? AND blur_status IN ?",
		types.FaceDetectionCompleted, true, []string{string(types.BlurNone), string(types.BlurFailed)}).
		Count(&out.BlurPending).Error; err != nil {
		return nil, err
	}
	if err := base().Where("blur_status = ? AND blur_approved = ?", types.BlurComplete, false).
		Count(&out.AwaitingBlur).Error; err != nil {
		return nil, err
	}
	if err := base().Where("ai_status = ?", types.AIPending).Count(&out.AIPending).Error; err != nil {
		return nil, err
	}
	if err := base().Where("ai_status = ?", types.AIFailed).Count(&out.AIFailed).Error; err != nil {
		return nil, err
	}
	if err := base().Where("training_status = ?", types.TrainingApproved).
		Where(`
      (
        (face_detection_status = ? AND has_faces = ?)
        OR (blur_status = ? AND blur_approved = ?)
      )
    `, types.FaceDetectionCompleted, false, types.BlurComplete, true).
		Count(&out.TrainingReady).Error; err != nil {
		return nil, err
	}
	return out, nil
}
