package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Four independent per-asset processing tracks. Each one is a small state
// machine with its own allowed-transition table; callers go through
// CanTransition* rather than writing status columns directly.

type FaceDetectionStatus string

const (
	FaceDetectionPending    FaceDetectionStatus = "pending"
	FaceDetectionProcessing FaceDetectionStatus = "processing"
	FaceDetectionCompleted  FaceDetectionStatus = "completed"
	FaceDetectionFailed     FaceDetectionStatus = "failed"
)

type BlurStatus string

const (
	BlurNone       BlurStatus = "none"
	BlurProcessing BlurStatus = "processing"
	BlurComplete   BlurStatus = "complete"
	BlurFailed     BlurStatus = "failed"
)

type AIStatus string

const (
	AIPending    AIStatus = "pending"
	AIProcessing AIStatus = "processing"
	AICompleted  AIStatus = "completed"
	AIFailed     AIStatus = "failed"
)

type TrainingStatus string

const (
	TrainingPending  TrainingStatus = "pending"
	TrainingApproved TrainingStatus = "approved"
	TrainingRejected TrainingStatus = "rejected"
)

var faceTransitions = map[FaceDetectionStatus][]FaceDetectionStatus{
	FaceDetectionPending:    {FaceDetectionProcessing},
	FaceDetectionProcessing: {FaceDetectionCompleted, FaceDetectionFailed},
	FaceDetectionCompleted:  {},
	// failed is terminal until an operator resets to pending
	FaceDetectionFailed: {FaceDetectionPending},
}

var blurTransitions = map[BlurStatus][]BlurStatus{
	BlurNone:       {BlurProcessing},
	BlurProcessing: {BlurComplete, BlurFailed},
	// blur review rejection resets complete back to none
	BlurComplete: {BlurNone},
	BlurFailed:   {BlurProcessing, BlurNone},
}

var aiTransitions = map[AIStatus][]AIStatus{
	AIPending:    {AIProcessing},
	AIProcessing: {AICompleted, AIFailed},
	AICompleted:  {},
	AIFailed:     {AIPending},
}

var trainingTransitions = map[TrainingStatus][]TrainingStatus{
	TrainingPending:  {TrainingApproved, TrainingRejected},
	TrainingApproved: {TrainingPending},
	TrainingRejected: {TrainingPending},
}

func CanTransitionFace(from, to FaceDetectionStatus) bool {
	for _, s := range faceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionBlur(from, to BlurStatus) bool {
	for _, s := range blurTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionAI(from, to AIStatus) bool {
	for _, s := range aiTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func CanTransitionTraining(from, to TrainingStatus) bool {
	for _, s := range trainingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// FaceTimestamp is one detected face's presence window, in seconds from the
// start of the video. Stored as a jsonb array on MediaAsset.
type FaceTimestamp struct {
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// MediaAsset is one uploaded teleoperation video plus its processing and
// moderation metadata. Assets are never physically deleted; rejected assets
// stay queryable with their terminal status for audit.
type MediaAsset struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	LocationID     uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	UploaderID     uuid.UUID `gorm:"type:uuid;not null" json:"uploader_id"`

	FileName        string `gorm:"column:file_name;not null" json:"file_name"`
	MimeType        string `gorm:"column:mime_type" json:"mime_type"`
	MediaType       string `gorm:"column:media_type;not null;default:'video'" json:"media_type"`
	StorageKey      string `gorm:"column:storage_key;not null" json:"storage_key"`
	StorageURL      string `gorm:"column:storage_url;not null" json:"storage_url"`
	ThumbnailURL    string `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	SizeBytes       int64  `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`
	DurationSeconds *int   `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`

	// Face detection track
	FaceDetectionStatus FaceDetectionStatus `gorm:"column:face_detection_status;not null;default:'pending';index" json:"face_detection_status"`
	FaceDetectionError  string              `gorm:"column:face_detection_error" json:"face_detection_error,omitempty"`
	FaceClaimedAt       *time.Time          `gorm:"column:face_claimed_at" json:"face_claimed_at,omitempty"`
	FaceDetectedAt      *time.Time          `gorm:"column:face_detected_at" json:"face_detected_at,omitempty"`
	HasFaces            bool                `gorm:"column:has_faces;not null;default:false" json:"has_faces"`
	FaceCount           int                 `gorm:"column:face_count;not null;default:0" json:"face_count"`
	FaceTimestamps      datatypes.JSON      `gorm:"column:face_timestamps;type:jsonb" json:"face_timestamps,omitempty"`

	// Blur track. BlurredURL is set iff the blur track has reached complete
	// at least once; BlurApproved may only become true while complete.
	BlurStatus    BlurStatus `gorm:"column:blur_status;not null;default:'none';index" json:"blur_status"`
	BlurError     string     `gorm:"column:blur_error" json:"blur_error,omitempty"`
	BlurClaimedAt *time.Time `gorm:"column:blur_claimed_at" json:"blur_claimed_at,omitempty"`
	BlurredKey    string     `gorm:"column:blurred_key" json:"blurred_key,omitempty"`
	BlurredURL    string     `gorm:"column:blurred_url" json:"blurred_url,omitempty"`
	BlurApproved  bool       `gorm:"column:blur_approved;not null;default:false" json:"blur_approved"`

	// AI labeling track
	AIStatus      AIStatus       `gorm:"column:ai_status;not null;default:'pending';index" json:"ai_status"`
	AIError       string         `gorm:"column:ai_error" json:"ai_error,omitempty"`
	AIClaimedAt   *time.Time     `gorm:"column:ai_claimed_at" json:"ai_claimed_at,omitempty"`
	AIProcessedAt *time.Time     `gorm:"column:ai_processed_at" json:"ai_processed_at,omitempty"`
	RoomType      string         `gorm:"column:room_type" json:"room_type,omitempty"`
	ActionTypes   datatypes.JSON `gorm:"column:action_types;type:jsonb" json:"action_types,omitempty"`
	ObjectLabels  datatypes.JSON `gorm:"column:object_labels;type:jsonb" json:"object_labels,omitempty"`
	QualityScore  *float64       `gorm:"column:quality_score" json:"quality_score,omitempty"`

	// Training approval track (human gate for corpus inclusion)
	TrainingStatus     TrainingStatus `gorm:"column:training_status;not null;default:'pending';index" json:"training_status"`
	TrainingReviewedBy *uuid.UUID     `gorm:"column:training_reviewed_by;type:uuid" json:"training_reviewed_by,omitempty"`
	TrainingReviewedAt *time.Time     `gorm:"column:training_reviewed_at" json:"training_reviewed_at,omitempty"`

	UploadedAt time.Time `gorm:"column:uploaded_at;not null;default:now()" json:"uploaded_at"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MediaAsset) TableName() string { return "media_assets" }

// NeedsBlur reports whether the asset still requires a redacted copy before
// it can be considered privacy-safe. Assets whose face scan has not finished
// are conservatively treated as needing blur.
func (m *MediaAsset) NeedsBlur() bool {
	if m.FaceDetectionStatus == FaceDetectionCompleted {
		return m.HasFaces
	}
	return true
}

// BlurSettled reports whether the blur track no longer blocks export: either
// the asset provably has no faces, or the blurred copy has been approved.
func (m *MediaAsset) BlurSettled() bool {
	if m.FaceDetectionStatus == FaceDetectionCompleted && !m.HasFaces {
		return true
	}
	return m.BlurStatus == BlurComplete && m.BlurApproved
}
