package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MomentType string

const (
	MomentAction       MomentType = "action"
	MomentObservation  MomentType = "observation"
	MomentDecision     MomentType = "decision"
	MomentNavigation   MomentType = "navigation"
	MomentManipulation MomentType = "manipulation"
)

func ValidMomentType(t MomentType) bool {
	switch t {
	case MomentAction, MomentObservation, MomentDecision, MomentNavigation, MomentManipulation:
		return true
	}
	return false
}

type MomentSource string

const (
	SourceManualEntry     MomentSource = "manual_entry"
	SourceTaskInstruction MomentSource = "task_instruction"
	SourceVideoAI         MomentSource = "video_ai"
	SourceRobotLearning   MomentSource = "robot_learning"
)

func ValidMomentSource(s MomentSource) bool {
	switch s {
	case SourceManualEntry, SourceTaskInstruction, SourceVideoAI, SourceRobotLearning:
		return true
	}
	return false
}

// Moment is one atomic, sequenced, robot-actionable instruction step.
// SequenceOrder is monotonically assigned per task and never reused; the
// descriptive fields stay editable, the identity does not.
type Moment struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	LocationID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"location_id"`
	TaskID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"task_id"`
	ShiftID        *uuid.UUID `gorm:"type:uuid" json:"shift_id,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`

	MomentType   MomentType `gorm:"column:moment_type;not null;default:'action'" json:"moment_type"`
	ActionVerb   string     `gorm:"column:action_verb;not null" json:"action_verb"`
	ObjectTarget string     `gorm:"column:object_target" json:"object_target,omitempty"`
	RoomLocation string     `gorm:"column:room_location" json:"room_location,omitempty"`

	SequenceOrder            int  `gorm:"column:sequence_order;not null" json:"sequence_order"`
	EstimatedDurationSeconds *int `gorm:"column:estimated_duration_seconds" json:"estimated_duration_seconds,omitempty"`

	Tags     datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	Keywords datatypes.JSON `gorm:"type:jsonb" json:"keywords"`

	Source          MomentSource `gorm:"not null" json:"source"`
	HumanVerified   bool         `gorm:"column:human_verified;not null;default:false" json:"human_verified"`
	ConfidenceScore *float64     `gorm:"column:confidence_score" json:"confidence_score,omitempty"`

	// Read-only telemetry written by the robot-learning feedback loop.
	RobotExecutionCount int      `gorm:"column:robot_execution_count;not null;default:0" json:"robot_execution_count"`
	RobotSuccessRate    *float64 `gorm:"column:robot_success_rate" json:"robot_success_rate,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Moment) TableName() string { return "moments" }

// MomentMedia links a moment to a supporting media asset with a role tag
// ("demonstration", "reference", ...) and an offset into the video.
type MomentMedia struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MomentID          uuid.UUID `gorm:"type:uuid;not null;index:idx_moment_media,unique" json:"moment_id"`
	MediaID           uuid.UUID `gorm:"type:uuid;not null;index:idx_moment_media,unique" json:"media_id"`
	MediaRole         string    `gorm:"column:media_role;not null;default:'demonstration'" json:"media_role"`
	TimeOffsetSeconds *float64  `gorm:"column:time_offset_seconds" json:"time_offset_seconds,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MomentMedia) TableName() string { return "moment_media" }

// LocationPreference overrides a moment's default instruction at one
// location. At most one active row per (location, moment); writes upsert.
type LocationPreference struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LocationID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_moment_pref" json:"location_id"`
	MomentID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_location_moment_pref" json:"moment_id"`
	CustomInstruction string    `gorm:"column:custom_instruction;not null" json:"custom_instruction"`
	CreatedBy         uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LocationPreference) TableName() string { return "location_preferences" }
