package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Delivery records an immutable export batch of approved training videos
// handed to a robotics partner. Rows are never updated after creation.
type Delivery struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	PartnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"partner_id"`

	MediaIDs             datatypes.JSON `gorm:"column:media_ids;type:jsonb;not null" json:"media_ids"`
	VideoCount           int            `gorm:"column:video_count;not null" json:"video_count"`
	TotalSizeBytes       int64          `gorm:"column:total_size_bytes;not null" json:"total_size_bytes"`
	TotalDurationSeconds int            `gorm:"column:total_duration_seconds;not null" json:"total_duration_seconds"`
	Notes                string         `json:"notes,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Delivery) TableName() string { return "deliveries" }
