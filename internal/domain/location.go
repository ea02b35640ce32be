package domain

import (
	"time"

	"github.com/google/uuid"
)

// Location is a physical site (home, office, rental unit) owned by an
// organization. Structure (floors/rooms/targets/actions), tasks, media and
// moments all hang off a location.
type Location struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string    `gorm:"not null" json:"name"`
	Address        string    `json:"address"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Location) TableName() string { return "locations" }

// Task is an authored unit of work at a location ("Clean the kitchen"),
// carrying ordered step-by-step instructions that the moment compiler turns
// into robot-actionable moments.
type Task struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	LocationID     uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// TaskInstruction is one authored step of a task. StepNumber orders the
// steps; Room optionally pins the step to a room name.
type TaskInstruction struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Room        string    `json:"room"`
	StepNumber  int       `gorm:"not null;default:0" json:"step_number"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TaskInstruction) TableName() string { return "task_instructions" }
