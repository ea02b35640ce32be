package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Location structure hierarchy: Floor -> Room -> Target -> Action.
// Rooms may be floor-less (FloorID null); Targets and Actions always have a
// parent. Reference tables (RoomType, TargetType, ActionType) carry the
// display metadata and defaults joined into structure reads.

type Floor struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index" json:"location_id"`
	Name       string    `gorm:"not null" json:"name"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Floor) TableName() string { return "floors" }

type RoomType struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
}

func (RoomType) TableName() string { return "room_types" }

type Room struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LocationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"location_id"`
	FloorID    *uuid.UUID `gorm:"type:uuid;index" json:"floor_id,omitempty"`
	RoomTypeID *uuid.UUID `gorm:"type:uuid" json:"room_type_id,omitempty"`
	CustomName string     `json:"custom_name"`
	SortOrder  int        `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }

type TargetType struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	Icon        string    `json:"icon"`
}

func (TargetType) TableName() string { return "target_types" }

// Target is a physical object or surface inside a room that actions are
// performed on. A target belongs to exactly one room.
type Target struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RoomID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"room_id"`
	TargetTypeID *uuid.UUID `gorm:"type:uuid" json:"target_type_id,omitempty"`
	CustomName   string     `json:"custom_name"`
	SortOrder    int        `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Target) TableName() string { return "targets" }

type ActionType struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name                   string         `gorm:"not null;uniqueIndex" json:"name"`
	DisplayName            string         `gorm:"not null" json:"display_name"`
	DefaultDurationSeconds int            `gorm:"not null;default:60" json:"default_duration_seconds"`
	DefaultTools           datatypes.JSON `gorm:"type:jsonb" json:"default_tools,omitempty"`
	DefaultInstructions    string         `json:"default_instructions"`
}

func (ActionType) TableName() string { return "action_types" }

// Action belongs to exactly one target.
type Action struct {
	ID                       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TargetID                 uuid.UUID  `gorm:"type:uuid;not null;index" json:"target_id"`
	ActionTypeID             *uuid.UUID `gorm:"type:uuid" json:"action_type_id,omitempty"`
	EstimatedDurationSeconds *int       `gorm:"column:estimated_duration_seconds" json:"estimated_duration_seconds,omitempty"`
	SortOrder                int        `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Action) TableName() string { return "actions" }
