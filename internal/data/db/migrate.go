package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Organizations + locations
		// =========================
		&types.Location{},
		&types.Task{},
		&types.TaskInstruction{},

		// =========================
		// Location structure (floor -> room -> target -> action)
		// =========================
		&types.RoomType{},
		&types.TargetType{},
		&types.ActionType{},
		&types.Floor{},
		&types.Room{},
		&types.Target{},
		&types.Action{},

		// =========================
		// Media pipeline
		// =========================
		&types.MediaAsset{},

		// =========================
		// Robot instructions
		// =========================
		&types.Moment{},
		&types.MomentMedia{},
		&types.LocationPreference{},

		// =========================
		// Partner exports
		// =========================
		&types.Delivery{},
	)
}

func EnsureIndexes(db *gorm.DB) error {
	// uuid-ossp is already enabled in NewPostgresService, but safe to re-run
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	// keyword/tag overlap filters use jsonb existence operators; GIN keeps
	// the robot query off a sequential scan
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_moments_keywords_gin ON moments USING gin (keywords);`).Error; err != nil {
		return fmt.Errorf("create idx_moments_keywords_gin: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_moments_tags_gin ON moments USING gin (tags);`).Error; err != nil {
		return fmt.Errorf("create idx_moments_tags_gin: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_media_face_status ON media_assets(face_detection_status);`).Error; err != nil {
		return fmt.Errorf("create idx_media_face_status: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_media_ai_status ON media_assets(ai_status);`).Error; err != nil {
		return fmt.Errorf("create idx_media_ai_status: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_media_training_status ON media_assets(training_status);`).Error; err != nil {
		return fmt.Errorf("create idx_media_training_status: %w", err)
	}
	return nil
}
