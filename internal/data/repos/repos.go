package repos

import (
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos/deliveries"
	"github.com/roomloop/roomloop-backend/internal/data/repos/locations"
	"github.com/roomloop/roomloop-backend/internal/data/repos/media"
	"github.com/roomloop/roomloop-backend/internal/data/repos/moments"
	"github.com/roomloop/roomloop-backend/internal/data/repos/structure"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type LocationRepo = locations.LocationRepo
type TaskRepo = locations.TaskRepo

type MediaRepo = media.MediaRepo
type MediaStatusCounts = media.StatusCounts
type MediaListFilters = media.ListFilters

type FloorRepo = structure.FloorRepo
type RoomRepo = structure.RoomRepo
type TargetRepo = structure.TargetRepo
type ActionRepo = structure.ActionRepo
type RefTypeRepo = structure.RefTypeRepo

type MomentRepo = moments.MomentRepo
type MomentQueryFilters = moments.QueryFilters
type PreferenceRepo = moments.PreferenceRepo

type DeliveryRepo = deliveries.DeliveryRepo

func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) LocationRepo {
	return locations.NewLocationRepo(db, baseLog)
}
func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return locations.NewTaskRepo(db, baseLog)
}

func NewMediaRepo(db *gorm.DB, baseLog *logger.Logger) MediaRepo {
	return media.NewMediaRepo(db, baseLog)
}

func NewFloorRepo(db *gorm.DB, baseLog *logger.Logger) FloorRepo {
	return structure.NewFloorRepo(db, baseLog)
}
func NewRoomRepo(db *gorm.DB, baseLog *logger.Logger) RoomRepo {
	return structure.NewRoomRepo(db, baseLog)
}
func NewTargetRepo(db *gorm.DB, baseLog *logger.Logger) TargetRepo {
	return structure.NewTargetRepo(db, baseLog)
}
func NewActionRepo(db *gorm.DB, baseLog *logger.Logger) ActionRepo {
	return structure.NewActionRepo(db, baseLog)
}
func NewRefTypeRepo(db *gorm.DB, baseLog *logger.Logger) RefTypeRepo {
	return structure.NewRefTypeRepo(db, baseLog)
}

func NewMomentRepo(db *gorm.DB, baseLog *logger.Logger) MomentRepo {
	return moments.NewMomentRepo(db, baseLog)
}
func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return moments.NewPreferenceRepo(db, baseLog)
}

func NewDeliveryRepo(db *gorm.DB, baseLog *logger.Logger) DeliveryRepo {
	return deliveries.NewDeliveryRepo(db, baseLog)
}
