package app

import (
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type Repos struct {
	Location   repos.LocationRepo
	Task       repos.TaskRepo
	Media      repos.MediaRepo
	Floor      repos.FloorRepo
	Room       repos.RoomRepo
	Target     repos.TargetRepo
	Action     repos.ActionRepo
	RefType    repos.RefTypeRepo
	Moment     repos.MomentRepo
	Preference repos.PreferenceRepo
	Delivery   repos.DeliveryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Location:   repos.NewLocationRepo(db, log),
		Task:       repos.NewTaskRepo(db, log),
		Media:      repos.NewMediaRepo(db, log),
		Floor:      repos.NewFloorRepo(db, log),
		Room:       repos.NewRoomRepo(db, log),
		Target:     repos.NewTargetRepo(db, log),
		Action:     repos.NewActionRepo(db, log),
		RefType:    repos.NewRefTypeRepo(db, log),
		Moment:     repos.NewMomentRepo(db, log),
		Preference: repos.NewPreferenceRepo(db, log),
		Delivery:   repos.NewDeliveryRepo(db, log),
	}
}
