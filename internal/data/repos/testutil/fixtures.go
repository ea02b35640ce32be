package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/roomloop/roomloop-backend/internal/domain"
)

func SeedLocation(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, name string) *types.Location {
	tb.Helper()
	loc := &types.Location{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Address:        "1 Main St",
	}
	if err := tx.WithContext(ctx).Create(loc).Error; err != nil {
		tb.Fatalf("seed location: %v", err)
	}
	return loc
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, loc *types.Location, title, category string) *types.Task {
	tb.Helper()
	task := &types.Task{
		ID:             uuid.New(),
		OrganizationID: loc.OrganizationID,
		LocationID:     loc.ID,
		Title:          title,
		Category:       category,
	}
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return task
}

func SeedTaskInstruction(tb testing.TB, ctx context.Context, tx *gorm.DB, taskID uuid.UUID, step int, title, room string) *types.TaskInstruction {
	tb.Helper()
	ti := &types.TaskInstruction{
		ID:         uuid.New(),
		TaskID:     taskID,
		Title:      title,
		Room:       room,
		StepNumber: step,
	}
	if err := tx.WithContext(ctx).Create(ti).Error; err != nil {
		tb.Fatalf("seed task instruction: %v", err)
	}
	return ti
}

func SeedMediaAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, loc *types.Location, fileName string) *types.MediaAsset {
	tb.Helper()
	asset := &types.MediaAsset{
		ID:                  uuid.New(),
		OrganizationID:      loc.OrganizationID,
		LocationID:          loc.ID,
		UploaderID:          uuid.New(),
		FileName:            fileName,
		MimeType:            "video/mp4",
		MediaType:           "video",
		StorageKey:          "media/" + fileName,
		StorageURL:          "https://storage.googleapis.com/test-bucket/media/" + fileName,
		FaceDetectionStatus: types.FaceDetectionPending,
		BlurStatus:          types.BlurNone,
		AIStatus:            types.AIPending,
		TrainingStatus:      types.TrainingPending,
		FaceTimestamps:      datatypes.JSON([]byte("[]")),
		ActionTypes:         datatypes.JSON([]byte("[]")),
		ObjectLabels:        datatypes.JSON([]byte("[]")),
		UploadedAt:          time.Now(),
	}
	if err := tx.WithContext(ctx).Create(asset).Error; err != nil {
		tb.Fatalf("seed media asset: %v", err)
	}
	return asset
}

func SeedFloor(tb testing.TB, ctx context.Context, tx *gorm.DB, locationID uuid.UUID, name string, sortOrder int) *types.Floor {
	tb.Helper()
	f := &types.Floor{
		ID:         uuid.New(),
		LocationID: locationID,
		Name:       name,
		SortOrder:  sortOrder,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed floor: %v", err)
	}
	return f
}

func SeedRoom(tb testing.TB, ctx context.Context, tx *gorm.DB, locationID uuid.UUID, floorID *uuid.UUID, customName string, sortOrder int) *types.Room {
	tb.Helper()
	room := &types.Room{
		ID:         uuid.New(),
		LocationID: locationID,
		FloorID:    floorID,
		CustomName: customName,
		SortOrder:  sortOrder,
	}
	if err := tx.WithContext(ctx).Create(room).Error; err != nil {
		tb.Fatalf("seed room: %v", err)
	}
	return room
}

func SeedTarget(tb testing.TB, ctx context.Context, tx *gorm.DB, roomID uuid.UUID, customName string, sortOrder int) *types.Target {
	tb.Helper()
	target := &types.Target{
		ID:         uuid.New(),
		RoomID:     roomID,
		CustomName: customName,
		SortOrder:  sortOrder,
	}
	if err := tx.WithContext(ctx).Create(target).Error; err != nil {
		tb.Fatalf("seed target: %v", err)
	}
	return target
}

func SeedAction(tb testing.TB, ctx context.Context, tx *gorm.DB, targetID uuid.UUID, sortOrder int) *types.Action {
	tb.Helper()
	a := &types.Action{
		ID:        uuid.New(),
		TargetID:  targetID,
		SortOrder: sortOrder,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed action: %v", err)
	}
	return a
}

func SeedMoment(tb testing.TB, ctx context.Context, tx *gorm.DB, task *types.Task, title string, seq int) *types.Moment {
	tb.Helper()
	m := &types.Moment{
		ID:             uuid.New(),
		OrganizationID: task.OrganizationID,
		LocationID:     task.LocationID,
		TaskID:         task.ID,
		Title:          title,
		MomentType:     types.MomentAction,
		ActionVerb:     "clean",
		SequenceOrder:  seq,
		Tags:           datatypes.JSON([]byte(`["cleaning","auto-generated"]`)),
		Keywords:       datatypes.JSON([]byte(`["counter","kitchen"]`)),
		Source:         types.SourceTaskInstruction,
		CreatedBy:      uuid.New(),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed moment: %v", err)
	}
	return m
}
