package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/data/repos/media"
	"github.com/roomloop/roomloop-backend/internal/data/repos/moments"
	"github.com/roomloop/roomloop-backend/internal/data/repos/testutil"
	"github.com/roomloop/roomloop-backend/internal/services"
)

func TestCreateMomentContinuesSequenceAfterGaps(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	svc := services.NewMomentService(tx, log,
		moments.NewMomentRepo(tx, log),
		media.NewMediaRepo(tx, log),
		moments.NewPreferenceRepo(tx, log),
	)

	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Manual Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Set the table", "dining")
	testutil.SeedMoment(t, ctx, tx, task, "Lay out the plates", 2)
	testutil.SeedMoment(t, ctx, tx, task, "Fold the napkins", 5)

	// defaulted sequence follows the highest surviving number, not the
	// moment count
	created, err := svc.CreateMoment(ctx, services.CreateMomentInput{
		OrganizationID: loc.OrganizationID,
		LocationID:     loc.ID,
		TaskID:         task.ID,
		Title:          "Place the cutlery",
		CreatedBy:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("create moment: %v", err)
	}
	if created.SequenceOrder != 6 {
		t.Fatalf("sequence: got %d, want 6", created.SequenceOrder)
	}

	// an explicit sequence is taken as given
	explicit := 1
	created, err = svc.CreateMoment(ctx, services.CreateMomentInput{
		OrganizationID: loc.OrganizationID,
		LocationID:     loc.ID,
		TaskID:         task.ID,
		Title:          "Pull out the chairs",
		Sequence:       &explicit,
		CreatedBy:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("create moment: %v", err)
	}
	if created.SequenceOrder != 1 {
		t.Fatalf("explicit sequence: got %d, want 1", created.SequenceOrder)
	}
}
