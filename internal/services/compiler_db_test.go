package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/data/repos/locations"
	"github.com/roomloop/roomloop-backend/internal/data/repos/moments"
	"github.com/roomloop/roomloop-backend/internal/data/repos/testutil"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/services"
)

func TestGenerateFromTaskIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	svc := services.NewCompilerService(tx, log,
		locations.NewTaskRepo(tx, log),
		moments.NewMomentRepo(tx, log),
	)

	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Compiler Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Clean the kitchen", "cleaning")
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 1, "Wipe the counter", "kitchen")
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 2, "Mop the floor", "kitchen")

	actor := uuid.New()
	created, skipped, err := svc.GenerateFromTask(ctx, task.ID, actor)
	if err != nil {
		t.Fatalf("first generation: %v", err)
	}
	if len(created) != 2 || skipped != 0 {
		t.Fatalf("first generation: created=%d skipped=%d", len(created), skipped)
	}
	if created[0].SequenceOrder != 1 || created[1].SequenceOrder != 2 {
		t.Fatalf("sequence: %d, %d", created[0].SequenceOrder, created[1].SequenceOrder)
	}
	if created[0].ActionVerb != "wipe" || created[0].RoomLocation != "kitchen" {
		t.Fatalf("derived fields: %+v", created[0])
	}
	if created[0].Source != types.SourceTaskInstruction || created[0].HumanVerified {
		t.Fatalf("compiled moments must be unverified task-instruction sourced: %+v", created[0])
	}

	// the same instructions compile to nothing the second time
	created, skipped, err = svc.GenerateFromTask(ctx, task.ID, actor)
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}
	if len(created) != 0 || skipped != 2 {
		t.Fatalf("second generation: created=%d skipped=%d", len(created), skipped)
	}

	// new instructions continue the sequence after existing moments
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 3, "Empty the trash", "kitchen")
	created, skipped, err = svc.GenerateFromTask(ctx, task.ID, actor)
	if err != nil {
		t.Fatalf("third generation: %v", err)
	}
	if len(created) != 1 || skipped != 2 {
		t.Fatalf("third generation: created=%d skipped=%d", len(created), skipped)
	}
	if created[0].SequenceOrder != 3 {
		t.Fatalf("sequence must continue, got %d", created[0].SequenceOrder)
	}
}

func TestGenerateFromTaskNeverReusesSequenceNumbers(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	momentRepo := moments.NewMomentRepo(tx, log)
	svc := services.NewCompilerService(tx, log,
		locations.NewTaskRepo(tx, log),
		momentRepo,
	)

	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Gap Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Tidy the garage", "cleaning")
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 1, "Sweep the floor", "garage")
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 2, "Stack the boxes", "garage")
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 3, "Coil the hose", "garage")

	actor := uuid.New()
	created, _, err := svc.GenerateFromTask(ctx, task.ID, actor)
	if err != nil || len(created) != 3 {
		t.Fatalf("first generation: %v (%d)", err, len(created))
	}

	// dropping a middle moment leaves a gap that later compiles must
	// not fill back in
	var middle *types.Moment
	for _, m := range created {
		if m.SequenceOrder == 2 {
			middle = m
		}
	}
	if middle == nil {
		t.Fatalf("no moment with sequence 2 in %+v", created)
	}
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	if err := momentRepo.Delete(dbc, middle.ID); err != nil {
		t.Fatalf("delete moment: %v", err)
	}

	created, skipped, err := svc.GenerateFromTask(ctx, task.ID, actor)
	if err != nil {
		t.Fatalf("regeneration: %v", err)
	}
	if len(created) != 1 || skipped != 2 {
		t.Fatalf("regeneration: created=%d skipped=%d", len(created), skipped)
	}
	if created[0].Title != "Stack the boxes" || created[0].SequenceOrder != 4 {
		t.Fatalf("recompiled moment must continue past the old maximum: %+v", created[0])
	}
}

func TestGenerateFromTaskUntitledInstruction(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	svc := services.NewCompilerService(tx, log,
		locations.NewTaskRepo(tx, log),
		moments.NewMomentRepo(tx, log),
	)

	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Untitled Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Water the plants", "gardening")
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 1, "Fill the watering can", "patio")
	testutil.SeedTaskInstruction(t, ctx, tx, task.ID, 2, "   ", "patio")

	created, skipped, err := svc.GenerateFromTask(ctx, task.ID, uuid.New())
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	if len(created) != 2 || skipped != 0 {
		t.Fatalf("generation: created=%d skipped=%d", len(created), skipped)
	}
	if created[1].Title != "Step 2" || created[1].ActionVerb != "perform" {
		t.Fatalf("untitled instruction fallback: %+v", created[1])
	}
	if created[1].SequenceOrder != 2 {
		t.Fatalf("sequence: %d", created[1].SequenceOrder)
	}

	// the fallback title participates in dedupe like any other
	created, skipped, err = svc.GenerateFromTask(ctx, task.ID, uuid.New())
	if err != nil || len(created) != 0 || skipped != 2 {
		t.Fatalf("second generation: %v created=%d skipped=%d", err, len(created), skipped)
	}
}

func TestGenerateFromTaskRequiresInstructions(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	svc := services.NewCompilerService(tx, log,
		locations.NewTaskRepo(tx, log),
		moments.NewMomentRepo(tx, log),
	)

	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Empty Task Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Do nothing", "misc")

	_, _, err := svc.GenerateFromTask(ctx, task.ID, uuid.New())
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "no_instructions" {
		t.Fatalf("expected no_instructions validation error, got %v", err)
	}

	_, _, err = svc.GenerateFromTask(ctx, uuid.New(), uuid.New())
	if !errors.As(err, &apiErr) || apiErr.Code != "task_not_found" {
		t.Fatalf("expected task_not_found, got %v", err)
	}
}
