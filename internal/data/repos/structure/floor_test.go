package structure_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/data/repos/structure"
	"github.com/roomloop/roomloop-backend/internal/data/repos/testutil"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
)

func TestFloorDeleteRequiresEmptyFloor(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := structure.NewFloorRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Floors Home")
	floor := testutil.SeedFloor(t, ctx, tx, loc.ID, "Ground Floor", 0)
	testutil.SeedRoom(t, ctx, tx, loc.ID, &floor.ID, "Kitchen", 0)

	err := repo.Delete(dbc, floor.ID)
	if !errors.Is(err, structure.ErrFloorNotEmpty) {
		t.Fatalf("expected ErrFloorNotEmpty, got %v", err)
	}

	// the floor survives the rejected delete
	got, err := repo.GetByID(dbc, floor.ID)
	if err != nil || got == nil {
		t.Fatalf("floor should still exist: %v %v", got, err)
	}

	empty := testutil.SeedFloor(t, ctx, tx, loc.ID, "Attic", 2)
	if err := repo.Delete(dbc, empty.ID); err != nil {
		t.Fatalf("deleting an empty floor: %v", err)
	}
	got, err = repo.GetByID(dbc, empty.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Fatal("empty floor should be gone")
	}
}

func TestFloorsOrderedBySortOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := structure.NewFloorRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Ordered Home")
	testutil.SeedFloor(t, ctx, tx, loc.ID, "Second", 2)
	testutil.SeedFloor(t, ctx, tx, loc.ID, "First", 1)
	testutil.SeedFloor(t, ctx, tx, loc.ID, "Basement", 0)

	floors, err := repo.ListByLocation(dbc, loc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(floors) != 3 {
		t.Fatalf("expected 3 floors, got %d", len(floors))
	}
	want := []string{"Basement", "First", "Second"}
	for i, f := range floors {
		if f.Name != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, f.Name, want[i])
		}
	}
}
