package moments_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/data/repos/moments"
	"github.com/roomloop/roomloop-backend/internal/data/repos/testutil"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
)

func TestQueryOrdersBySequence(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := moments.NewMomentRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Sequence Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Clean the kitchen", "cleaning")

	// seed out of order
	testutil.SeedMoment(t, ctx, tx, task, "Third step", 3)
	testutil.SeedMoment(t, ctx, tx, task, "First step", 1)
	testutil.SeedMoment(t, ctx, tx, task, "Second step", 2)

	got, err := repo.Query(dbc, moments.QueryFilters{TaskID: task.ID})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 moments, got %d", len(got))
	}
	for i, m := range got {
		if m.SequenceOrder != i+1 {
			t.Fatalf("position %d has sequence %d", i, m.SequenceOrder)
		}
	}
}

func TestQueryFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := moments.NewMomentRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Filter Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Tidy the living room", "cleaning")

	wipe := testutil.SeedMoment(t, ctx, tx, task, "Wipe the counter", 1)
	vacuum := testutil.SeedMoment(t, ctx, tx, task, "Vacuum the rug", 2)
	if err := repo.UpdateFields(dbc, vacuum.ID, map[string]interface{}{
		"action_verb":    "vacuum",
		"human_verified": true,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	byVerb, err := repo.Query(dbc, moments.QueryFilters{TaskID: task.ID, ActionVerb: "VACUUM"})
	if err != nil {
		t.Fatalf("query by verb: %v", err)
	}
	if len(byVerb) != 1 || byVerb[0].ID != vacuum.ID {
		t.Fatalf("verb filter mismatch: %v", byVerb)
	}

	verified, err := repo.Query(dbc, moments.QueryFilters{TaskID: task.ID, VerifiedOnly: true})
	if err != nil {
		t.Fatalf("query verified: %v", err)
	}
	if len(verified) != 1 || verified[0].ID != vacuum.ID {
		t.Fatalf("verified filter mismatch: %v", verified)
	}

	byTitle, err := repo.Query(dbc, moments.QueryFilters{LocationID: loc.ID, TaskTitle: "living room"})
	if err != nil {
		t.Fatalf("query by task title: %v", err)
	}
	if len(byTitle) != 2 {
		t.Fatalf("task title filter mismatch: got %d", len(byTitle))
	}

	byKeyword, err := repo.Query(dbc, moments.QueryFilters{TaskID: task.ID, Keywords: []string{"counter", "nonsense"}})
	if err != nil {
		t.Fatalf("query by keyword: %v", err)
	}
	if len(byKeyword) != 2 {
		// seeded keywords are ["counter","kitchen"] on both fixtures
		t.Fatalf("keyword filter mismatch: got %d", len(byKeyword))
	}
	_ = wipe

	none, err := repo.Query(dbc, moments.QueryFilters{TaskID: task.ID, Keywords: []string{"nothing-matches"}})
	if err != nil {
		t.Fatalf("query no keyword hit: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}
}

func TestExistingTitlesAreCaseInsensitive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := moments.NewMomentRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Titles Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Dust shelves", "cleaning")
	testutil.SeedMoment(t, ctx, tx, task, "Dust the TOP Shelf", 1)

	titles, err := repo.ExistingTitlesByTask(dbc, task.ID)
	if err != nil {
		t.Fatalf("existing titles: %v", err)
	}
	if !titles["dust the top shelf"] {
		t.Fatalf("expected lowercased title key, got %v", titles)
	}
}

func TestDeleteCascadesLinksAndPreferences(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	log := testutil.Logger(t)
	repo := moments.NewMomentRepo(tx, log)
	prefRepo := moments.NewPreferenceRepo(tx, log)

	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Cascade Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Mop floors", "cleaning")
	moment := testutil.SeedMoment(t, ctx, tx, task, "Mop the hallway", 1)
	asset := testutil.SeedMediaAsset(t, ctx, tx, loc, "mop.mp4")

	if err := repo.LinkMedia(dbc, []*types.MomentMedia{{
		ID:        uuid.New(),
		MomentID:  moment.ID,
		MediaID:   asset.ID,
		MediaRole: "demonstration",
	}}); err != nil {
		t.Fatalf("link media: %v", err)
	}
	if _, err := prefRepo.Upsert(dbc, &types.LocationPreference{
		ID:                uuid.New(),
		LocationID:        loc.ID,
		MomentID:          moment.ID,
		CustomInstruction: "use the blue mop",
		CreatedBy:         uuid.New(),
	}); err != nil {
		t.Fatalf("upsert pref: %v", err)
	}

	if err := repo.Delete(dbc, moment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	links, err := repo.MediaLinksByMomentIDs(dbc, []uuid.UUID{moment.ID})
	if err != nil {
		t.Fatalf("links after delete: %v", err)
	}
	if len(links) != 0 {
		t.Fatal("media links must be removed with the moment")
	}
	pref, err := prefRepo.Get(dbc, loc.ID, moment.ID)
	if err != nil {
		t.Fatalf("pref after delete: %v", err)
	}
	if pref != nil {
		t.Fatal("preference must be removed with the moment")
	}
}

func TestPreferenceUpsertKeepsSingleRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	prefRepo := moments.NewPreferenceRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Pref Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Water plants", "gardening")
	moment := testutil.SeedMoment(t, ctx, tx, task, "Water the ferns", 1)

	first, err := prefRepo.Upsert(dbc, &types.LocationPreference{
		ID:                uuid.New(),
		LocationID:        loc.ID,
		MomentID:          moment.ID,
		CustomInstruction: "half a cup only",
		CreatedBy:         uuid.New(),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	editor := uuid.New()
	second, err := prefRepo.Upsert(dbc, &types.LocationPreference{
		ID:                uuid.New(),
		LocationID:        loc.ID,
		MomentID:          moment.ID,
		CustomInstruction: "a full cup, they dried out",
		CreatedBy:         editor,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Fatal("upsert must update the existing row, not create a second one")
	}
	if second.CustomInstruction != "a full cup, they dried out" || second.CreatedBy != editor {
		t.Fatalf("upsert did not overwrite fields: %+v", second)
	}

	all, err := prefRepo.ListByLocation(dbc, loc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single preference row, got %d", len(all))
	}

	deleted, err := prefRepo.Delete(dbc, loc.ID, moment.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: ok=%v err=%v", deleted, err)
	}
	deleted, err = prefRepo.Delete(dbc, loc.ID, moment.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Fatal("second delete must report nothing removed")
	}
}
