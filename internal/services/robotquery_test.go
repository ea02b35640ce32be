package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/data/repos/locations"
	"github.com/roomloop/roomloop-backend/internal/data/repos/media"
	"github.com/roomloop/roomloop-backend/internal/data/repos/moments"
	"github.com/roomloop/roomloop-backend/internal/data/repos/testutil"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/services"
)

func newQueryService(t *testing.T) services.RobotQueryService {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	return services.NewRobotQueryService(
		tx,
		log,
		moments.NewMomentRepo(tx, log),
		media.NewMediaRepo(tx, log),
		moments.NewPreferenceRepo(tx, log),
		locations.NewLocationRepo(tx, log),
		locations.NewTaskRepo(tx, log),
	)
}

func TestRobotQueryAssembly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	momentRepo := moments.NewMomentRepo(tx, log)
	prefRepo := moments.NewPreferenceRepo(tx, log)
	svc := services.NewRobotQueryService(
		tx, log,
		momentRepo,
		media.NewMediaRepo(tx, log),
		prefRepo,
		locations.NewLocationRepo(tx, log),
		locations.NewTaskRepo(tx, log),
	)

	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Query Home")
	task := testutil.SeedTask(t, ctx, tx, loc, "Clean the kitchen", "cleaning")
	withMedia := testutil.SeedMoment(t, ctx, tx, task, "Wipe the counter", 1)
	bare := testutil.SeedMoment(t, ctx, tx, task, "Inspect the sink", 2)

	asset := testutil.SeedMediaAsset(t, ctx, tx, loc, "wipe.mp4")
	offset := 12.5
	if err := momentRepo.LinkMedia(dbc, []*types.MomentMedia{{
		ID:                uuid.New(),
		MomentID:          withMedia.ID,
		MediaID:           asset.ID,
		MediaRole:         "demonstration",
		TimeOffsetSeconds: &offset,
	}}); err != nil {
		t.Fatalf("link media: %v", err)
	}
	if _, err := prefRepo.Upsert(dbc, &types.LocationPreference{
		ID:                uuid.New(),
		LocationID:        loc.ID,
		MomentID:          withMedia.ID,
		CustomInstruction: "dry with the gray towel afterwards",
		CreatedBy:         uuid.New(),
	}); err != nil {
		t.Fatalf("upsert pref: %v", err)
	}

	resp, err := svc.Query(ctx, services.RobotQueryRequest{LocationID: loc.ID.String()})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if resp.Results.Count != 2 || len(resp.Results.Moments) != 2 {
		t.Fatalf("expected 2 moments, got count=%d len=%d", resp.Results.Count, len(resp.Results.Moments))
	}
	if resp.Metadata.APIVersion != "v1" || resp.Metadata.Timestamp == "" {
		t.Fatalf("bad metadata: %+v", resp.Metadata)
	}
	if resp.Query.LocationID != loc.ID.String() {
		t.Fatal("request must be echoed back in the response")
	}

	first := resp.Results.Moments[0]
	second := resp.Results.Moments[1]
	if first.ID != withMedia.ID || second.ID != bare.ID {
		t.Fatalf("moments out of sequence order: %v then %v", first.ID, second.ID)
	}

	if first.Location.Name != "Query Home" || first.Task.Title != "Clean the kitchen" {
		t.Fatalf("location/task denormalization missing: %+v %+v", first.Location, first.Task)
	}

	if len(first.Media) != 1 {
		t.Fatalf("expected 1 media entry, got %d", len(first.Media))
	}
	if first.Media[0].MediaID != asset.ID || first.Media[0].Role != "demonstration" {
		t.Fatalf("media link mismatch: %+v", first.Media[0])
	}
	if first.Media[0].TimeOffset == nil || *first.Media[0].TimeOffset != offset {
		t.Fatal("time offset lost in assembly")
	}
	if first.Preference == nil || first.Preference.CustomInstruction != "dry with the gray towel afterwards" {
		t.Fatalf("preference overlay missing: %+v", first.Preference)
	}

	// moments without links still present media as an empty array, and no
	// preference object at all
	if second.Media == nil || len(second.Media) != 0 {
		t.Fatalf("media must be an empty array, got %v", second.Media)
	}
	if second.Preference != nil {
		t.Fatalf("unexpected preference on bare moment: %+v", second.Preference)
	}
	if string(second.Tags) == "" || string(second.Keywords) == "" {
		t.Fatal("tags/keywords must never serialize as empty")
	}
}

func TestRobotQueryEmptyResult(t *testing.T) {
	svc := newQueryService(t)

	resp, err := svc.Query(context.Background(), services.RobotQueryRequest{
		LocationID: uuid.New().String(),
		ActionVerb: "levitate",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Results.Count != 0 {
		t.Fatalf("expected zero results, got %d", resp.Results.Count)
	}
	if resp.Results.Moments == nil {
		t.Fatal("moments must be an empty array, not null")
	}
}
