package media_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/roomloop/roomloop-backend/internal/data/repos/media"
	"github.com/roomloop/roomloop-backend/internal/data/repos/testutil"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
)

func TestClaimFacePendingExhaustsQueue(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := media.NewMediaRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Claim Test Home")
	for i := 0; i < 3; i++ {
		testutil.SeedMediaAsset(t, ctx, tx, loc, uuid.NewString()+".mp4")
	}

	claimed, err := repo.ClaimFacePending(dbc, 10, 30*time.Minute)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if len(claimed) != 3 {
		t.Fatalf("expected 3 claimed, got %d", len(claimed))
	}

	again, err := repo.ClaimFacePending(dbc, 10, 30*time.Minute)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected empty second claim, got %d", len(again))
	}
}

func TestClaimFaceByIDLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := media.NewMediaRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Single Claim Home")
	asset := testutil.SeedMediaAsset(t, ctx, tx, loc, "single.mp4")

	ok, err := repo.ClaimFaceByID(dbc, asset.ID, 30*time.Minute)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}

	// a fresh processing claim is not claimable again
	ok, err = repo.ClaimFaceByID(dbc, asset.ID, 30*time.Minute)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Fatal("expected fresh processing claim to block re-claim")
	}

	// a failed scan is claimable for retry
	if err := repo.FailFaceDetection(dbc, asset.ID, "annotation timed out"); err != nil {
		t.Fatalf("fail detection: %v", err)
	}
	ok, err = repo.ClaimFaceByID(dbc, asset.ID, 30*time.Minute)
	if err != nil || !ok {
		t.Fatalf("claim after failure: ok=%v err=%v", ok, err)
	}
}

func TestCompleteFaceDetectionRequiresProcessing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := media.NewMediaRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Guard Home")
	asset := testutil.SeedMediaAsset(t, ctx, tx, loc, "guard.mp4")

	// completing a pending asset is a no-op
	if err := repo.CompleteFaceDetection(dbc, asset.ID, true, 2, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete on pending: %v", err)
	}
	got, err := repo.GetByID(dbc, asset.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FaceDetectionStatus != types.FaceDetectionPending {
		t.Fatalf("expected pending to survive stray complete, got %s", got.FaceDetectionStatus)
	}

	if ok, _ := repo.ClaimFaceByID(dbc, asset.ID, 30*time.Minute); !ok {
		t.Fatal("claim failed")
	}
	ts := datatypes.JSON([]byte(`[{"startTime":1.5,"endTime":4.0}]`))
	if err := repo.CompleteFaceDetection(dbc, asset.ID, true, 1, ts); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err = repo.GetByID(dbc, asset.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FaceDetectionStatus != types.FaceDetectionCompleted || !got.HasFaces || got.FaceCount != 1 {
		t.Fatalf("unexpected state after complete: %+v", got)
	}
}

func TestBlurReviewLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := media.NewMediaRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Blur Home")
	asset := testutil.SeedMediaAsset(t, ctx, tx, loc, "blur.mp4")

	if ok, _ := repo.ClaimFaceByID(dbc, asset.ID, 30*time.Minute); !ok {
		t.Fatal("face claim failed")
	}
	if err := repo.CompleteFaceDetection(dbc, asset.ID, true, 2, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete face: %v", err)
	}

	if ok, _ := repo.ClaimForBlur(dbc, asset.ID); !ok {
		t.Fatal("blur claim should succeed after faces confirmed")
	}
	if ok, _ := repo.ClaimForBlur(dbc, asset.ID); ok {
		t.Fatal("blur re-claim must be rejected while processing")
	}

	// detection still in flight stays conservatively blurrable; only a
	// proven-faceless asset is out of scope
	pending := testutil.SeedMediaAsset(t, ctx, tx, loc, "pending.mp4")
	if ok, _ := repo.ClaimForBlur(dbc, pending.ID); !ok {
		t.Fatal("blur claim should succeed while face detection is pending")
	}
	faceless := testutil.SeedMediaAsset(t, ctx, tx, loc, "faceless.mp4")
	if ok, _ := repo.ClaimFaceByID(dbc, faceless.ID, 30*time.Minute); !ok {
		t.Fatal("face claim failed")
	}
	if err := repo.CompleteFaceDetection(dbc, faceless.ID, false, 0, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete face: %v", err)
	}
	if ok, _ := repo.ClaimForBlur(dbc, faceless.ID); ok {
		t.Fatal("blur claim must be rejected for a proven-faceless asset")
	}

	if err := repo.CompleteBlur(dbc, asset.ID, "blurred/key.mp4", "https://cdn.example.com/blurred/key.mp4"); err != nil {
		t.Fatalf("complete blur: %v", err)
	}

	// approval only flips the flag while the blurred copy exists
	if ok, _ := repo.ApproveBlurReview(dbc, asset.ID); !ok {
		t.Fatal("approve should succeed on complete blur")
	}
	got, _ := repo.GetByID(dbc, asset.ID)
	if !got.BlurApproved || got.BlurredKey == "" {
		t.Fatalf("unexpected state after approval: %+v", got)
	}

	// rejection resets the whole track for a fresh pass
	if ok, _ := repo.RejectBlurReview(dbc, asset.ID); !ok {
		t.Fatal("reject should succeed on complete blur")
	}
	got, _ = repo.GetByID(dbc, asset.ID)
	if got.BlurStatus != types.BlurNone || got.BlurApproved || got.BlurredKey != "" || got.BlurredURL != "" {
		t.Fatalf("reject did not reset blur track: %+v", got)
	}
	if ok, _ := repo.ClaimForBlur(dbc, asset.ID); !ok {
		t.Fatal("asset should be re-claimable after rejection")
	}
}

func TestSetTrainingStatusCompareAndSwap(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := media.NewMediaRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Review Home")
	asset := testutil.SeedMediaAsset(t, ctx, tx, loc, "review.mp4")
	reviewer := uuid.New()

	ok, err := repo.SetTrainingStatus(dbc, asset.ID, types.TrainingPending, types.TrainingApproved, reviewer)
	if err != nil || !ok {
		t.Fatalf("approve: ok=%v err=%v", ok, err)
	}

	// stale swap loses
	ok, err = repo.SetTrainingStatus(dbc, asset.ID, types.TrainingPending, types.TrainingRejected, uuid.New())
	if err != nil {
		t.Fatalf("stale swap: %v", err)
	}
	if ok {
		t.Fatal("swap from stale status must not apply")
	}

	got, _ := repo.GetByID(dbc, asset.ID)
	if got.TrainingStatus != types.TrainingApproved {
		t.Fatalf("expected approved, got %s", got.TrainingStatus)
	}
	if got.TrainingReviewedBy == nil || *got.TrainingReviewedBy != reviewer {
		t.Fatal("reviewer not recorded")
	}

	// reopen then reject
	if ok, _ = repo.SetTrainingStatus(dbc, asset.ID, types.TrainingApproved, types.TrainingPending, reviewer); !ok {
		t.Fatal("reopen failed")
	}
	if ok, _ = repo.SetTrainingStatus(dbc, asset.ID, types.TrainingPending, types.TrainingRejected, reviewer); !ok {
		t.Fatal("reject failed")
	}
}

func TestListExportableGating(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := media.NewMediaRepo(tx, testutil.Logger(t))
	orgID := uuid.New()
	loc := testutil.SeedLocation(t, ctx, tx, orgID, "Export Home")
	reviewer := uuid.New()

	// faceless + approved: exportable
	clean := testutil.SeedMediaAsset(t, ctx, tx, loc, "clean.mp4")
	mustClaim(t, repo, dbc, clean.ID)
	if err := repo.CompleteFaceDetection(dbc, clean.ID, false, 0, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete face: %v", err)
	}
	mustApprove(t, repo, dbc, clean.ID, reviewer)

	// has faces, blur unapproved: blocked
	unblurred := testutil.SeedMediaAsset(t, ctx, tx, loc, "unblurred.mp4")
	mustClaim(t, repo, dbc, unblurred.ID)
	if err := repo.CompleteFaceDetection(dbc, unblurred.ID, true, 1, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete face: %v", err)
	}
	mustApprove(t, repo, dbc, unblurred.ID, reviewer)

	// has faces, blurred and review-approved: exportable
	blurred := testutil.SeedMediaAsset(t, ctx, tx, loc, "blurred.mp4")
	mustClaim(t, repo, dbc, blurred.ID)
	if err := repo.CompleteFaceDetection(dbc, blurred.ID, true, 1, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete face: %v", err)
	}
	if ok, _ := repo.ClaimForBlur(dbc, blurred.ID); !ok {
		t.Fatal("blur claim failed")
	}
	if err := repo.CompleteBlur(dbc, blurred.ID, "b/key.mp4", "https://cdn.example.com/b/key.mp4"); err != nil {
		t.Fatalf("complete blur: %v", err)
	}
	if ok, _ := repo.ApproveBlurReview(dbc, blurred.ID); !ok {
		t.Fatal("blur approve failed")
	}
	mustApprove(t, repo, dbc, blurred.ID, reviewer)

	// approved but in another org: invisible
	otherLoc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Other Org Home")
	foreign := testutil.SeedMediaAsset(t, ctx, tx, otherLoc, "foreign.mp4")
	mustClaim(t, repo, dbc, foreign.ID)
	if err := repo.CompleteFaceDetection(dbc, foreign.ID, false, 0, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete face: %v", err)
	}
	mustApprove(t, repo, dbc, foreign.ID, reviewer)

	ids := []uuid.UUID{clean.ID, unblurred.ID, blurred.ID, foreign.ID}
	exportable, err := repo.ListExportable(dbc, orgID, ids)
	if err != nil {
		t.Fatalf("list exportable: %v", err)
	}
	got := map[uuid.UUID]bool{}
	for _, a := range exportable {
		got[a.ID] = true
	}
	if !got[clean.ID] || !got[blurred.ID] {
		t.Fatalf("expected clean and blurred assets exportable, got %v", got)
	}
	if got[unblurred.ID] {
		t.Fatal("unapproved blur must block export")
	}
	if got[foreign.ID] {
		t.Fatal("foreign-org asset must be invisible")
	}
}

func TestListByLocationStatusFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := media.NewMediaRepo(tx, testutil.Logger(t))
	loc := testutil.SeedLocation(t, ctx, tx, uuid.New(), "Filter Home")

	pending := testutil.SeedMediaAsset(t, ctx, tx, loc, "pending.mp4")
	failed := testutil.SeedMediaAsset(t, ctx, tx, loc, "failed.mp4")
	mustClaim(t, repo, dbc, failed.ID)
	if err := repo.FailFaceDetection(dbc, failed.ID, "boom"); err != nil {
		t.Fatalf("fail face: %v", err)
	}

	all, err := repo.ListByLocation(dbc, loc.ID, media.ListFilters{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(all))
	}

	onlyFailed, err := repo.ListByLocation(dbc, loc.ID, media.ListFilters{FaceStatus: "failed"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(onlyFailed) != 1 || onlyFailed[0].ID != failed.ID {
		t.Fatalf("face status filter mismatch: %v", onlyFailed)
	}

	onlyPending, err := repo.ListByLocation(dbc, loc.ID, media.ListFilters{FaceStatus: "pending", TrainingStatus: "pending"})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(onlyPending) != 1 || onlyPending[0].ID != pending.ID {
		t.Fatalf("combined filter mismatch: %v", onlyPending)
	}
}

func mustClaim(t *testing.T, repo media.MediaRepo, dbc dbctx.Context, id uuid.UUID) {
	t.Helper()
	ok, err := repo.ClaimFaceByID(dbc, id, 30*time.Minute)
	if err != nil || !ok {
		t.Fatalf("claim %s: ok=%v err=%v", id, ok, err)
	}
}

func mustApprove(t *testing.T, repo media.MediaRepo, dbc dbctx.Context, id, reviewer uuid.UUID) {
	t.Helper()
	ok, err := repo.SetTrainingStatus(dbc, id, types.TrainingPending, types.TrainingApproved, reviewer)
	if err != nil || !ok {
		t.Fatalf("approve %s: ok=%v err=%v", id, ok, err)
	}
}
