package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/roomloop/roomloop-backend/internal/data/repos/deliveries"
	"github.com/roomloop/roomloop-backend/internal/data/repos/media"
	"github.com/roomloop/roomloop-backend/internal/data/repos/testutil"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/services"
)

func TestCreateDeliveryGatesOnExportability(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	mediaRepo := media.NewMediaRepo(tx, log)
	svc := services.NewDeliveryService(tx, log,
		deliveries.NewDeliveryRepo(tx, log),
		mediaRepo,
	)

	orgID := uuid.New()
	loc := testutil.SeedLocation(t, ctx, tx, orgID, "Delivery Home")
	reviewer := uuid.New()

	ready := testutil.SeedMediaAsset(t, ctx, tx, loc, "ready.mp4")
	if ok, _ := mediaRepo.ClaimFaceByID(dbc, ready.ID, 30*time.Minute); !ok {
		t.Fatal("claim failed")
	}
	if err := mediaRepo.CompleteFaceDetection(dbc, ready.ID, false, 0, datatypes.JSON([]byte("[]"))); err != nil {
		t.Fatalf("complete face: %v", err)
	}
	if ok, _ := mediaRepo.SetTrainingStatus(dbc, ready.ID, types.TrainingPending, types.TrainingApproved, reviewer); !ok {
		t.Fatal("approve failed")
	}

	unreviewed := testutil.SeedMediaAsset(t, ctx, tx, loc, "unreviewed.mp4")

	partner := uuid.New()
	actor := uuid.New()

	// a delivery containing an ungated asset is refused whole
	_, err := svc.CreateDelivery(ctx, services.CreateDeliveryInput{
		OrganizationID: orgID,
		PartnerID:      partner,
		MediaIDs:       []uuid.UUID{ready.ID, unreviewed.ID},
		CreatedBy:      actor,
	})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != "media_not_exportable" {
		t.Fatalf("expected media_not_exportable conflict, got %v", err)
	}

	_, err = svc.CreateDelivery(ctx, services.CreateDeliveryInput{
		OrganizationID: orgID,
		PartnerID:      partner,
		CreatedBy:      actor,
	})
	if !errors.As(err, &apiErr) || apiErr.Code != "media_ids_required" {
		t.Fatalf("expected media_ids_required, got %v", err)
	}

	created, err := svc.CreateDelivery(ctx, services.CreateDeliveryInput{
		OrganizationID: orgID,
		PartnerID:      partner,
		MediaIDs:       []uuid.UUID{ready.ID},
		Notes:          "first handoff",
		CreatedBy:      actor,
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	if created.VideoCount != 1 || created.PartnerID != partner {
		t.Fatalf("unexpected delivery: %+v", created)
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(created.MediaIDs, &ids); err != nil || len(ids) != 1 || ids[0] != ready.ID {
		t.Fatalf("media id snapshot mismatch: %v %v", ids, err)
	}

	got, err := svc.GetDelivery(ctx, created.ID)
	if err != nil || got == nil {
		t.Fatalf("get delivery: %v", err)
	}

	_, err = svc.GetDelivery(ctx, uuid.New())
	if !errors.As(err, &apiErr) || apiErr.Code != "delivery_not_found" {
		t.Fatalf("expected delivery_not_found, got %v", err)
	}

	byOrg, err := svc.ListByOrganization(ctx, orgID)
	if err != nil || len(byOrg) != 1 {
		t.Fatalf("list by org: %v %d", err, len(byOrg))
	}
	byPartner, err := svc.ListByPartner(ctx, partner)
	if err != nil || len(byPartner) != 1 {
		t.Fatalf("list by partner: %v %d", err, len(byPartner))
	}

	// repeated ids collapse to one video, in the count and the snapshot
	dup, err := svc.CreateDelivery(ctx, services.CreateDeliveryInput{
		OrganizationID: orgID,
		PartnerID:      partner,
		MediaIDs:       []uuid.UUID{ready.ID, ready.ID, ready.ID},
		CreatedBy:      actor,
	})
	if err != nil {
		t.Fatalf("create delivery with repeats: %v", err)
	}
	if dup.VideoCount != 1 {
		t.Fatalf("video count must dedupe, got %d", dup.VideoCount)
	}
	ids = ids[:0]
	if err := json.Unmarshal(dup.MediaIDs, &ids); err != nil || len(ids) != 1 || ids[0] != ready.ID {
		t.Fatalf("deduped snapshot mismatch: %v %v", ids, err)
	}
}
