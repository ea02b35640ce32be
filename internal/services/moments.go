package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// MomentService covers manual moment authoring and the location
// preference overlay: operator-entered moments, descriptive-field edits,
// media links, and per-location instruction overrides.
type MomentService interface {
	CreateMoment(ctx context.Context, in CreateMomentInput) (*types.Moment, error)
	GetMoment(ctx context.Context, id uuid.UUID) (*types.Moment, error)
	ListMoments(ctx context.Context, f repos.MomentQueryFilters) ([]*types.Moment, error)
	UpdateMoment(ctx context.Context, id uuid.UUID, in UpdateMomentInput) (*types.Moment, error)
	DeleteMoment(ctx context.Context, id uuid.UUID) error

	LinkMedia(ctx context.Context, momentID, mediaID uuid.UUID, role string, timeOffset *float64) error
	UnlinkMedia(ctx context.Context, momentID, mediaID uuid.UUID) error

	SetPreference(ctx context.Context, locationID, momentID, actorID uuid.UUID, customInstruction string) (*types.LocationPreference, error)
	DeletePreference(ctx context.Context, locationID, momentID uuid.UUID) error
}

type CreateMomentInput struct {
	OrganizationID uuid.UUID
	LocationID     uuid.UUID
	TaskID         uuid.UUID
	Title          string
	Description    string
	MomentType     string
	ActionVerb     string
	ObjectTarget   string
	RoomLocation   string
	Sequence       *int
	Duration       *int
	Tags           []string
	Keywords       []string
	CreatedBy      uuid.UUID
}

type UpdateMomentInput struct {
	Title        *string
	Description  *string
	ActionVerb   *string
	ObjectTarget *string
	RoomLocation *string
	Duration     *int
	Verified     *bool
}

type momentService struct {
	db         *gorm.DB
	log        *logger.Logger
	momentRepo repos.MomentRepo
	mediaRepo  repos.MediaRepo
	prefRepo   repos.PreferenceRepo
}

func NewMomentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	momentRepo repos.MomentRepo,
	mediaRepo repos.MediaRepo,
	prefRepo repos.PreferenceRepo,
) MomentService {
	return &momentService{
		db:         db,
		log:        baseLog.With("service", "MomentService"),
		momentRepo: momentRepo,
		mediaRepo:  mediaRepo,
		prefRepo:   prefRepo,
	}
}

func (s *momentService) CreateMoment(ctx context.Context, in CreateMomentInput) (*types.Moment, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("title_required", fmt.Errorf("moment title is required"))
	}
	momentType := types.MomentType(in.MomentType)
	if in.MomentType == "" {
		momentType = types.MomentAction
	}
	if !types.ValidMomentType(momentType) {
		return nil, apierr.Validation("invalid_moment_type", fmt.Errorf("invalid moment type %q", in.MomentType))
	}

	dbc := dbctx.Context{Ctx: ctx}
	seq := 0
	if in.Sequence != nil {
		seq = *in.Sequence
	} else {
		max, err := s.momentRepo.MaxSequenceByTask(dbc, in.TaskID)
		if err != nil {
			return nil, err
		}
		seq = max + 1
	}

	tagsJSON, err := jsonArray(in.Tags)
	if err != nil {
		return nil, apierr.Internal("marshal_tags", err)
	}
	keywordsJSON, err := jsonArray(in.Keywords)
	if err != nil {
		return nil, apierr.Internal("marshal_keywords", err)
	}

	moment := &types.Moment{
		OrganizationID:           in.OrganizationID,
		LocationID:               in.LocationID,
		TaskID:                   in.TaskID,
		Title:                    title,
		Description:              in.Description,
		MomentType:               momentType,
		ActionVerb:               strings.ToLower(strings.TrimSpace(in.ActionVerb)),
		ObjectTarget:             in.ObjectTarget,
		RoomLocation:             in.RoomLocation,
		SequenceOrder:            seq,
		EstimatedDurationSeconds: in.Duration,
		Tags:                     tagsJSON,
		Keywords:                 keywordsJSON,
		Source:                   types.SourceManualEntry,
		CreatedBy:                in.CreatedBy,
	}
	created, err := s.momentRepo.Create(dbc, []*types.Moment{moment})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *momentService) GetMoment(ctx context.Context, id uuid.UUID) (*types.Moment, error) {
	moment, err := s.momentRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if moment == nil {
		return nil, apierr.NotFound("moment_not_found", fmt.Errorf("moment %s not found", id))
	}
	return moment, nil
}

func (s *momentService) ListMoments(ctx context.Context, f repos.MomentQueryFilters) ([]*types.Moment, error) {
	return s.momentRepo.Query(dbctx.Context{Ctx: ctx}, f)
}

func (s *momentService) UpdateMoment(ctx context.Context, id uuid.UUID, in UpdateMomentInput) (*types.Moment, error) {
	dbc := dbctx.Context{Ctx: ctx}
	moment, err := s.momentRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if moment == nil {
		return nil, apierr.NotFound("moment_not_found", fmt.Errorf("moment %s not found", id))
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apierr.Validation("title_required", fmt.Errorf("moment title cannot be empty"))
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ActionVerb != nil {
		updates["action_verb"] = strings.ToLower(strings.TrimSpace(*in.ActionVerb))
	}
	if in.ObjectTarget != nil {
		updates["object_target"] = *in.ObjectTarget
	}
	if in.RoomLocation != nil {
		updates["room_location"] = *in.RoomLocation
	}
	if in.Duration != nil {
		updates["estimated_duration_seconds"] = *in.Duration
	}
	if in.Verified != nil {
		updates["human_verified"] = *in.Verified
	}
	if len(updates) == 0 {
		return moment, nil
	}
	if err := s.momentRepo.UpdateFields(dbc, id, updates); err != nil {
		return nil, err
	}
	return s.momentRepo.GetByID(dbc, id)
}

func (s *momentService) DeleteMoment(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	moment, err := s.momentRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if moment == nil {
		return apierr.NotFound("moment_not_found", fmt.Errorf("moment %s not found", id))
	}
	return s.momentRepo.Delete(dbc, id)
}

func (s *momentService) LinkMedia(ctx context.Context, momentID, mediaID uuid.UUID, role string, timeOffset *float64) error {
	dbc := dbctx.Context{Ctx: ctx}
	moment, err := s.momentRepo.GetByID(dbc, momentID)
	if err != nil {
		return err
	}
	if moment == nil {
		return apierr.NotFound("moment_not_found", fmt.Errorf("moment %s not found", momentID))
	}
	asset, err := s.mediaRepo.GetByID(dbc, mediaID)
	if err != nil {
		return err
	}
	if asset == nil {
		return apierr.NotFound("media_not_found", fmt.Errorf("media %s not found", mediaID))
	}
	if role == "" {
		role = "demonstration"
	}
	return s.momentRepo.LinkMedia(dbc, []*types.MomentMedia{{
		MomentID:          momentID,
		MediaID:           mediaID,
		MediaRole:         role,
		TimeOffsetSeconds: timeOffset,
	}})
}

func (s *momentService) UnlinkMedia(ctx context.Context, momentID, mediaID uuid.UUID) error {
	return s.momentRepo.UnlinkMedia(dbctx.Context{Ctx: ctx}, momentID, mediaID)
}

func (s *momentService) SetPreference(ctx context.Context, locationID, momentID, actorID uuid.UUID, customInstruction string) (*types.LocationPreference, error) {
	if strings.TrimSpace(customInstruction) == "" {
		return nil, apierr.Validation("custom_instruction_required", fmt.Errorf("custom instruction is required"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	moment, err := s.momentRepo.GetByID(dbc, momentID)
	if err != nil {
		return nil, err
	}
	if moment == nil {
		return nil, apierr.NotFound("moment_not_found", fmt.Errorf("moment %s not found", momentID))
	}
	return s.prefRepo.Upsert(dbc, &types.LocationPreference{
		LocationID:        locationID,
		MomentID:          momentID,
		CustomInstruction: customInstruction,
		CreatedBy:         actorID,
	})
}

func (s *momentService) DeletePreference(ctx context.Context, locationID, momentID uuid.UUID) error {
	deleted, err := s.prefRepo.Delete(dbctx.Context{Ctx: ctx}, locationID, momentID)
	if err != nil {
		return err
	}
	if !deleted {
		return apierr.NotFound("preference_not_found",
			fmt.Errorf("no preference for moment %s at location %s", momentID, locationID))
	}
	return nil
}

func jsonArray(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}
