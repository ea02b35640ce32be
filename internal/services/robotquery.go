package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// RobotQueryRequest is the filter set a robot submits. All predicates
// are optional and combine with AND.
type RobotQueryRequest struct {
	LocationID        string   `json:"locationId"`
	TaskID            string   `json:"taskId"`
	TaskTitle         string   `json:"taskTitle"`
	ActionVerb        string   `json:"actionVerb"`
	MomentType        string   `json:"momentType"`
	RoomLocation      string   `json:"roomLocation"`
	Keywords          []string `json:"keywords"`
	Tags              []string `json:"tags"`
	HumanVerifiedOnly bool     `json:"humanVerifiedOnly"`
	MinConfidence     *float64 `json:"minConfidence"`
	Limit             int      `json:"limit"`
}

type RobotQueryResponse struct {
	Query    RobotQueryRequest `json:"query"`
	Results  RobotQueryResults `json:"results"`
	Metadata RobotQueryMeta    `json:"metadata"`
}

type RobotQueryResults struct {
	Count   int            `json:"count"`
	Moments []*RobotMoment `json:"moments"`
}

type RobotQueryMeta struct {
	Timestamp  string `json:"timestamp"`
	APIVersion string `json:"apiVersion"`
}

type RobotMoment struct {
	ID         uuid.UUID        `json:"id"`
	Action     RobotAction      `json:"action"`
	Location   RobotLocation    `json:"location"`
	Task       RobotTask        `json:"task"`
	Timing     RobotTiming      `json:"timing"`
	Media      []*RobotMedia    `json:"media"`
	Preference *RobotPreference `json:"preference"`
	Quality    RobotQuality     `json:"quality"`
	Tags       json.RawMessage  `json:"tags"`
	Keywords   json.RawMessage  `json:"keywords"`
}

type RobotAction struct {
	Verb        string `json:"verb"`
	Target      string `json:"target,omitempty"`
	Description string `json:"description,omitempty"`
}

type RobotLocation struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
	Room    string    `json:"room,omitempty"`
}

type RobotTask struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type RobotTiming struct {
	SequenceOrder     int  `json:"sequenceOrder"`
	EstimatedDuration *int `json:"estimatedDuration"`
}

type RobotMedia struct {
	MediaID      uuid.UUID `json:"mediaId"`
	MediaType    string    `json:"mediaType"`
	StorageURL   string    `json:"storageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Role         string    `json:"role"`
	TimeOffset   *float64  `json:"timeOffset"`
}

type RobotPreference struct {
	CustomInstruction string    `json:"customInstruction"`
	UpdatedBy         uuid.UUID `json:"updatedBy"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type RobotQuality struct {
	HumanVerified  bool     `json:"humanVerified"`
	Confidence     *float64 `json:"confidence"`
	ExecutionCount int      `json:"executionCount"`
	SuccessRate    *float64 `json:"successRate"`
}

// RobotQueryService answers robot instruction queries: a flat moment
// scan under typed predicates, then media links and location preference
// overlays joined in memory by parent id.
type RobotQueryService interface {
	Query(ctx context.Context, req RobotQueryRequest) (*RobotQueryResponse, error)
}

type robotQueryService struct {
	db           *gorm.DB
	log          *logger.Logger
	momentRepo   repos.MomentRepo
	mediaRepo    repos.MediaRepo
	prefRepo     repos.PreferenceRepo
	locationRepo repos.LocationRepo
	taskRepo     repos.TaskRepo
}

func NewRobotQueryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	momentRepo repos.MomentRepo,
	mediaRepo repos.MediaRepo,
	prefRepo repos.PreferenceRepo,
	locationRepo repos.LocationRepo,
	taskRepo repos.TaskRepo,
) RobotQueryService {
	return &robotQueryService{
		db:           db,
		log:          baseLog.With("service", "RobotQueryService"),
		momentRepo:   momentRepo,
		mediaRepo:    mediaRepo,
		prefRepo:     prefRepo,
		locationRepo: locationRepo,
		taskRepo:     taskRepo,
	}
}

func (s *robotQueryService) Query(ctx context.Context, req RobotQueryRequest) (*RobotQueryResponse, error) {
	dbc := dbctx.Context{Ctx: ctx}

	filters := repos.MomentQueryFilters{
		TaskTitle:     req.TaskTitle,
		RoomLocation:  req.RoomLocation,
		ActionVerb:    req.ActionVerb,
		Keywords:      req.Keywords,
		Tags:          req.Tags,
		VerifiedOnly:  req.HumanVerifiedOnly,
		MinConfidence: req.MinConfidence,
		Limit:         req.Limit,
	}
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if id, err := uuid.Parse(req.LocationID); err == nil && req.LocationID != "" {
		filters.LocationID = id
	}
	if id, err := uuid.Parse(req.TaskID); err == nil && req.TaskID != "" {
		filters.TaskID = id
	}
	if req.MomentType != "" {
		filters.MomentType = types.MomentType(req.MomentType)
	}

	moments, err := s.momentRepo.Query(dbc, filters)
	if err != nil {
		return nil, err
	}

	out := &RobotQueryResponse{
		Query:   req,
		Results: RobotQueryResults{Count: len(moments), Moments: []*RobotMoment{}},
		Metadata: RobotQueryMeta{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			APIVersion: "v1",
		},
	}
	if len(moments) == 0 {
		return out, nil
	}

	momentIDs := make([]uuid.UUID, 0, len(moments))
	locationIDs := map[uuid.UUID]bool{}
	taskIDs := map[uuid.UUID]bool{}
	for _, m := range moments {
		momentIDs = append(momentIDs, m.ID)
		locationIDs[m.LocationID] = true
		taskIDs[m.TaskID] = true
	}

	links, err := s.momentRepo.MediaLinksByMomentIDs(dbc, momentIDs)
	if err != nil {
		return nil, err
	}
	mediaIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		mediaIDs = append(mediaIDs, l.MediaID)
	}
	mediaAssets, err := s.mediaRepo.GetByIDs(dbc, mediaIDs)
	if err != nil {
		return nil, err
	}
	mediaByID := map[uuid.UUID]*types.MediaAsset{}
	for _, a := range mediaAssets {
		mediaByID[a.ID] = a
	}
	mediaByMoment := map[uuid.UUID][]*RobotMedia{}
	for _, l := range links {
		asset := mediaByID[l.MediaID]
		if asset == nil {
			continue
		}
		mediaByMoment[l.MomentID] = append(mediaByMoment[l.MomentID], &RobotMedia{
			MediaID:      asset.ID,
			MediaType:    asset.MediaType,
			StorageURL:   asset.StorageURL,
			ThumbnailURL: asset.ThumbnailURL,
			Role:         l.MediaRole,
			TimeOffset:   l.TimeOffsetSeconds,
		})
	}

	// Preferences are scoped per location; fetch per distinct location.
	prefsByMoment := map[uuid.UUID]*types.LocationPreference{}
	for locID := range locationIDs {
		prefs, err := s.prefRepo.GetForMoments(dbc, locID, momentIDs)
		if err != nil {
			return nil, err
		}
		for momentID, p := range prefs {
			prefsByMoment[momentID] = p
		}
	}

	locations := map[uuid.UUID]*types.Location{}
	for locID := range locationIDs {
		loc, err := s.locationRepo.GetByID(dbc, locID)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			locations[locID] = loc
		}
	}
	tasks := map[uuid.UUID]*types.Task{}
	for taskID := range taskIDs {
		task, err := s.taskRepo.GetByID(dbc, taskID)
		if err != nil {
			return nil, err
		}
		if task != nil {
			tasks[taskID] = task
		}
	}

	for _, m := range moments {
		rm := &RobotMoment{
			ID: m.ID,
			Action: RobotAction{
				Verb:        m.ActionVerb,
				Target:      m.ObjectTarget,
				Description: m.Description,
			},
			Location: RobotLocation{ID: m.LocationID, Room: m.RoomLocation},
			Task:     RobotTask{ID: m.TaskID},
			Timing: RobotTiming{
				SequenceOrder:     m.SequenceOrder,
				EstimatedDuration: m.EstimatedDurationSeconds,
			},
			// media is always an array, never null
			Media: []*RobotMedia{},
			Quality: RobotQuality{
				HumanVerified:  m.HumanVerified,
				Confidence:     m.ConfidenceScore,
				ExecutionCount: m.RobotExecutionCount,
				SuccessRate:    m.RobotSuccessRate,
			},
			Tags:     rawOrEmptyArray(m.Tags),
			Keywords: rawOrEmptyArray(m.Keywords),
		}
		if loc := locations[m.LocationID]; loc != nil {
			rm.Location.Name = loc.Name
			rm.Location.Address = loc.Address
		}
		if task := tasks[m.TaskID]; task != nil {
			rm.Task.Title = task.Title
		}
		if media := mediaByMoment[m.ID]; media != nil {
			rm.Media = media
		}
		// preference stays null unless a non-empty override exists
		if p := prefsByMoment[m.ID]; p != nil && p.CustomInstruction != "" {
			rm.Preference = &RobotPreference{
				CustomInstruction: p.CustomInstruction,
				UpdatedBy:         p.CreatedBy,
				UpdatedAt:         p.UpdatedAt,
			}
		}
		out.Results.Moments = append(out.Results.Moments, rm)
	}
	return out, nil
}

func rawOrEmptyArray(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("[]")
	}
	return json.RawMessage(raw)
}
