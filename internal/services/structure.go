package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/roomloop/roomloop-backend/internal/clients/redis"
	"github.com/roomloop/roomloop-backend/internal/data/repos"
	structurerepo "github.com/roomloop/roomloop-backend/internal/data/repos/structure"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/pkg/dbctx"
	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
	"github.com/roomloop/roomloop-backend/internal/platform/envutil"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

// StructureTree is the fully assembled location hierarchy. Every slice
// is non-nil so JSON renders [] instead of null.
type StructureTree struct {
	LocationID        uuid.UUID       `json:"location_id"`
	Floors            []*FloorNode    `json:"floors"`
	RoomsWithoutFloor []*RoomNode     `json:"rooms_without_floor"`
	Stats             *StructureStats `json:"stats"`
}

type FloorNode struct {
	Floor *types.Floor `json:"floor"`
	Rooms []*RoomNode  `json:"rooms"`
}

type RoomNode struct {
	Room     *types.Room     `json:"room"`
	RoomType *types.RoomType `json:"room_type,omitempty"`
	Targets  []*TargetNode   `json:"targets"`
}

type TargetNode struct {
	Target     *types.Target     `json:"target"`
	TargetType *types.TargetType `json:"target_type,omitempty"`
	Actions    []*ActionNode     `json:"actions"`
}

type ActionNode struct {
	Action     *types.Action     `json:"action"`
	ActionType *types.ActionType `json:"action_type,omitempty"`
}

type StructureStats struct {
	FloorCount  int `json:"floor_count"`
	RoomCount   int `json:"room_count"`
	TargetCount int `json:"target_count"`
	ActionCount int `json:"action_count"`
}

// StructureService reads and edits the Floor -> Room -> Target -> Action
// hierarchy. Reads assemble the tree from flat per-level fetches joined
// in memory; a redis cache fronts the assembled tree.
type StructureService interface {
	GetTree(ctx context.Context, locationID uuid.UUID) (*StructureTree, error)
	ListRoomTypes(ctx context.Context) ([]*types.RoomType, error)
	ListTargetTypes(ctx context.Context) ([]*types.TargetType, error)
	ListActionTypes(ctx context.Context) ([]*types.ActionType, error)

	CreateFloor(ctx context.Context, floor *types.Floor) (*types.Floor, error)
	UpdateFloor(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteFloor(ctx context.Context, id uuid.UUID) error

	CreateRoom(ctx context.Context, room *types.Room) (*types.Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error

	CreateTarget(ctx context.Context, target *types.Target) (*types.Target, error)
	DeleteTarget(ctx context.Context, id uuid.UUID) error

	CreateAction(ctx context.Context, action *types.Action) (*types.Action, error)
	DeleteAction(ctx context.Context, id uuid.UUID) error
}

type structureService struct {
	db          *gorm.DB
	log         *logger.Logger
	floorRepo   repos.FloorRepo
	roomRepo    repos.RoomRepo
	targetRepo  repos.TargetRepo
	actionRepo  repos.ActionRepo
	refTypeRepo repos.RefTypeRepo
	cache       redisclient.Cache
	cacheTTL    time.Duration
}

func NewStructureService(
	db *gorm.DB,
	baseLog *logger.Logger,
	floorRepo repos.FloorRepo,
	roomRepo repos.RoomRepo,
	targetRepo repos.TargetRepo,
	actionRepo repos.ActionRepo,
	refTypeRepo repos.RefTypeRepo,
	cache redisclient.Cache,
) StructureService {
	return &structureService{
		db:          db,
		log:         baseLog.With("service", "StructureService"),
		floorRepo:   floorRepo,
		roomRepo:    roomRepo,
		targetRepo:  targetRepo,
		actionRepo:  actionRepo,
		refTypeRepo: refTypeRepo,
		cache:       cache,
		cacheTTL:    envutil.Duration("STRUCTURE_CACHE_TTL", 5*time.Minute),
	}
}

func structureCacheKey(locationID uuid.UUID) string {
	return "structure:tree:" + locationID.String()
}

func (s *structureService) GetTree(ctx context.Context, locationID uuid.UUID) (*StructureTree, error) {
	if locationID == uuid.Nil {
		return nil, apierr.Validation("location_required", fmt.Errorf("location id required"))
	}

	if s.cache != nil {
		var cached StructureTree
		if hit, err := s.cache.GetJSON(ctx, structureCacheKey(locationID), &cached); err != nil {
			s.log.Warn("structure cache read failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	tree, err := s.assembleTree(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, structureCacheKey(locationID), tree, s.cacheTTL); err != nil {
			s.log.Warn("structure cache write failed", "error", err)
		}
	}
	return tree, nil
}

// assembleTree does one flat fetch per level, then joins by parent id in
// memory. Four bounded queries regardless of hierarchy size.
func (s *structureService) assembleTree(ctx context.Context, locationID uuid.UUID) (*StructureTree, error) {
	dbc := dbctx.Context{Ctx: ctx}

	floors, err := s.floorRepo.ListByLocation(dbc, locationID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.roomRepo.ListByLocation(dbc, locationID)
	if err != nil {
		return nil, err
	}

	roomIDs := make([]uuid.UUID, 0, len(rooms))
	roomTypeIDs := []uuid.UUID{}
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
		if room.RoomTypeID != nil {
			roomTypeIDs = append(roomTypeIDs, *room.RoomTypeID)
		}
	}

	targets, err := s.targetRepo.ListByRoomIDs(dbc, roomIDs)
	if err != nil {
		return nil, err
	}
	targetIDs := make([]uuid.UUID, 0, len(targets))
	targetTypeIDs := []uuid.UUID{}
	for _, t := range targets {
		targetIDs = append(targetIDs, t.ID)
		if t.TargetTypeID != nil {
			targetTypeIDs = append(targetTypeIDs, *t.TargetTypeID)
		}
	}

	actions, err := s.actionRepo.ListByTargetIDs(dbc, targetIDs)
	if err != nil {
		return nil, err
	}
	actionTypeIDs := []uuid.UUID{}
	for _, a := range actions {
		if a.ActionTypeID != nil {
			actionTypeIDs = append(actionTypeIDs, *a.ActionTypeID)
		}
	}

	roomTypes, err := s.refTypeRepo.GetRoomTypesByIDs(dbc, roomTypeIDs)
	if err != nil {
		return nil, err
	}
	targetTypes, err := s.refTypeRepo.GetTargetTypesByIDs(dbc, targetTypeIDs)
	if err != nil {
		return nil, err
	}
	actionTypes, err := s.refTypeRepo.GetActionTypesByIDs(dbc, actionTypeIDs)
	if err != nil {
		return nil, err
	}

	actionsByTarget := map[uuid.UUID][]*ActionNode{}
	for _, a := range actions {
		node := &ActionNode{Action: a}
		if a.ActionTypeID != nil {
			node.ActionType = actionTypes[*a.ActionTypeID]
		}
		actionsByTarget[a.TargetID] = append(actionsByTarget[a.TargetID], node)
	}

	targetsByRoom := map[uuid.UUID][]*TargetNode{}
	for _, t := range targets {
		node := &TargetNode{Target: t, Actions: []*ActionNode{}}
		if t.TargetTypeID != nil {
			node.TargetType = targetTypes[*t.TargetTypeID]
		}
		if acts := actionsByTarget[t.ID]; acts != nil {
			node.Actions = acts
		}
		targetsByRoom[t.RoomID] = append(targetsByRoom[t.RoomID], node)
	}

	roomNode := func(room *types.Room) *RoomNode {
		node := &RoomNode{Room: room, Targets: []*TargetNode{}}
		if room.RoomTypeID != nil {
			node.RoomType = roomTypes[*room.RoomTypeID]
		}
		if ts := targetsByRoom[room.ID]; ts != nil {
			node.Targets = ts
		}
		return node
	}

	roomsByFloor := map[uuid.UUID][]*RoomNode{}
	withoutFloor := []*RoomNode{}
	for _, room := range rooms {
		if room.FloorID == nil {
			withoutFloor = append(withoutFloor, roomNode(room))
			continue
		}
		roomsByFloor[*room.FloorID] = append(roomsByFloor[*room.FloorID], roomNode(room))
	}

	floorNodes := make([]*FloorNode, 0, len(floors))
	for _, f := range floors {
		node := &FloorNode{Floor: f, Rooms: []*RoomNode{}}
		if rs := roomsByFloor[f.ID]; rs != nil {
			node.Rooms = rs
		}
		floorNodes = append(floorNodes, node)
	}

	return &StructureTree{
		LocationID:        locationID,
		Floors:            floorNodes,
		RoomsWithoutFloor: withoutFloor,
		Stats: &StructureStats{
			FloorCount:  len(floors),
			RoomCount:   len(rooms),
			TargetCount: len(targets),
			ActionCount: len(actions),
		},
	}, nil
}

func (s *structureService) ListRoomTypes(ctx context.Context) ([]*types.RoomType, error) {
	return s.refTypeRepo.ListRoomTypes(dbctx.Context{Ctx: ctx})
}

func (s *structureService) ListTargetTypes(ctx context.Context) ([]*types.TargetType, error) {
	return s.refTypeRepo.ListTargetTypes(dbctx.Context{Ctx: ctx})
}

func (s *structureService) ListActionTypes(ctx context.Context) ([]*types.ActionType, error) {
	return s.refTypeRepo.ListActionTypes(dbctx.Context{Ctx: ctx})
}

func (s *structureService) invalidate(ctx context.Context, locationID uuid.UUID) {
	if s.cache == nil || locationID == uuid.Nil {
		return
	}
	if err := s.cache.Invalidate(ctx, structureCacheKey(locationID)); err != nil {
		s.log.Warn("structure cache invalidate failed", "error", err)
	}
}

func (s *structureService) CreateFloor(ctx context.Context, floor *types.Floor) (*types.Floor, error) {
	out, err := s.floorRepo.Create(dbctx.Context{Ctx: ctx}, floor)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, floor.LocationID)
	return out, nil
}

func (s *structureService) UpdateFloor(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	dbc := dbctx.Context{Ctx: ctx}
	floor, err := s.floorRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if floor == nil {
		return apierr.NotFound("floor_not_found", fmt.Errorf("floor %s not found", id))
	}
	if err := s.floorRepo.UpdateFields(dbc, id, updates); err != nil {
		return err
	}
	s.invalidate(ctx, floor.LocationID)
	return nil
}

func (s *structureService) DeleteFloor(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	floor, err := s.floorRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if floor == nil {
		return apierr.NotFound("floor_not_found", fmt.Errorf("floor %s not found", id))
	}
	if err := s.floorRepo.Delete(dbc, id); err != nil {
		if errors.Is(err, structurerepo.ErrFloorNotEmpty) {
			return apierr.Conflict("structure_not_empty", err)
		}
		return err
	}
	s.invalidate(ctx, floor.LocationID)
	return nil
}

func (s *structureService) CreateRoom(ctx context.Context, room *types.Room) (*types.Room, error) {
	out, err := s.roomRepo.Create(dbctx.Context{Ctx: ctx}, room)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, room.LocationID)
	return out, nil
}

func (s *structureService) UpdateRoom(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	dbc := dbctx.Context{Ctx: ctx}
	room, err := s.roomRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if room == nil {
		return apierr.NotFound("room_not_found", fmt.Errorf("room %s not found", id))
	}
	if err := s.roomRepo.UpdateFields(dbc, id, updates); err != nil {
		return err
	}
	s.invalidate(ctx, room.LocationID)
	return nil
}

func (s *structureService) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	room, err := s.roomRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if room == nil {
		return apierr.NotFound("room_not_found", fmt.Errorf("room %s not found", id))
	}
	if err := s.roomRepo.Delete(dbc, id); err != nil {
		return err
	}
	s.invalidate(ctx, room.LocationID)
	return nil
}

func (s *structureService) CreateTarget(ctx context.Context, target *types.Target) (*types.Target, error) {
	dbc := dbctx.Context{Ctx: ctx}
	room, err := s.roomRepo.GetByID(dbc, target.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apierr.Validation("room_not_found", fmt.Errorf("room %s not found", target.RoomID))
	}
	out, err := s.targetRepo.Create(dbc, target)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, room.LocationID)
	return out, nil
}

func (s *structureService) DeleteTarget(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	target, err := s.targetRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if target == nil {
		return apierr.NotFound("target_not_found", fmt.Errorf("target %s not found", id))
	}
	room, err := s.roomRepo.GetByID(dbc, target.RoomID)
	if err != nil {
		return err
	}
	if err := s.targetRepo.Delete(dbc, id); err != nil {
		return err
	}
	if room != nil {
		s.invalidate(ctx, room.LocationID)
	}
	return nil
}

func (s *structureService) CreateAction(ctx context.Context, action *types.Action) (*types.Action, error) {
	dbc := dbctx.Context{Ctx: ctx}
	target, err := s.targetRepo.GetByID(dbc, action.TargetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apierr.Validation("target_not_found", fmt.Errorf("target %s not found", action.TargetID))
	}
	out, err := s.actionRepo.Create(dbc, action)
	if err != nil {
		return nil, err
	}
	if room, roomErr := s.roomRepo.GetByID(dbc, target.RoomID); roomErr == nil && room != nil {
		s.invalidate(ctx, room.LocationID)
	}
	return out, nil
}

func (s *structureService) DeleteAction(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	action, err := s.actionRepo.GetByID(dbc, id)
	if err != nil {
		return err
	}
	if action == nil {
		return apierr.NotFound("action_not_found", fmt.Errorf("action %s not found", id))
	}
	if err := s.actionRepo.Delete(dbc, id); err != nil {
		return err
	}
	if target, tErr := s.targetRepo.GetByID(dbc, action.TargetID); tErr == nil && target != nil {
		if room, rErr := s.roomRepo.GetByID(dbc, target.RoomID); rErr == nil && room != nil {
			s.invalidate(ctx, room.LocationID)
		}
	}
	return nil
}
