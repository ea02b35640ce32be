package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/http/response"
	"github.com/roomloop/roomloop-backend/internal/services"
)

type StructureHandler struct {
	structure services.StructureService
}

func NewStructureHandler(structure services.StructureService) *StructureHandler {
	return &StructureHandler{structure: structure}
}

func (h *StructureHandler) GetTree(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
		return
	}
	tree, err := h.structure.GetTree(c.Request.Context(), locationID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, tree)
}

func (h *StructureHandler) ListReferenceTypes(c *gin.Context) {
	ctx := c.Request.Context()
	roomTypes, err := h.structure.ListRoomTypes(ctx)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	targetTypes, err := h.structure.ListTargetTypes(ctx)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	actionTypes, err := h.structure.ListActionTypes(ctx)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"room_types":   roomTypes,
		"target_types": targetTypes,
		"action_types": actionTypes,
	})
}

type createFloorRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

func (h *StructureHandler) CreateFloor(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
		return
	}
	var req createFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	floor, err := h.structure.CreateFloor(c.Request.Context(), &types.Floor{
		LocationID: locationID,
		Name:       req.Name,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, floor)
}

func (h *StructureHandler) DeleteFloor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_floor_id", err)
		return
	}
	if err := h.structure.DeleteFloor(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type createRoomRequest struct {
	FloorID    *uuid.UUID `json:"floor_id"`
	RoomTypeID *uuid.UUID `json:"room_type_id"`
	CustomName string     `json:"custom_name"`
	SortOrder  int        `json:"sort_order"`
}

func (h *StructureHandler) CreateRoom(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	room, err := h.structure.CreateRoom(c.Request.Context(), &types.Room{
		LocationID: locationID,
		FloorID:    req.FloorID,
		RoomTypeID: req.RoomTypeID,
		CustomName: req.CustomName,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, room)
}

func (h *StructureHandler) DeleteRoom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	if err := h.structure.DeleteRoom(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type createTargetRequest struct {
	TargetTypeID *uuid.UUID `json:"target_type_id"`
	CustomName   string     `json:"custom_name"`
	SortOrder    int        `json:"sort_order"`
}

func (h *StructureHandler) CreateTarget(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	var req createTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	target, err := h.structure.CreateTarget(c.Request.Context(), &types.Target{
		RoomID:       roomID,
		TargetTypeID: req.TargetTypeID,
		CustomName:   req.CustomName,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, target)
}

func (h *StructureHandler) DeleteTarget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_target_id", err)
		return
	}
	if err := h.structure.DeleteTarget(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type createActionRequest struct {
	ActionTypeID             *uuid.UUID `json:"action_type_id"`
	EstimatedDurationSeconds *int       `json:"estimated_duration_seconds"`
	SortOrder                int        `json:"sort_order"`
}

func (h *StructureHandler) CreateAction(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_target_id", err)
		return
	}
	var req createActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	action, err := h.structure.CreateAction(c.Request.Context(), &types.Action{
		TargetID:                 targetID,
		ActionTypeID:             req.ActionTypeID,
		EstimatedDurationSeconds: req.EstimatedDurationSeconds,
		SortOrder:                req.SortOrder,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, action)
}

func (h *StructureHandler) DeleteAction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_action_id", err)
		return
	}
	if err := h.structure.DeleteAction(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
