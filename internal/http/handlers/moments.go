package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomloop/roomloop-backend/internal/data/repos"
	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/http/response"
	"github.com/roomloop/roomloop-backend/internal/pkg/ctxutil"
	"github.com/roomloop/roomloop-backend/internal/services"
)

type MomentHandler struct {
	moments  services.MomentService
	compiler services.CompilerService
}

func NewMomentHandler(moments services.MomentService, compiler services.CompilerService) *MomentHandler {
	return &MomentHandler{moments: moments, compiler: compiler}
}

type createMomentRequest struct {
	LocationID   uuid.UUID `json:"location_id" binding:"required"`
	TaskID       uuid.UUID `json:"task_id" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	MomentType   string    `json:"moment_type"`
	ActionVerb   string    `json:"action_verb"`
	ObjectTarget string    `json:"object_target"`
	RoomLocation string    `json:"room_location"`
	Sequence     *int      `json:"sequence_order"`
	Duration     *int      `json:"estimated_duration_seconds"`
	Tags         []string  `json:"tags"`
	Keywords     []string  `json:"keywords"`
}

func (h *MomentHandler) Create(c *gin.Context) {
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createMomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	moment, err := h.moments.CreateMoment(c.Request.Context(), services.CreateMomentInput{
		OrganizationID: actor.OrganizationID,
		LocationID:     req.LocationID,
		TaskID:         req.TaskID,
		Title:          req.Title,
		Description:    req.Description,
		MomentType:     req.MomentType,
		ActionVerb:     req.ActionVerb,
		ObjectTarget:   req.ObjectTarget,
		RoomLocation:   req.RoomLocation,
		Sequence:       req.Sequence,
		Duration:       req.Duration,
		Tags:           req.Tags,
		Keywords:       req.Keywords,
		CreatedBy:      actor.ID,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, moment)
}

func (h *MomentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}
	moment, err := h.moments.GetMoment(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, moment)
}

func (h *MomentHandler) List(c *gin.Context) {
	filters := repos.MomentQueryFilters{
		RoomLocation: c.Query("room_location"),
		ActionVerb:   c.Query("action_verb"),
		VerifiedOnly: c.Query("verified_only") == "true",
	}
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
			return
		}
		filters.LocationID = id
	}
	if raw := c.Query("task_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_task_id", err)
			return
		}
		filters.TaskID = id
	}
	if raw := c.Query("moment_type"); raw != "" {
		filters.MomentType = types.MomentType(raw)
	}
	moments, err := h.moments.ListMoments(c.Request.Context(), filters)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if moments == nil {
		moments = []*types.Moment{}
	}
	response.RespondOK(c, gin.H{"moments": moments, "count": len(moments)})
}

type updateMomentRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ActionVerb   *string `json:"action_verb"`
	ObjectTarget *string `json:"object_target"`
	RoomLocation *string `json:"room_location"`
	Duration     *int    `json:"estimated_duration_seconds"`
	Verified     *bool   `json:"human_verified"`
}

func (h *MomentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}
	var req updateMomentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	moment, err := h.moments.UpdateMoment(c.Request.Context(), id, services.UpdateMomentInput{
		Title:        req.Title,
		Description:  req.Description,
		ActionVerb:   req.ActionVerb,
		ObjectTarget: req.ObjectTarget,
		RoomLocation: req.RoomLocation,
		Duration:     req.Duration,
		Verified:     req.Verified,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, moment)
}

func (h *MomentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}
	if err := h.moments.DeleteMoment(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type generateMomentsRequest struct {
	TaskID uuid.UUID `json:"task_id" binding:"required"`
}

// Generate compiles a task's written instructions into moments.
func (h *MomentHandler) Generate(c *gin.Context) {
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req generateMomentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, skipped, err := h.compiler.GenerateFromTask(c.Request.Context(), req.TaskID, actor.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"moments": created,
		"created": len(created),
		"skipped": skipped,
	})
}

type linkMediaRequest struct {
	MediaID    uuid.UUID `json:"media_id" binding:"required"`
	Role       string    `json:"media_role"`
	TimeOffset *float64  `json:"time_offset_seconds"`
}

func (h *MomentHandler) LinkMedia(c *gin.Context) {
	momentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}
	var req linkMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.moments.LinkMedia(c.Request.Context(), momentID, req.MediaID, req.Role, req.TimeOffset); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *MomentHandler) UnlinkMedia(c *gin.Context) {
	momentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}
	mediaID, err := uuid.Parse(c.Param("mediaId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	if err := h.moments.UnlinkMedia(c.Request.Context(), momentID, mediaID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type preferenceRequest struct {
	CustomInstruction string `json:"custom_instruction" binding:"required"`
}

func (h *MomentHandler) SetPreference(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
		return
	}
	momentID, err := uuid.Parse(c.Param("momentId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	pref, err := h.moments.SetPreference(c.Request.Context(), locationID, momentID, actor.ID, req.CustomInstruction)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, pref)
}

func (h *MomentHandler) DeletePreference(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
		return
	}
	momentID, err := uuid.Parse(c.Param("momentId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_moment_id", err)
		return
	}
	if err := h.moments.DeletePreference(c.Request.Context(), locationID, momentID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
