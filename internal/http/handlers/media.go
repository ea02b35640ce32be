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

type MediaHandler struct {
	media      services.MediaService
	faceDetect services.FaceDetectionService
	labeling   services.LabelingService
	blur       services.BlurService
	review     services.ReviewService
}

func NewMediaHandler(
	media services.MediaService,
	faceDetect services.FaceDetectionService,
	labeling services.LabelingService,
	blur services.BlurService,
	review services.ReviewService,
) *MediaHandler {
	return &MediaHandler{
		media:      media,
		faceDetect: faceDetect,
		labeling:   labeling,
		blur:       blur,
		review:     review,
	}
}

// Upload accepts a multipart video and registers the asset.
func (h *MediaHandler) Upload(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
		return
	}
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "file_required", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	defer file.Close()

	asset, err := h.media.Upload(c.Request.Context(), services.UploadInput{
		OrganizationID: actor.OrganizationID,
		LocationID:     locationID,
		UploaderID:     actor.ID,
		FileName:       fileHeader.Filename,
		MimeType:       fileHeader.Header.Get("Content-Type"),
		SizeBytes:      fileHeader.Size,
		Body:           file,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, asset)
}

func (h *MediaHandler) GetMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	asset, err := h.media.GetMedia(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, asset)
}

func (h *MediaHandler) ListByLocation(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_location_id", err)
		return
	}
	filters := repos.MediaListFilters{
		FaceStatus:     c.Query("face_status"),
		BlurStatus:     c.Query("blur_status"),
		AIStatus:       c.Query("ai_status"),
		TrainingStatus: c.Query("training_status"),
	}
	assets, err := h.media.ListByLocation(c.Request.Context(), locationID, filters)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if assets == nil {
		assets = []*types.MediaAsset{}
	}
	response.RespondOK(c, gin.H{"media": assets, "count": len(assets)})
}

// DetectFaces runs an on-demand synchronous face scan on one asset.
func (h *MediaHandler) DetectFaces(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	asset, err := h.faceDetect.DetectOne(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, asset)
}

// ProcessFaceDetection drains one batch of the face-detection queue.
func (h *MediaHandler) ProcessFaceDetection(c *gin.Context) {
	n, err := h.faceDetect.ProcessBatch(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"processed": n})
}

// ProcessLabeling drains one batch of the AI labeling queue.
func (h *MediaHandler) ProcessLabeling(c *gin.Context) {
	n, err := h.labeling.ProcessBatch(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"processed": n})
}

func (h *MediaHandler) RequestBlur(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	if err := h.blur.RequestBlur(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (h *MediaHandler) BlurReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	switch req.Decision {
	case "approve":
		err = h.blur.ApproveReview(c.Request.Context(), id)
	case "reject":
		err = h.blur.RejectReview(c.Request.Context(), id)
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_decision", nil)
		return
	}
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *MediaHandler) TrainingReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	var to string
	switch req.Decision {
	case "approve":
		to = "approved"
	case "reject":
		to = "rejected"
	case "reopen":
		to = "pending"
	default:
		response.RespondError(c, http.StatusBadRequest, "invalid_decision", nil)
		return
	}
	asset, err := h.review.SetTrainingStatus(c.Request.Context(), id, types.TrainingStatus(to), actor.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, asset)
}

type resetRequest struct {
	Track string `json:"track" binding:"required"`
}

func (h *MediaHandler) ResetTrack(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_media_id", err)
		return
	}
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	asset, err := h.media.ResetTrack(c.Request.Context(), id, req.Track)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, asset)
}

func (h *MediaHandler) Stats(c *gin.Context) {
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	counts, err := h.media.Stats(c.Request.Context(), actor.OrganizationID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, counts)
}
