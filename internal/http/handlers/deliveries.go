package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/roomloop/roomloop-backend/internal/domain"
	"github.com/roomloop/roomloop-backend/internal/http/response"
	"github.com/roomloop/roomloop-backend/internal/pkg/ctxutil"
	"github.com/roomloop/roomloop-backend/internal/services"
)

type DeliveryHandler struct {
	deliveries services.DeliveryService
}

func NewDeliveryHandler(deliveries services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries}
}

type createDeliveryRequest struct {
	PartnerID uuid.UUID   `json:"partner_id" binding:"required"`
	MediaIDs  []uuid.UUID `json:"media_ids" binding:"required"`
	Notes     string      `json:"notes"`
}

func (h *DeliveryHandler) Create(c *gin.Context) {
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	delivery, err := h.deliveries.CreateDelivery(c.Request.Context(), services.CreateDeliveryInput{
		OrganizationID: actor.OrganizationID,
		PartnerID:      req.PartnerID,
		MediaIDs:       req.MediaIDs,
		Notes:          req.Notes,
		CreatedBy:      actor.ID,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, delivery)
}

func (h *DeliveryHandler) List(c *gin.Context) {
	actor, ok := ctxutil.GetActor(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var (
		deliveries []*types.Delivery
		err        error
	)
	if raw := c.Query("partner_id"); raw != "" {
		partnerID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_partner_id", parseErr)
			return
		}
		deliveries, err = h.deliveries.ListByPartner(c.Request.Context(), partnerID)
	} else {
		deliveries, err = h.deliveries.ListByOrganization(c.Request.Context(), actor.OrganizationID)
	}
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if deliveries == nil {
		deliveries = []*types.Delivery{}
	}
	response.RespondOK(c, gin.H{"deliveries": deliveries, "count": len(deliveries)})
}

func (h *DeliveryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_delivery_id", err)
		return
	}
	delivery, err := h.deliveries.GetDelivery(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, delivery)
}
