package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/roomloop-backend/internal/http/response"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
	"github.com/roomloop/roomloop-backend/internal/services"
)

type RobotHandler struct {
	log   *logger.Logger
	query services.RobotQueryService
}

func NewRobotHandler(log *logger.Logger, query services.RobotQueryService) *RobotHandler {
	return &RobotHandler{
		log:   log.With("handler", "RobotHandler"),
		query: query,
	}
}

// Query answers a robot's instruction request. Failures return a generic
// internal error: robots get no detail about backend internals.
func (h *RobotHandler) Query(c *gin.Context) {
	var req services.RobotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.query.Query(c.Request.Context(), req)
	if err != nil {
		h.log.Error("robot query failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
		return
	}
	response.RespondOK(c, result)
}
