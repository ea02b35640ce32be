package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/roomloop-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := code
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps a service error onto the envelope. Untyped errors
// surface as a generic 500 so internals never leak to callers.
func RespondAPIError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
