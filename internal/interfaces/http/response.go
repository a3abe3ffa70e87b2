package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
)

// Response is the JSON envelope of every API reply
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Codes for failures detected before a service is invoked
const (
	codeUnauthenticated = "Unauthenticated"
	codePayloadTooLarge = "PayloadTooLarge"
	codeInternal        = "InternalError"
)

// statusForKind maps an error kind to its HTTP status
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindMissingReviewNotes, apperr.KindMissingRejectionReason:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAlreadyFinalized, apperr.KindAlreadyApproved, apperr.KindNotAccepted, apperr.KindNoJustificationDoc:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success:   true,
		Data:      data,
		RequestID: requestIDFrom(c),
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success:   false,
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(c),
	})
}

// respondError writes a classified error. Unclassified errors are logged and hidden behind a generic message.
func (h *Handlers) respondError(c *gin.Context, operation string, err error) {
	if errors.Is(err, errFileTooLarge) {
		respondFailure(c, http.StatusRequestEntityTooLarge, codePayloadTooLarge, err.Error())
		return
	}

	kind := apperr.KindOf(err)
	if kind == "" {
		h.logger.Error("Request failed",
			"operation", operation,
			"request_id", requestIDFrom(c),
			"error", err)
		respondFailure(c, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	code := string(kind)
	if detail := apperr.CodeOf(err); detail != "" {
		code = detail
	}
	respondFailure(c, statusForKind(kind), code, err.Error())
}
