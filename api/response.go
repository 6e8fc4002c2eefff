package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "An unexpected error occurred. Please try again later."

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorEnvelope struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Errors    []string `json:"errors"`
	Timestamp string   `json:"timestamp"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// respondError renders err with the status of its kind. Unclassified
// errors become a generic 500 and are attached to the context for the
// request logger.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusOf(kind)

	message := err.Error()
	details := []string{message}
	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Message
		details = []string{de.Message}
		if len(de.Details) > 0 {
			details = de.Details
		}
	}
	if kind == domain.KindInternal {
		_ = c.Error(err)
		message = internalErrorMessage
		details = []string{internalErrorMessage}
	}

	c.AbortWithStatusJSON(status, errorEnvelope{
		Success:   false,
		Message:   message,
		ErrorCode: string(kind),
		Errors:    details,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindBusinessRule, domain.KindOutOfRange:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func malformedBody(err error) error {
	return domain.ValidationError("Malformed JSON request", err.Error())
}
