package errorhandler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
	"github.com/learnhub/learnhub-api/internal/pkg/database"
	"github.com/learnhub/learnhub-api/internal/pkg/logger"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
)

// Handle writes the error envelope for err and logs it.
// Domain errors keep their own status and code; store-level errors are
// mapped to generic responses and the cause is only logged.
func Handle(ctx context.Context, w http.ResponseWriter, err error) {
	if appErr, ok := apperror.As(err); ok {
		event := log.Warn()
		if appErr.Status >= http.StatusInternalServerError {
			event = log.Error().Err(err)
		}
		event.
			Str("request_id", logger.RequestID(ctx)).
			Str("error_code", appErr.Code).
			Int("status_code", appErr.Status).
			Msg("Request failed")
		response.Error(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case database.IsUniqueViolation(err):
		HandleError(ctx, w, http.StatusConflict, "DUPLICATE_ENTRY", "Resource already exists", err)
	case database.IsForeignKeyViolation(err):
		HandleError(ctx, w, http.StatusBadRequest, "FOREIGN_KEY_CONSTRAINT", "Referenced resource does not exist", err)
	default:
		HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
	}
}

// HandleError logs err with full context and sends the error envelope
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := log.Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event.Err(err)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}
