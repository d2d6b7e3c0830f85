package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/pkg/logger"
	"github.com/learnhub/learnhub-api/internal/pkg/response"
)

// Recover turns a handler panic into a 500 envelope
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// net/http uses this sentinel to abort a response on purpose
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			event := log.Error().
				Str("request_id", logger.RequestID(r.Context())).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("route", r.Method+" "+r.URL.Path)
			if userID := GetUserID(r.Context()); userID != uuid.Nil {
				event = event.Str("user_id", userID.String())
			}
			event.Msg("handler panicked")

			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
