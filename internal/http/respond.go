package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/leoperezgr/Leofy/internal/core"
	"github.com/leoperezgr/Leofy/internal/httperr"
	"github.com/leoperezgr/Leofy/internal/log"
	"github.com/leoperezgr/Leofy/internal/middleware/trace"
	"github.com/leoperezgr/Leofy/internal/service"
	"github.com/leoperezgr/Leofy/internal/storage"
)

// handlerFunc is a route handler that reports failures as errors; the
// wrapper maps them to the wire format.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc into http.Handler, translating returned
// errors into the API error taxonomy. Unexpected errors become a generic
// 500 and are logged with detail server-side only.
func handle(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		apiErr := toAPIError(err)
		if apiErr.Code >= 500 {
			slog.ErrorContext(r.Context(), "Request failed",
				log.FieldRequestID, trace.GetRequestID(r.Context()),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldError, err)
		}
		writeJSON(w, apiErr.Code, apiErr)
	})
}

// toAPIError maps domain and storage errors onto the error taxonomy.
// Anything unrecognized is an internal error.
func toAPIError(err error) *httperr.Error {
	var apiErr *httperr.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return httperr.ErrInvalidCredentials
	case errors.Is(err, storage.ErrEmailTaken):
		return httperr.ErrEmailTaken
	case errors.Is(err, storage.ErrNotFound):
		return httperr.ErrNotFound
	case errors.Is(err, service.ErrNothingToUpdate):
		return httperr.BadRequest("nothing to update")
	case errors.Is(err, service.ErrInvalidFullName):
		return httperr.Validation("full_name")
	case errors.Is(err, service.ErrInvalidEmail):
		return httperr.Validation("email")
	case errors.Is(err, service.ErrWeakPassword):
		return httperr.Validation("password")
	case errors.Is(err, core.ErrInvalidType):
		return httperr.Validation("type")
	case errors.Is(err, core.ErrInvalidAmount):
		return httperr.Validation("amount")
	case errors.Is(err, core.ErrZeroDate):
		return httperr.Validation("date")
	case errors.Is(err, core.ErrEmptyName):
		return httperr.Validation("name")
	case errors.Is(err, core.ErrInvalidLast4):
		return httperr.Validation("last4")
	case errors.Is(err, core.ErrInvalidBrand):
		return httperr.Validation("brand")
	case errors.Is(err, core.ErrInvalidDay):
		return httperr.Validation("closing_day", "due_day")
	default:
		return httperr.ErrInternal
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}
