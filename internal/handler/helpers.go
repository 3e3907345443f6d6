package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"onepager/internal/domain"
	"onepager/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		conflictErr *domain.ConflictError
		upstreamErr *domain.UpstreamError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(),
			map[string]interface{}{"resource_type": conflictErr.ResourceType})
	case errors.As(err, &upstreamErr):
		logger.Warn("AI backend error", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, upstreamErr.Message)
	default:
		var httpErr domain.HTTPError
		if errors.As(err, &httpErr) {
			httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
			return
		}
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON parses the request body. Malformed bodies are validation
// errors; oversized ones keep their *http.MaxBytesError for a 413.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}
