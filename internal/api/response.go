package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/pipeline"
)

// statusForError maps pipeline sentinels to HTTP status codes.
func statusForError(err error) int {
	switch {
	case pipeline.IsValidation(err), errors.Is(err, pipeline.ErrMissingProof):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrExpired):
		return http.StatusGone
	case errors.Is(err, pipeline.ErrDuplicateBid),
		errors.Is(err, pipeline.ErrAlreadyConsumed),
		errors.Is(err, pipeline.ErrInvalidTransition),
		errors.Is(err, pipeline.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrFleetViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError translates a service error into the JSON envelope.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	common.RespondError(w, initTime, err, "request failed", statusForError(err))
}

// decodeJSON parses the request body into dst, rejecting malformed payloads.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pipeline.Validationf("invalid JSON payload: %v", err)
	}
	return nil
}
