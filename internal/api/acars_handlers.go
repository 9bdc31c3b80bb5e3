package api

import (
	"net/http"
	"time"

	"levant-va/operations/internal/auth"
	"levant-va/operations/internal/common"
	"levant-va/operations/internal/models/dtos"
)

// StartSession handles POST /api/v1/acars/session
//
// Consumes the bid and opens a flight session for the tracking client.
func (h *Handlers) StartSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		var req dtos.StartSessionRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		session, err := h.deps.Services.Sessions.StartSession(r.Context(), claims.PilotID(), &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, session.Message, session, http.StatusCreated)
	}
}

// PostTelemetry handles POST /api/v1/acars/telemetry
//
// Samples for unknown or closed sessions are acknowledged as dropped so the
// ACARS client never retries them.
func (h *Handlers) PostTelemetry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var sample dtos.TelemetrySample
		if err := decodeJSON(r, &sample); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		dropped, err := h.deps.Services.Sessions.OnTelemetry(r.Context(), &sample)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		if dropped {
			common.RespondSuccess(w, initTime, "Sample dropped", nil, http.StatusAccepted)
			return
		}
		common.RespondSuccess(w, initTime, "Sample recorded", nil, http.StatusAccepted)
	}
}

// PostLanding handles POST /api/v1/acars/landing
//
// Closes the session and files the automatic report. The response carries
// the adjudication outcome.
func (h *Handlers) PostLanding() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var report dtos.LandingReport
		if err := decodeJSON(r, &report); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		session, err := h.deps.Services.Sessions.OnLandingDetected(r.Context(), &report)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, session.Message, session)
	}
}
