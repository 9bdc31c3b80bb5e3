package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"levant-va/operations/internal/auth"
	"levant-va/operations/internal/common"
	"levant-va/operations/internal/models/dtos"
)

// SubmitManualPirep handles POST /api/v1/pireps/manual
//
// Files a report outside the telemetry pipeline. Always lands in the human
// review queue; requires a tracker link or screenshot as proof.
func (h *Handlers) SubmitManualPirep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		var req dtos.ManualPirepRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		outcome, err := h.deps.Services.Sessions.OnManualSubmit(r.Context(), claims.PilotID(), &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, outcome.Message, outcome, http.StatusCreated)
	}
}

// GetPirep handles GET /api/v1/pireps/{pirepID}
func (h *Handlers) GetPirep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		pirepID := chi.URLParam(r, "pirepID")

		pirep, err := h.deps.Repo.Pireps.FindByID(r.Context(), pirepID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		if pirep.PilotID != claims.PilotID() && !claims.IsAdmin() {
			common.RespondError(w, initTime, nil, "Not found", http.StatusNotFound)
			return
		}
		common.RespondSuccess(w, initTime, "Report", pirep)
	}
}

// GetReviewQueue handles GET /api/v1/admin/pireps/pending
func (h *Handlers) GetReviewQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		pending, err := h.deps.Services.Adjudication.PendingQueue(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Pending reports", pending)
	}
}

// ReviewPirep handles POST /api/v1/admin/pireps/{pirepID}/review
//
// Applies a staff decision to a Pending report. Approval queues settlement;
// rejection is immediate.
func (h *Handlers) ReviewPirep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		pirepID := chi.URLParam(r, "pirepID")

		var req dtos.ReviewRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		outcome, err := h.deps.Services.Adjudication.Review(r.Context(), claims.PilotID(), pirepID, &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, outcome.Message, outcome)
	}
}
