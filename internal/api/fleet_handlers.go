package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/models/dtos"
	"levant-va/operations/internal/pipeline"
)

// GetMaintenanceOverview handles GET /api/v1/admin/fleet
//
// Fleet condition list with repair costs, vault balance and thresholds.
func (h *Handlers) GetMaintenanceOverview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		overview, err := h.deps.Services.Fleet.Overview(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Fleet overview", overview)
	}
}

// GetAircraft handles GET /api/v1/admin/fleet/{registration}
func (h *Handlers) GetAircraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		registration := chi.URLParam(r, "registration")

		aircraft, err := h.deps.Services.Fleet.Aircraft(r.Context(), registration)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft", aircraft)
	}
}

// CreateAircraft handles POST /api/v1/admin/fleet
func (h *Handlers) CreateAircraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateAircraftRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		aircraft, err := h.deps.Services.Fleet.CreateAircraft(r.Context(), &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft registered", aircraft, http.StatusCreated)
	}
}

// UpdateAircraft handles PATCH /api/v1/admin/fleet/{registration}
func (h *Handlers) UpdateAircraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		registration := chi.URLParam(r, "registration")

		var req dtos.UpdateAircraftRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		req.Registration = registration

		aircraft, err := h.deps.Services.Fleet.UpdateAircraft(r.Context(), &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Aircraft updated", aircraft)
	}
}

// RepairAircraft handles POST /api/v1/admin/fleet/{registration}/repair
//
// MINIMUM restores just past the grounding threshold; FULL restores to 100.
// The cost is debited from the vault, failing with 402 when it cannot cover.
func (h *Handlers) RepairAircraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		registration := chi.URLParam(r, "registration")

		var req dtos.RepairRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		tier := constants.RepairTier(req.RepairType)
		if tier != constants.RepairMinimum && tier != constants.RepairFull {
			respondServiceError(w, initTime, pipeline.Validationf("repair type must be MINIMUM or FULL"))
			return
		}

		result, err := h.deps.Services.Ledger.Repair(r.Context(), registration, tier)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, result.Message, result)
	}
}
