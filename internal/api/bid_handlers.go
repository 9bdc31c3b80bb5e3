package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"levant-va/operations/internal/auth"
	"levant-va/operations/internal/common"
	"levant-va/operations/internal/models/dtos"
)

// CreateBid handles POST /api/v1/bids
//
// Reserves a dispatch flight for the authenticated pilot. A second active
// bid fails with 409 unless the payload sets replace.
func (h *Handlers) CreateBid() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		var req dtos.CreateBidRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		bid, err := h.deps.Services.Bids.CreateBid(r.Context(), claims.PilotID(), &req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Bid created", bid, http.StatusCreated)
	}
}

// GetActiveBid handles GET /api/v1/bids/active
func (h *Handlers) GetActiveBid() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		bid, err := h.deps.Services.Bids.ActiveBid(r.Context(), claims.PilotID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		if bid == nil {
			common.RespondSuccess(w, initTime, "No active bid", nil)
			return
		}
		common.RespondSuccess(w, initTime, "Active bid", dtos.BidResponse{
			ID:            bid.ID,
			FlightNumber:  bid.FlightNumber,
			Callsign:      bid.Callsign,
			DepartureICAO: bid.DepartureICAO,
			ArrivalICAO:   bid.ArrivalICAO,
			AircraftType:  bid.AircraftType,
			Status:        bid.Status.String(),
			ExpiresAt:     bid.ExpiresAt,
		})
	}
}

// CancelBid handles DELETE /api/v1/bids/{bidID}
func (h *Handlers) CancelBid() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		bidID := chi.URLParam(r, "bidID")

		if err := h.deps.Services.Bids.CancelBid(r.Context(), claims.PilotID(), bidID, claims.IsAdmin()); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Bid cancelled", nil)
	}
}

// GetBidBoard handles GET /api/v1/bids/board
//
// Dispatch view of every active reservation across the airline.
func (h *Handlers) GetBidBoard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := h.deps.Repo.BidBoard.ActiveBoard(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Active bid board", rows)
	}
}
