package api

import (
	"net/http"
	"time"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/config"
	"levant-va/operations/internal/models/dtos"
	"levant-va/operations/internal/pipeline"
)

// GetSettings handles GET /api/v1/admin/settings
//
// Returns the effective pipeline configuration after overrides.
func (h *Handlers) GetSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		cfg := h.deps.Services.Config.Current(r.Context())
		common.RespondSuccess(w, initTime, "Effective settings", map[string]any{
			"config":       cfg,
			"allowed_keys": config.ListAllowedKeys(),
		})
	}
}

// SetSetting handles PUT /api/v1/admin/settings
//
// Hot-reloads one override; takes effect on the next cache refresh.
func (h *Handlers) SetSetting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SetSettingRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		if err := h.deps.Services.Config.Set(r.Context(), req.Key, req.Value); err != nil {
			respondServiceError(w, initTime, pipeline.Validationf("%v", err))
			return
		}
		common.RespondSuccess(w, initTime, "Setting updated", nil)
	}
}
