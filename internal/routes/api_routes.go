package routes

import (
	"github.com/go-chi/chi/v5"

	"levant-va/operations/internal/api"
	"levant-va/operations/internal/metrics"
	"levant-va/operations/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers.
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry, deps *api.Dependencies, handlers *api.Handlers) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(deps.Repo.Keys))

		// Member routes: any authenticated pilot or ACARS client.
		v1.Post("/bids", handlers.CreateBid())
		v1.Get("/bids/active", handlers.GetActiveBid())
		v1.Get("/bids/board", handlers.GetBidBoard())
		v1.Delete("/bids/{bidID}", handlers.CancelBid())

		v1.Post("/acars/session", handlers.StartSession())
		v1.Post("/acars/telemetry", handlers.PostTelemetry())
		v1.Post("/acars/landing", handlers.PostLanding())

		v1.Post("/pireps/manual", handlers.SubmitManualPirep())
		v1.Get("/pireps/{pirepID}", handlers.GetPirep())

		// Admin routes: fleet, review queue, settings.
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin())

			admin.Get("/admin/fleet", handlers.GetMaintenanceOverview())
			admin.Post("/admin/fleet", handlers.CreateAircraft())
			admin.Get("/admin/fleet/{registration}", handlers.GetAircraft())
			admin.Patch("/admin/fleet/{registration}", handlers.UpdateAircraft())
			admin.Post("/admin/fleet/{registration}/repair", handlers.RepairAircraft())

			admin.Get("/admin/pireps/pending", handlers.GetReviewQueue())
			admin.Post("/admin/pireps/{pirepID}/review", handlers.ReviewPirep())

			admin.Get("/admin/settings", handlers.GetSettings())
			admin.Put("/admin/settings", handlers.SetSetting())
		})
	})
}
