package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"levant-va/operations/internal/api"
	"levant-va/operations/internal/db"
	"levant-va/operations/internal/jobs"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/metrics"
	"levant-va/operations/internal/middleware"
	"levant-va/operations/internal/workers"
)

// RegisterRoutes builds the chi router, wires dependencies and starts the
// background workers and jobs.
func RegisterRoutes(upSince time.Time) http.Handler {

	r := chi.NewRouter()

	metricsReg := metrics.NewMetricsRegistry()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Pilot-Id", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}
	handlers := api.NewHandlers(deps)

	jobs.InitializeJobs(context.Background(), deps.Services.Bids, deps.Services.Sessions)

	if deps.Services.SettleQueue != nil {
		workers.InitWorkers(context.Background(), deps.Services.SettleQueue, deps.Services.Ledger)
	}

	RegisterAPIRoutes(r, metricsReg, deps, handlers)

	logging.Info("Router initialized")
	return r
}
