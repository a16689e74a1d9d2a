package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router. Everything under /api requires an
// X-User-ID header; cached analytics are keyed to their owning user, so one
// user's entries are never served to another.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(metricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Unauthenticated surface
	r.Get("/health", h.HealthCheck)
	r.Method("GET", "/metrics", MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireUser)

		// Campaign analytics
		r.Get("/dashboard/{campaignID}/stats", h.GetCampaignStats)
		r.Get("/dashboard/missing-logs", h.GetMissingLogs)
		r.Delete("/dashboard/cache", h.ClearCache)

		// CRM proxy
		r.Get("/datafiles", h.ListDataFiles)
		r.Get("/contacts", h.ListContacts)
		r.Get("/segments", h.ListSegments)
		r.Post("/segments", h.CreateSegment)
		r.Post("/segments/{segmentID}/contacts", h.AddSegmentContacts)
		r.Delete("/tracking/contacts/{contactID}", h.DeleteTrackingContact)

		// Import wizard
		r.Get("/imports/template", h.ImportTemplate)
		r.Post("/imports", h.CreateImport)
		r.Route("/imports/{importID}", func(r chi.Router) {
			r.Get("/", h.GetImport)
			r.Delete("/", h.DeleteImport)
			r.Put("/mapping", h.UpdateMapping)
			r.Post("/validate", h.ValidateImport)
			r.Post("/commit", h.CommitImport)
			r.Post("/back", h.BackImport)
			r.Post("/reset", h.ResetImport)
		})
	})

	return r
}
