package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/homelinkcare/homecare-booking/internal/http/handlers"
	httpmiddleware "github.com/homelinkcare/homecare-booking/internal/http/middleware"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger   *logging.Logger
	Sessions *handlers.SessionHandler
	Services *handlers.ServicesHandler
	Flow     *handlers.FlowHandler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Submission rate limiting; zero disables it.
	SubmitRatePerSecond float64
	SubmitBurst         int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/sessions", cfg.Sessions.Create)
		api.Get("/sessions/current", cfg.Sessions.Get)
		api.Delete("/sessions/current", cfg.Sessions.Delete)

		api.Get("/services", cfg.Services.List)
		api.Get("/services/{serviceID}/dates", cfg.Services.Dates)
		api.Get("/services/{serviceID}/slots", cfg.Services.Slots)

		api.Route("/bookings", func(b chi.Router) {
			b.Get("/flow", cfg.Flow.State)
			b.Post("/flow/service", cfg.Flow.SelectService)
			b.Post("/flow/schedule", cfg.Flow.SetSchedule)
			b.Post("/flow/patient", cfg.Flow.SetPatient)
			b.Post("/flow/back", cfg.Flow.Back)
			if cfg.SubmitRatePerSecond > 0 {
				b.With(httpmiddleware.RateLimit(cfg.SubmitRatePerSecond, cfg.SubmitBurst)).
					Post("/flow/submit", cfg.Flow.Submit)
			} else {
				b.Post("/flow/submit", cfg.Flow.Submit)
			}
			b.Get("/{bookingID}", cfg.Flow.GetBooking)
		})
	})

	return r
}
