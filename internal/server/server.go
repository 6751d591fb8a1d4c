// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"localvibe/internal/config"
	"localvibe/internal/domain/events"
	"localvibe/internal/domain/geo"
	"localvibe/internal/domain/planner"
	"localvibe/internal/server/handlers"
)

// Dependencies are the services the HTTP API is served from
type Dependencies struct {
	Lister      handlers.ExperienceLister
	Getter      handlers.ExperienceGetter
	Geo         geo.Service
	Planner     handlers.Planner
	Itineraries planner.Repository
	Syncer      handlers.CatalogSyncer
	EventBus    events.Publisher
	Feed        handlers.Subscriber
	EventsTopic string
	Logger      *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  *chi.Mux
	limiter *RateLimiter
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, rl config.RateLimitConfig, deps Dependencies) *Server {
	limiter := NewRateLimiter(rl.RequestsPerSecond, rl.Burst, rl.VisitorTTL)
	router := NewRouter(cfg, limiter, deps)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server:  httpServer,
		router:  router,
		limiter: limiter,
	}
}

// NewRouter builds the API routes. Planning and sync routes share limiter.
func NewRouter(cfg config.ServerConfig, limiter *RateLimiter, deps Dependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(accessLogger(logger))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	experienceHandler := handlers.NewExperienceHandler(deps.Lister, deps.Getter, deps.Geo, logger)
	itineraryHandler := handlers.NewItineraryHandler(deps.Planner, deps.Itineraries, deps.EventBus, deps.EventsTopic, logger)
	adminHandler := handlers.NewAdminHandler(deps.Syncer, logger)

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Experiences API
			r.Route("/experiences", func(r chi.Router) {
				r.Get("/", experienceHandler.ListExperiences)
				r.Get("/nearby", experienceHandler.GetNearbyExperiences)
				r.Get("/heatmap", experienceHandler.GetHeatMap)
				r.Get("/{id}", experienceHandler.GetExperience)
			})

			r.Get("/moods", handlers.ListMoods)

			// Itineraries API
			r.Route("/itineraries", func(r chi.Router) {
				r.With(limiter.Limit).Post("/generate", itineraryHandler.GenerateItinerary)
				r.With(limiter.Limit).Post("/preview", itineraryHandler.PreviewItinerary)
				r.Post("/", itineraryHandler.SaveItinerary)
				r.Get("/{id}", itineraryHandler.GetItinerary)
			})

			// Admin API
			r.Route("/admin", func(r chi.Router) {
				r.Get("/providers", adminHandler.ListProviders)
				r.With(limiter.Limit).Post("/sync/{provider}", adminHandler.SyncProvider)
			})
		})
	})

	// WebSocket endpoint for the live event feed
	if deps.Feed != nil {
		router.Get("/ws/feed", handlers.FeedWebSocketHandler(deps.Feed, deps.EventsTopic, logger))
	}

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.server.Shutdown(ctx)
}
