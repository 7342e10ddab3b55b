package api

import (
	"io"
	"net/http"
	"time"

	"fish-hunt/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the engine methods used by the API.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns a copy of the latest completed frame
	GetSnapshot() game.FrameSnapshot
	// GetStats returns frame-loop counters
	GetStats() game.EngineStats
	// GetEventLogStats returns session log counters
	GetEventLogStats() map[string]interface{}
	// RecentEvents returns up to n of the newest session events
	RecentEvents(n int) []game.Event
	// PushInput queues an input edge for the next frame's poll step
	PushInput(ev game.InputEvent) bool
}

// FrameSource exposes the last presented frame.
type FrameSource interface {
	Frames() uint64
	EncodePNG(w io.Writer) error
}

// RecorderInterface is the optional session recorder.
type RecorderInterface interface {
	IsRecording() bool
	GetStats() map[string]interface{}
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine:          engine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	    DisableLogging:  true,
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the frame driver (required)
	Engine EngineInterface

	// Frames serves /api/frame.png when set
	Frames FrameSource

	// Recorder adds recording stats to /api/stats when set
	Recorder RecorderInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to local origins when nil.
	CORSOrigins []string

	// ClientCount reports websocket clients in /api/stats when set
	ClientCount func() int

	// InputToken, when set, is required to post input.
	InputToken string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the dependencies shared by the handler functions.
type routerHandlers struct {
	engine   EngineInterface
	frames   FrameSource
	recorder RecorderInterface
	limiter  *IPRateLimiter
	clients  func() int
}

// DefaultCORSOrigins allows local tools only.
var DefaultCORSOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// It starts no goroutines, which makes it safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = DefaultCORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		frames:   cfg.Frames,
		recorder: cfg.Recorder,
		limiter:  rateLimiter,
	}
	h.clients = cfg.ClientCount

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/events", h.handleGetEvents)
		r.Get("/frame.png", h.handleGetFrame)

		r.With(RequireToken(cfg.InputToken)).Post("/input", h.handlePostInput)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}
