package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ServerConfig wires the API server to the running director.
type ServerConfig struct {
	Engine      EngineInterface
	Frames      FrameSource
	Recorder    RecorderInterface
	CORSOrigins []string
	InputToken  string
}

// Server is the HTTP API server with WebSocket support.
type Server struct {
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer creates the API server.
//
// Background workers do not start until Start is called, so tests can build
// the server and use Router() without goroutines or listeners.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		wsHub:       NewWebSocketHub(cfg.Engine, cfg.CORSOrigins, cfg.InputToken),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      cfg.Engine,
		Frames:      cfg.Frames,
		Recorder:    cfg.Recorder,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.CORSOrigins,
		InputToken:  cfg.InputToken,
		ClientCount: s.wsHub.ClientCount,
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start runs the websocket hub and serves HTTP until Shutdown.
// It returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(StateBroadcastInterval)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("   - state:  http://localhost%s/api/state", addr)
	log.Printf("   - frame:  http://localhost%s/api/frame.png", addr)
	log.Printf("   - socket: ws://localhost%s/ws", addr)

	return s.httpServer.ListenAndServe()
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
