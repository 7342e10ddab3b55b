package api

import (
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"time"

	"fish-hunt/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality: scene names, pool names and route
// patterns only.
var (
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "frame_duration_seconds",
		Help:    "Time spent in one director frame (step, render, present)",
		Buckets: []float64{0.001, 0.002, 0.005, 0.01, 0.0167, 0.033, 0.05, 0.1},
	})

	sceneTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scene_transitions_total",
		Help: "Scene transitions by target scene",
	}, []string{"to"}) // Bounded: the six scene names

	shotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shots_total",
		Help: "Trigger pulls during play",
	})

	hitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hits_total",
		Help: "Shots that hit at least one fish",
	})

	particleCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "particle_count",
		Help: "Live particles per pool",
	}, []string{"pool"}) // Bounded: "gravity", "smoke"

	sessionResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_results_total",
		Help: "Finished play sessions by outcome",
	}, []string{"outcome"}) // Bounded: "win", "lose"

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Requests rejected by rate limiter, origin or token check",
	}, []string{"reason"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket broadcasts sent",
	})

	wsInputTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_input_total",
		Help: "Inbound WebSocket input messages",
	}, []string{"result"}) // Bounded: "queued", "invalid", "unauthorized", "throttled", "full"
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // Must stay on loopback unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// loopbackAddr forces addr onto 127.0.0.1, keeping its port.
func loopbackAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return DefaultObservabilityConfig().ListenAddr
	}
	if host == "localhost" {
		return addr
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return addr
	}
	return net.JoinHostPort("127.0.0.1", port)
}

// DebugHandler serves pprof, Prometheus metrics and a health check.
func DebugHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// StartDebugServer starts the internal observability server.
// pprof must never be reachable from outside the host.
func StartDebugServer(cfg ObservabilityConfig) *http.Server {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		if addr := loopbackAddr(cfg.ListenAddr); addr != cfg.ListenAddr {
			log.Println("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = addr
		}
	}

	handler := DebugHandler()
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, handler)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return srv
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !tokenMatches(u, user) || !tokenMatches(p, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records latency and status per route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}

// ObserveFrame records frame timing and pool sizes. Use as the engine's
// frame callback.
func ObserveFrame(d time.Duration, snap *game.FrameSnapshot) {
	frameDuration.Observe(d.Seconds())
	if snap != nil {
		UpdateParticleCount(snap.Particles, snap.Smoke)
	}
}

// ObserveTransition counts a scene change.
func ObserveTransition(_, to game.SceneKind) {
	sceneTransitions.WithLabelValues(to.String()).Inc()
}

// ObserveEvent updates counters for shots and session results.
func ObserveEvent(t game.EventType, payload interface{}) {
	switch p := payload.(type) {
	case game.ShotPayload:
		shotsTotal.Inc()
		if p.Counted {
			hitsTotal.Inc()
		}
	case game.ResultPayload:
		if t == game.EventTypeResult {
			sessionResults.WithLabelValues(p.Outcome).Inc()
		}
	}
}

// UpdateParticleCount updates the pool gauges
func UpdateParticleCount(gravity, smoke int) {
	particleCount.WithLabelValues("gravity").Set(float64(gravity))
	particleCount.WithLabelValues("smoke").Set(float64(smoke))
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "unauthorized", "ws_total_limit", "ws_ip_limit"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// RecordWSInput counts one inbound websocket message by result
func RecordWSInput(result string) {
	wsInputTotal.WithLabelValues(result).Inc()
}
