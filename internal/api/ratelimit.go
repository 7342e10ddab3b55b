package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig sets the per-client request budget of the HTTP surface.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	IdleTTL           time.Duration // Buckets unused this long are forgotten
}

// DefaultRateLimitConfig lets a local tool poll state and push input at
// display rate.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 60,
	Burst:             120,
	IdleTTL:           10 * time.Minute,
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// RateLimitStats is reported under "rateLimit" in /api/stats.
type RateLimitStats struct {
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
	Clients  int    `json:"clients"`
}

// IPRateLimiter keeps one token bucket per client address. Idle buckets are
// swept while serving requests, so no background goroutine is needed.
type IPRateLimiter struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time

	allowed  atomic.Uint64
	rejected atomic.Uint64
}

// NewIPRateLimiter creates a limiter with cfg's budget.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig.IdleTTL
	}
	return &IPRateLimiter{
		cfg:       cfg,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow spends one token from ip's bucket.
func (rl *IPRateLimiter) Allow(ip string) bool {
	if rl.bucketFor(ip, time.Now()).Allow() {
		rl.allowed.Add(1)
		return true
	}
	rl.rejected.Add(1)
	return false
}

func (rl *IPRateLimiter) bucketFor(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.cfg.IdleTTL {
		rl.sweep(now)
	}

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.buckets[ip] = b
	}
	b.seen = now
	return b.limiter
}

// sweep forgets buckets idle for longer than IdleTTL. Called with mu held.
func (rl *IPRateLimiter) sweep(now time.Time) {
	for ip, b := range rl.buckets {
		if now.Sub(b.seen) > rl.cfg.IdleTTL {
			delete(rl.buckets, ip)
		}
	}
	rl.lastSweep = now
}

// Middleware answers 429 once a client's bucket is empty.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			writeError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStats returns request counters and the number of tracked clients.
func (rl *IPRateLimiter) GetStats() RateLimitStats {
	rl.mu.Lock()
	clients := len(rl.buckets)
	rl.mu.Unlock()

	return RateLimitStats{
		Allowed:  rl.allowed.Load(),
		Rejected: rl.rejected.Load(),
		Clients:  clients,
	}
}

// GetClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then
// the peer address. Forwarding headers are trusted as sent.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ConnectionSlots caps concurrent websocket connections per address.
type ConnectionSlots struct {
	mu    sync.Mutex
	inUse map[string]int
	max   int
}

// NewConnectionSlots allows max open connections per address.
func NewConnectionSlots(max int) *ConnectionSlots {
	return &ConnectionSlots{inUse: make(map[string]int), max: max}
}

// Acquire takes a slot for ip, or reports false when ip is at the cap.
func (s *ConnectionSlots) Acquire(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inUse[ip] >= s.max {
		return false
	}
	s.inUse[ip]++
	return true
}

// Release returns a slot taken by Acquire.
func (s *ConnectionSlots) Release(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.inUse[ip]; n > 1 {
		s.inUse[ip] = n - 1
	} else {
		delete(s.inUse, ip)
	}
}

// OriginChecker matches browser origins against a configured list.
// Entries may be "*", an exact origin, or end in ":*" to allow any port.
type OriginChecker []string

// Allowed reports whether origin may open a websocket. Non-browser clients
// send no Origin header and are allowed.
func (oc OriginChecker) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range oc {
		switch {
		case allowed == "*":
			return true
		case strings.HasSuffix(allowed, ":*"):
			prefix := strings.TrimSuffix(allowed, "*")
			if origin == strings.TrimSuffix(prefix, ":") || strings.HasPrefix(origin, prefix) {
				return true
			}
		case origin == allowed:
			return true
		}
	}
	return false
}
