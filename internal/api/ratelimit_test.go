package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiterPerClient(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})

	if !rl.Allow("a") || rl.Allow("a") {
		t.Error("client a should get exactly one request")
	}
	if !rl.Allow("b") {
		t.Error("client b has its own bucket")
	}

	stats := rl.GetStats()
	if stats.Allowed != 2 || stats.Rejected != 1 || stats.Clients != 2 {
		t.Errorf("stats %+v", stats)
	}
}

func TestIPRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	start := time.Now()

	rl.bucketFor("idle", start)
	rl.bucketFor("busy", start.Add(50*time.Second))
	rl.bucketFor("busy", start.Add(90*time.Second)) // sweeps: idle unseen for 90s

	if got := rl.GetStats().Clients; got != 1 {
		t.Errorf("clients after sweep = %d, want 1", got)
	}
	rl.mu.Lock()
	_, kept := rl.buckets["busy"]
	rl.mu.Unlock()
	if !kept {
		t.Error("recently seen client was swept")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded first hop", "203.0.113.7, 10.0.0.1", "", "10.0.0.2:5000", "203.0.113.7"},
		{"real ip", "", " 198.51.100.4 ", "10.0.0.2:5000", "198.51.100.4"},
		{"peer address", "", "", "192.0.2.1:4242", "192.0.2.1"},
		{"peer without port", "", "", "pipe", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectionSlots(t *testing.T) {
	s := NewConnectionSlots(2)

	if !s.Acquire("x") || !s.Acquire("x") {
		t.Fatal("two slots should be free")
	}
	if s.Acquire("x") {
		t.Error("third connection from x allowed")
	}
	if !s.Acquire("y") {
		t.Error("slots are per address")
	}

	s.Release("x")
	if !s.Acquire("x") {
		t.Error("released slot not reusable")
	}

	// Releasing more than acquired must not bank extra slots.
	s.Release("y")
	s.Release("y")
	if !s.Acquire("y") || !s.Acquire("y") || s.Acquire("y") {
		t.Error("over-release changed the cap")
	}
	if len(s.inUse) != 2 {
		t.Errorf("tracked addresses = %d", len(s.inUse))
	}
}
