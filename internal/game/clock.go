package game

import (
	"sync"
	"time"
)

// TimeSource is a monotonic time reading since an arbitrary epoch.
type TimeSource interface {
	Now() time.Duration
}

// SystemTime reads the process monotonic clock.
type SystemTime struct {
	start time.Time
}

// NewSystemTime creates a system time source anchored at the current instant.
func NewSystemTime() *SystemTime {
	return &SystemTime{start: time.Now()}
}

// Now returns the monotonic time since creation.
func (s *SystemTime) Now() time.Duration {
	return time.Since(s.start)
}

// ManualTime is a TimeSource driven explicitly, for tests and replays.
type ManualTime struct {
	mu  sync.Mutex
	now time.Duration
}

// Now returns the current manual time.
func (m *ManualTime) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the manual time to d.
func (m *ManualTime) Set(d time.Duration) {
	m.mu.Lock()
	m.now = d
	m.mu.Unlock()
}

// Advance moves the manual time forward by d.
func (m *ManualTime) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Clock converts a TimeSource into scene seconds with a resettable epoch.
// Owned by the frame driver; scenes only read the value it hands them.
type Clock struct {
	src   TimeSource
	epoch time.Duration
	now   float64
}

// NewClock starts a clock at zero.
func NewClock(src TimeSource) *Clock {
	return &Clock{src: src, epoch: src.Now()}
}

// Advance samples the source and returns seconds since the last reset.
func (c *Clock) Advance() float64 {
	c.now = (c.src.Now() - c.epoch).Seconds()
	return c.now
}

// Reset moves the epoch to the current instant, so Now reads 0.
func (c *Clock) Reset() {
	c.epoch = c.src.Now()
	c.now = 0
}

// Now returns the value of the last Advance or Reset.
func (c *Clock) Now() float64 {
	return c.now
}
