// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for window, audio, simulation and server settings.
//
// Scene timings and world constants are not configuration: they live in
// internal/game/tuning.go because they define the experience itself.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// VIDEO & CANVAS CONFIGURATION
// =============================================================================

// VideoConfig holds window/canvas settings.
// Width and Height also define the camera aspect ratio.
type VideoConfig struct {
	Width  int // Canvas width in pixels
	Height int // Canvas height in pixels
	FPS    int // Frame rate of the driver loop
}

// DefaultVideo returns the default video configuration.
func DefaultVideo() VideoConfig {
	return VideoConfig{
		Width:  1280,
		Height: 720,
		FPS:    60,
	}
}

// VideoFromEnv returns video configuration with environment variable overrides.
func VideoFromEnv() VideoConfig {
	cfg := DefaultVideo()

	if w := getEnvInt("WINDOW_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("WINDOW_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if fps := getEnvInt("FPS", 0); fps > 0 {
		cfg.FPS = fps
	}

	return cfg
}

// Aspect returns width/height as used by the camera.
func (v VideoConfig) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits mirrors the renderer's instance buffer capacity.
// A pool that reaches its cap refuses new instances instead of growing.
type ResourceLimits struct {
	MaxParticles int // Gravity particle pool cap
	MaxSmoke     int // Smoke pool cap
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxParticles: 10000,
		MaxSmoke:     10000,
	}
}

// LimitsFromEnv returns resource limits with environment variable overrides.
func LimitsFromEnv() ResourceLimits {
	cfg := DefaultLimits()

	if n := getEnvInt("MAX_PARTICLES", 0); n > 0 {
		cfg.MaxParticles = n
	}
	if n := getEnvInt("MAX_SMOKE", 0); n > 0 {
		cfg.MaxSmoke = n
	}

	return cfg
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds cue player settings.
type AudioConfig struct {
	SampleRate int     // Output sample rate in Hz
	Volume     float64 // Master volume (0.0 to 1.0)
	Enabled    bool    // Whether cues are played at all
	CueDir     string  // Directory holding <cue>.ogg / <cue>.wav files
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.8,
		Enabled:    true,
		CueDir:     "assets/sounds",
	}
}

// AudioFromEnv returns audio configuration with environment variable overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("AUDIO_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	if os.Getenv("AUDIO_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if dir := os.Getenv("CUE_DIR"); dir != "" {
		cfg.CueDir = dir
	}

	return cfg
}

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig selects the simulation step policy.
type SimConfig struct {
	// FixedStepHz of 0 runs exactly one simulation step per rendered frame.
	// Any positive value runs as many fixed steps as wall time allows.
	FixedStepHz int
	// Seed for the injected random source. 0 means seed from the wall clock.
	Seed int64
}

// DefaultSim returns the per-frame step policy.
func DefaultSim() SimConfig {
	return SimConfig{}
}

// SimFromEnv returns simulation configuration with environment variable overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if hz := getEnvInt("SIM_FIXED_STEP_HZ", 0); hz > 0 {
		cfg.FixedStepHz = hz
	}
	if v := os.Getenv("RNG_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int
	CORSOrigins []string
	InputToken  string // Required for remote input when set
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:        3000,
		CORSOrigins: []string{"*"},
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}
	cfg.InputToken = os.Getenv("INPUT_TOKEN")

	return cfg
}

// =============================================================================
// DEBUG / RECORDING / EVENT LOG
// =============================================================================

// DebugConfig controls the pprof + metrics debug server.
type DebugConfig struct {
	Enabled    bool
	ListenAddr string // Must stay on localhost
	User       string // Optional basic auth
	Pass       string
}

// DefaultDebug returns the default debug configuration.
func DefaultDebug() DebugConfig {
	return DebugConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// DebugFromEnv returns debug configuration with environment variable overrides.
func DebugFromEnv() DebugConfig {
	cfg := DefaultDebug()

	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.User = os.Getenv("DEBUG_USER")
	cfg.Pass = os.Getenv("DEBUG_PASS")

	return cfg
}

// RecordConfig controls session recording through ffmpeg.
// An empty Path disables recording.
type RecordConfig struct {
	Path    string
	Bitrate int // kbps
	Buffer  int // Frames held between the frame loop and the encoder
}

// DefaultRecord returns recording disabled.
func DefaultRecord() RecordConfig {
	return RecordConfig{
		Bitrate: 4000,
		Buffer:  8,
	}
}

// RecordFromEnv returns recording configuration with environment variable overrides.
func RecordFromEnv() RecordConfig {
	cfg := DefaultRecord()

	cfg.Path = os.Getenv("RECORD_PATH")
	if br := getEnvInt("RECORD_BITRATE", 0); br > 0 {
		cfg.Bitrate = br
	}
	if buf := getEnvInt("RECORD_BUFFER", 0); buf > 0 {
		cfg.Buffer = buf
	}

	return cfg
}

// EventLogConfig controls the JSONL session history.
type EventLogConfig struct {
	Path string // Empty keeps events in memory only
}

// EventLogFromEnv returns event log configuration from the environment.
func EventLogFromEnv() EventLogConfig {
	return EventLogConfig{Path: os.Getenv("EVENT_LOG_PATH")}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Video    VideoConfig
	Audio    AudioConfig
	Server   ServerConfig
	Limits   ResourceLimits
	Sim      SimConfig
	Debug    DebugConfig
	Record   RecordConfig
	EventLog EventLogConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Video:    VideoFromEnv(),
		Audio:    AudioFromEnv(),
		Server:   ServerFromEnv(),
		Limits:   LimitsFromEnv(),
		Sim:      SimFromEnv(),
		Debug:    DebugFromEnv(),
		Record:   RecordFromEnv(),
		EventLog: EventLogFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
