package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown    EventType = iota
	EventTypeSceneEnter           // Active scene replaced
	EventTypeInput                // Press/release from a remote source
	EventTypeShot                 // Trigger pulled in play
	EventTypeMilestone            // Hit counter reached a milestone
	EventTypeCue                  // Audio cue fired
	EventTypeResult               // Play session ended
)

// EventVersion for backwards compatibility of the session log
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`   // Schema version
	Type      EventType       `json:"type"`      // Event type
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`  // Monotonic sequence
	Frame     uint64          `json:"frame"`     // Frame this occurred in
	Scene     string          `json:"scene"`     // Active scene when emitted
	Source    string          `json:"source"`    // Origin (for rate limiting), empty for the frame loop
	Payload   json.RawMessage `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeSceneEnter:
		return "scene_enter"
	case EventTypeInput:
		return "input"
	case EventTypeShot:
		return "shot"
	case EventTypeMilestone:
		return "milestone"
	case EventTypeCue:
		return "cue"
	case EventTypeResult:
		return "result"
	default:
		return "unknown"
	}
}

// MarshalText writes the type by name so the JSONL log is readable.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads for different event types

// ScenePayload records a scene transition
type ScenePayload struct {
	From       string `json:"from"`
	To         string `json:"to"`
	ResetClock bool   `json:"resetClock"`
}

// InputPayload records a remote input edge
type InputPayload struct {
	Action string  `json:"action"`
	Key    string  `json:"key,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ShotPayload records one trigger pull
type ShotPayload struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Targets    int     `json:"targets"` // Fish hit by this shot
	Counted    bool    `json:"counted"`
	Hits       int     `json:"hits"` // Counter after the shot
	Degenerate bool    `json:"degenerate,omitempty"`
}

// MilestonePayload records a milestone crossing
type MilestonePayload struct {
	Hits int `json:"hits"`
}

// CuePayload records an audio trigger
type CuePayload struct {
	Cue string `json:"cue"`
}

// ResultPayload records how a play session ended
type ResultPayload struct {
	Outcome string  `json:"outcome"` // "win" or "lose"
	Hits    int     `json:"hits"`
	Shots   int     `json:"shots"`
	Seconds float64 `json:"seconds"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, frame uint64, scene, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Frame:     frame,
		Scene:     scene,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
