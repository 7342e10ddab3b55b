package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEventLogNotRunning(t *testing.T) {
	el := NewEventLog()
	if el.EmitSimple(EventTypeShot, 1, "play", "", ShotPayload{}) {
		t.Error("Emit before Start should fail")
	}
	if el.GetStats()["total"].(uint64) != 0 {
		t.Error("nothing should be counted")
	}
}

func TestEventLogWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatal(err)
	}

	el.EmitSimple(EventTypeSceneEnter, 1, "fade_in", "", ScenePayload{From: "press_any_key", To: "fade_in", ResetClock: true})
	el.EmitSimple(EventTypeShot, 2, "play", "", ShotPayload{X: 0.5, Targets: 1, Counted: true, Hits: 1})
	el.EmitSimple(EventTypeResult, 3, "play", "", ResultPayload{Outcome: "lose", Hits: 1, Shots: 1, Seconds: 60.1})
	el.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var types []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var raw struct {
			Type     string          `json:"type"`
			Sequence uint64          `json:"sequence"`
			Payload  json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(sc.Bytes(), &raw); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		types = append(types, raw.Type)
		if raw.Type == "shot" {
			var p ShotPayload
			if err := json.Unmarshal(raw.Payload, &p); err != nil || p.Hits != 1 || !p.Counted {
				t.Errorf("shot payload %s (%v)", raw.Payload, err)
			}
		}
	}

	want := []string{"scene_enter", "shot", "result"}
	if len(types) != len(want) {
		t.Fatalf("lines %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("line %d type %s, want %s", i, types[i], want[i])
		}
	}

	stats := el.GetStats()
	if stats["written"] != uint64(3) || stats["pending"] != uint64(0) || stats["running"] != false {
		t.Errorf("stats %v", stats)
	}
}

func TestEventLogSourceRateLimit(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatal(err)
	}
	defer el.Stop()

	accepted := 0
	for i := 0; i < 40; i++ {
		if el.EmitSimple(EventTypeInput, uint64(i), "play", "flooder", InputPayload{Action: "press"}) {
			accepted++
		}
	}
	if accepted >= 40 || el.GetStats()["dropped"].(uint64) == 0 {
		t.Errorf("accepted %d of 40 from one source", accepted)
	}

	// Other sources and the frame loop are unaffected.
	if !el.EmitSimple(EventTypeInput, 0, "play", "polite", InputPayload{Action: "press"}) {
		t.Error("second source was limited")
	}
	if !el.EmitSimple(EventTypeCue, 0, "play", "", CuePayload{Cue: "shot"}) {
		t.Error("frame-loop event was limited")
	}
}

func TestEventLogRecent(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatal(err)
	}
	defer el.Stop()

	if got := el.Recent(5); len(got) != 0 {
		t.Errorf("Recent on empty log = %d events", len(got))
	}

	for i := 1; i <= 6; i++ {
		el.EmitSimple(EventTypeMilestone, uint64(i), "play", "", MilestonePayload{Hits: i})
	}

	got := el.Recent(3)
	if len(got) != 3 {
		t.Fatalf("Recent(3) = %d events", len(got))
	}
	for i, ev := range got {
		if ev.Frame != uint64(4+i) || ev.Sequence != uint64(4+i) {
			t.Errorf("event %d: frame %d seq %d", i, ev.Frame, ev.Sequence)
		}
	}
	if n := len(el.Recent(100)); n != 6 {
		t.Errorf("Recent(100) = %d, want 6", n)
	}
}

func TestEventTypeNames(t *testing.T) {
	tests := []struct {
		t    EventType
		want string
	}{
		{EventTypeSceneEnter, "scene_enter"},
		{EventTypeInput, "input"},
		{EventTypeShot, "shot"},
		{EventTypeMilestone, "milestone"},
		{EventTypeCue, "cue"},
		{EventTypeResult, "result"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%d.String() = %s, want %s", tt.t, got, tt.want)
		}
	}
}
