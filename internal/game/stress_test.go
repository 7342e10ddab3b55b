package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// STRESS TEST SUITE: CONCURRENT REMOTE INPUT
// Run with: go test -v -run=TestStress -timeout=60s ./internal/game/...
// =============================================================================

func TestStress_ConcurrentInput(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	e := NewEngine(EngineConfig{Seed: 3}, NewSystemTime(), DiscardRenderer{}, SilentAudio{})
	if err := e.StartEventLog(""); err != nil {
		t.Fatal(err)
	}
	defer e.StopEventLog()

	e.Start(120)
	defer e.Stop()

	var wg sync.WaitGroup
	var queued, refused int64

	// Simulate several remote clients hammering the input queue
	numWorkers := 8
	eventsPerWorker := 500

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < eventsPerWorker; i++ {
				ev := InputEvent{Action: ActionMove, X: float64(i%200)/100 - 1, Source: "stress"}
				if i%10 == 0 {
					ev = InputEvent{Action: ActionPress, Key: Mouse1, Source: "stress"}
				} else if i%10 == 5 {
					ev = InputEvent{Action: ActionRelease, Key: Mouse1, Source: "stress"}
				}
				if e.PushInput(ev) {
					atomic.AddInt64(&queued, 1)
				} else {
					atomic.AddInt64(&refused, 1)
				}
				if i%50 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(w)
	}

	// Readers poll snapshots like the API does
	stop := make(chan struct{})
	var reads int64
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					snap := e.GetSnapshot()
					if snap.Scene == "" && snap.Frame > 0 {
						t.Errorf("torn snapshot: %+v", snap)
						return
					}
					atomic.AddInt64(&reads, 1)
				}
			}
		}()
	}

	time.Sleep(300 * time.Millisecond)
	close(stop)
	wg.Wait()

	stats := e.GetStats()
	t.Logf("Concurrent Input Test:")
	t.Logf("  Queued: %d  Refused: %d  Dropped: %d", queued, refused, stats.InputDropped)
	t.Logf("  Frames: %d  Snapshot reads: %d", stats.Frames, reads)

	if queued+refused != int64(numWorkers*eventsPerWorker) {
		t.Errorf("lost track of %d events", int64(numWorkers*eventsPerWorker)-queued-refused)
	}
	if uint64(refused) != stats.InputDropped {
		t.Errorf("refused %d but engine counted %d drops", refused, stats.InputDropped)
	}
	if stats.Frames == 0 {
		t.Error("frame loop starved")
	}
}
