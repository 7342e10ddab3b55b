package audio

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"fish-hunt/internal/game"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// Player plays cues on the default output device. Play never blocks the frame:
// the speaker mixes on its own goroutine.
type Player struct {
	lib    *Library
	volume float64

	played  uint64 // atomic
	unknown uint64 // atomic
}

// NewPlayer opens the speaker at the library's sample rate.
func NewPlayer(lib *Library, volume float64) (*Player, error) {
	sr := lib.Format().SampleRate
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("audio: speaker init: %w", err)
	}
	return &Player{lib: lib, volume: clampVolume(volume)}, nil
}

// Play starts cue from the beginning, overlapping anything already playing.
func (p *Player) Play(cue game.Cue) {
	s, ok := p.lib.Streamer(cue)
	if !ok {
		atomic.AddUint64(&p.unknown, 1)
		return
	}
	atomic.AddUint64(&p.played, 1)
	speaker.Play(withVolume(s, p.volume))
}

// Stats returns how many cues were played and how many were unknown.
func (p *Player) Stats() (played, unknown uint64) {
	return atomic.LoadUint64(&p.played), atomic.LoadUint64(&p.unknown)
}

// Close releases the output device.
func (p *Player) Close() {
	speaker.Close()
}

// withVolume scales s linearly by v in [0, 1].
func withVolume(s beep.Streamer, v float64) beep.Streamer {
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(math.Max(v, 1e-6)),
		Silent:   v <= 0,
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Tee fans every cue out to several outputs, e.g. the speaker and the
// recorder's mixer.
type Tee []game.Audio

// Play forwards cue to every output.
func (t Tee) Play(cue game.Cue) {
	for _, a := range t {
		a.Play(cue)
	}
}
