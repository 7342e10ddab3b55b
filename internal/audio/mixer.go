package audio

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"fish-hunt/internal/game"

	"github.com/gopxl/beep"
)

// maxVoices limits concurrent cues in the mixer.
const maxVoices = 8

// Mixer renders cues to interleaved s16le stereo PCM, one video frame at a
// time, for the recorder's audio pipe.
type Mixer struct {
	mu     sync.Mutex
	lib    *Library
	mixer  beep.Mixer
	volume float64

	samplesPerFrame int
	work            [][2]float64 // pre-allocated to avoid per-frame allocs
	out             []byte

	dropped uint64 // atomic - cues refused because all voices were busy
}

// NewMixer creates a mixer producing fps audio frames per second.
func NewMixer(lib *Library, volume float64, fps int) *Mixer {
	if fps <= 0 {
		fps = 60
	}
	n := int(lib.Format().SampleRate) / fps
	return &Mixer{
		lib:             lib,
		volume:          clampVolume(volume),
		samplesPerFrame: n,
		work:            make([][2]float64, n),
		out:             make([]byte, n*4),
	}
}

// Play queues cue. Implements game.Audio.
func (m *Mixer) Play(cue game.Cue) {
	s, ok := m.lib.Streamer(cue)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mixer.Len() >= maxVoices {
		atomic.AddUint64(&m.dropped, 1)
		return
	}
	m.mixer.Add(withVolume(s, m.volume))
}

// Active returns the number of cues still playing.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Len()
}

// Dropped returns how many cues were refused.
func (m *Mixer) Dropped() uint64 {
	return atomic.LoadUint64(&m.dropped)
}

// BytesPerFrame is the size of one GenerateFrame result.
func (m *Mixer) BytesPerFrame() int {
	return len(m.out)
}

// GenerateFrame mixes the next frame of audio. Silence when nothing plays.
// The returned slice is reused by the next call.
func (m *Mixer) GenerateFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.work {
		m.work[i] = [2]float64{}
	}
	m.mixer.Stream(m.work)

	for i, s := range m.work {
		binary.LittleEndian.PutUint16(m.out[i*4:], uint16(floatToInt16(s[0])))
		binary.LittleEndian.PutUint16(m.out[i*4+2:], uint16(floatToInt16(s[1])))
	}
	return m.out
}

// floatToInt16 converts a sample in [-1, 1] to int16 with soft clipping above
// ±30000 to leave headroom when several cues overlap.
func floatToInt16(sample float64) int16 {
	scaled := sample * 32767.0

	if scaled > 30000 {
		scaled = 30000 + (scaled-30000)/4
	} else if scaled < -30000 {
		scaled = -30000 + (scaled+30000)/4
	}

	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}
