package audio

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"path/filepath"
	"time"

	"fish-hunt/internal/game"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrNoCueFile is returned when neither <cue>.ogg nor <cue>.wav exists.
var ErrNoCueFile = errors.New("audio: no cue file")

// Synthesized fallback tones.
const (
	toneLength  = 120 * time.Millisecond
	toneMinFreq = 330.0
	toneMaxFreq = 880.0
)

// Library holds every cue fully decoded at one sample rate, so playback never
// touches the disk.
type Library struct {
	format      beep.Format
	buffers     map[game.Cue]*beep.Buffer
	synthesized int
}

// LoadLibrary decodes <dir>/<cue>.ogg or <dir>/<cue>.wav for each cue.
// Missing or unreadable files fall back to a short synthesized tone, so every
// cue is always playable.
func LoadLibrary(dir string, cues []game.Cue, sampleRate int) *Library {
	lib := &Library{
		format:  beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 2},
		buffers: make(map[game.Cue]*beep.Buffer, len(cues)),
	}

	for _, cue := range cues {
		buf, err := lib.loadFile(dir, cue)
		if err != nil {
			if !errors.Is(err, ErrNoCueFile) {
				log.Printf("⚠️ Cue %s unreadable, using tone: %v", cue, err)
			}
			buf, err = lib.synthesize(cue)
			if err != nil {
				log.Printf("⚠️ Cue %s disabled: %v", cue, err)
				continue
			}
			lib.synthesized++
		}
		lib.buffers[cue] = buf
	}

	log.Printf("🔊 Loaded %d cues (%d synthesized) from %s", len(lib.buffers), lib.synthesized, dir)
	return lib
}

// loadFile decodes one cue file and resamples it to the library rate.
func (lib *Library) loadFile(dir string, cue game.Cue) (*beep.Buffer, error) {
	for _, ext := range []string{".ogg", ".wav"} {
		path := filepath.Join(dir, string(cue)+ext)
		file, err := os.Open(path)
		if err != nil {
			continue
		}

		var (
			streamer beep.StreamSeekCloser
			format   beep.Format
		)
		if ext == ".ogg" {
			streamer, format, err = vorbis.Decode(file)
		} else {
			streamer, format, err = wav.Decode(file)
		}
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		var s beep.Streamer = streamer
		if format.SampleRate != lib.format.SampleRate {
			s = beep.Resample(4, format.SampleRate, lib.format.SampleRate, streamer)
		}

		buf := beep.NewBuffer(lib.format)
		buf.Append(s)
		streamer.Close()
		return buf, nil
	}
	return nil, ErrNoCueFile
}

// synthesize renders the fallback tone for cue.
func (lib *Library) synthesize(cue game.Cue) (*beep.Buffer, error) {
	tone, err := generators.SineTone(lib.format.SampleRate, toneFor(cue))
	if err != nil {
		return nil, err
	}
	buf := beep.NewBuffer(lib.format)
	buf.Append(beep.Take(lib.format.SampleRate.N(toneLength), tone))
	return buf, nil
}

// toneFor derives a stable pitch from the cue name.
func toneFor(cue game.Cue) float64 {
	h := fnv.New32a()
	h.Write([]byte(cue))
	return toneMinFreq + float64(h.Sum32()%1000)/1000*(toneMaxFreq-toneMinFreq)
}

// Streamer returns a fresh playback cursor over cue.
func (lib *Library) Streamer(cue game.Cue) (beep.StreamSeeker, bool) {
	buf, ok := lib.buffers[cue]
	if !ok {
		return nil, false
	}
	return buf.Streamer(0, buf.Len()), true
}

// Format returns the decoded sample format.
func (lib *Library) Format() beep.Format {
	return lib.format
}

// Len returns the number of playable cues.
func (lib *Library) Len() int {
	return len(lib.buffers)
}

// Synthesized returns how many cues use the fallback tone.
func (lib *Library) Synthesized() int {
	return lib.synthesized
}
