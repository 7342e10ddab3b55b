// Package capture records presented frames (and optionally mixed cue audio)
// through an ffmpeg child process.
package capture

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoPath is returned when recording is requested without an output.
var ErrNoPath = errors.New("capture: no output path")

// AudioSource produces one video frame's worth of s16le stereo PCM per call.
type AudioSource interface {
	GenerateFrame() []byte
}

// Options describes the recorded stream.
type Options struct {
	Path       string // file path, or an rtmp:// URL
	Width      int
	Height     int
	FPS        int
	Bitrate    int // kbps
	Buffer     int // ring slots
	SampleRate int // audio sample rate, used only with an AudioSource
	FFmpeg     string
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 60
	}
	if o.Bitrate <= 0 {
		o.Bitrate = 4000
	}
	if o.Buffer < 2 {
		o.Buffer = DefaultBufferSize
	}
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.FFmpeg == "" {
		o.FFmpeg = "ffmpeg"
	}
	return o
}

// Recorder owns the ffmpeg process and the goroutines feeding it.
type Recorder struct {
	opts Options

	ffmpeg    *exec.Cmd
	videoPipe io.WriteCloser
	audioPipe io.WriteCloser
	audio     AudioSource

	ring   *FrameRingBuffer
	writer *AsyncFrameWriter

	mu        sync.Mutex
	recording bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
	startTime time.Time

	submitted    uint64 // atomic
	audioWritten uint64 // atomic
}

// NewRecorder starts ffmpeg and returns a recorder ready for SubmitFrame.
// audio may be nil, in which case the output carries silence.
func NewRecorder(opts Options, audio AudioSource) (*Recorder, error) {
	opts = opts.withDefaults()
	if opts.Path == "" {
		return nil, ErrNoPath
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("capture: bad frame size %dx%d", opts.Width, opts.Height)
	}

	// ExtraFiles is not available on windows, fall back to a silent track.
	if runtime.GOOS == "windows" {
		audio = nil
	}

	cmd := exec.Command(opts.FFmpeg, buildArgs(opts, audio != nil)...)
	cmd.Stderr = os.Stderr

	videoPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create video pipe: %w", err)
	}

	var audioPipe io.WriteCloser
	var audioReader *os.File
	if audio != nil {
		var audioWriter *os.File
		audioReader, audioWriter, err = os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("failed to create audio pipe: %w", err)
		}
		audioPipe = audioWriter
		cmd.ExtraFiles = []*os.File{audioReader} // fd 3
	}

	if err := cmd.Start(); err != nil {
		if audioPipe != nil {
			audioPipe.Close()
			audioReader.Close()
		}
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	if audioReader != nil {
		// The child holds its own copy.
		audioReader.Close()
	}

	log.Printf("🎬 Recording %dx%d @ %d fps (%dk) to %s", opts.Width, opts.Height, opts.FPS, opts.Bitrate, opts.Path)

	r := newRecorder(opts, videoPipe, audioPipe, audio)
	r.ffmpeg = cmd
	r.writer.SetOnOutputLost(func() {
		log.Println("⚠️ Recording disabled: ffmpeg stopped accepting frames")
	})
	r.start()
	return r, nil
}

// newRecorder wires the buffer and writer around already-open pipes.
func newRecorder(opts Options, video, audioPipe io.WriteCloser, audio AudioSource) *Recorder {
	opts = opts.withDefaults()
	ring := NewFrameRingBuffer(opts.Width*opts.Height*4, opts.Buffer)
	return &Recorder{
		opts:      opts,
		videoPipe: video,
		audioPipe: audioPipe,
		audio:     audio,
		ring:      ring,
		writer:    NewAsyncFrameWriter(ring, video),
	}
}

func (r *Recorder) start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recording = true
	r.startTime = time.Now()
	r.stopChan = make(chan struct{})
	r.writer.Start(r.opts.FPS)

	if r.audioPipe != nil && r.audio != nil {
		r.wg.Add(1)
		go r.audioLoop()
	}
}

// audioLoop writes one audio frame per video frame interval to keep A/V in step.
func (r *Recorder) audioLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(r.opts.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			if _, err := r.audioPipe.Write(r.audio.GenerateFrame()); err != nil {
				return
			}
			atomic.AddUint64(&r.audioWritten, 1)
		}
	}
}

// SubmitFrame queues a copy of an RGBA frame. It never blocks; false means
// the frame was dropped.
func (r *Recorder) SubmitFrame(pix []byte) bool {
	if !r.IsRecording() {
		return false
	}
	atomic.AddUint64(&r.submitted, 1)
	return r.ring.TryWrite(pix)
}

// IsRecording reports whether the recorder still accepts frames.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Stop closes the pipes and waits for ffmpeg to finish the output.
// Frames still in the ring are discarded.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return
	}
	r.recording = false
	close(r.stopChan)
	r.mu.Unlock()

	log.Println("🛑 Stopping recording...")

	r.writer.Stop()
	r.wg.Wait()

	if r.videoPipe != nil {
		r.videoPipe.Close()
	}
	if r.audioPipe != nil {
		r.audioPipe.Close()
	}

	if r.ffmpeg != nil && r.ffmpeg.Process != nil {
		done := make(chan error, 1)
		go func() {
			done <- r.ffmpeg.Wait()
		}()

		// Closing stdin lets ffmpeg finalize the container; kill only if it hangs.
		select {
		case <-done:
			log.Println("✅ ffmpeg finished")
		case <-time.After(3 * time.Second):
			killFFmpegProcess(r.ffmpeg)
			<-done
			log.Println("⚠️ ffmpeg killed after timeout")
		}
	}
}

// GetStats returns recorder statistics.
func (r *Recorder) GetStats() map[string]interface{} {
	r.mu.Lock()
	recording := r.recording
	uptime := time.Duration(0)
	if recording {
		uptime = time.Since(r.startTime)
	}
	r.mu.Unlock()

	stats := r.writer.GetStats()
	stats["recording"] = recording
	stats["path"] = r.opts.Path
	stats["framesSubmitted"] = atomic.LoadUint64(&r.submitted)
	stats["audioFramesWritten"] = atomic.LoadUint64(&r.audioWritten)
	stats["uptime"] = uptime.String()
	return stats
}

// buildArgs returns the ffmpeg command line: raw RGBA video on pipe:0 and
// either s16le audio on pipe:3 or a generated silent track.
func buildArgs(opts Options, withAudio bool) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-i", "pipe:0",
	}

	if withAudio {
		args = append(args,
			"-f", "s16le",
			"-ar", fmt.Sprintf("%d", opts.SampleRate),
			"-ac", "2",
			"-i", "pipe:3",
		)
	} else {
		args = append(args,
			"-f", "lavfi",
			"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", opts.SampleRate),
		)
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-tune", "zerolatency",
		"-b:v", fmt.Sprintf("%dk", opts.Bitrate),
		"-maxrate", fmt.Sprintf("%dk", opts.Bitrate),
		"-bufsize", fmt.Sprintf("%dk", opts.Bitrate*2),
		"-pix_fmt", "yuv420p",
		"-g", fmt.Sprintf("%d", opts.FPS*2),
		"-c:a", "aac",
		"-b:a", "128k",
		"-map", "0:v",
		"-map", "1:a",
		"-shortest",
	)

	if strings.HasPrefix(opts.Path, "rtmp://") || strings.HasPrefix(opts.Path, "rtmps://") {
		args = append(args, "-f", "flv")
	}
	return append(args, opts.Path)
}

// killFFmpegProcess terminates ffmpeg with the platform's strongest signal.
func killFFmpegProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	log.Printf("🔪 Killing ffmpeg (PID: %d)...", pid)

	if runtime.GOOS == "windows" {
		killCmd := exec.Command("taskkill", "/F", "/T", "/PID", fmt.Sprintf("%d", pid))
		if err := killCmd.Run(); err == nil {
			return
		}
	}
	cmd.Process.Kill()
}
