package capture

import (
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// MaxConsecutiveErrors before the output is considered gone.
	MaxConsecutiveErrors = 10
	// BackpressureWarningThreshold - warn if a write takes this many frame intervals
	BackpressureWarningThreshold = 2.0
	// BackpressureLogInterval - minimum time between backpressure warnings
	BackpressureLogInterval = 5 * time.Second
)

// AsyncFrameWriter drains a FrameRingBuffer into ffmpeg's stdin at a steady
// rate, isolating the frame loop from encoder backpressure.
type AsyncFrameWriter struct {
	ringBuffer *FrameRingBuffer
	pipe       io.Writer
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    int32 // atomic

	// Stats
	framesWritten      uint64 // atomic
	writeErrors        uint64 // atomic
	backpressureEvents int64  // atomic
	avgWriteTimeNs     int64  // atomic

	consecutiveErrors int32 // atomic
	outputLost        int32 // atomic

	mu                  sync.Mutex
	lastBackpressureLog time.Time
	onOutputLost        func()
}

// NewAsyncFrameWriter creates a writer draining ringBuffer into pipe.
func NewAsyncFrameWriter(ringBuffer *FrameRingBuffer, pipe io.Writer) *AsyncFrameWriter {
	return &AsyncFrameWriter{
		ringBuffer: ringBuffer,
		pipe:       pipe,
		stopChan:   make(chan struct{}),
	}
}

// SetOnOutputLost sets a callback run once after MaxConsecutiveErrors failed writes.
func (w *AsyncFrameWriter) SetOnOutputLost(callback func()) {
	w.mu.Lock()
	w.onOutputLost = callback
	w.mu.Unlock()
}

// IsOutputLost reports whether the writer gave up on its pipe.
func (w *AsyncFrameWriter) IsOutputLost() bool {
	return atomic.LoadInt32(&w.outputLost) == 1
}

// Start begins the writer goroutine, waking fps times a second.
func (w *AsyncFrameWriter) Start(fps int) {
	if !atomic.CompareAndSwapInt32(&w.running, 0, 1) {
		return
	}
	if fps <= 0 {
		fps = 60
	}

	w.stopChan = make(chan struct{})
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()

		frameInterval := time.Second / time.Duration(fps)
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()

		log.Printf("📡 AsyncFrameWriter started at %d FPS", fps)

		for {
			select {
			case <-w.stopChan:
				return
			case <-ticker.C:
				if w.IsOutputLost() {
					continue
				}
				// Drain everything pending so a slow tick does not let the ring fill.
				for frame := w.ringBuffer.TryRead(); frame != nil; frame = w.ringBuffer.TryRead() {
					if !w.write(frame, frameInterval) {
						break
					}
				}
			}
		}
	}()
}

// write sends one frame and updates health counters. False stops the drain.
func (w *AsyncFrameWriter) write(frame []byte, frameInterval time.Duration) bool {
	startTime := time.Now()
	_, err := w.pipe.Write(frame)
	writeTime := time.Since(startTime)

	if err != nil {
		atomic.AddUint64(&w.writeErrors, 1)
		errCount := atomic.AddInt32(&w.consecutiveErrors, 1)
		if errCount <= 3 {
			log.Printf("❌ AsyncFrameWriter write error (%d/%d): %v", errCount, MaxConsecutiveErrors, err)
		}
		if errCount >= MaxConsecutiveErrors && atomic.CompareAndSwapInt32(&w.outputLost, 0, 1) {
			log.Printf("🔴 Recording output lost after %d consecutive errors", errCount)
			w.mu.Lock()
			callback := w.onOutputLost
			w.mu.Unlock()
			if callback != nil {
				go callback()
			}
		}
		return false
	}

	atomic.StoreInt32(&w.consecutiveErrors, 0)
	atomic.AddUint64(&w.framesWritten, 1)

	avgNs := atomic.LoadInt64(&w.avgWriteTimeNs)
	atomic.StoreInt64(&w.avgWriteTimeNs, (avgNs*9+writeTime.Nanoseconds())/10)

	if float64(writeTime)/float64(frameInterval) >= BackpressureWarningThreshold {
		atomic.AddInt64(&w.backpressureEvents, 1)

		w.mu.Lock()
		shouldLog := time.Since(w.lastBackpressureLog) > BackpressureLogInterval
		if shouldLog {
			w.lastBackpressureLog = time.Now()
		}
		w.mu.Unlock()

		if shouldLog {
			log.Printf("⚠️ Backpressure detected: ffmpeg write took %.0fms (target: %.1fms)",
				writeTime.Seconds()*1000, frameInterval.Seconds()*1000)
		}
	}
	return true
}

// Stop stops the writer and waits for its goroutine.
func (w *AsyncFrameWriter) Stop() {
	if !atomic.CompareAndSwapInt32(&w.running, 1, 0) {
		return
	}
	close(w.stopChan)
	w.wg.Wait()
	log.Println("📡 AsyncFrameWriter stopped")
}

// IsRunning returns whether the writer goroutine is active.
func (w *AsyncFrameWriter) IsRunning() bool {
	return atomic.LoadInt32(&w.running) == 1
}

// GetStats returns writer and buffer statistics.
func (w *AsyncFrameWriter) GetStats() map[string]interface{} {
	bufWritten, bufDropped, bufRead := w.ringBuffer.GetStats()

	return map[string]interface{}{
		"framesWritten":      atomic.LoadUint64(&w.framesWritten),
		"writeErrors":        atomic.LoadUint64(&w.writeErrors),
		"outputLost":         w.IsOutputLost(),
		"avgWriteTimeMs":     float64(atomic.LoadInt64(&w.avgWriteTimeNs)) / 1e6,
		"backpressureEvents": atomic.LoadInt64(&w.backpressureEvents),
		"bufferAvailable":    w.ringBuffer.Available(),
		"bufferWritten":      bufWritten,
		"bufferDropped":      bufDropped,
		"bufferRead":         bufRead,
	}
}
