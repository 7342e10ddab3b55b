package capture

import (
	"sync/atomic"
)

// DefaultBufferSize is the number of frame slots when none is configured.
// At 60fps 8 frames hold ~133ms of encoder hiccups.
const DefaultBufferSize = 8

// FrameRingBuffer decouples the frame loop from ffmpeg writes.
// Single producer, single consumer. When full, new frames are dropped rather
// than blocking the frame loop.
type FrameRingBuffer struct {
	frames    [][]byte
	readIdx   uint32 // atomic - consumer index
	writeIdx  uint32 // atomic - producer index
	frameSize int

	// Stats
	framesWritten uint64
	framesDropped uint64
	framesRead    uint64
}

// NewFrameRingBuffer creates a ring of slots frames, each frameSize bytes.
// One slot is always kept free, so slots-1 frames can be pending.
func NewFrameRingBuffer(frameSize, slots int) *FrameRingBuffer {
	if slots < 2 {
		slots = DefaultBufferSize
	}
	rb := &FrameRingBuffer{
		frames:    make([][]byte, slots),
		frameSize: frameSize,
	}
	for i := range rb.frames {
		rb.frames[i] = make([]byte, frameSize)
	}
	return rb
}

// TryWrite copies frame into the next free slot.
// Returns false if the buffer is full or the frame has the wrong size.
func (rb *FrameRingBuffer) TryWrite(frame []byte) bool {
	if len(frame) != rb.frameSize {
		return false
	}

	n := uint32(len(rb.frames))
	currentWrite := atomic.LoadUint32(&rb.writeIdx)
	nextWrite := (currentWrite + 1) % n

	if nextWrite == atomic.LoadUint32(&rb.readIdx) {
		atomic.AddUint64(&rb.framesDropped, 1)
		return false
	}

	copy(rb.frames[currentWrite], frame)

	atomic.StoreUint32(&rb.writeIdx, nextWrite)
	atomic.AddUint64(&rb.framesWritten, 1)
	return true
}

// TryRead returns the oldest pending frame, or nil if none.
// The slice stays valid until the producer wraps around to its slot.
func (rb *FrameRingBuffer) TryRead() []byte {
	readIdx := atomic.LoadUint32(&rb.readIdx)
	if readIdx == atomic.LoadUint32(&rb.writeIdx) {
		return nil
	}

	frame := rb.frames[readIdx]

	atomic.StoreUint32(&rb.readIdx, (readIdx+1)%uint32(len(rb.frames)))
	atomic.AddUint64(&rb.framesRead, 1)
	return frame
}

// Available returns the number of frames pending.
func (rb *FrameRingBuffer) Available() int {
	readIdx := atomic.LoadUint32(&rb.readIdx)
	writeIdx := atomic.LoadUint32(&rb.writeIdx)

	if writeIdx >= readIdx {
		return int(writeIdx - readIdx)
	}
	return len(rb.frames) - int(readIdx) + int(writeIdx)
}

// GetStats returns buffer statistics.
func (rb *FrameRingBuffer) GetStats() (written, dropped, read uint64) {
	return atomic.LoadUint64(&rb.framesWritten),
		atomic.LoadUint64(&rb.framesDropped),
		atomic.LoadUint64(&rb.framesRead)
}
