// Package audio holds the hand-off buffer between the capture callback and
// the network send loop.
package audio

import (
	"sync"
	"time"
)

// DefaultQueueFrames bounds pending capture audio to about one second at
// 50ms frames.
const DefaultQueueFrames = 20

// FrameQueue is a bounded FIFO of PCM frames shared between a time-critical
// producer (the audio-hardware callback) and a consumer (the network send
// loop).
//
// Full-queue policy: drop-oldest. Enqueue never blocks; when the queue is at
// capacity the oldest pending frame is discarded to make room, keeping the
// relay live at the cost of a short gap in upstream audio. Dropped frames
// are counted, not recovered.
type FrameQueue struct {
	frames chan []byte

	mu      sync.Mutex
	closed  bool
	dropped uint64
}

// NewFrameQueue creates a queue holding at most capacity frames.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = DefaultQueueFrames
	}
	return &FrameQueue{frames: make(chan []byte, capacity)}
}

// Enqueue hands one frame to the consumer without blocking. It reports
// whether the frame was accepted; false means the queue is closed.
func (q *FrameQueue) Enqueue(frame []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}

	select {
	case q.frames <- frame:
		return true
	default:
	}

	// Full: discard the oldest pending frame, then retry once. A racing
	// consumer may have emptied the slot already, so both operations stay
	// non-blocking.
	select {
	case <-q.frames:
		q.dropped++
	default:
	}
	select {
	case q.frames <- frame:
	default:
		q.dropped++
	}
	return true
}

// Dequeue waits up to timeout for the next frame. ok is false on timeout or
// when the queue is closed and drained; callers yield and retry on timeout
// rather than busy-spin.
func (q *FrameQueue) Dequeue(timeout time.Duration) (frame []byte, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case frame, ok = <-q.frames:
		return frame, ok
	case <-timer.C:
		return nil, false
	}
}

// Close releases the queue. Outstanding frames are discarded by the next
// Dequeue pass; further Enqueue calls report false.
func (q *FrameQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.frames)
}

// Dropped returns how many frames the full-queue policy has discarded.
func (q *FrameQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Len returns the number of frames currently pending.
func (q *FrameQueue) Len() int {
	return len(q.frames)
}
