package audio

import (
	"testing"
	"time"
)

func TestEnqueueDequeueOrder(t *testing.T) {
	q := NewFrameQueue(4)
	defer q.Close()

	q.Enqueue([]byte{1})
	q.Enqueue([]byte{2})
	q.Enqueue([]byte{3})

	for want := byte(1); want <= 3; want++ {
		frame, ok := q.Dequeue(time.Second)
		if !ok {
			t.Fatalf("expected frame %d, queue empty", want)
		}
		if frame[0] != want {
			t.Errorf("expected frame %d, got %d", want, frame[0])
		}
	}
}

func TestEnqueueFullDropsOldest(t *testing.T) {
	q := NewFrameQueue(2)
	defer q.Close()

	q.Enqueue([]byte{1})
	q.Enqueue([]byte{2})
	q.Enqueue([]byte{3}) // displaces frame 1

	if q.Dropped() != 1 {
		t.Errorf("expected 1 dropped frame, got %d", q.Dropped())
	}

	frame, ok := q.Dequeue(time.Second)
	if !ok || frame[0] != 2 {
		t.Errorf("expected oldest surviving frame 2, got %v", frame)
	}
	frame, ok = q.Dequeue(time.Second)
	if !ok || frame[0] != 3 {
		t.Errorf("expected frame 3, got %v", frame)
	}
}

func TestEnqueueNeverBlocksAtCapacity(t *testing.T) {
	q := NewFrameQueue(2)
	defer q.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			q.Enqueue([]byte{byte(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked on a full queue")
	}
}

func TestDequeueTimesOut(t *testing.T) {
	q := NewFrameQueue(2)
	defer q.Close()

	start := time.Now()
	_, ok := q.Dequeue(20 * time.Millisecond)
	if ok {
		t.Fatal("expected timeout on empty queue")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Dequeue returned before the timeout elapsed")
	}
}

func TestCloseStopsProducerAndConsumer(t *testing.T) {
	q := NewFrameQueue(2)
	q.Enqueue([]byte{1})
	q.Close()

	if q.Enqueue([]byte{2}) {
		t.Error("expected Enqueue to report closed")
	}

	// A queued frame is still readable, then the closed queue reports done.
	if frame, ok := q.Dequeue(time.Second); !ok || frame[0] != 1 {
		t.Errorf("expected remaining frame 1, got %v ok=%v", frame, ok)
	}
	if _, ok := q.Dequeue(10 * time.Millisecond); ok {
		t.Error("expected closed queue to report no frames")
	}

	// Close is idempotent.
	q.Close()
}

func TestDefaultCapacity(t *testing.T) {
	q := NewFrameQueue(0)
	defer q.Close()
	for i := 0; i < DefaultQueueFrames; i++ {
		q.Enqueue([]byte{byte(i)})
	}
	if q.Dropped() != 0 {
		t.Errorf("expected default capacity %d without drops, got %d dropped", DefaultQueueFrames, q.Dropped())
	}
}
