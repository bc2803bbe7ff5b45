package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full queue: err = %v, want ErrQueueFull", err)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Errorf("Peek = %d, want 1", v)
	}
	for want := 1; want <= 3; want++ {
		got, err := rq.Dequeue()
		if err != nil || got != want {
			t.Fatalf("Dequeue = %d, %v; want %d", got, err, want)
		}
	}
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Dequeue on empty queue: err = %v", err)
	}
	if _, err := rq.Peek(); !errors.Is(err, ErrQueueEmpty) {
		t.Errorf("Peek on empty queue: err = %v", err)
	}
}

func TestRingQueueWrapAround(t *testing.T) {
	rq := NewRingQueue[string](2)
	_ = rq.Enqueue("a")
	_ = rq.Enqueue("b")
	_, _ = rq.Dequeue()
	if err := rq.Enqueue("c"); err != nil {
		t.Fatalf("Enqueue after dequeue: %v", err)
	}
	if v, _ := rq.Dequeue(); v != "b" {
		t.Errorf("got %q, want b", v)
	}
	if v, _ := rq.Dequeue(); v != "c" {
		t.Errorf("got %q, want c", v)
	}
}

func TestGrowableRingQueueKeepsOrder(t *testing.T) {
	rq := NewGrowableRingQueue[int](2)
	// Offset the read index so growth has to unwrap the buffer.
	_ = rq.Enqueue(0)
	_, _ = rq.Dequeue()
	for i := 1; i <= 9; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if rq.Len() != 9 {
		t.Fatalf("Len = %d, want 9", rq.Len())
	}
	for want := 1; want <= 9; want++ {
		if got, _ := rq.Dequeue(); got != want {
			t.Fatalf("Dequeue = %d, want %d", got, want)
		}
	}
	rq.Reset()
	if !rq.IsEmpty() {
		t.Errorf("Reset left elements behind")
	}
}
