package containers

import "errors"

var (
	ErrQueueEmpty = errors.New("queue is empty")
	ErrQueueFull  = errors.New("queue is full")
)

// RingQueue is a FIFO over a circular buffer. A growable queue doubles its
// storage instead of rejecting writes when full.
type RingQueue[T any] struct {
	data       []T
	size       int
	readIndex  int
	writeIndex int
	count      int
	growable   bool
}

// Create a new fixed-capacity RingQueue
func NewRingQueue[T any](size int) *RingQueue[T] {
	if size < 1 {
		size = 1
	}
	return &RingQueue[T]{
		data: make([]T, size),
		size: size,
	}
}

// NewGrowableRingQueue creates a RingQueue that never reports full.
func NewGrowableRingQueue[T any](size int) *RingQueue[T] {
	rq := NewRingQueue[T](size)
	rq.growable = true
	return rq
}

// Enqueue adds an element to the queue
func (rq *RingQueue[T]) Enqueue(value T) error {
	if rq.IsFull() {
		if !rq.growable {
			return ErrQueueFull
		}
		rq.grow()
	}

	rq.data[rq.writeIndex] = value
	rq.writeIndex = (rq.writeIndex + 1) % rq.size
	rq.count++
	return nil
}

// Dequeue removes and returns the front element in the queue
func (rq *RingQueue[T]) Dequeue() (T, error) {
	var zero T
	if rq.IsEmpty() {
		return zero, ErrQueueEmpty
	}

	value := rq.data[rq.readIndex]
	rq.data[rq.readIndex] = zero
	rq.readIndex = (rq.readIndex + 1) % rq.size
	rq.count--
	return value, nil
}

// Peek returns the front element without removing it
func (rq *RingQueue[T]) Peek() (T, error) {
	if rq.IsEmpty() {
		var zero T
		return zero, ErrQueueEmpty
	}
	return rq.data[rq.readIndex], nil
}

// Len returns the number of queued elements
func (rq *RingQueue[T]) Len() int {
	return rq.count
}

// IsEmpty checks if the queue is empty
func (rq *RingQueue[T]) IsEmpty() bool {
	return rq.count == 0
}

// IsFull checks if the queue is full
func (rq *RingQueue[T]) IsFull() bool {
	return rq.count == rq.size
}

// Reset drops every element but keeps the storage.
func (rq *RingQueue[T]) Reset() {
	clear(rq.data)
	rq.readIndex = 0
	rq.writeIndex = 0
	rq.count = 0
}

func (rq *RingQueue[T]) grow() {
	data := make([]T, rq.size*2)
	for i := 0; i < rq.count; i++ {
		data[i] = rq.data[(rq.readIndex+i)%rq.size]
	}
	rq.data = data
	rq.readIndex = 0
	rq.writeIndex = rq.count
	rq.size = len(data)
}
