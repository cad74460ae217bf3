package window

import (
	"sync"

	"github.com/seoulquant/candlevec/pkg/model"
)

// RingBuffer is a fixed-capacity circular buffer of candles. It backs the
// streaming Builder: once full, each push overwrites the oldest candle.
type RingBuffer struct {
	data     []model.Candle
	capacity int
	size     int
	head     int // next write position
	mu       sync.RWMutex
}

// NewRingBuffer creates a ring buffer with the given capacity
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		data:     make([]model.Candle, capacity),
		capacity: capacity,
	}
}

// Push adds a candle, overwriting the oldest when full
func (rb *RingBuffer) Push(c model.Candle) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.data[rb.head] = c
	rb.head = (rb.head + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// Size returns the current number of buffered candles
func (rb *RingBuffer) Size() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size
}

// IsFull returns true if the buffer is at capacity
func (rb *RingBuffer) IsFull() bool {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size == rb.capacity
}

// Capacity returns the maximum capacity of the buffer
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// ToSlice returns the buffered candles in chronological order (oldest first)
func (rb *RingBuffer) ToSlice() []model.Candle {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	result := make([]model.Candle, rb.size)
	start := rb.start()
	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(start+i)%rb.capacity]
	}
	return result
}

// First returns the oldest buffered candle
func (rb *RingBuffer) First() *model.Candle {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.size == 0 {
		return nil
	}
	c := rb.data[rb.start()]
	return &c
}

// Last returns the most recent buffered candle
func (rb *RingBuffer) Last() *model.Candle {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.size == 0 {
		return nil
	}
	c := rb.data[(rb.head-1+rb.capacity)%rb.capacity]
	return &c
}

// Clear empties the buffer
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.size = 0
	rb.head = 0
}

// start returns the index of the oldest element; callers hold the lock
func (rb *RingBuffer) start() int {
	if rb.size == rb.capacity {
		return rb.head
	}
	return 0
}
