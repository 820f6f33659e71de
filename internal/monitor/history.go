package monitor

import "sync"

// DefaultHistorySize is the default number of refresh ticks retained.
const DefaultHistorySize = 120

// History keeps the derived readings of recent refresh ticks in ring
// buffers so the dashboard can draw trends. It is safe for concurrent use.
type History struct {
	mu   sync.RWMutex
	size int
	bpm  *ringBuffer
	rate *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a new history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		bpm:  newRingBuffer(size),
		rate: newRingBuffer(size),
	}
}

// Push records one tick's BPM and samples-per-second.
func (h *History) Push(bpm, samplesPerSecond int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bpm.push(float64(bpm))
	h.rate.push(float64(samplesPerSecond))
}

// BPM returns up to count recent BPM readings, oldest first.
func (h *History) BPM(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bpm.getLast(count)
}

// Rate returns up to count recent samples-per-second readings, oldest first.
func (h *History) Rate(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rate.getLast(count)
}

// Count returns the number of ticks stored.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bpm.count
}

// Clear drops all stored ticks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bpm = newRingBuffer(h.size)
	h.rate = newRingBuffer(h.size)
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position, so the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}
