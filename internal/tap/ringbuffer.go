package tap

import "sync"

// RingBuffer keeps the most recent interleaved PCM samples. The player
// writes from its audio goroutine and the tap reads from the UI goroutine.
type RingBuffer struct {
	mu   sync.Mutex
	buf  []int16
	w    int // next write index
	fill int
}

// NewRingBuffer creates a buffer holding size samples.
func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{buf: make([]int16, size)}
}

// Write appends samples, overwriting the oldest when full.
func (rb *RingBuffer) Write(p []int16) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buf)
	if len(p) >= size {
		copy(rb.buf, p[len(p)-size:])
		rb.w = 0
		rb.fill = size
		return
	}
	n := copy(rb.buf[rb.w:], p)
	if n < len(p) {
		copy(rb.buf, p[n:])
	}
	rb.w = (rb.w + len(p)) % size
	rb.fill += len(p)
	if rb.fill > size {
		rb.fill = size
	}
}

// Latest copies up to n of the newest samples into a new slice, oldest first.
func (rb *RingBuffer) Latest(n int) []int16 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if n > rb.fill {
		n = rb.fill
	}
	if n <= 0 {
		return nil
	}
	size := len(rb.buf)
	out := make([]int16, n)
	start := (rb.w - n + size) % size
	k := copy(out, rb.buf[start:min(start+n, size)])
	copy(out[k:], rb.buf[:n-k])
	return out
}

// Len returns how many samples are buffered.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.fill
}

// Clear drops everything, e.g. after a seek.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.fill = 0
}
