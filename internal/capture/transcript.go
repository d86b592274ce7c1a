package capture

import "sync"

// DefaultTranscriptSize is the transcript capacity used when none is configured.
const DefaultTranscriptSize = 1 << 20

// Transcript is a fixed-capacity circular record of raw build output.
// Once full, each write evicts the oldest bytes, so the transcript always
// holds the most recent size bytes. It implements io.Writer and is safe
// for concurrent use.
type Transcript struct {
	mu      sync.RWMutex
	data    []byte
	head    int // index of the oldest byte
	n       int // bytes stored
	dropped int64
}

// NewTranscript creates a transcript holding up to size bytes.
// A non-positive size falls back to DefaultTranscriptSize.
func NewTranscript(size int) *Transcript {
	if size <= 0 {
		size = DefaultTranscriptSize
	}
	return &Transcript{data: make([]byte, size)}
}

// Write appends p. It always reports len(p) written.
func (t *Transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.write(p)
	return len(p), nil
}

func (t *Transcript) write(p []byte) {
	size := len(t.data)

	// Only the last size bytes of p can survive.
	if len(p) > size {
		t.dropped += int64(t.n + len(p) - size)
		p = p[len(p)-size:]
		t.head, t.n = 0, 0
	} else if over := t.n + len(p) - size; over > 0 {
		t.dropped += int64(over)
		t.head = (t.head + over) % size
		t.n -= over
	}

	tail := (t.head + t.n) % size
	c := copy(t.data[tail:], p)
	if c < len(p) {
		copy(t.data, p[c:])
	}
	t.n += len(p)
}

// Bytes returns a copy of the stored bytes, oldest first.
func (t *Transcript) Bytes() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]byte, t.n)
	first := copy(out, t.data[t.head:min(t.head+t.n, len(t.data))])
	copy(out[first:], t.data[:t.n-first])
	return out
}

// String returns the stored output as text.
func (t *Transcript) String() string {
	return string(t.Bytes())
}

// Len returns the number of stored bytes.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.n
}

// Dropped reports how many bytes were evicted since the last Reset.
func (t *Transcript) Dropped() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dropped
}

// Reset empties the transcript, keeping its memory.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head, t.n, t.dropped = 0, 0, 0
}

