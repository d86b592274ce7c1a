// Package capture turns a stream of raw output chunks into finished lines
// and keeps a bounded transcript of the bytes a build produced.
//
// # Main Types
//
//   - [LineBuffer]: splits chunks on '\n', holding back the unterminated tail
//   - [Transcript]: bounded, concurrency-safe record of the raw output
//
// LineBuffer is the single place where partial escape sequences are
// reassembled: it buffers raw bytes and only releases whole lines, so an
// escape sequence split across two chunks reaches the decoder intact.
package capture

import "strings"

// LineBuffer accumulates chunks and releases completed lines.
// It is not safe for concurrent use; one build owns one buffer.
type LineBuffer struct {
	pending string
}

// NewLineBuffer returns an empty buffer.
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{}
}

// Append adds chunk and returns every line it completed, without the
// terminating '\n'. A chunk with no newline yields nil and is kept for
// the next call.
func (b *LineBuffer) Append(chunk string) []string {
	if chunk == "" {
		return nil
	}

	last := strings.LastIndexByte(chunk, '\n')
	if last < 0 {
		b.pending += chunk
		return nil
	}

	complete := b.pending + chunk[:last]
	b.pending = chunk[last+1:]
	return strings.Split(complete, "\n")
}

// Flush returns the unterminated tail at stream end. ok is false when
// nothing is pending. The buffer is empty afterwards.
func (b *LineBuffer) Flush() (line string, ok bool) {
	if b.pending == "" {
		return "", false
	}
	line = b.pending
	b.pending = ""
	return line, true
}

// Pending returns the text held back so far without consuming it.
func (b *LineBuffer) Pending() string {
	return b.pending
}

// Reset drops any pending text.
func (b *LineBuffer) Reset() {
	b.pending = ""
}
