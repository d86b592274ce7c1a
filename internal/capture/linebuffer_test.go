package capture

import (
	"reflect"
	"strings"
	"testing"
)

func TestLineBuffer_Append(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		want    []string
		pending string
	}{
		{
			name:    "no newline holds everything",
			chunks:  []string{"data without linebreak"},
			want:    nil,
			pending: "data without linebreak",
		},
		{
			name:    "joined across chunks",
			chunks:  []string{"same", " line\n"},
			want:    []string{"same line"},
			pending: "",
		},
		{
			name:    "several lines in one chunk",
			chunks:  []string{"a\nb\nc"},
			want:    []string{"a", "b"},
			pending: "c",
		},
		{
			name:    "chunk ends at newline",
			chunks:  []string{"a\nb\n"},
			want:    []string{"a", "b"},
			pending: "",
		},
		{
			name:    "empty lines survive",
			chunks:  []string{"\n\nx\n"},
			want:    []string{"", "", "x"},
			pending: "",
		},
		{
			name:    "carriage return is content",
			chunks:  []string{"progress\r50%\r\n"},
			want:    []string{"progress\r50%\r"},
			pending: "",
		},
		{
			name:    "split escape sequence reassembled",
			chunks:  []string{"\x1b[3", "1mred\n"},
			want:    []string{"\x1b[31mred"},
			pending: "",
		},
		{
			name:    "empty chunk",
			chunks:  []string{""},
			want:    nil,
			pending: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLineBuffer()
			var got []string
			for _, c := range tt.chunks {
				got = append(got, b.Append(c)...)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
			if b.Pending() != tt.pending {
				t.Errorf("Pending() = %q, want %q", b.Pending(), tt.pending)
			}
		})
	}
}

func TestLineBuffer_Flush(t *testing.T) {
	b := NewLineBuffer()
	b.Append("tail")

	line, ok := b.Flush()
	if !ok || line != "tail" {
		t.Errorf("Flush() = %q, %v, want %q, true", line, ok, "tail")
	}

	// Emitted once.
	if line, ok := b.Flush(); ok {
		t.Errorf("second Flush() = %q, true, want nothing", line)
	}
}

// Feeding the same text in any split produces the same lines after Flush.
func TestLineBuffer_ChunkingEquivalence(t *testing.T) {
	input := "first \x1b[1mbold\x1b[0m\nsecond line\ndata without linebreak"

	collect := func(chunks []string) []string {
		b := NewLineBuffer()
		var lines []string
		for _, c := range chunks {
			lines = append(lines, b.Append(c)...)
		}
		if tail, ok := b.Flush(); ok {
			lines = append(lines, tail)
		}
		return lines
	}

	want := collect([]string{input})
	for size := 1; size <= len(input); size++ {
		var chunks []string
		for i := 0; i < len(input); i += size {
			chunks = append(chunks, input[i:min(i+size, len(input))])
		}
		if got := collect(chunks); !reflect.DeepEqual(got, want) {
			t.Fatalf("chunk size %d: lines = %q, want %q", size, got, want)
		}
	}

	if got := strings.Join(want, "\n"); got != input {
		t.Errorf("joined lines = %q, want %q", got, input)
	}
}

func TestLineBuffer_Reset(t *testing.T) {
	b := NewLineBuffer()
	b.Append("partial")
	b.Reset()
	if _, ok := b.Flush(); ok {
		t.Error("Flush() after Reset() should return nothing")
	}
}
