package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"very small width returns ellipsis", "hello", 3, "..."},
		{"negative width returns ellipsis", "hello", -5, "..."},
		{"empty string unchanged", "", 10, ""},
		{"width of 4 shows one char plus ellipsis", "hello", 4, "h..."},
		{"wide characters count double", "日本語テスト", 5, "日..."},
		{"wide short string unchanged", "日本語", 6, "日本語"},
		{"mixed ascii and wide", "hello日本語world", 10, "hello日..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.maxWidth)
			if got != tt.expected {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.expected)
			}
		})
	}
}

func TestFitWidth(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"abc", 5, "abc  "},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"日本", 3, "日 "},
		{"日本語", 2, "日"},
		{"日本語", 1, " "},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		got := FitWidth(tt.input, tt.width)
		if got != tt.expected {
			t.Errorf("FitWidth(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
		}
		if w := runewidth.StringWidth(got); w != tt.width {
			t.Errorf("FitWidth(%q, %d) is %d columns wide", tt.input, tt.width, w)
		}
	}
}

func TestTruncateANSI(t *testing.T) {
	redStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boldStyle := lipgloss.NewStyle().Bold(true)

	tests := []struct {
		name     string
		input    string
		maxWidth int
		check    func(t *testing.T, result string)
	}{
		{
			name:     "plain string truncated",
			input:    "hello world",
			maxWidth: 8,
			check: func(t *testing.T, result string) {
				if result != "hello..." {
					t.Errorf("expected 'hello...', got %q", result)
				}
			},
		},
		{
			name:     "very small maxWidth returns ellipsis",
			input:    "hello",
			maxWidth: 2,
			check: func(t *testing.T, result string) {
				if result != "..." {
					t.Errorf("expected '...', got %q", result)
				}
			},
		},
		{
			name:     "styled string preserved when it fits",
			input:    redStyle.Render("hi"),
			maxWidth: 10,
			check: func(t *testing.T, result string) {
				if result != redStyle.Render("hi") {
					t.Errorf("styled string was modified when it shouldn't be")
				}
			},
		},
		{
			name:     "styled string truncated respects width",
			input:    boldStyle.Render("hello world"),
			maxWidth: 8,
			check: func(t *testing.T, result string) {
				if width := lipgloss.Width(result); width > 8 {
					t.Errorf("result width %d exceeds maxWidth 8", width)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, TruncateANSI(tt.input, tt.maxWidth))
		})
	}
}
