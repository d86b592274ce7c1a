package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogEntry is one parsed line of debug.log.
type LogEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	BuildID string         `json:"build_id,omitempty"`
	Phase   string         `json:"phase,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// LogFilter selects entries. Zero fields match everything.
type LogFilter struct {
	Level    string // minimum level
	BuildID  string
	Since    time.Time
	Contains string
}

var levelRank = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ReadLogs parses {dir}/debug.log. Lines that are not valid JSON are
// skipped. Entries come back ordered by time.
func ReadLogs(dir string) ([]LogEntry, error) {
	f, err := os.Open(filepath.Join(dir, LogFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	var entries []LogEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if e, ok := parseEntry(line); ok {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	return entries, nil
}

func parseEntry(line string) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, false
	}

	e := LogEntry{Attrs: map[string]any{}}
	for k, v := range raw {
		s, _ := v.(string)
		switch k {
		case "time":
			e.Time, _ = time.Parse(time.RFC3339Nano, s)
		case "level":
			e.Level = s
		case "msg":
			e.Message = s
		case "build_id":
			e.BuildID = s
		case "phase":
			e.Phase = s
		default:
			e.Attrs[k] = v
		}
	}
	return e, true
}

// FilterLogs returns the entries matching every set criterion.
func FilterLogs(entries []LogEntry, f LogFilter) []LogEntry {
	var out []LogEntry
	for _, e := range entries {
		if f.Level != "" && levelRank[ParseLevel(e.Level)] < levelRank[ParseLevel(f.Level)] {
			continue
		}
		if f.BuildID != "" && e.BuildID != f.BuildID {
			continue
		}
		if !f.Since.IsZero() && e.Time.Before(f.Since) {
			continue
		}
		if f.Contains != "" && !strings.Contains(e.Message, f.Contains) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// WriteText prints entries one per line as "time LEVEL [build] msg k=v".
func WriteText(w io.Writer, entries []LogEntry) error {
	for _, e := range entries {
		var sb strings.Builder
		sb.WriteString(e.Time.Format("15:04:05.000"))
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf("%-5s", e.Level))
		if e.BuildID != "" {
			sb.WriteString(" [" + shortID(e.BuildID) + "]")
		}
		sb.WriteString(" " + e.Message)

		keys := make([]string, 0, len(e.Attrs))
		for k := range e.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, e.Attrs[k]))
		}
		sb.WriteString("\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
