package msg

import (
	"errors"
	"testing"
)

func TestCopy(t *testing.T) {
	var got string
	cmd := Copy("main.go:12:3", "location", func(s string) error {
		got = s
		return nil
	})
	m, ok := cmd().(CopiedMsg)
	if !ok {
		t.Fatalf("Copy() produced %T, want CopiedMsg", cmd())
	}
	if got != "main.go:12:3" || m.What != "location" || m.Err != nil {
		t.Errorf("CopiedMsg = %+v, written %q", m, got)
	}
}

func TestCopy_Error(t *testing.T) {
	boom := errors.New("no clipboard")
	m := Copy("x", "output", func(string) error { return boom })().(CopiedMsg)
	if !errors.Is(m.Err, boom) {
		t.Errorf("Err = %v, want %v", m.Err, boom)
	}
}

func TestTick(t *testing.T) {
	if Tick() == nil {
		t.Fatal("Tick() returned nil")
	}
}
