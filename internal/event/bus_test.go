package event

import (
	"sync"
	"testing"
	"time"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus(nil)

	var got Event
	id := bus.Subscribe(TypeBuildStarted, func(e Event) { got = e })
	if id == "" {
		t.Fatal("Subscribe should return a non-empty ID")
	}

	bus.Publish(NewBuildStartedEvent("b1", "make", "bottom"))

	started, ok := got.(BuildStartedEvent)
	if !ok {
		t.Fatalf("handler got %T, want BuildStartedEvent", got)
	}
	if started.BuildID != "b1" || started.Command != "make" || started.Placement != "bottom" {
		t.Errorf("unexpected event: %+v", started)
	}
	if started.Timestamp().IsZero() {
		t.Error("Timestamp() should be set")
	}
}

func TestBus_Ordering(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "wildcard") })
	bus.Subscribe(TypeBuildTimer, func(Event) { order = append(order, "typed-1") })
	bus.Subscribe(TypeBuildTimer, func(Event) { order = append(order, "typed-2") })
	bus.Subscribe(TypeBuildOutput, func(Event) { order = append(order, "other") })

	bus.Publish(NewTimerEvent("b1", time.Second, "1.0 s"))

	want := []string{"typed-1", "typed-2", "wildcard"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	id := bus.Subscribe(TypeBuildOutput, func(Event) { calls++ })
	keep := bus.Subscribe(TypeBuildOutput, func(Event) { calls += 10 })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should find the subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should report false")
	}

	bus.Publish(NewOutputEvent("b1", 0, "x", "<span>x</span>", nil))
	if calls != 10 {
		t.Errorf("calls = %d, want 10", calls)
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
	_ = keep
}

func TestBus_PanicRecovery(t *testing.T) {
	bus := NewBus(nil)

	reached := false
	bus.Subscribe(TypeBuildStopped, func(Event) { panic("boom") })
	bus.Subscribe(TypeBuildStopped, func(Event) { reached = true })

	bus.Publish(NewBuildStoppedEvent("b1", time.Second, "1.0 s"))

	if !reached {
		t.Error("a panicking handler must not block later handlers")
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe(TypeBuildTimer, func(Event) {})
	bus.SubscribeAll(func(Event) {})
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear", bus.SubscriptionCount())
	}
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(TypeLinkActivated, func(Event) {})
			bus.Publish(NewLinkActivatedEvent("b1", "error-match-0-0", 0, nil))
			bus.Unsubscribe(id)
		}()
	}
	wg.Wait()

	if count != 20 {
		t.Errorf("count = %d, want 20", count)
	}
}

func TestEventTypes(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewBuildStartedEvent("b", "c", "top"), TypeBuildStarted},
		{NewOutputEvent("b", 1, "t", "h", nil), TypeBuildOutput},
		{NewBuildFinishedEvent("b", "error", 1, time.Second, "1.0 s"), TypeBuildFinished},
		{NewBuildStoppedEvent("b", 0, "0.0 s"), TypeBuildStopped},
		{NewTimerEvent("b", 0, "0.0 s"), TypeBuildTimer},
		{NewPanelChangedEvent("p", "left", true, false, false), TypePanelChanged},
		{NewLinkActivatedEvent("b", "l", 0, map[string]string{"file": "a.go"}), TypeLinkActivated},
		{NewPatternErrorEvent(1, "(", "missing )"), TypePatternError},
	}
	for _, tt := range tests {
		if got := tt.event.EventType(); got != tt.want {
			t.Errorf("EventType() = %q, want %q", got, tt.want)
		}
	}
}
