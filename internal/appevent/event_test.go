package appevent

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{ToggleRequested, "toggle"},
		{QuitRequested, "quit"},
		{SettingsRequested, "settings"},
		{ActivateRequested, "activate"},
		{Event(0), "unknown"},
		{Event(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("Event(%d).String() = %q, want %q", int(tt.ev), got, tt.want)
		}
	}
}

func TestDispatcherHandlesEventsInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []Envelope
	done := make(chan struct{})

	d := NewDispatcher(func(_ context.Context, env Envelope) {
		mu.Lock()
		got = append(got, env)
		n := len(got)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
	}, 8)

	d.Post(ToggleRequested, SourceShortcut)
	d.Post(SettingsRequested, SourceFrontend)
	d.Post(QuitRequested, SourceTrayMenu)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	d.Start(ctx, &wg, nil)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events were not dispatched within 5s")
	}
	cancel()
	wg.Wait()

	want := []Envelope{
		{ToggleRequested, SourceShortcut},
		{SettingsRequested, SourceFrontend},
		{QuitRequested, SourceTrayMenu},
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("dispatched %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDispatcherPostDropsWhenFull(t *testing.T) {
	d := NewDispatcher(func(context.Context, Envelope) {}, 2)

	if !d.Post(ToggleRequested, SourceTrayIcon) {
		t.Fatal("first Post() = false, want true")
	}
	if !d.Post(ToggleRequested, SourceTrayIcon) {
		t.Fatal("second Post() = false, want true")
	}
	if d.Post(ToggleRequested, SourceTrayIcon) {
		t.Fatal("Post() on full queue = true, want false")
	}
	if got := d.Dropped(); got != 1 {
		t.Fatalf("Dropped() = %d, want 1", got)
	}
}

func TestDispatcherPostAfterStop(t *testing.T) {
	d := NewDispatcher(func(context.Context, Envelope) {}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	if d.Post(ActivateRequested, SourceIPC) {
		t.Fatal("Post() after Run returned = true, want false")
	}
	if got := d.Dropped(); got != 0 {
		t.Fatalf("Dropped() = %d, want 0 (stopped events are not counted as overflow)", got)
	}
}

func TestDispatcherSurvivesHandlerPanic(t *testing.T) {
	handled := make(chan Event, 2)
	d := NewDispatcher(func(_ context.Context, env Envelope) {
		if env.Event == QuitRequested {
			panic("quit handler failed")
		}
		handled <- env.Event
	}, 4)

	d.Post(QuitRequested, SourceTrayMenu)
	d.Post(ToggleRequested, SourceShortcut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	d.Start(ctx, &wg, nil)

	select {
	case ev := <-handled:
		if ev != ToggleRequested {
			t.Fatalf("handled %s, want toggle", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not recover from handler panic within 5s")
	}
	cancel()
	wg.Wait()
}

func TestNewDispatcherNilHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewDispatcher(nil) did not panic")
		}
	}()
	NewDispatcher(nil, 1)
}
