// Package appevent carries shell-level requests (toggle, quit, settings,
// activate) from input adapters to a single dispatch loop.
//
// Tray callbacks, the global-shortcut thread, and the activation listener all
// run on goroutines the shell does not own. They only Post; every window
// operation happens on the dispatcher goroutine, one event at a time.
package appevent

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"pinote/internal/workerutil"
)

// Event is a request posted by an input adapter.
type Event int

const (
	ToggleRequested Event = iota + 1
	QuitRequested
	SettingsRequested
	ActivateRequested
)

func (e Event) String() string {
	switch e {
	case ToggleRequested:
		return "toggle"
	case QuitRequested:
		return "quit"
	case SettingsRequested:
		return "settings"
	case ActivateRequested:
		return "activate"
	default:
		return "unknown"
	}
}

// Source names the adapter an event came from. Used for logging only.
type Source string

const (
	SourceTrayMenu Source = "tray-menu"
	SourceTrayIcon Source = "tray-icon"
	SourceShortcut Source = "shortcut"
	SourceIPC      Source = "ipc"
	SourceFrontend Source = "frontend"
)

// Envelope is one queued event.
type Envelope struct {
	Event  Event
	Source Source
}

// Handler processes one envelope on the dispatcher goroutine.
type Handler func(ctx context.Context, env Envelope)

// Poster is implemented by Dispatcher. Adapters depend on this instead of the
// concrete type so tests can record posted events.
type Poster interface {
	Post(ev Event, source Source) bool
}

const defaultQueueSize = 32

// Dispatcher serializes events onto one goroutine.
type Dispatcher struct {
	handle  Handler
	queue   chan Envelope
	stopped atomic.Bool
	dropped atomic.Uint64
}

// NewDispatcher creates a dispatcher. queueSize <= 0 uses the default.
func NewDispatcher(handle Handler, queueSize int) *Dispatcher {
	if handle == nil {
		panic("appevent: nil handler")
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		handle: handle,
		queue:  make(chan Envelope, queueSize),
	}
}

// Post enqueues ev without blocking. It returns false when the queue is full
// or the dispatcher has stopped; the event is dropped in both cases.
func (d *Dispatcher) Post(ev Event, source Source) bool {
	if d.stopped.Load() {
		slog.Debug("[event] dispatcher stopped, dropping event", "event", ev.String(), "source", source)
		return false
	}
	select {
	case d.queue <- Envelope{Event: ev, Source: source}:
		return true
	default:
		n := d.dropped.Add(1)
		slog.Warn("[event] queue full, dropping event",
			"event", ev.String(), "source", source, "dropped", n)
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Run handles queued events until ctx is cancelled. Events still queued at
// cancellation are discarded.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.stopped.Store(true)
			return
		case env := <-d.queue:
			slog.Debug("[event] dispatch", "event", env.Event.String(), "source", env.Source)
			d.handle(ctx, env)
		}
	}
}

// Start runs the dispatcher on a recovered worker goroutine tracked by wg.
// A panicking handler drops only the event it was handling.
func (d *Dispatcher) Start(ctx context.Context, wg *sync.WaitGroup, isShutdown func() bool) {
	workerutil.RunWithPanicRecovery(ctx, "event-dispatcher", wg, d.Run, workerutil.RecoveryOptions{
		IsShutdown: isShutdown,
		OnFatal: func(worker string, maxRetries int) {
			d.stopped.Store(true)
			slog.Error("[event] dispatcher stopped permanently", "worker", worker, "maxRetries", maxRetries)
		},
	})
}
