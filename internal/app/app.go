// Package app wires the shell together: settings, windows, tray, global
// shortcut and the activation listener, all driven by one event dispatcher.
// It has no framework dependency; the host supplies window, tray and quit
// primitives through Options.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"pinote/internal/appevent"
	"pinote/internal/applog"
	"pinote/internal/settings"
	"pinote/internal/shortcut"
	"pinote/internal/tray"
	"pinote/internal/window"
)

// Frontend event names.
const (
	EventLog             = "shell:log"
	EventShortcutChanged = "shell:shortcut-changed"
)

// Options are the host-provided dependencies.
type Options struct {
	// Settings locates settings.json.
	Settings settings.DirResolver
	// Hotkeys is the OS global-hotkey slot.
	Hotkeys shortcut.Registrar
	Windows window.Host
	Tray    tray.Builder
	Icon    []byte

	// Quit asks the framework to exit its run loop. Required. It is never
	// called on the dispatcher goroutine and may call Shutdown synchronously.
	Quit func()
	// Emit sends an event to the frontend. Nil disables frontend events.
	Emit func(name string, data any)

	// ActivationEndpoint is the IPC endpoint served for later launches.
	// Empty means the per-user default. Ignored unless ServeActivation is set.
	ActivationEndpoint string
	ServeActivation    bool

	// DeferShortcut leaves shortcut registration to StartShortcut. Set it
	// when the hotkey backend needs the host run loop to be running.
	DeferShortcut bool
}

// App is the running shell.
type App struct {
	opts Options

	settings settings.Settings

	windows    *window.Controller
	shortcuts  *shortcut.Manager
	tray       *tray.Manager
	dispatcher *appevent.Dispatcher
	activation activationServer

	ctx             context.Context
	cancel          context.CancelFunc
	bgWG            sync.WaitGroup
	started         atomic.Bool
	shortcutStarted atomic.Bool
	shuttingDown    atomic.Bool
	shutdownOnce    sync.Once

	// forwarding guards ForwardLog against records logged by Emit itself.
	forwarding atomic.Bool
}

// New validates opts and builds the shell components. Nothing touches the OS
// until Startup.
func New(opts Options) (*App, error) {
	switch {
	case opts.Settings == nil:
		return nil, errors.New("app: settings resolver is required")
	case opts.Hotkeys == nil:
		return nil, errors.New("app: hotkey registrar is required")
	case opts.Windows == nil:
		return nil, errors.New("app: window host is required")
	case opts.Tray == nil:
		return nil, errors.New("app: tray builder is required")
	case opts.Quit == nil:
		return nil, errors.New("app: quit function is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		opts:     opts,
		settings: settings.Defaults(),
		windows:  window.NewController(opts.Windows),
		ctx:      ctx,
		cancel:   cancel,
	}
	a.dispatcher = appevent.NewDispatcher(a.handleEvent, 0)
	a.shortcuts = shortcut.NewManager(opts.Hotkeys, a.dispatcher)
	a.tray = tray.NewManager(a.dispatcher)
	return a, nil
}

// Post queues an event for the dispatcher.
func (a *App) Post(ev appevent.Event, source appevent.Source) bool {
	return a.dispatcher.Post(ev, source)
}

// Windows exposes the window controller to the host's close hooks.
func (a *App) Windows() *window.Controller {
	return a.windows
}

func (a *App) emit(name string, data any) {
	if a.opts.Emit == nil || a.shuttingDown.Load() {
		return
	}
	a.opts.Emit(name, data)
}

// ForwardLog sends a teed log record to the frontend.
func (a *App) ForwardLog(e applog.Entry) {
	if !a.forwarding.CompareAndSwap(false, true) {
		return
	}
	defer a.forwarding.Store(false)
	a.emit(EventLog, e)
}
