// Package shortcut owns the toggle-window global shortcut: it resolves the
// configured binding, holds the single OS registration and turns key presses
// into toggle requests.
package shortcut

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pinote/internal/appevent"
	"pinote/internal/hotkeys"
	"pinote/internal/settings"
)

var (
	// ErrInvalidShortcut wraps parser diagnostics for a shortcut string.
	ErrInvalidShortcut = errors.New("invalid shortcut")
	// ErrClearFailed is returned when existing registrations cannot be released.
	ErrClearFailed = errors.New("failed to clear global shortcuts")
	// ErrRegisterFailed is returned when the OS refuses the new binding.
	ErrRegisterFailed = errors.New("failed to register global shortcut")
)

// Registrar is the OS global-hotkey slot. *hotkeys.Manager implements it.
type Registrar interface {
	Register(b hotkeys.Binding, h hotkeys.Handler) error
	UnregisterAll() error
}

// State is a snapshot of the registration.
type State struct {
	Registered bool
	// Shortcut is the string the active binding was parsed from.
	Shortcut string
	// Binding is the normalized form of the active binding.
	Binding string
	// LastError is the failure that left the slot unregistered, if any.
	LastError error
}

// Manager binds one global shortcut to the toggle action.
type Manager struct {
	registrar Registrar
	events    appevent.Poster

	mu    sync.Mutex
	state State
}

// NewManager creates a Manager that posts toggle requests to events.
func NewManager(registrar Registrar, events appevent.Poster) *Manager {
	if registrar == nil || events == nil {
		panic("shortcut: nil registrar or event poster")
	}
	return &Manager{registrar: registrar, events: events}
}

// Setup registers the stored toggle shortcut, or the default when none is
// stored. Any error must abort launch.
func (m *Manager) Setup(resolve settings.DirResolver) error {
	spec := settings.ResolveToggleShortcut(resolve)
	slog.Debug("[shortcut] resolved toggle shortcut", "shortcut", spec)
	return m.Update(spec)
}

// Update replaces the toggle shortcut with spec.
//
// A parse failure returns before anything is released, so the previous
// registration stays active. After the old registration is released there is
// no rollback: a failed register leaves the slot empty and State reports the
// error.
func (m *Manager) Update(spec string) error {
	binding, err := hotkeys.ParseBinding(spec)
	if err != nil {
		return fmt.Errorf("%w `%s`: %w", ErrInvalidShortcut, spec, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registrar.UnregisterAll(); err != nil {
		clearErr := fmt.Errorf("%w: %w", ErrClearFailed, err)
		m.state = State{LastError: clearErr}
		slog.Warn("[shortcut] clearing global shortcuts failed", "error", err)
		return clearErr
	}
	m.state = State{}

	if err := m.registrar.Register(binding, m.onKey); err != nil {
		regErr := fmt.Errorf("%w `%s`: %w", ErrRegisterFailed, spec, err)
		m.state = State{LastError: regErr}
		slog.Warn("[shortcut] toggle shortcut left unregistered", "shortcut", spec, "error", err)
		return regErr
	}

	m.state = State{
		Registered: true,
		Shortcut:   spec,
		Binding:    binding.Normalized(),
	}
	slog.Debug("[shortcut] toggle shortcut registered", "binding", binding.Normalized())
	return nil
}

// State returns the current registration snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close releases the registration at shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{}
	if err := m.registrar.UnregisterAll(); err != nil {
		return fmt.Errorf("%w: %w", ErrClearFailed, err)
	}
	return nil
}

// onKey runs on the hotkey backend's thread. Releases are ignored.
func (m *Manager) onKey(b hotkeys.Binding, state hotkeys.KeyState) {
	if state != hotkeys.KeyPressed {
		return
	}
	if !m.events.Post(appevent.ToggleRequested, appevent.SourceShortcut) {
		slog.Debug("[shortcut] toggle request dropped", "binding", b.Normalized())
	}
}
