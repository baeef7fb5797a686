//go:build !windows && !darwin && !linux

package hotkeys

import (
	"errors"
	"fmt"
)

// NeedsRunningMainLoop is false: nothing is registered on this platform.
const NeedsRunningMainLoop = false

// Manager is the hotkey slot on platforms without a global hotkey backend.
// Register validates its arguments and then fails with ErrUnsupported, so a
// shortcut is never reported as registered.
type Manager struct{}

// NewManager creates a new hotkey manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register always fails. Invalid arguments are reported before
// ErrUnsupported.
func (m *Manager) Register(binding Binding, h Handler) error {
	if h == nil {
		return errors.New("hotkey handler is required")
	}
	if binding.IsZero() {
		return errors.New("hotkey binding is empty")
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, binding.Normalized())
}

// UnregisterAll has nothing to release.
func (m *Manager) UnregisterAll() error {
	return nil
}

// ActiveBinding always returns "".
func (m *Manager) ActiveBinding() string {
	return ""
}
