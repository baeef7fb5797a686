//go:build !windows && !darwin && !linux

package hotkeys

import (
	"errors"
	"testing"
)

func TestManagerRegisterIsUnsupported(t *testing.T) {
	m := NewManager()
	noop := func(Binding, KeyState) {}

	err := m.Register(MustParseBinding("Alt+N"), noop)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Register() error = %v, want ErrUnsupported", err)
	}
	if got := m.ActiveBinding(); got != "" {
		t.Fatalf("ActiveBinding() after failed Register = %q, want empty", got)
	}
	if err := m.UnregisterAll(); err != nil {
		t.Fatalf("UnregisterAll() error = %v", err)
	}
}

func TestManagerRegisterValidatesArguments(t *testing.T) {
	m := NewManager()
	if err := m.Register(MustParseBinding("Alt+N"), nil); err == nil || errors.Is(err, ErrUnsupported) {
		t.Fatalf("Register(nil handler) error = %v, want argument error", err)
	}
	if err := m.Register(Binding{}, func(Binding, KeyState) {}); err == nil || errors.Is(err, ErrUnsupported) {
		t.Fatalf("Register(zero binding) error = %v, want argument error", err)
	}
}
