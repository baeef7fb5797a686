package hotkeys

import (
	"errors"
	"strings"
)

// Modifier is a modifier bitmask. Bit values match the Win32 MOD_* flags so the
// Windows backend can pass them through unchanged.
type Modifier uint32

const (
	ModAlt   Modifier = 0x0001
	ModCtrl  Modifier = 0x0002
	ModShift Modifier = 0x0004
	ModSuper Modifier = 0x0008
)

// modifierOrder is the canonical order used when rendering a binding.
var modifierOrder = []Modifier{ModCtrl, ModAlt, ModShift, ModSuper}

// String renders the modifier set in canonical order, joined by "+".
func (m Modifier) String() string {
	var names []string
	for _, mod := range modifierOrder {
		if m&mod != 0 {
			names = append(names, modifierName(mod))
		}
	}
	return strings.Join(names, "+")
}

func modifierName(mod Modifier) string {
	switch mod {
	case ModCtrl:
		return "Ctrl"
	case ModAlt:
		return "Alt"
	case ModShift:
		return "Shift"
	case ModSuper:
		return "Super"
	default:
		return "Mod"
	}
}

// VKey is a key code in the Win32 virtual-key space, used as the portable key
// identity across backends.
type VKey uint32

// KeyState is the transition reported to a binding handler.
type KeyState int

const (
	KeyPressed KeyState = iota + 1
	KeyReleased
)

func (s KeyState) String() string {
	switch s {
	case KeyPressed:
		return "pressed"
	case KeyReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Handler receives key transitions for a registered binding. Backends that
// only observe presses (Win32 WM_HOTKEY) never report KeyReleased.
type Handler func(b Binding, state KeyState)

// ErrSlotOccupied is returned by Register when a binding is already active.
// Callers replacing a shortcut must UnregisterAll first.
var ErrSlotOccupied = errors.New("a global hotkey is already registered")

// ErrUnsupported is returned by Register on platforms without a global hotkey
// backend.
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Binding describes a parsed global hotkey.
// Construct only via ParseBinding to guarantee invariant consistency.
type Binding struct {
	modifiers  Modifier
	key        VKey
	keyName    string
	normalized string
}

// Modifiers returns the modifier bitmask.
func (b Binding) Modifiers() Modifier { return b.modifiers }

// Key returns the virtual-key code.
func (b Binding) Key() VKey { return b.key }

// KeyName returns the canonical key token, e.g. "N" or "Space".
func (b Binding) KeyName() string { return b.keyName }

// Normalized returns the canonical human-readable binding string.
func (b Binding) Normalized() string { return b.normalized }

// IsZero reports whether b is the zero Binding.
func (b Binding) IsZero() bool { return b.key == 0 && b.modifiers == 0 }

func (b Binding) String() string { return b.normalized }
