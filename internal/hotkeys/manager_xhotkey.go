//go:build darwin || linux

package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.design/x/hotkey"
)

const unregisterTimeout = 2 * time.Second

var xKeyByVKey = map[VKey]hotkey.Key{
	'A': hotkey.KeyA, 'B': hotkey.KeyB, 'C': hotkey.KeyC, 'D': hotkey.KeyD,
	'E': hotkey.KeyE, 'F': hotkey.KeyF, 'G': hotkey.KeyG, 'H': hotkey.KeyH,
	'I': hotkey.KeyI, 'J': hotkey.KeyJ, 'K': hotkey.KeyK, 'L': hotkey.KeyL,
	'M': hotkey.KeyM, 'N': hotkey.KeyN, 'O': hotkey.KeyO, 'P': hotkey.KeyP,
	'Q': hotkey.KeyQ, 'R': hotkey.KeyR, 'S': hotkey.KeyS, 'T': hotkey.KeyT,
	'U': hotkey.KeyU, 'V': hotkey.KeyV, 'W': hotkey.KeyW, 'X': hotkey.KeyX,
	'Y': hotkey.KeyY, 'Z': hotkey.KeyZ,
	'0': hotkey.Key0, '1': hotkey.Key1, '2': hotkey.Key2, '3': hotkey.Key3,
	'4': hotkey.Key4, '5': hotkey.Key5, '6': hotkey.Key6, '7': hotkey.Key7,
	'8': hotkey.Key8, '9': hotkey.Key9,
	vkF1: hotkey.KeyF1, vkF1 + 1: hotkey.KeyF2, vkF1 + 2: hotkey.KeyF3,
	vkF1 + 3: hotkey.KeyF4, vkF1 + 4: hotkey.KeyF5, vkF1 + 5: hotkey.KeyF6,
	vkF1 + 6: hotkey.KeyF7, vkF1 + 7: hotkey.KeyF8, vkF1 + 8: hotkey.KeyF9,
	vkF1 + 9: hotkey.KeyF10, vkF1 + 10: hotkey.KeyF11, vkF1 + 11: hotkey.KeyF12,
	vkF1 + 12: hotkey.KeyF13, vkF1 + 13: hotkey.KeyF14, vkF1 + 14: hotkey.KeyF15,
	vkF1 + 15: hotkey.KeyF16, vkF1 + 16: hotkey.KeyF17, vkF1 + 17: hotkey.KeyF18,
	vkF1 + 18: hotkey.KeyF19, vkF1 + 19: hotkey.KeyF20,
	vkSpace:  hotkey.KeySpace,
	vkReturn: hotkey.KeyReturn,
	vkEscape: hotkey.KeyEscape,
	vkTab:    hotkey.KeyTab,
	vkLeft:   hotkey.KeyLeft,
	vkRight:  hotkey.KeyRight,
	vkUp:     hotkey.KeyUp,
	vkDown:   hotkey.KeyDown,
}

type activeHotkey struct {
	hk       *hotkey.Hotkey
	binding  Binding
	stopCh   chan struct{}
	loopDone chan struct{}
}

// Manager owns the single global hotkey slot of the process.
type Manager struct {
	mu     sync.Mutex
	active *activeHotkey
}

// NewManager creates a new hotkey manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register claims binding system-wide and reports key-down and key-up
// transitions to h. The handler must not block. See NeedsRunningMainLoop for
// the thread Register may be called from.
func (m *Manager) Register(binding Binding, h Handler) error {
	if h == nil {
		return errors.New("hotkey handler is required")
	}
	if binding.IsZero() {
		return errors.New("hotkey binding is empty")
	}
	mods, key, err := translateBinding(binding)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return fmt.Errorf("%w: %s", ErrSlotOccupied, m.active.binding.Normalized())
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %q failed: %w", binding.Normalized(), err)
	}

	ah := &activeHotkey{
		hk:       hk,
		binding:  binding,
		stopCh:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go runEventLoop(ah, h)
	m.active = ah
	slog.Debug("[hotkey] registered", "binding", binding.Normalized())
	return nil
}

// UnregisterAll releases the active hotkey, if any.
func (m *Manager) UnregisterAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	ah := m.active
	m.active = nil

	close(ah.stopCh)
	<-ah.loopDone

	// On macOS Unregister waits on the main queue, which never drains when
	// the caller is the main thread itself.
	err := callWithTimeout(ah.hk.Unregister, unregisterTimeout)
	if errors.Is(err, errCallTimeout) {
		slog.Warn("[hotkey] unregister did not finish in time", "binding", ah.binding.Normalized(), "timeout", unregisterTimeout)
	}
	if err != nil {
		return fmt.Errorf("unregister hotkey %q failed: %w", ah.binding.Normalized(), err)
	}
	return nil
}

// ActiveBinding returns the normalized binding string for the active hotkey.
func (m *Manager) ActiveBinding() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ""
	}
	return m.active.binding.Normalized()
}

func runEventLoop(ah *activeHotkey, h Handler) {
	defer close(ah.loopDone)
	keydown := ah.hk.Keydown()
	keyup := ah.hk.Keyup()
	for {
		select {
		case <-ah.stopCh:
			return
		case <-keydown:
			h(ah.binding, KeyPressed)
		case <-keyup:
			h(ah.binding, KeyReleased)
		}
	}
}

func translateBinding(b Binding) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := xKeyByVKey[b.Key()]
	if !ok {
		return nil, 0, fmt.Errorf("key %q is not supported by the global hotkey backend on this platform", b.KeyName())
	}
	var mods []hotkey.Modifier
	for _, mod := range modifierOrder {
		if b.Modifiers()&mod == 0 {
			continue
		}
		native, ok := xModifierByModifier[mod]
		if !ok {
			return nil, 0, fmt.Errorf("modifier %s is not supported on this platform", modifierName(mod))
		}
		mods = append(mods, native)
	}
	return mods, key, nil
}
