//go:build windows

package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

const (
	wmHotkey   = 0x0312
	wmQuit     = 0x0012
	pmNoRemove = 0x0000

	// modNoRepeat stops WM_HOTKEY auto-repeat while the chord is held.
	modNoRepeat = 0x4000

	// Application hotkey IDs must stay in 0x0000-0xBFFF.
	firstHotkeyID int32 = 0x4000
	lastHotkeyID  int32 = 0xBFFF

	threadStopTimeout = 2 * time.Second
)

// NeedsRunningMainLoop is false: each registration runs on its own thread.
const NeedsRunningMainLoop = false

var hotkeyIDs atomic.Int32

func allocHotkeyID() (int32, error) {
	id := firstHotkeyID + hotkeyIDs.Add(1)
	if id > lastHotkeyID {
		return 0, fmt.Errorf("hotkey ID range exhausted (ID=%d)", id)
	}
	return id, nil
}

// msg mirrors the Win32 MSG struct. The layout must match winuser.h on 32-bit
// and 64-bit Windows.
type msg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	ptX      int32
	ptY      int32
	lPrivate uint32
}

// hotkeyThread is one registration. RegisterHotKey binds WM_HOTKEY to the
// calling thread's queue, so each registration owns a locked OS thread that
// pumps messages until it receives WM_QUIT.
type hotkeyThread struct {
	id       int32
	binding  Binding
	threadID uint32
	done     chan struct{}
}

// Manager owns the process-wide global hotkey slot.
type Manager struct {
	mu     sync.Mutex
	thread *hotkeyThread
}

// NewManager returns an idle manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register claims binding system-wide. h runs on the hotkey thread and must
// not block. Windows reports presses only.
func (m *Manager) Register(binding Binding, h Handler) error {
	switch {
	case h == nil:
		return errors.New("hotkey handler is required")
	case binding.IsZero():
		return errors.New("hotkey binding is empty")
	}
	if err := user32.Load(); err != nil {
		return fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.thread != nil {
		return fmt.Errorf("%w: %s", ErrSlotOccupied, m.thread.binding.Normalized())
	}

	id, err := allocHotkeyID()
	if err != nil {
		return err
	}
	t := &hotkeyThread{id: id, binding: binding, done: make(chan struct{})}

	started := make(chan error, 1)
	go t.run(h, started)
	if err := <-started; err != nil {
		return fmt.Errorf("register hotkey %q: %w", binding.Normalized(), err)
	}

	m.thread = t
	slog.Debug("[hotkey] registered", "binding", binding.Normalized(), "hotkeyID", id)
	return nil
}

// UnregisterAll stops the active registration, if any.
func (m *Manager) UnregisterAll() error {
	m.mu.Lock()
	t := m.thread
	m.thread = nil
	m.mu.Unlock()

	if t == nil {
		return nil
	}
	return t.stop()
}

// ActiveBinding returns the normalized active binding, or "".
func (m *Manager) ActiveBinding() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.thread == nil {
		return ""
	}
	return m.thread.binding.Normalized()
}

// run registers the hotkey on a locked thread, reports the outcome on started
// and then pumps messages until WM_QUIT.
func (t *hotkeyThread) run(h Handler, started chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	t.threadID = windows.GetCurrentThreadId()
	if t.threadID == 0 {
		started <- errors.New("GetCurrentThreadId returned 0")
		return
	}

	// Force creation of the thread message queue so a later WM_QUIT from
	// stop is not lost. A zero return only means the queue is empty.
	var peek msg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&peek)), 0, 0, 0, pmNoRemove)

	mods := uintptr(uint32(t.binding.Modifiers()) | modNoRepeat)
	if err := callUser32(procRegisterHotKey, 0, uintptr(t.id), mods, uintptr(t.binding.Key())); err != nil {
		started <- err
		return
	}
	defer func() {
		if err := callUser32(procUnregisterHotKey, 0, uintptr(t.id)); err != nil {
			slog.Error("[hotkey] UnregisterHotKey on thread exit failed", "error", err, "hotkeyID", t.id)
		}
	}()

	started <- nil
	t.pump(h)
}

func (t *hotkeyThread) pump(h Handler) {
	for {
		var m msg
		ret, _, lastErr := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			slog.Warn("[hotkey] GetMessageW failed, leaving message loop", "error", lastErr, "hotkeyID", t.id)
			return
		case 0:
			slog.Debug("[hotkey] message loop received WM_QUIT", "hotkeyID", t.id)
			return
		}

		if m.message == wmHotkey && int32(m.wParam) == t.id {
			h(t.binding, KeyPressed)
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

// stop posts WM_QUIT to the hotkey thread and waits for it to unregister.
func (t *hotkeyThread) stop() error {
	err := callUser32(procPostThreadMessageW, uintptr(t.threadID), wmQuit, 0, 0)
	if err != nil {
		// The thread will never wake. Unregistering from here fails when the
		// OS enforces thread affinity, but costs nothing to try.
		if unregErr := callUser32(procUnregisterHotKey, 0, uintptr(t.id)); unregErr != nil {
			slog.Warn("[hotkey] cross-thread UnregisterHotKey failed", "error", unregErr, "hotkeyID", t.id)
		}
		err = fmt.Errorf("post WM_QUIT: %w", err)
	}

	timer := time.NewTimer(threadStopTimeout)
	defer timer.Stop()
	select {
	case <-t.done:
	case <-timer.C:
		slog.Warn("[hotkey] hotkey thread did not stop in time", "hotkeyID", t.id, "timeout", threadStopTimeout)
		err = errors.Join(err, fmt.Errorf("hotkey thread stop timed out (hotkeyID=%d)", t.id))
	}
	return err
}

// callUser32 calls a BOOL-returning user32 procedure.
func callUser32(proc *windows.LazyProc, args ...uintptr) error {
	ret, _, err := proc.Call(args...)
	if ret != 0 {
		return nil
	}
	if errors.Is(err, syscall.Errno(0)) {
		return fmt.Errorf("%s failed", proc.Name)
	}
	return err
}
