package shortcut

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"pinote/internal/appevent"
	"pinote/internal/hotkeys"
	"pinote/internal/settings"
)

// fakeRegistrar models the single OS slot of hotkeys.Manager.
type fakeRegistrar struct {
	active      []hotkeys.Binding
	handler     hotkeys.Handler
	registerErr error
	clearErr    error
	clears      int
}

func (r *fakeRegistrar) Register(b hotkeys.Binding, h hotkeys.Handler) error {
	if r.registerErr != nil {
		return r.registerErr
	}
	if len(r.active) > 0 {
		return hotkeys.ErrSlotOccupied
	}
	r.active = append(r.active, b)
	r.handler = h
	return nil
}

func (r *fakeRegistrar) UnregisterAll() error {
	r.clears++
	if r.clearErr != nil {
		return r.clearErr
	}
	r.active = nil
	r.handler = nil
	return nil
}

type recordingPoster struct {
	mu     sync.Mutex
	events []appevent.Envelope
}

func (p *recordingPoster) Post(ev appevent.Event, source appevent.Source) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, appevent.Envelope{Event: ev, Source: source})
	return true
}

func (p *recordingPoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestManager() (*Manager, *fakeRegistrar, *recordingPoster) {
	reg := &fakeRegistrar{}
	poster := &recordingPoster{}
	return NewManager(reg, poster), reg, poster
}

func TestUpdateReplacesBinding(t *testing.T) {
	m, reg, _ := newTestManager()

	if err := m.Update("Alt+N"); err != nil {
		t.Fatalf("Update(Alt+N) error = %v", err)
	}
	if err := m.Update("Ctrl+Alt+M"); err != nil {
		t.Fatalf("Update(Ctrl+Alt+M) error = %v", err)
	}

	if len(reg.active) != 1 {
		t.Fatalf("active bindings = %d, want 1", len(reg.active))
	}
	if got := reg.active[0].Normalized(); got != "Ctrl+Alt+M" {
		t.Fatalf("active binding = %q, want Ctrl+Alt+M", got)
	}
	st := m.State()
	if !st.Registered || st.Shortcut != "Ctrl+Alt+M" || st.Binding != "Ctrl+Alt+M" || st.LastError != nil {
		t.Fatalf("State() = %+v", st)
	}
}

func TestUpdateNormalizesBinding(t *testing.T) {
	m, _, _ := newTestManager()
	if err := m.Update("shift+ctrl+space"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := activeBinding(m); got != "Ctrl+Shift+Space" {
		t.Fatalf("active binding = %q, want Ctrl+Shift+Space", got)
	}
	if got := m.State().Shortcut; got != "shift+ctrl+space" {
		t.Fatalf("State().Shortcut = %q, want raw string", got)
	}
}

func TestUpdateInvalidShortcutKeepsPreviousBinding(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "empty", spec: ""},
		{name: "unknown key", spec: "NotAKey"},
		{name: "unknown key with modifier", spec: "Ctrl+NotAKey"},
		{name: "no modifier", spec: "N"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reg, _ := newTestManager()
			if err := m.Update("Alt+N"); err != nil {
				t.Fatalf("Update(Alt+N) error = %v", err)
			}
			clearsBefore := reg.clears

			err := m.Update(tt.spec)
			if !errors.Is(err, ErrInvalidShortcut) {
				t.Fatalf("Update(%q) error = %v, want ErrInvalidShortcut", tt.spec, err)
			}
			if !strings.Contains(err.Error(), "`"+tt.spec+"`") {
				t.Fatalf("error %q does not quote the raw shortcut", err)
			}
			if reg.clears != clearsBefore {
				t.Fatal("parse failure released the previous registration")
			}
			if got := activeBinding(m); got != "Alt+N" {
				t.Fatalf("active binding = %q, want Alt+N", got)
			}
		})
	}
}

func TestUpdateRegisterFailureLeavesUnregistered(t *testing.T) {
	m, reg, _ := newTestManager()
	if err := m.Update("Alt+N"); err != nil {
		t.Fatalf("Update(Alt+N) error = %v", err)
	}

	conflict := errors.New("hotkey already registered by another application")
	reg.registerErr = conflict

	err := m.Update("Ctrl+Alt+M")
	if !errors.Is(err, ErrRegisterFailed) || !errors.Is(err, conflict) {
		t.Fatalf("Update() error = %v, want ErrRegisterFailed wrapping conflict", err)
	}
	if !strings.Contains(err.Error(), "`Ctrl+Alt+M`") {
		t.Fatalf("error %q does not quote the shortcut", err)
	}
	if len(reg.active) != 0 {
		t.Fatalf("active bindings = %d, want 0 (no rollback)", len(reg.active))
	}
	st := m.State()
	if st.Registered {
		t.Fatal("State().Registered = true after failed register")
	}
	if !errors.Is(st.LastError, ErrRegisterFailed) {
		t.Fatalf("State().LastError = %v, want ErrRegisterFailed", st.LastError)
	}
	if got := activeBinding(m); got != "" {
		t.Fatalf("active binding = %q, want empty", got)
	}
}

func TestUpdateClearFailure(t *testing.T) {
	m, reg, _ := newTestManager()
	reg.clearErr = errors.New("message loop stuck")

	err := m.Update("Alt+N")
	if !errors.Is(err, ErrClearFailed) {
		t.Fatalf("Update() error = %v, want ErrClearFailed", err)
	}
	if m.State().Registered {
		t.Fatal("State().Registered = true after clear failure")
	}
}

func TestOnlyPressedTransitionsToggle(t *testing.T) {
	m, reg, poster := newTestManager()
	if err := m.Update("Alt+N"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	b := reg.active[0]
	reg.handler(b, hotkeys.KeyReleased)
	if got := poster.count(); got != 0 {
		t.Fatalf("posted %d events on release, want 0", got)
	}

	reg.handler(b, hotkeys.KeyPressed)
	if got := poster.count(); got != 1 {
		t.Fatalf("posted %d events on press, want 1", got)
	}
	want := appevent.Envelope{Event: appevent.ToggleRequested, Source: appevent.SourceShortcut}
	if poster.events[0] != want {
		t.Fatalf("posted %+v, want %+v", poster.events[0], want)
	}
}

func TestSetupUsesStoredOrDefaultShortcut(t *testing.T) {
	tests := []struct {
		name     string
		document string
		want     string
	}{
		{name: "no file", document: "", want: "Alt+N"},
		{name: "stored override", document: `{"shortcuts":{"toggleWindow":"Ctrl+Shift+P"}}`, want: "Ctrl+Shift+P"},
		{name: "null field", document: `{"shortcuts":{"toggleWindow":null}}`, want: "Alt+N"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.document != "" {
				if err := os.WriteFile(filepath.Join(dir, settings.FileName), []byte(tt.document), 0o600); err != nil {
					t.Fatalf("write settings: %v", err)
				}
			}

			m, _, _ := newTestManager()
			if err := m.Setup(settings.FixedDir(dir)); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if got := activeBinding(m); got != tt.want {
				t.Fatalf("active binding = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetupInvalidStoredShortcutFails(t *testing.T) {
	dir := t.TempDir()
	doc := `{"shortcuts":{"toggleWindow":"Hyper+Q"}}`
	if err := os.WriteFile(filepath.Join(dir, settings.FileName), []byte(doc), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	m, reg, _ := newTestManager()
	err := m.Setup(settings.FixedDir(dir))
	if !errors.Is(err, ErrInvalidShortcut) {
		t.Fatalf("Setup() error = %v, want ErrInvalidShortcut", err)
	}
	if len(reg.active) != 0 {
		t.Fatal("invalid stored shortcut was registered")
	}
}

func TestCloseReleasesRegistration(t *testing.T) {
	m, reg, _ := newTestManager()
	if err := m.Update("Alt+N"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if len(reg.active) != 0 {
		t.Fatal("binding still active after Close")
	}
	if m.State().Registered {
		t.Fatal("State().Registered = true after Close")
	}
}

func activeBinding(m *Manager) string {
	st := m.State()
	if !st.Registered {
		return ""
	}
	return st.Binding
}
