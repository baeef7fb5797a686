// Package tray defines the tray menu and maps tray input to shell events.
package tray

import (
	"fmt"
	"log/slog"

	"pinote/internal/appevent"
)

// Menu item identifiers.
const (
	ItemShowHide = "show_hide"
	ItemQuit     = "quit"
)

// MenuItem is one static tray menu entry.
type MenuItem struct {
	ID    string
	Label string
}

// MenuItems returns the tray menu in display order. Labels do not track
// window visibility.
func MenuItems() []MenuItem {
	return []MenuItem{
		{ID: ItemShowHide, Label: "Show/Hide"},
		{ID: ItemQuit, Label: "Quit"},
	}
}

// MouseButton identifies the button in a tray icon event.
type MouseButton int

const (
	ButtonLeft MouseButton = iota + 1
	ButtonRight
	ButtonMiddle
)

// ButtonState is the button transition in a tray icon event.
type ButtonState int

const (
	ButtonDown ButtonState = iota + 1
	ButtonUp
)

// IconEvent is a mouse event on the tray icon.
type IconEvent struct {
	Button MouseButton
	State  ButtonState
}

// Callbacks are installed on the framework tray by a Builder.
type Callbacks struct {
	OnMenu func(id string)
	OnIcon func(ev IconEvent)
}

// Builder creates the framework tray icon.
type Builder interface {
	Build(icon []byte, items []MenuItem, cb Callbacks) error
}

// Manager turns tray input into events.
type Manager struct {
	events appevent.Poster
}

// NewManager creates a tray manager posting to events.
func NewManager(events appevent.Poster) *Manager {
	if events == nil {
		panic("tray: nil event poster")
	}
	return &Manager{events: events}
}

// Setup validates icon and builds the tray. A missing or undecodable icon is
// a startup error.
func (m *Manager) Setup(b Builder, icon []byte) error {
	info, err := ValidateIcon(icon)
	if err != nil {
		return err
	}
	slog.Debug("[tray] icon validated", "format", info.Format, "width", info.Width, "height", info.Height)

	if err := b.Build(icon, MenuItems(), Callbacks{
		OnMenu: m.HandleMenuClick,
		OnIcon: m.HandleIconEvent,
	}); err != nil {
		return fmt.Errorf("build tray: %w", err)
	}
	return nil
}

// HandleMenuClick dispatches a menu item by id. Unknown ids are ignored.
func (m *Manager) HandleMenuClick(id string) {
	switch id {
	case ItemShowHide:
		m.events.Post(appevent.ToggleRequested, appevent.SourceTrayMenu)
	case ItemQuit:
		m.events.Post(appevent.QuitRequested, appevent.SourceTrayMenu)
	default:
		slog.Debug("[tray] unknown menu item ignored", "id", id)
	}
}

// HandleIconEvent toggles the main window on left-button release.
func (m *Manager) HandleIconEvent(ev IconEvent) {
	if ev.Button != ButtonLeft || ev.State != ButtonUp {
		return
	}
	m.events.Post(appevent.ToggleRequested, appevent.SourceTrayIcon)
}
