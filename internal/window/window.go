// Package window implements main-window toggling, the lazily created settings
// window and close interception over a framework-neutral Host.
package window

import (
	"errors"
)

const (
	MainName     = "main"
	SettingsName = "settings"

	// EntryURL is the embedded frontend document loaded by every window.
	EntryURL    = "index.html"
	SettingsURL = EntryURL + "?view=settings"
)

// ErrMainWindowMissing reports that the main window could not be found after
// it was created. Launch aborts on this error.
var ErrMainWindowMissing = errors.New("main window is missing")

// Window is the subset of a framework window the controller drives.
type Window interface {
	Name() string
	Show() error
	Hide() error
	Focus() error
	IsVisible() (bool, error)
}

// CloseHandler answers a close request. Returning true cancels the close.
type CloseHandler func() (cancel bool)

// Spec describes a window to create.
type Spec struct {
	Name      string
	Title     string
	URL       string
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	Frameless bool
	Resizable bool
	// AlwaysOnTop applies only at creation.
	AlwaysOnTop bool
}

// Host creates and looks up framework windows by name.
type Host interface {
	Lookup(name string) (Window, bool)
	// Create builds a window and installs onClose as its close hook.
	Create(spec Spec, onClose CloseHandler) (Window, error)
}

// MainSpec is the main note window.
func MainSpec(alwaysOnTop bool) Spec {
	return Spec{
		Name:        MainName,
		Title:       "Pinote",
		URL:         EntryURL,
		Width:       420,
		Height:      560,
		MinWidth:    320,
		MinHeight:   240,
		Frameless:   true,
		Resizable:   true,
		AlwaysOnTop: alwaysOnTop,
	}
}

// SettingsSpec is the settings window, created on first request.
func SettingsSpec() Spec {
	return Spec{
		Name:      SettingsName,
		Title:     "Pinote Settings",
		URL:       SettingsURL,
		Width:     920,
		Height:    620,
		MinWidth:  760,
		MinHeight: 520,
		Frameless: true,
		Resizable: true,
	}
}
