package window

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Controller owns the visibility policy for the main and settings windows.
// Windows are never destroyed while the process runs; close requests hide.
type Controller struct {
	host Host

	// settingsMu serializes settings-window lookup and creation.
	settingsMu sync.Mutex
	quitting   atomic.Bool
}

// NewController creates a controller over host.
func NewController(host Host) *Controller {
	if host == nil {
		panic("window: nil host")
	}
	return &Controller{host: host}
}

// CreateMainWindow creates the main window with close interception and
// verifies that it can be found afterwards.
func (c *Controller) CreateMainWindow(spec Spec) error {
	if spec.Name != MainName {
		return fmt.Errorf("main window spec has name %q, want %q", spec.Name, MainName)
	}
	if _, err := c.host.Create(spec, c.closeHandler(MainName, "main_window_hide")); err != nil {
		return fmt.Errorf("create main window: %w", err)
	}
	return c.RequireMainWindow()
}

// RequireMainWindow returns ErrMainWindowMissing when the main window is not
// registered with the host.
func (c *Controller) RequireMainWindow() error {
	if _, ok := c.host.Lookup(MainName); !ok {
		return ErrMainWindowMissing
	}
	return nil
}

// ToggleMainWindow hides the main window when it is visible and shows and
// focuses it otherwise. A failed visibility query counts as hidden. A missing
// main window is ignored.
func (c *Controller) ToggleMainWindow() {
	w, ok := c.host.Lookup(MainName)
	if !ok {
		slog.Debug("[window] toggle ignored, main window not found")
		return
	}

	visible, err := w.IsVisible()
	if err != nil {
		slog.Debug("[window] visibility query failed, treating as hidden", "error", err)
		visible = false
	}

	if visible {
		if err := w.Hide(); err != nil {
			slog.Warn("[window] failed to hide main window", "error", err)
		}
		return
	}
	showAndFocus(w)
}

// ShowMainWindow shows and focuses the main window regardless of its state.
func (c *Controller) ShowMainWindow() {
	w, ok := c.host.Lookup(MainName)
	if !ok {
		slog.Debug("[window] show ignored, main window not found")
		return
	}
	showAndFocus(w)
}

// HideMainWindow hides the main window if it exists.
func (c *Controller) HideMainWindow() {
	w, ok := c.host.Lookup(MainName)
	if !ok {
		slog.Debug("[window] hide ignored, main window not found")
		return
	}
	if err := w.Hide(); err != nil {
		slog.Warn("[window] failed to hide main window", "error", err)
	}
}

// ShowSettingsWindow shows and focuses the settings window, creating it on
// first use. Only creation failures are returned.
func (c *Controller) ShowSettingsWindow() error {
	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()

	if w, ok := c.host.Lookup(SettingsName); ok {
		slog.Info("settings_window_show_existing")
		showAndFocus(w)
		return nil
	}

	slog.Info("settings_window_create")
	w, err := c.host.Create(SettingsSpec(), c.closeHandler(SettingsName, "settings_window_hide"))
	if err != nil {
		return fmt.Errorf("create settings window: %w", err)
	}
	showAndFocus(w)
	return nil
}

// HandleCloseRequested hides the named window and reports whether the close
// should be cancelled. During quit every close is allowed.
func (c *Controller) HandleCloseRequested(name string) (cancel bool) {
	if c.quitting.Load() {
		return false
	}
	w, ok := c.host.Lookup(name)
	if !ok {
		// Nothing to hide; still keep the window alive.
		return true
	}
	if err := w.Hide(); err != nil {
		slog.Warn("[window] failed to hide window on close", "window", name, "error", err)
	}
	return true
}

// BeginQuit lets subsequent close requests through so the framework can tear
// windows down.
func (c *Controller) BeginQuit() {
	c.quitting.Store(true)
}

// Quitting reports whether BeginQuit has been called.
func (c *Controller) Quitting() bool {
	return c.quitting.Load()
}

func (c *Controller) closeHandler(name, breadcrumb string) CloseHandler {
	return func() bool {
		cancel := c.HandleCloseRequested(name)
		if cancel {
			slog.Info(breadcrumb)
		}
		return cancel
	}
}

func showAndFocus(w Window) {
	if err := w.Show(); err != nil {
		slog.Warn("[window] failed to show window", "window", w.Name(), "error", err)
	}
	if err := w.Focus(); err != nil {
		slog.Warn("[window] failed to focus window", "window", w.Name(), "error", err)
	}
}
