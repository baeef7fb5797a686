package main

import (
	"fmt"
	"strings"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"pinote/internal/tray"
	"pinote/internal/window"
)

// windowHost adapts the Wails window manager to window.Host.
type windowHost struct {
	app *application.App
}

func newWindowHost(app *application.App) *windowHost {
	return &windowHost{app: app}
}

func (h *windowHost) Lookup(name string) (window.Window, bool) {
	w, ok := h.app.Window.GetByName(name)
	if !ok || w == nil {
		return nil, false
	}
	return wailsWindow{w: w}, true
}

func (h *windowHost) Create(spec window.Spec, onClose window.CloseHandler) (window.Window, error) {
	w := h.app.Window.NewWithOptions(application.WebviewWindowOptions{
		Name:          spec.Name,
		Title:         spec.Title,
		URL:           "/" + strings.TrimPrefix(spec.URL, "/"),
		Width:         spec.Width,
		Height:        spec.Height,
		MinWidth:      spec.MinWidth,
		MinHeight:     spec.MinHeight,
		Frameless:     spec.Frameless,
		DisableResize: !spec.Resizable,
		AlwaysOnTop:   spec.AlwaysOnTop,
	})
	if w == nil {
		return nil, fmt.Errorf("window %q was not created", spec.Name)
	}

	if onClose != nil {
		w.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
			if onClose() {
				e.Cancel()
			}
		})
	}
	return wailsWindow{w: w}, nil
}

// wailsWindow adapts application.Window. Wails window calls are dispatched to
// the UI thread and report no errors.
type wailsWindow struct {
	w application.Window
}

func (w wailsWindow) Name() string { return w.w.Name() }

func (w wailsWindow) Show() error {
	w.w.Show()
	return nil
}

func (w wailsWindow) Hide() error {
	w.w.Hide()
	return nil
}

func (w wailsWindow) Focus() error {
	w.w.Focus()
	return nil
}

func (w wailsWindow) IsVisible() (bool, error) {
	return w.w.IsVisible(), nil
}

// trayBuilder creates the Wails system tray.
type trayBuilder struct {
	app *application.App
}

func newTrayBuilder(app *application.App) *trayBuilder {
	return &trayBuilder{app: app}
}

// Build installs the icon and menu. Left click toggles through cb.OnIcon;
// right click opens the menu.
func (b *trayBuilder) Build(icon []byte, items []tray.MenuItem, cb tray.Callbacks) error {
	menu := b.app.NewMenu()
	for _, item := range items {
		id := item.ID
		menu.Add(item.Label).OnClick(func(*application.Context) {
			cb.OnMenu(id)
		})
	}

	systemTray := b.app.SystemTray.New()
	systemTray.SetIcon(icon)
	systemTray.SetMenu(menu)
	systemTray.OnClick(func() {
		// Wails reports a completed click only.
		cb.OnIcon(tray.IconEvent{Button: tray.ButtonLeft, State: tray.ButtonUp})
	})
	systemTray.OnRightClick(func() {
		systemTray.OpenMenu()
	})
	return nil
}
