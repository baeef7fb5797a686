package app

import (
	"log/slog"

	"pinote/internal/appevent"
	"pinote/internal/settings"
	"pinote/internal/shortcut"
)

// ShortcutStatus is the toggle-shortcut state reported to the frontend.
type ShortcutStatus struct {
	Registered bool   `json:"registered"`
	Shortcut   string `json:"shortcut"`
	Binding    string `json:"binding"`
	Error      string `json:"error,omitempty"`
}

func shortcutStatus(st shortcut.State) ShortcutStatus {
	status := ShortcutStatus{
		Registered: st.Registered,
		Shortcut:   st.Shortcut,
		Binding:    st.Binding,
	}
	if st.LastError != nil {
		status.Error = st.LastError.Error()
	}
	return status
}

// ToggleMainWindow queues a main-window toggle.
func (a *App) ToggleMainWindow() {
	a.Post(appevent.ToggleRequested, appevent.SourceFrontend)
}

// HideMainWindow hides the main window directly. Window calls are safe from
// any goroutine and hiding needs no ordering with queued toggles.
func (a *App) HideMainWindow() {
	a.windows.HideMainWindow()
}

// ShowSettingsWindow queues opening the settings window.
func (a *App) ShowSettingsWindow() {
	a.Post(appevent.SettingsRequested, appevent.SourceFrontend)
}

// Quit queues application exit.
func (a *App) Quit() {
	a.Post(appevent.QuitRequested, appevent.SourceFrontend)
}

// UpdateToggleShortcut replaces the global toggle shortcut. The settings file
// is not written; the frontend persists the value itself.
func (a *App) UpdateToggleShortcut(spec string) (ShortcutStatus, error) {
	err := a.shortcuts.Update(spec)
	status := shortcutStatus(a.shortcuts.State())
	if err != nil {
		slog.Warn("[shortcut] update failed", "shortcut", spec, "error", err)
		return status, err
	}
	a.emit(EventShortcutChanged, status)
	return status, nil
}

// ToggleShortcutStatus reports the current registration.
func (a *App) ToggleShortcutStatus() ShortcutStatus {
	return shortcutStatus(a.shortcuts.State())
}

// GetSettings returns the settings loaded at startup merged over defaults.
func (a *App) GetSettings() settings.Settings {
	return a.Settings()
}
