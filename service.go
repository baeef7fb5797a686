package main

import (
	"pinote/internal/app"
	"pinote/internal/settings"
)

// ShellService is bound to the frontend.
type ShellService struct {
	shell *app.App
}

// ToggleMainWindow shows the main window when hidden and hides it otherwise.
func (s *ShellService) ToggleMainWindow() {
	s.shell.ToggleMainWindow()
}

// HideMainWindow hides the main window.
func (s *ShellService) HideMainWindow() {
	s.shell.HideMainWindow()
}

// ShowSettingsWindow opens the settings window, creating it on first use.
func (s *ShellService) ShowSettingsWindow() {
	s.shell.ShowSettingsWindow()
}

// UpdateToggleShortcut registers spec as the global toggle shortcut.
func (s *ShellService) UpdateToggleShortcut(spec string) (app.ShortcutStatus, error) {
	return s.shell.UpdateToggleShortcut(spec)
}

// ActiveToggleShortcut reports the current toggle shortcut registration.
func (s *ShellService) ActiveToggleShortcut() app.ShortcutStatus {
	return s.shell.ToggleShortcutStatus()
}

// GetSettings returns the settings loaded at startup.
func (s *ShellService) GetSettings() settings.Settings {
	return s.shell.GetSettings()
}

// Quit exits the application. The global shortcut is released on the way out.
func (s *ShellService) Quit() {
	s.shell.Quit()
}
