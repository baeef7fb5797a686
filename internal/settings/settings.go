package settings

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultToggleWindowShortcut is used when no override is stored.
const DefaultToggleWindowShortcut = "Alt+N"

const maxSettingsFileBytes int64 = 1 << 20 // 1MB

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Shortcuts holds the resolved shortcut preferences. Only ToggleWindow is a
// global shortcut; the others are window-local and interpreted by the frontend.
type Shortcuts struct {
	ToggleWindow      string `json:"toggleWindow"`
	ToggleAlwaysOnTop string `json:"toggleAlwaysOnTop"`
	ToggleTheme       string `json:"toggleTheme"`
	HideWindow        string `json:"hideWindow"`
}

// Settings is the fully resolved settings view with defaults applied.
type Settings struct {
	Theme             Theme     `json:"theme"`
	AlwaysOnTop       bool      `json:"alwaysOnTop"`
	Opacity           float64   `json:"opacity"`
	LaunchAtStartup   bool      `json:"launchAtStartup"`
	LastUpdateCheckAt string    `json:"lastUpdateCheckAt,omitempty"`
	Shortcuts         Shortcuts `json:"shortcuts"`
}

// Document mirrors settings.json as stored on disk. Every field is optional;
// nil means "not present".
type Document struct {
	Theme             *string            `json:"theme,omitempty"`
	AlwaysOnTop       *bool              `json:"alwaysOnTop,omitempty"`
	Opacity           *float64           `json:"opacity,omitempty"`
	LaunchAtStartup   *bool              `json:"launchAtStartup,omitempty"`
	LastUpdateCheckAt *string            `json:"lastUpdateCheckAt,omitempty"`
	Shortcuts         *ShortcutsDocument `json:"shortcuts,omitempty"`
}

// ShortcutsDocument is the optional "shortcuts" object of Document.
type ShortcutsDocument struct {
	ToggleWindow      *string `json:"toggleWindow,omitempty"`
	ToggleAlwaysOnTop *string `json:"toggleAlwaysOnTop,omitempty"`
	ToggleTheme       *string `json:"toggleTheme,omitempty"`
	HideWindow        *string `json:"hideWindow,omitempty"`
}

// toggleOnly decodes just the field the shell consumes, so unrelated type
// mismatches elsewhere in the document do not hide the shortcut.
type toggleOnly struct {
	Shortcuts *struct {
		ToggleWindow *string `json:"toggleWindow"`
	} `json:"shortcuts"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Theme:           ThemeSystem,
		AlwaysOnTop:     false,
		Opacity:         1.0,
		LaunchAtStartup: false,
		Shortcuts: Shortcuts{
			ToggleWindow:      DefaultToggleWindowShortcut,
			ToggleAlwaysOnTop: "Ctrl+Shift+T",
			ToggleTheme:       "Ctrl+Shift+D",
			HideWindow:        "Escape",
		},
	}
}

// LoadToggleShortcut returns the stored toggle-window shortcut. Every failure
// (unresolvable directory, missing or unreadable file, malformed JSON, absent
// or null field) is reported as not found.
func LoadToggleShortcut(resolve DirResolver) (string, bool) {
	raw, ok := readDocumentBytes(resolve)
	if !ok {
		return "", false
	}
	var doc toggleOnly
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Debug("[settings] settings document is not valid JSON", "error", err)
		return "", false
	}
	if doc.Shortcuts == nil || doc.Shortcuts.ToggleWindow == nil {
		return "", false
	}
	return *doc.Shortcuts.ToggleWindow, true
}

// ResolveToggleShortcut applies the default when no override is stored.
func ResolveToggleShortcut(resolve DirResolver) string {
	if spec, ok := LoadToggleShortcut(resolve); ok {
		return spec
	}
	return DefaultToggleWindowShortcut
}

// ReadDocument loads the stored document. ok is false when nothing usable is
// stored.
func ReadDocument(resolve DirResolver) (Document, bool) {
	raw, ok := readDocumentBytes(resolve)
	if !ok {
		return Document{}, false
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Debug("[settings] settings document does not match schema", "error", err)
		return Document{}, false
	}
	return doc, true
}

// Load returns the stored settings merged over Defaults.
func Load(resolve DirResolver) Settings {
	doc, _ := ReadDocument(resolve)
	return Resolve(doc)
}

// Resolve merges doc over Defaults. The shortcuts object is merged field by
// field; out-of-range values fall back to the default.
func Resolve(doc Document) Settings {
	s := Defaults()
	if doc.Theme != nil {
		switch theme := Theme(*doc.Theme); theme {
		case ThemeLight, ThemeDark, ThemeSystem:
			s.Theme = theme
		default:
			slog.Debug("[settings] ignoring unknown theme", "theme", *doc.Theme)
		}
	}
	if doc.AlwaysOnTop != nil {
		s.AlwaysOnTop = *doc.AlwaysOnTop
	}
	if doc.Opacity != nil && *doc.Opacity > 0 && *doc.Opacity <= 1 {
		s.Opacity = *doc.Opacity
	}
	if doc.LaunchAtStartup != nil {
		s.LaunchAtStartup = *doc.LaunchAtStartup
	}
	if doc.LastUpdateCheckAt != nil {
		s.LastUpdateCheckAt = *doc.LastUpdateCheckAt
	}
	if sc := doc.Shortcuts; sc != nil {
		mergeString(&s.Shortcuts.ToggleWindow, sc.ToggleWindow)
		mergeString(&s.Shortcuts.ToggleAlwaysOnTop, sc.ToggleAlwaysOnTop)
		mergeString(&s.Shortcuts.ToggleTheme, sc.ToggleTheme)
		mergeString(&s.Shortcuts.HideWindow, sc.HideWindow)
	}
	return s
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Path returns the settings file path for the resolved data directory.
func Path(resolve DirResolver) (string, error) {
	if resolve == nil {
		return "", fmt.Errorf("data directory resolver is nil")
	}
	dir, err := resolve()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

func readDocumentBytes(resolve DirResolver) ([]byte, bool) {
	path, err := Path(resolve)
	if err != nil {
		slog.Debug("[settings] data directory unavailable", "error", err)
		return nil, false
	}
	raw, err := readLimitedFile(path, maxSettingsFileBytes)
	if err != nil {
		slog.Debug("[settings] settings file unavailable", "path", path, "error", err)
		return nil, false
	}
	return raw, true
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	limited := io.LimitReader(file, maxBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("settings file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}
