package settings

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultIdentifier names the per-install data directory.
const DefaultIdentifier = "com.pinote.app"

// FileName is the settings document inside the data directory.
const FileName = "settings.json"

// Test seams.
var (
	platform      = runtime.GOOS
	userHomeDirFn = os.UserHomeDir
)

// DataDir returns the per-application data directory for identifier:
//
//	windows: %APPDATA%\<identifier>
//	darwin:  ~/Library/Application Support/<identifier>
//	other:   $XDG_DATA_HOME/<identifier> or ~/.local/share/<identifier>
//
// The directory is not created.
func DataDir(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", errors.New("application identifier is required")
	}
	base, err := dataHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, identifier), nil
}

func dataHome() (string, error) {
	switch platform {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return appData, nil
		}
		home, err := userHomeDirFn()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Roaming"), nil
	case "darwin":
		home, err := userHomeDirFn()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		// XDG base dir spec: relative values are invalid and must be ignored.
		if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" && filepath.IsAbs(xdg) {
			return xdg, nil
		}
		home, err := userHomeDirFn()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// DirResolver resolves the data directory holding the settings file.
type DirResolver func() (string, error)

// FixedDir returns a DirResolver that always yields dir.
func FixedDir(dir string) DirResolver {
	return func() (string, error) {
		if strings.TrimSpace(dir) == "" {
			return "", errors.New("data directory is empty")
		}
		return dir, nil
	}
}

// IdentifierDir returns a DirResolver backed by DataDir(identifier).
func IdentifierDir(identifier string) DirResolver {
	return func() (string, error) { return DataDir(identifier) }
}
