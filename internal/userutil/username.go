// Package userutil derives per-user names for the instance lock and the
// activation endpoint.
package userutil

import (
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

var invalidUsernameRune = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Test seams.
var (
	currentUserFn = user.Current
	tempDirFn     = os.TempDir
)

// SanitizeUsername normalizes a username for use in pipe, socket and lock
// names.
func SanitizeUsername(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return invalidUsernameRune.ReplaceAllString(value, "_")
}

// CurrentUsername returns the sanitized login name from USERNAME (Windows) or
// USER, falling back to the OS account lookup.
func CurrentUsername() string {
	for _, key := range []string{"USERNAME", "USER"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return SanitizeUsername(v)
		}
	}
	if current, err := currentUserFn(); err == nil {
		return SanitizeUsername(current.Username)
	}
	return SanitizeUsername("")
}

// RuntimeDir returns the directory for per-user sockets and lock files:
// XDG_RUNTIME_DIR when it is an absolute path, the temp directory otherwise.
func RuntimeDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); dir != "" && filepath.IsAbs(dir) {
		return dir
	}
	return tempDirFn()
}
