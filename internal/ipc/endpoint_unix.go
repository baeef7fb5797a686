//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pinote/internal/userutil"
)

// EndpointEnv overrides the default socket path. The value must be an
// absolute path ending in ".sock".
const EndpointEnv = "PINOTE_IPC_ENDPOINT"

// DefaultEndpoint returns the per-user socket path.
func DefaultEndpoint() string {
	if v := strings.TrimSpace(os.Getenv(EndpointEnv)); v != "" {
		if filepath.IsAbs(v) && strings.HasSuffix(v, ".sock") {
			return v
		}
		slog.Warn("[ipc] endpoint override rejected: want an absolute .sock path", "value", v)
	}
	return filepath.Join(userutil.RuntimeDir(), "pinote-"+userutil.CurrentUsername()+".sock")
}

func dial(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, timeout)
}

// listen binds the socket with owner-only permissions. A socket file left by
// a crashed instance is removed first; the single-instance lock guarantees no
// live server owns it.
func listen(endpoint string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(endpoint), 0o700); err != nil {
		return nil, fmt.Errorf("create socket directory: %w", err)
	}
	if err := os.Remove(endpoint); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", endpoint)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(endpoint, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}
	return listener, nil
}

func isNoListenerError(err error) bool {
	return errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED)
}
