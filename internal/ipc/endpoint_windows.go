//go:build windows

package ipc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/user"
	"regexp"
	"strings"
	"time"

	"pinote/internal/userutil"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"
)

// EndpointEnv overrides the default pipe name. The value must name a pinote
// pipe.
const EndpointEnv = "PINOTE_IPC_ENDPOINT"

const defaultPipePrefix = `\\.\pipe\pinote-`

var pipeNamePattern = regexp.MustCompile(`(?i)^\\\\\.\\pipe\\pinote-[a-z0-9._-]{1,128}$`)

// DefaultEndpoint returns the per-user pipe name.
func DefaultEndpoint() string {
	if v := strings.TrimSpace(os.Getenv(EndpointEnv)); v != "" {
		if pipeNamePattern.MatchString(v) {
			return v
		}
		slog.Warn("[ipc] endpoint override rejected: value does not match allowed pattern", "value", v)
	}
	return defaultPipePrefix + userutil.CurrentUsername()
}

func dial(endpoint string, timeout time.Duration) (net.Conn, error) {
	return winio.DialPipe(endpoint, &timeout)
}

// listen creates a pipe listener restricted to SYSTEM and the current user.
func listen(endpoint string) (net.Listener, error) {
	securityDescriptor, err := pipeSecurityDescriptor()
	if err != nil {
		return nil, err
	}
	return winio.ListenPipe(endpoint, &winio.PipeConfig{
		SecurityDescriptor: securityDescriptor,
		MessageMode:        false,
		InputBufferSize:    int32(maxFrameBytes),
		OutputBufferSize:   int32(maxFrameBytes),
	})
}

var validSIDPattern = regexp.MustCompile(`^S-1(-\d+)+$`)

func pipeSecurityDescriptor() (string, error) {
	current, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	sid := strings.TrimSpace(current.Uid)
	if sid == "" {
		return "", errors.New("current user SID is unavailable")
	}
	if !validSIDPattern.MatchString(sid) {
		return "", fmt.Errorf("current user SID has unexpected format: %s", sid)
	}
	// Protected DACL: full access for SYSTEM and the current user only.
	return fmt.Sprintf("D:P(A;;GA;;;SY)(A;;GA;;;%s)", sid), nil
}

func isNoListenerError(err error) bool {
	return errors.Is(err, windows.ERROR_FILE_NOT_FOUND) ||
		errors.Is(err, windows.ERROR_PIPE_BUSY) ||
		errors.Is(err, winio.ErrTimeout)
}
