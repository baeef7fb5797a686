//go:build windows

package singleinstance

import (
	"errors"
	"fmt"

	"pinote/internal/userutil"

	"golang.org/x/sys/windows"
)

// Lock owns a named kernel mutex. Windows abandons the mutex when the owning
// process exits, so a crash never leaves the user locked out.
type Lock struct {
	handle windows.Handle
}

// TryLock creates the named mutex with initial ownership, or returns
// ErrAlreadyRunning when the name already exists in the session namespace.
func TryLock(name string) (*Lock, error) {
	if name == "" {
		return nil, errors.New("mutex name is required")
	}
	ptr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("encode mutex name %q: %w", name, err)
	}

	h, err := windows.CreateMutex(nil, true, ptr)
	switch {
	case err == nil:
		return &Lock{handle: h}, nil
	case errors.Is(err, windows.ERROR_ALREADY_EXISTS):
		err = ErrAlreadyRunning
	default:
		err = fmt.Errorf("create mutex %q: %w", name, err)
	}
	if h != 0 {
		_ = windows.CloseHandle(h)
	}
	return nil, err
}

// Release closes the mutex handle. Safe on a nil receiver and idempotent.
func (l *Lock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	h := l.handle
	l.handle = 0
	return windows.CloseHandle(h)
}

// DefaultName returns the per-user mutex name, matching the activation pipe
// from ipc.DefaultEndpoint.
func DefaultName() string {
	return `Global\pinote-` + userutil.CurrentUsername()
}
