package hotkeys

import (
	"errors"
	"time"
)

var errCallTimeout = errors.New("call did not return in time")

// callWithTimeout runs fn on its own goroutine and returns its error, or
// errCallTimeout when fn has not returned within timeout. fn keeps running in
// that case.
func callWithTimeout(fn func() error, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errCallTimeout
	}
}
