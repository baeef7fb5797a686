package app

import (
	"errors"
	"log/slog"
	"time"

	"pinote/internal/ipc"
	"pinote/internal/settings"
	"pinote/internal/window"
)

const shutdownTimeout = 3 * time.Second

// activationServer is the subset of *ipc.Server the shell drives.
type activationServer interface {
	Start() error
	Stop() error
}

// newActivationServerFn is replaced in tests.
var newActivationServerFn = func(endpoint string, exec ipc.CommandExecutor) activationServer {
	return ipc.NewServer(endpoint, exec)
}

// Startup loads settings, creates the main window, builds the tray and
// registers the toggle shortcut unless Options.DeferShortcut is set. Any
// returned error must abort launch; the caller should still call Shutdown to
// release what was acquired.
func (a *App) Startup() error {
	if !a.started.CompareAndSwap(false, true) {
		return errors.New("app already started")
	}

	a.settings = settings.Load(a.opts.Settings)
	a.dispatcher.Start(a.ctx, &a.bgWG, a.shuttingDown.Load)

	if err := a.windows.CreateMainWindow(window.MainSpec(a.settings.AlwaysOnTop)); err != nil {
		return err
	}
	if err := a.tray.Setup(a.opts.Tray, a.opts.Icon); err != nil {
		return err
	}
	if !a.opts.DeferShortcut {
		if err := a.StartShortcut(); err != nil {
			return err
		}
	}

	if a.opts.ServeActivation {
		a.startActivationServer()
	}

	slog.Info("app_ready")
	return nil
}

// StartShortcut registers the stored toggle shortcut. Startup calls it unless
// Options.DeferShortcut is set, in which case the host calls it once the run
// loop is up. An error must abort launch.
func (a *App) StartShortcut() error {
	switch {
	case !a.started.Load():
		return errors.New("app not started")
	case a.shuttingDown.Load():
		return errors.New("app is shutting down")
	case !a.shortcutStarted.CompareAndSwap(false, true):
		return errors.New("toggle shortcut already set up")
	}
	return a.shortcuts.Setup(a.opts.Settings)
}

// startActivationServer is best effort: without it a second launch simply
// exits without raising this instance.
func (a *App) startActivationServer() {
	srv := newActivationServerFn(a.opts.ActivationEndpoint, ipc.ExecutorFunc(a.Execute))
	if err := srv.Start(); err != nil {
		slog.Warn("[ipc] activation listener unavailable", "error", err)
		return
	}
	a.activation = srv
}

// Shutdown releases the global shortcut, stops the activation listener and
// waits for the dispatcher. Safe to call more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.shuttingDown.Store(true)
		a.windows.BeginQuit()

		if err := a.shortcuts.Close(); err != nil {
			slog.Warn("[shortcut] failed to release global shortcut", "error", err)
		}
		if a.activation != nil {
			if err := a.activation.Stop(); err != nil {
				slog.Warn("[ipc] failed to stop activation listener", "error", err)
			}
		}

		a.cancel()
		if !waitWithTimeout(&a.bgWG, shutdownTimeout) {
			slog.Warn("[event] dispatcher did not stop in time", "timeout", shutdownTimeout)
		}
		if n := a.dispatcher.Dropped(); n > 0 {
			slog.Warn("[event] events dropped on a full queue", "count", n)
		}
	})
}

// requestQuit lets every window close and asks the framework to exit. The
// framework's shutdown hook then calls Shutdown, which waits for the
// dispatcher, so Quit must not run on the dispatcher goroutine.
func (a *App) requestQuit() {
	a.windows.BeginQuit()
	go a.opts.Quit()
}

type waiter interface{ Wait() }

func waitWithTimeout(wg waiter, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Settings returns the settings loaded at startup.
func (a *App) Settings() settings.Settings {
	return a.settings
}
