package app

import (
	"context"
	"log/slog"

	"pinote/internal/appevent"
	"pinote/internal/ipc"
)

// handleEvent runs on the dispatcher goroutine.
func (a *App) handleEvent(_ context.Context, env appevent.Envelope) {
	switch env.Event {
	case appevent.ToggleRequested:
		a.windows.ToggleMainWindow()
	case appevent.ActivateRequested:
		a.windows.ShowMainWindow()
	case appevent.SettingsRequested:
		if err := a.windows.ShowSettingsWindow(); err != nil {
			slog.Warn("[window] failed to open settings window", "error", err, "source", env.Source)
		}
	case appevent.QuitRequested:
		a.requestQuit()
	default:
		slog.Debug("[event] unhandled event", "event", env.Event.String(), "source", env.Source)
	}
}

// Execute serves activation requests from later launches.
func (a *App) Execute(req ipc.Request) ipc.Response {
	var ev appevent.Event
	switch req.Command {
	case ipc.CommandActivate:
		ev = appevent.ActivateRequested
	case ipc.CommandToggle:
		ev = appevent.ToggleRequested
	case ipc.CommandShowSettings:
		ev = appevent.SettingsRequested
	default:
		return ipc.Failure(req, "unknown command %q", req.Command)
	}
	if !a.Post(ev, appevent.SourceIPC) {
		return ipc.Failure(req, "shell is busy or shutting down")
	}
	return ipc.Response{ID: req.ID, OK: true}
}
