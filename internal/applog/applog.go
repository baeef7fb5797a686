// Package applog configures the process logger: a text handler on stdout at
// Debug or Warn, with Warn and above teed to a forwarder that the host points
// at the frontend once the app exists.
package applog

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// DebugEnv enables debug logging when set to a true value.
const DebugEnv = "PINOTE_DEBUG"

// Entry is a forwarded log record as delivered to the frontend.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Source  string    `json:"source,omitempty"`
}

// Forwarder delivers teed records to a sink installed after startup. Records
// logged before Set are only written to the base handler.
type Forwarder struct {
	sink atomic.Pointer[func(Entry)]
}

// Set installs sink. A nil sink stops forwarding.
func (f *Forwarder) Set(sink func(Entry)) {
	if sink == nil {
		f.sink.Store(nil)
		return
	}
	f.sink.Store(&sink)
}

func (f *Forwarder) forward(ts time.Time, level slog.Level, msg string, group string) {
	sink := f.sink.Load()
	if sink == nil {
		return
	}
	(*sink)(Entry{
		Time:    ts,
		Level:   strings.ToLower(level.String()),
		Message: msg,
		Source:  group,
	})
}

// Options configures New.
type Options struct {
	Debug bool
	// Out defaults to os.Stdout.
	Out io.Writer
}

// Level returns the minimum level for opts.
func Level(opts Options) slog.Level {
	if opts.Debug {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// DebugFromEnv reports whether DebugEnv holds a true value.
func DebugFromEnv() bool {
	raw := strings.TrimSpace(os.Getenv(DebugEnv))
	if raw == "" {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	return err == nil && enabled
}

// New builds the process logger and its forwarder.
func New(opts Options) (*slog.Logger, *Forwarder) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	fwd := &Forwarder{}
	base := slog.NewTextHandler(out, &slog.HandlerOptions{Level: Level(opts)})
	return slog.New(NewTeeHandler(base, slog.LevelWarn, fwd.forward)), fwd
}

// Install builds the logger with New and makes it the slog default.
func Install(opts Options) *Forwarder {
	logger, fwd := New(opts)
	slog.SetDefault(logger)
	return fwd
}
