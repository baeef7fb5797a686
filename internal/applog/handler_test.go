package applog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type capturedEntry struct {
	level slog.Level
	msg   string
	group string
}

func newTestCallback() (EntryCallback, func() []capturedEntry) {
	var mu sync.Mutex
	var entries []capturedEntry

	cb := func(_ time.Time, level slog.Level, msg string, group string) {
		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, capturedEntry{level: level, msg: msg, group: group})
	}
	get := func() []capturedEntry {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedEntry(nil), entries...)
	}
	return cb, get
}

func TestTeeHandlerThreshold(t *testing.T) {
	tests := []struct {
		name    string
		log     func(l *slog.Logger)
		wantTee bool
	}{
		{name: "debug", log: func(l *slog.Logger) { l.Debug("[window] toggle ignored") }},
		{name: "info", log: func(l *slog.Logger) { l.Info("app_ready") }},
		{name: "warn", log: func(l *slog.Logger) { l.Warn("[shortcut] left unregistered") }, wantTee: true},
		{name: "error", log: func(l *slog.Logger) { l.Error("[worker] giving up") }, wantTee: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			cb, getEntries := newTestCallback()

			tt.log(slog.New(NewTeeHandler(base, slog.LevelWarn, cb)))

			if got := len(getEntries()) == 1; got != tt.wantTee {
				t.Fatalf("teed = %v, want %v", got, tt.wantTee)
			}
			if buf.Len() == 0 {
				t.Fatal("record did not reach the base handler")
			}
		})
	}
}

func TestTeeHandlerGroups(t *testing.T) {
	base := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	cb, getEntries := newTestCallback()
	h := NewTeeHandler(base, slog.LevelWarn, cb)

	slog.New(h.WithGroup("shell").WithGroup("tray")).Error("build failed")
	if same := h.WithGroup(""); same != h {
		t.Fatal("WithGroup(\"\") did not return the receiver")
	}

	entries := getEntries()
	if len(entries) != 1 {
		t.Fatalf("teed %d entries, want 1", len(entries))
	}
	if entries[0].group != "shell.tray" {
		t.Fatalf("group = %q, want shell.tray", entries[0].group)
	}
}

func TestTeeHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	cb, getEntries := newTestCallback()
	h := NewTeeHandler(base, slog.LevelWarn, cb)

	slog.New(h.WithAttrs([]slog.Attr{slog.String("window", "settings")})).Warn("hide failed")

	if len(getEntries()) != 1 {
		t.Fatal("WithAttrs dropped the callback")
	}
	if !strings.Contains(buf.String(), "window=settings") {
		t.Fatalf("base output %q missing attribute", buf.String())
	}
	if h.WithAttrs(nil) != h {
		t.Fatal("WithAttrs(nil) did not return the receiver")
	}
}

type errorHandler struct{ err error }

func (h *errorHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h *errorHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h *errorHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h *errorHandler) WithGroup(string) slog.Handler             { return h }

func TestTeeHandlerBaseErrorStillTees(t *testing.T) {
	baseErr := errors.New("disk full")
	cb, getEntries := newTestCallback()
	h := NewTeeHandler(&errorHandler{err: baseErr}, slog.LevelWarn, cb)

	record := slog.NewRecord(time.Now(), slog.LevelError, "write failed", 0)
	if err := h.Handle(context.Background(), record); !errors.Is(err, baseErr) {
		t.Fatalf("Handle() error = %v, want %v", err, baseErr)
	}
	if len(getEntries()) != 1 {
		t.Fatal("callback skipped after base handler error")
	}
}

func TestTeeHandlerCallbackPanicIsContained(t *testing.T) {
	base := slog.NewTextHandler(io.Discard, nil)
	h := NewTeeHandler(base, slog.LevelInfo, func(time.Time, slog.Level, string, string) {
		panic("sink gone")
	})
	record := slog.NewRecord(time.Now(), slog.LevelWarn, "test", 0)
	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}
}

func TestNewForwardsWarningsAfterSet(t *testing.T) {
	var out bytes.Buffer
	logger, fwd := New(Options{Out: &out})

	var got []Entry
	logger.Warn("before sink")
	fwd.Set(func(e Entry) { got = append(got, e) })
	logger.Info("app_ready")
	logger.Warn("[tray] icon rejected")
	fwd.Set(nil)
	logger.Error("after sink removed")

	if len(got) != 1 {
		t.Fatalf("forwarded %d entries, want 1: %+v", len(got), got)
	}
	if got[0].Level != "warn" || got[0].Message != "[tray] icon rejected" {
		t.Fatalf("forwarded %+v", got[0])
	}
	if strings.Contains(out.String(), "app_ready") {
		t.Fatal("info record written at the default Warn level")
	}
	if !strings.Contains(out.String(), "before sink") {
		t.Fatal("warn record missing from stdout output")
	}
}

func TestLevel(t *testing.T) {
	if got := Level(Options{Debug: true}); got != slog.LevelDebug {
		t.Fatalf("Level(debug) = %v, want Debug", got)
	}
	if got := Level(Options{}); got != slog.LevelWarn {
		t.Fatalf("Level() = %v, want Warn", got)
	}
}

func TestDebugFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: false},
		{value: "1", want: true},
		{value: "true", want: true},
		{value: " TRUE ", want: true},
		{value: "0", want: false},
		{value: "yes", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(DebugEnv, tt.value)
			if got := DebugFromEnv(); got != tt.want {
				t.Fatalf("DebugFromEnv() with %q = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
