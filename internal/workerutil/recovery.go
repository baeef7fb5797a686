// Package workerutil runs long-lived background loops (event dispatch, the
// activation listener) with panic recovery and bounded restarts.
package workerutil

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultMaxRetries     = 10
)

// RecoveryOptions configures RunWithPanicRecovery. Zero or negative numeric
// fields take the defaults (100ms, 5s, 10 runs). MaxRetries counts runs, so 1
// means no restart. Nil callbacks are skipped.
type RecoveryOptions struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxRetries     int

	// OnPanic is called after each recovered panic, before the backoff wait.
	// attempt starts at 1.
	OnPanic func(worker string, attempt int)

	// OnFatal is called once when the worker has used up MaxRetries runs.
	OnFatal func(worker string, maxRetries int)

	// IsShutdown stops restarts while the shell is quitting. OnPanic is not
	// called for a panic seen during shutdown.
	IsShutdown func() bool
}

func (opts RecoveryOptions) applyDefaults() RecoveryOptions {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		slog.Warn("[worker] max backoff below initial backoff, raising it",
			"initialBackoff", opts.InitialBackoff, "maxBackoff", opts.MaxBackoff)
		opts.MaxBackoff = opts.InitialBackoff
	}
	return opts
}

// supervisor restarts one named worker.
type supervisor struct {
	name string
	fn   func(ctx context.Context)
	opts RecoveryOptions
}

// RunWithPanicRecovery runs fn on a goroutine tracked by wg. When fn panics
// the panic and stack are logged and fn runs again after an exponential
// backoff. The goroutine ends when fn returns normally, ctx is done, shutdown
// is reported, or MaxRetries runs have all panicked.
func RunWithPanicRecovery(
	ctx context.Context,
	name string,
	wg *sync.WaitGroup,
	fn func(ctx context.Context),
	opts RecoveryOptions,
) {
	s := &supervisor{name: name, fn: fn, opts: opts.applyDefaults()}
	wg.Go(func() { s.loop(ctx) })
}

func (s *supervisor) loop(ctx context.Context) {
	delay := s.opts.InitialBackoff

	for run := 1; ; run++ {
		if !s.runOnce(ctx) || ctx.Err() != nil {
			return
		}
		if s.shuttingDown() {
			slog.Info("[worker] not restarting during shutdown", "worker", s.name)
			return
		}
		if s.opts.OnPanic != nil {
			s.opts.OnPanic(s.name, run)
		}
		if run >= s.opts.MaxRetries {
			break
		}

		slog.Warn("[worker] restarting after panic", "worker", s.name, "attempt", run, "delay", delay)
		if !sleepCtx(ctx, delay) {
			return
		}
		delay = nextBackoff(delay, s.opts.MaxBackoff)
	}

	slog.Error("[worker] giving up after repeated panics", "worker", s.name, "maxRetries", s.opts.MaxRetries)
	if s.opts.OnFatal != nil {
		s.opts.OnFatal(s.name, s.opts.MaxRetries)
	}
}

func (s *supervisor) shuttingDown() bool {
	return s.opts.IsShutdown != nil && s.opts.IsShutdown()
}

// runOnce calls fn and reports whether it panicked.
func (s *supervisor) runOnce(ctx context.Context) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[worker] recovered from panic",
				"worker", s.name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			panicked = true
		}
	}()
	s.fn(ctx)
	return false
}

// sleepCtx waits for d and returns false if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// nextBackoff doubles current up to maxBackoff. Overflow saturates at
// maxBackoff.
func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	switch {
	case current <= 0:
		return defaultInitialBackoff
	case current >= maxBackoff || current > maxBackoff/2:
		return maxBackoff
	default:
		return current * 2
	}
}
