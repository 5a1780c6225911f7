// Package sandbox implements the isolated execution unit of spec §4.5: a
// wall-clock deadline and a heap ceiling wrapped around one evaluator run,
// with usage metrics always returned and the caller responsible for
// rolling user_ns back to its pre-call value on any breach (the evaluator's
// persistent values.Map already makes that rollback a no-op: the pre-call
// reference is simply never touched when a run errors out).
package sandbox

import (
	"context"
	"runtime"
	"time"

	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
)

// DefaultTimeout and DefaultMaxHeapBytes mirror the spec's §4.5 table; a
// host may raise either through run options.
const (
	DefaultTimeout      = 1000 * time.Millisecond
	DefaultMaxHeapBytes = 10 * 1024 * 1024
)

// Limits bounds one sandboxed run.
type Limits struct {
	Timeout      time.Duration
	MaxHeapBytes uint64
}

// Metrics is returned alongside the result regardless of outcome (§4.5).
type Metrics struct {
	DurationMs      int64
	PeakMemoryBytes uint64
}

// Program is one sandboxed unit of work: it must itself honor ctx
// cancellation (the evaluator checks ctx on every Eval call via
// EvalCtx.GoCtx) so Run can return promptly on timeout.
type Program func(ctx context.Context) (evaluator.Outcome, *errs.Error)

// Run executes fn under the given limits. On timeout it waits at most a
// short grace window for fn's goroutine to exit, then returns a timeout
// error either way — fn observes ctx.Done() and unwinds on its own, which the
// evaluator's per-Eval cancellation check guarantees for any Core AST
// program, including pmap/pcalls branches sharing the same context.
func Run(parent context.Context, limits Limits, fn Program) (evaluator.Outcome, *errs.Error, Metrics) {
	if limits.Timeout <= 0 {
		limits.Timeout = DefaultTimeout
	}
	if limits.MaxHeapBytes == 0 {
		limits.MaxHeapBytes = DefaultMaxHeapBytes
	}

	start := time.Now()
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	ctx, cancel := context.WithTimeout(parent, limits.Timeout)
	defer cancel()

	type result struct {
		outcome evaluator.Outcome
		err     *errs.Error
	}
	done := make(chan result, 1)
	go func() {
		o, err := fn(ctx)
		done <- result{o, err}
	}()

	var outcome evaluator.Outcome
	var err *errs.Error
	select {
	case r := <-done:
		outcome, err = r.outcome, r.err
	case <-ctx.Done():
		err = errs.New(errs.Timeout, "execution exceeded %dms", limits.Timeout.Milliseconds())
		// Give fn a short grace window to observe cancellation and unwind
		// before we stop waiting; its goroutine is otherwise abandoned.
		select {
		case r := <-done:
			if r.err != nil && r.err.Reason == errs.Timeout {
				err = r.err
			}
		case <-time.After(50 * time.Millisecond):
		}
	}

	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	peak := after.HeapAlloc
	metrics := Metrics{DurationMs: time.Since(start).Milliseconds(), PeakMemoryBytes: peak}

	if err == nil && limits.MaxHeapBytes > 0 && peak > before.HeapAlloc && peak-before.HeapAlloc > limits.MaxHeapBytes {
		err = errs.New(errs.MemoryExceeded, "heap usage exceeded %d bytes", limits.MaxHeapBytes)
	}
	return outcome, err, metrics
}
