package sandbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/sandbox"
)

func TestRunReturnsOutcomeWithinBudget(t *testing.T) {
	outcome, err, metrics := sandbox.Run(context.Background(), sandbox.Limits{Timeout: time.Second}, func(ctx context.Context) (evaluator.Outcome, *errs.Error) {
		return evaluator.Outcome{Kind: evaluator.OutcomeOK, Value: "done"}, nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome.Value != "done" {
		t.Errorf("outcome.Value = %v, want %q", outcome.Value, "done")
	}
	if metrics.DurationMs < 0 {
		t.Errorf("DurationMs = %d, want >= 0", metrics.DurationMs)
	}
}

func TestRunTimesOut(t *testing.T) {
	_, err, _ := sandbox.Run(context.Background(), sandbox.Limits{Timeout: 10 * time.Millisecond}, func(ctx context.Context) (evaluator.Outcome, *errs.Error) {
		<-ctx.Done()
		return evaluator.Outcome{}, errs.New(errs.Timeout, "cancelled")
	})
	if err == nil {
		t.Fatal("Run with a program that never returns before the deadline: want a timeout error, got nil")
	}
	if err.Reason != errs.Timeout {
		t.Errorf("err.Reason = %q, want %q", err.Reason, errs.Timeout)
	}
}

func TestRunDefaultsAppliedWhenZero(t *testing.T) {
	_, err, _ := sandbox.Run(context.Background(), sandbox.Limits{}, func(ctx context.Context) (evaluator.Outcome, *errs.Error) {
		return evaluator.Outcome{Kind: evaluator.OutcomeOK, Value: 1}, nil
	})
	if err != nil {
		t.Fatalf("Run with zero-value Limits should fall back to sandbox defaults, got error: %v", err)
	}
}

func TestRunPropagatesProgramError(t *testing.T) {
	progErr := errs.New(errs.ArithmeticError, "divide by zero")
	_, err, _ := sandbox.Run(context.Background(), sandbox.Limits{Timeout: time.Second}, func(ctx context.Context) (evaluator.Outcome, *errs.Error) {
		return evaluator.Outcome{}, progErr
	})
	if err != progErr {
		t.Errorf("Run did not propagate the program's own error: got %v, want %v", err, progErr)
	}
}
