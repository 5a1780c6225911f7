// Package memcontract applies the memory contract of spec §4.8: it maps an
// evaluator outcome (value, return signal, fail signal, or error) onto a
// trace.Step, deciding what user_ns to publish and rounding float precision
// on the way out. It is a pure function of (outcome, entry memory, eval
// context, usage) — no I/O, no further evaluation.
package memcontract

import (
	"math"

	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/printer"
	"github.com/andreasronge/ptc-runner-sub009/internal/sandbox"
	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
	"github.com/andreasronge/ptc-runner-sub009/internal/trace"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// Options carries the run-level settings that shape Step construction.
type Options struct {
	TraceID        string
	ParentTraceID  string
	Turns          int
	FloatPrecision *int
	Signature      *signature.Signature
}

// Build turns one evaluator run into a Step. entryMemory is user_ns as it
// stood at call entry, used for rollback on fail/error (spec §3.5's
// transactional memory invariant).
func Build(outcome evaluator.Outcome, evalErr *errs.Error, entryMemory *values.Map, ec *evaluator.EvalCtx, usage sandbox.Metrics, opts Options) *trace.Step {
	step := &trace.Step{
		Version:       trace.FormatVersion,
		TraceID:       opts.TraceID,
		ParentTraceID: opts.ParentTraceID,
		Turns:         opts.Turns,
		Usage:         trace.Usage{DurationMs: usage.DurationMs, MemoryBytes: usage.PeakMemoryBytes},
		Prints:        ec.Prints,
		ToolCalls:     trace.ToolCallsFromEvalCtx(ec.ToolCalls),
		PmapCalls:     trace.PmapCallsFromEvalCtx(ec.PmapCalls),
	}
	if opts.Signature != nil {
		step.Signature = opts.Signature.Render()
	}
	if ec.Journal != nil {
		step.Journal = trace.ToJSON(ec.Journal)
	}
	if ec.Summaries != nil {
		step.Summaries = trace.ToJSON(ec.Summaries)
	}
	if ec.ToolCache != nil {
		step.ToolCache = ec.ToolCache.Snapshot()
	}

	if evalErr != nil {
		step.Fail = &trace.Fail{Reason: string(evalErr.Reason), Message: evalErr.Error()}
		step.Memory = trace.ToJSON(entryMemory)
		return step
	}

	if outcome.Kind == evaluator.OutcomeFail {
		step.Fail = failFromValue(outcome.Value)
		step.Memory = trace.ToJSON(entryMemory)
		return step
	}

	// Both a plain value and an explicit `return` publish the mutated
	// user_ns and the (possibly float-rounded, signature-checked) value.
	retVal := outcome.Value
	if opts.FloatPrecision != nil {
		retVal = roundFloats(retVal, *opts.FloatPrecision)
	}
	if opts.Signature != nil {
		if verr := signature.ValidateOutput(opts.Signature, retVal); verr != nil {
			step.Fail = &trace.Fail{Reason: string(verr.Reason), Message: verr.Error()}
			step.Memory = trace.ToJSON(entryMemory)
			return step
		}
	}
	visible := retVal
	if opts.Signature != nil {
		visible = signature.StripFirewalled(opts.Signature.Return, retVal)
	}
	step.Return = trace.ToJSON(visible)
	step.Memory = trace.ToJSON(ec.UserNS)
	return step
}

// failFromValue implements §4.8's `fail` unwrap: reason/message default to
// :runtime and the printed value when the failed value isn't a map carrying
// them.
func failFromValue(v interface{}) *trace.Fail {
	reason := string(errs.RuntimeError)
	message := printer.Print(v)
	if m, ok := v.(*values.Map); ok {
		if r, found := m.Get(values.Keyword("reason")); found {
			switch rv := r.(type) {
			case values.Keyword:
				reason = string(rv)
			case string:
				reason = rv
			}
		}
		if msg, found := m.Get(values.Keyword("message")); found {
			if ms, ok := msg.(string); ok {
				message = ms
			}
		}
	}
	return &trace.Fail{Reason: reason, Message: message}
}

// roundFloats implements §4.8's float_precision rounding: vectors and maps
// are traversed recursively; sets, closures, regexes, and var-references
// pass through untouched.
func roundFloats(v interface{}, n int) interface{} {
	switch t := v.(type) {
	case float64:
		mult := math.Pow(10, float64(n))
		return math.Round(t*mult) / mult
	case *values.Vector:
		out := make([]interface{}, len(t.Items))
		for i, it := range t.Items {
			out[i] = roundFloats(it, n)
		}
		return &values.Vector{Items: out}
	case *values.Map:
		out := t
		for _, e := range t.Entries {
			out = out.Assoc(e.Key, roundFloats(e.Value, n))
		}
		return out
	default:
		return v
	}
}
