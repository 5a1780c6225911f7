// Package ptclisp is the public embedding API (spec §6.2), collapsed from
// the teacher's pkg/embed.VM ("small struct wrapping a pipeline, exposing
// Eval/LoadFile") down to the single Run entry point the specification
// calls for: a language with no host bindings or record marshaling needs
// nothing more.
package ptclisp

import (
	"context"
	"time"

	"github.com/andreasronge/ptc-runner-sub009/internal/analyzer"
	"github.com/andreasronge/ptc-runner-sub009/internal/ctxfilter"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/parser"
	"github.com/andreasronge/ptc-runner-sub009/internal/pipeline"
	"github.com/andreasronge/ptc-runner-sub009/internal/sandbox"
	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
	"github.com/andreasronge/ptc-runner-sub009/internal/trace"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// ToolFunc is a host tool's callable (spec §6.3): args arrive JSON-decoded,
// the return value is either a plain value, {ok: value}, or {error: reason},
// expressed here simply as (value, error) since a Go error already carries
// the failure case unambiguously.
type ToolFunc func(args map[string]interface{}) (interface{}, error)

// Tool is one entry of Options.Tools.
type Tool struct {
	Fn          ToolFunc
	Signature   string // e.g. "(id :int) -> {name :string}"
	Cache       bool
	Description string
}

// Options mirrors the run options of spec §6.2. Zero value is a program run
// with empty ctx/memory, no tools, and the sandbox defaults.
type Options struct {
	Ctx            map[string]interface{}
	Memory         map[string]interface{}
	Tools          map[string]Tool
	TurnHistory    []interface{}
	Signature      string
	Mode           signature.Mode
	FloatPrecision *int
	Timeout        time.Duration
	MaxHeapBytes   uint64
	FilterContext  bool
	TraceID        string
	ParentTraceID  string
	Turns          int
	ParentContext  context.Context
}

// Run parses, analyzes, and sandbox-evaluates source, returning the
// resulting Step (spec §3.4) on both success and failure — a failed run is
// communicated through Step.Fail, not a non-nil error. The error return is
// reserved for option-level mistakes (a tool's Signature string doesn't
// parse) that never got far enough to produce a Step at all.
func Run(source string, opts Options) (*trace.Step, error) {
	ctxMap, err := mapToValue(opts.Ctx)
	if err != nil {
		return nil, err
	}
	memMap, err := mapToValue(opts.Memory)
	if err != nil {
		return nil, err
	}

	tools := make(map[string]evaluator.Tool, len(opts.Tools))
	for name, t := range opts.Tools {
		var sig *signature.Signature
		if t.Signature != "" {
			sig, err = signature.Parse(t.Signature)
			if err != nil {
				return nil, err
			}
		}
		fn := t.Fn
		tools[name] = evaluator.Tool{
			Fn: func(args *values.Map) (interface{}, error) {
				goArgs, _ := trace.ToJSON(args).(map[string]interface{})
				result, err := fn(goArgs)
				if err != nil {
					return nil, err
				}
				return ToValue(result)
			},
			Signature:   sig,
			Cache:       t.Cache,
			Description: t.Description,
		}
	}

	traceID := opts.TraceID
	if traceID == "" {
		traceID = trace.NewTraceID()
	}
	parentCtx := opts.ParentContext
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	popts := pipeline.Options{
		Ctx:            ctxMap,
		Memory:         memMap,
		Tools:          tools,
		TurnHistory:    opts.TurnHistory,
		Signature:      opts.Signature,
		Mode:           opts.Mode,
		FloatPrecision: opts.FloatPrecision,
		TraceID:        traceID,
		ParentTraceID:  opts.ParentTraceID,
		Turns:          opts.Turns,
		FilterContext:  opts.FilterContext,
		ParentContext:  parentCtx,
		Limits:         sandbox.Limits{Timeout: opts.Timeout, MaxHeapBytes: opts.MaxHeapBytes},
	}

	pctx := pipeline.NewPipelineContext(source, popts)
	run := pipeline.New(
		parser.Processor{},
		analyzer.NewProcessor(),
		ctxfilter.Processor{},
		pipeline.SignatureProcessor{},
		pipeline.EvalProcessor{},
		pipeline.FailureProcessor{},
	)
	final := run.Run(pctx)
	return final.Step, nil
}
