// Package pipeline wires the parse/analyze/sandbox-eval/memory-contract
// stages into the `run(source, options) -> Step` entry point of spec §6.1,
// following the teacher's own Pipeline/Processor/PipelineContext shape
// (internal/pipeline/pipeline.go, cmd/funxy/main.go's runPipeline): each
// stage reads and writes a shared context, and the pipeline runs every
// stage in order; a stage that finds ctx.Step already set (a prior stage
// settled the outcome) or ctx.Errors non-empty just passes the context
// through unchanged, except FailureProcessor, which turns non-empty
// ctx.Errors into the failed Step when ctx.Step is still unset.
package pipeline

import (
	"context"

	"github.com/andreasronge/ptc-runner-sub009/internal/ast"
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/sandbox"
	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
	"github.com/andreasronge/ptc-runner-sub009/internal/trace"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// Options are the per-call run options of spec §6.2.
type Options struct {
	Ctx            *values.Map
	Memory         *values.Map
	Tools          map[string]evaluator.Tool
	TurnHistory    []interface{}
	Signature      string
	Mode           signature.Mode
	FloatPrecision *int
	TraceID        string
	ParentTraceID  string
	Turns          int
	Limits         sandbox.Limits
	ParentContext  context.Context // sandbox deadline is derived from this; defaults to context.Background()
	FilterContext  bool            // trim Ctx down to statically-referenced keys before running (spec §4.7)
}

// PipelineContext is the shared state threaded through every stage,
// mirroring the teacher's own PipelineContext (source in, diagnostics and
// derived artifacts accumulated stage by stage, final Step out).
type PipelineContext struct {
	Source  string
	Options Options

	Program  *ast.Program
	CoreNode coreast.Node

	Signature *signature.Signature
	InputArgs *values.Map

	Env *evaluator.Environment
	EC  *evaluator.EvalCtx

	EntryMemory *values.Map
	Outcome     evaluator.Outcome
	EvalErr     *errs.Error
	Metrics     sandbox.Metrics

	Errors []*errs.Error
	Step   *trace.Step
}

// Processor is one pipeline stage (grounded on the teacher's
// `Process(*PipelineContext) *PipelineContext` shape).
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is a sequence of stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}

// NewPipelineContext seeds a fresh context for one `run` call, defaulting
// any options a caller left zero.
func NewPipelineContext(source string, opts Options) *PipelineContext {
	if opts.Ctx == nil {
		opts.Ctx = values.NewMap()
	}
	if opts.Memory == nil {
		opts.Memory = values.NewMap()
	}
	if opts.Tools == nil {
		opts.Tools = map[string]evaluator.Tool{}
	}
	if opts.ParentContext == nil {
		opts.ParentContext = context.Background()
	}
	return &PipelineContext{Source: source, Options: opts, EntryMemory: opts.Memory}
}

// Failed reports whether any stage so far recorded a diagnostic that should
// stop the pipeline from proceeding to evaluation.
func (c *PipelineContext) Failed() bool { return len(c.Errors) > 0 }
