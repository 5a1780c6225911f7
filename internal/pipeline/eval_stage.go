package pipeline

import (
	"context"

	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/memcontract"
	"github.com/andreasronge/ptc-runner-sub009/internal/sandbox"
	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
)

// SignatureProcessor parses the `signature:` run option once, up front, so a
// malformed signature string surfaces as an analysis_error before the
// program ever runs rather than failing output validation later.
type SignatureProcessor struct{}

func (SignatureProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Options.Signature == "" || ctx.Failed() {
		return ctx
	}
	sig, err := signature.Parse(ctx.Options.Signature)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Signature = sig
	return ctx
}

// EvalProcessor is the sandboxed-evaluation stage of §6.1: it builds the
// root Environment/EvalCtx from the run options, executes the Core AST under
// sandbox.Run, and hands the result to memcontract.Build to settle the Step.
type EvalProcessor struct{}

func (EvalProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.CoreNode == nil || ctx.Failed() {
		return ctx
	}

	env := evaluator.NewEnvironment()
	ec := evaluator.NewEvalCtx()
	ec.Ctx = ctx.Options.Ctx
	ec.UserNS = ctx.Options.Memory
	ec.Tools = ctx.Options.Tools
	ec.TurnHistory = ctx.Options.TurnHistory
	ec.ValidationMode = ctx.Options.Mode
	ctx.Env = env
	ctx.EC = ec

	program := func(goCtx context.Context) (evaluator.Outcome, *errs.Error) {
		ec.GoCtx = goCtx
		return evaluator.Eval(ctx.CoreNode, env, ec)
	}
	outcome, evalErr, metrics := sandbox.Run(ctx.Options.ParentContext, ctx.Options.Limits, program)
	ctx.Outcome = outcome
	ctx.EvalErr = evalErr
	ctx.Metrics = metrics

	ctx.Step = memcontract.Build(ctx.Outcome, ctx.EvalErr, ctx.EntryMemory, ec, metrics, memcontract.Options{
		TraceID:        ctx.Options.TraceID,
		ParentTraceID:  ctx.Options.ParentTraceID,
		Turns:          ctx.Options.Turns,
		FloatPrecision: ctx.Options.FloatPrecision,
		Signature:      ctx.Signature,
	})
	return ctx
}

// FailureProcessor settles a Step for programs that never reached
// evaluation: a parse_error or analysis_error from an earlier stage. It runs
// last and only acts if no stage has produced a Step yet.
type FailureProcessor struct{}

func (FailureProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Step != nil || !ctx.Failed() {
		return ctx
	}
	first := ctx.Errors[0]
	ctx.Step = memcontract.Build(evaluator.Outcome{}, first, ctx.EntryMemory, evaluator.NewEvalCtx(), ctx.Metrics, memcontract.Options{
		TraceID:       ctx.Options.TraceID,
		ParentTraceID: ctx.Options.ParentTraceID,
		Turns:         ctx.Options.Turns,
	})
	return ctx
}
