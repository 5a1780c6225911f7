package pipeline_test

import (
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/analyzer"
	"github.com/andreasronge/ptc-runner-sub009/internal/ctxfilter"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/parser"
	"github.com/andreasronge/ptc-runner-sub009/internal/pipeline"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func run(source string, opts pipeline.Options) *pipeline.PipelineContext {
	p := pipeline.New(
		parser.Processor{},
		analyzer.NewProcessor(),
		ctxfilter.Processor{},
		pipeline.SignatureProcessor{},
		pipeline.EvalProcessor{},
		pipeline.FailureProcessor{},
	)
	return p.Run(pipeline.NewPipelineContext(source, opts))
}

func TestPipelineRunsPlainValueToCompletion(t *testing.T) {
	out := run("(+ 1 2 3)", pipeline.Options{})
	if out.Step == nil {
		t.Fatal("Step = nil, want a settled Step")
	}
	if out.Step.Fail != nil {
		t.Fatalf("Fail = %+v, want nil", out.Step.Fail)
	}
	if out.Step.Return != "6" {
		t.Errorf("Return = %v, want %q", out.Step.Return, "6")
	}
}

func TestPipelineParseErrorStopsBeforeEval(t *testing.T) {
	out := run("(+ 1 2", pipeline.Options{})
	if out.Step == nil {
		t.Fatal("Step = nil, want a settled Step for a parse error")
	}
	if out.Step.Fail == nil {
		t.Fatal("Fail = nil, want a parse_error fail")
	}
	if out.Step.Fail.Reason != string(errs.ParseError) {
		t.Errorf("Fail.Reason = %q, want %q", out.Step.Fail.Reason, errs.ParseError)
	}
	if out.Env != nil {
		t.Error("Env was set, want the eval stage to have been skipped entirely")
	}
}

func TestPipelineBadSignatureStopsBeforeEval(t *testing.T) {
	out := run("(+ 1 2)", pipeline.Options{Signature: "not a valid signature"})
	if out.Step == nil || out.Step.Fail == nil {
		t.Fatal("want a settled Step with a Fail for an unparseable signature")
	}
	if out.Env != nil {
		t.Error("Env was set, want the signature failure to have short-circuited evaluation")
	}
}

func TestPipelineFilterContextDropsUnusedCollectionsButKeepsScalars(t *testing.T) {
	out := run("ctx/name", pipeline.Options{
		Ctx: values.NewMap().
			Assoc("name", "ada").
			Assoc("unused_scalar", "gone?").
			Assoc("unused_vector", values.NewVector(1, 2)),
		FilterContext: true,
	})
	if out.Step == nil || out.Step.Fail != nil {
		t.Fatalf("Step = %+v, want a successful Step", out.Step)
	}
	if out.Step.Return != "ada" {
		t.Errorf("Return = %v, want %q", out.Step.Return, "ada")
	}
	if _, found := out.Options.Ctx.Get("unused_vector"); found {
		t.Error("Options.Ctx still has the unused vector, want it trimmed by FilterContext")
	}
	if _, found := out.Options.Ctx.Get("unused_scalar"); !found {
		t.Error("Options.Ctx lost an unreferenced scalar, want scalars always kept per spec §4.7")
	}
	if _, found := out.Options.Ctx.Get("name"); !found {
		t.Error("Options.Ctx lost the referenced key, want it kept by FilterContext")
	}
}

func TestPipelineFailRollsBackMemory(t *testing.T) {
	out := run(`(fail {:reason :not-found :message "nope"})`, pipeline.Options{
		Memory: values.NewMap().Assoc("x", "before"),
	})
	if out.Step == nil || out.Step.Fail == nil || out.Step.Fail.Reason != "not-found" {
		t.Fatalf("Step = %+v, want a not-found Fail", out.Step)
	}
	mem, ok := out.Step.Memory.(map[string]interface{})
	if !ok || mem["x"] != "before" {
		t.Errorf("Memory = %#v, want rollback to entry memory", out.Step.Memory)
	}
}
