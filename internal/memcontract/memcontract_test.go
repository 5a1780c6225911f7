package memcontract_test

import (
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/memcontract"
	"github.com/andreasronge/ptc-runner-sub009/internal/sandbox"
	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func TestBuildPlainValuePublishesMemory(t *testing.T) {
	entry := values.NewMap()
	ec := evaluator.NewEvalCtx()
	ec.UserNS = values.NewMap().Assoc("x", "after")

	step := memcontract.Build(evaluator.Outcome{Kind: evaluator.OutcomeOK, Value: "hello"}, nil, entry, ec, sandbox.Metrics{}, memcontract.Options{})

	if step.Fail != nil {
		t.Fatalf("Fail = %+v, want nil", step.Fail)
	}
	if step.Return != "hello" {
		t.Errorf("Return = %v, want %q", step.Return, "hello")
	}
	mem, ok := step.Memory.(map[string]interface{})
	if !ok || mem["x"] != "after" {
		t.Errorf("Memory = %#v, want the mutated user_ns", step.Memory)
	}
}

func TestBuildReturnSignalSamePathAsPlainValue(t *testing.T) {
	entry := values.NewMap()
	ec := evaluator.NewEvalCtx()
	ec.UserNS = values.NewMap().Assoc("x", "after")

	step := memcontract.Build(evaluator.Outcome{Kind: evaluator.OutcomeReturn, Value: "hello"}, nil, entry, ec, sandbox.Metrics{}, memcontract.Options{})

	if step.Fail != nil || step.Return != "hello" {
		t.Errorf("return signal should behave exactly like a plain value: got Return=%v Fail=%v", step.Return, step.Fail)
	}
}

func TestBuildFailRollsBackMemory(t *testing.T) {
	entry := values.NewMap().Assoc("x", "before")
	ec := evaluator.NewEvalCtx()
	ec.UserNS = values.NewMap().Assoc("x", "mutated-then-discarded")

	failVal := values.NewMap().Assoc(values.Keyword("reason"), values.Keyword("not-found")).Assoc(values.Keyword("message"), "nope")
	step := memcontract.Build(evaluator.Outcome{Kind: evaluator.OutcomeFail, Value: failVal}, nil, entry, ec, sandbox.Metrics{}, memcontract.Options{})

	if step.Fail == nil {
		t.Fatal("Fail = nil, want a Fail record")
	}
	if step.Fail.Reason != "not-found" {
		t.Errorf("Fail.Reason = %q, want %q", step.Fail.Reason, "not-found")
	}
	mem, ok := step.Memory.(map[string]interface{})
	if !ok || mem["x"] != "before" {
		t.Errorf("Memory = %#v, want rollback to entry memory", step.Memory)
	}
}

func TestBuildEvalErrRollsBackMemory(t *testing.T) {
	entry := values.NewMap().Assoc("x", "before")
	ec := evaluator.NewEvalCtx()
	ec.UserNS = values.NewMap().Assoc("x", "mutated-then-discarded")

	evalErr := errs.New(errs.UnboundVar, "unbound: y")
	step := memcontract.Build(evaluator.Outcome{}, evalErr, entry, ec, sandbox.Metrics{}, memcontract.Options{})

	if step.Fail == nil || step.Fail.Reason != string(errs.UnboundVar) {
		t.Fatalf("Fail = %+v, want reason %q", step.Fail, errs.UnboundVar)
	}
	mem, ok := step.Memory.(map[string]interface{})
	if !ok || mem["x"] != "before" {
		t.Errorf("Memory = %#v, want rollback to entry memory", step.Memory)
	}
}

func TestBuildFloatPrecisionRoundsNestedVector(t *testing.T) {
	entry := values.NewMap()
	ec := evaluator.NewEvalCtx()
	prec := 2
	retVal := values.NewVector(1.23456, 2.0)

	step := memcontract.Build(evaluator.Outcome{Kind: evaluator.OutcomeOK, Value: retVal}, nil, entry, ec, sandbox.Metrics{}, memcontract.Options{FloatPrecision: &prec})

	items, ok := step.Return.([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("Return = %#v, want a 2-element slice", step.Return)
	}
	if items[0] != 1.23 {
		t.Errorf("items[0] = %v, want 1.23", items[0])
	}
}

func TestBuildSignatureViolationOnReturnIsFail(t *testing.T) {
	entry := values.NewMap().Assoc("x", "before")
	ec := evaluator.NewEvalCtx()
	ec.UserNS = values.NewMap().Assoc("x", "mutated-then-discarded")

	sig, err := signature.Parse(":int")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	step := memcontract.Build(evaluator.Outcome{Kind: evaluator.OutcomeOK, Value: "not an int"}, nil, entry, ec, sandbox.Metrics{}, memcontract.Options{Signature: sig})

	if step.Fail == nil {
		t.Fatal("Fail = nil, want a validation failure for a signature-mismatched return")
	}
	mem, ok := step.Memory.(map[string]interface{})
	if !ok || mem["x"] != "before" {
		t.Errorf("Memory = %#v, want rollback on a failed output-signature check", step.Memory)
	}
}
