package ctxfilter_test

import (
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/analyzer"
	"github.com/andreasronge/ptc-runner-sub009/internal/ctxfilter"
	"github.com/andreasronge/ptc-runner-sub009/internal/parser"
)

func TestCollectFindsDirectCtxKey(t *testing.T) {
	prog, err := parser.Parse("ctx/name")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, aerr := analyzer.New(analyzer.DefaultConfig).Analyze(prog)
	if aerr != nil {
		t.Fatalf("Analyze: %v", aerr)
	}
	keys := ctxfilter.Collect(node)
	if len(keys.Ctx) != 1 || keys.Ctx[0] != "name" {
		t.Errorf("Collect(ctx/name).Ctx = %v, want [name]", keys.Ctx)
	}
}

func TestCollectFindsKeysInsideNestedForms(t *testing.T) {
	prog, err := parser.Parse(`(if ctx/flag (+ ctx/a ctx/b) ctx/c)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, aerr := analyzer.New(analyzer.DefaultConfig).Analyze(prog)
	if aerr != nil {
		t.Fatalf("Analyze: %v", aerr)
	}
	keys := ctxfilter.Collect(node)
	want := map[string]bool{"flag": true, "a": true, "b": true, "c": true}
	if len(keys.Ctx) != len(want) {
		t.Fatalf("Collect found %v, want keys %v", keys.Ctx, want)
	}
	for _, k := range keys.Ctx {
		if !want[k] {
			t.Errorf("unexpected key %q in %v", k, keys.Ctx)
		}
	}
}

func TestCollectDedupesRepeatedKey(t *testing.T) {
	prog, err := parser.Parse(`(+ ctx/a ctx/a ctx/a)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, aerr := analyzer.New(analyzer.DefaultConfig).Analyze(prog)
	if aerr != nil {
		t.Fatalf("Analyze: %v", aerr)
	}
	keys := ctxfilter.Collect(node)
	if len(keys.Ctx) != 1 {
		t.Errorf("Collect(repeated ctx/a).Ctx = %v, want a single entry", keys.Ctx)
	}
}
