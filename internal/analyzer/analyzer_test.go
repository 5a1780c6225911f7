package analyzer_test

import (
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/analyzer"
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/parser"
)

func analyze(t *testing.T, source string) (coreast.Node, *errs.Error) {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return analyzer.New(analyzer.DefaultConfig).Analyze(prog)
}

func evalResult(t *testing.T, source string) evaluator.Outcome {
	t.Helper()
	node, err := analyze(t, source)
	if err != nil {
		t.Fatalf("Analyze(%q): %v", source, err)
	}
	o, eerr := evaluator.Eval(node, evaluator.NewEnvironment(), evaluator.NewEvalCtx())
	if eerr != nil {
		t.Fatalf("Eval(%q): %v", source, eerr)
	}
	return o
}

func TestAnalyzeMultipleFormsWrapInImplicitDo(t *testing.T) {
	node, err := analyze(t, "1 2 3")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	do, ok := node.(*coreast.DoNode)
	if !ok || len(do.Exprs) != 3 {
		t.Fatalf("got %#v, want a 3-expr DoNode", node)
	}
}

func TestAnalyzeSingleFormIsNotWrapped(t *testing.T) {
	node, err := analyze(t, "1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, ok := node.(*coreast.DoNode); ok {
		t.Error("a single top-level form should not be wrapped in an implicit do")
	}
}

func TestAnalyzeNamespacedSymbols(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		check  func(t *testing.T, n coreast.Node)
	}{
		{"ctx", "ctx/name", func(t *testing.T, n coreast.Node) {
			d, ok := n.(*coreast.Data)
			if !ok || d.Key != "name" {
				t.Errorf("got %#v, want Data{name}", n)
			}
		}},
		{"data", "data/name", func(t *testing.T, n coreast.Node) {
			d, ok := n.(*coreast.Data)
			if !ok || d.Key != "name" {
				t.Errorf("got %#v, want Data{name}", n)
			}
		}},
		{"memory", "memory/x", func(t *testing.T, n coreast.Node) {
			m, ok := n.(*coreast.MemoryRef)
			if !ok || m.Name != "x" {
				t.Errorf("got %#v, want MemoryRef{x}", n)
			}
		}},
		{"budget-remaining", "budget/remaining", func(t *testing.T, n coreast.Node) {
			if _, ok := n.(*coreast.BudgetRemainingNode); !ok {
				t.Errorf("got %T, want *coreast.BudgetRemainingNode", n)
			}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node, err := analyze(t, tc.source)
			if err != nil {
				t.Fatalf("Analyze(%q): %v", tc.source, err)
			}
			tc.check(t, node)
		})
	}
}

func TestAnalyzeWhenDesugarsToIf(t *testing.T) {
	o := evalResult(t, `(when true 42)`)
	if o.Value.(interface{ String() string }).String() != "42" {
		t.Errorf("Value = %v, want 42", o.Value)
	}
	o = evalResult(t, `(when false 42)`)
	if o.Value != nil {
		t.Errorf("Value = %v, want nil", o.Value)
	}
}

func TestAnalyzeCondPicksFirstTrueClause(t *testing.T) {
	o := evalResult(t, `(cond false 1 true 2 :else 3)`)
	if o.Value.(interface{ String() string }).String() != "2" {
		t.Errorf("Value = %v, want 2", o.Value)
	}
}

func TestAnalyzeCondFallsThroughToElse(t *testing.T) {
	o := evalResult(t, `(cond false 1 false 2 :else 3)`)
	if o.Value.(interface{ String() string }).String() != "3" {
		t.Errorf("Value = %v, want 3", o.Value)
	}
}

func TestAnalyzeIfLetBindsWhenTruthy(t *testing.T) {
	o := evalResult(t, `(if-let [x 5] (+ x 1) -1)`)
	if o.Value.(interface{ String() string }).String() != "6" {
		t.Errorf("Value = %v, want 6", o.Value)
	}
}

func TestAnalyzeIfLetFallsBackWhenFalsy(t *testing.T) {
	o := evalResult(t, `(if-let [x false] "yes" "no")`)
	if o.Value != "no" {
		t.Errorf("Value = %v, want no", o.Value)
	}
}

func TestAnalyzeWhenLetBindsWhenTruthy(t *testing.T) {
	o := evalResult(t, `(when-let [x 5] (+ x 1))`)
	if o.Value.(interface{ String() string }).String() != "6" {
		t.Errorf("Value = %v, want 6", o.Value)
	}
}

func TestAnalyzeDefnDefinesACallableFunction(t *testing.T) {
	o := evalResult(t, `(do (defn add1 [x] (+ x 1)) (add1 9))`)
	if o.Value.(interface{ String() string }).String() != "10" {
		t.Errorf("Value = %v, want 10", o.Value)
	}
}

func TestAnalyzeUnknownSpecialFormArityIsAnalysisError(t *testing.T) {
	_, err := analyze(t, `(if-let [x 5])`)
	if err == nil {
		t.Fatal("want an analysis_error for a malformed if-let, got nil")
	}
	if err.Reason != errs.AnalysisError {
		t.Errorf("Reason = %q, want %q", err.Reason, errs.AnalysisError)
	}
}
