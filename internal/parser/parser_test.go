package parser_test

import (
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/ast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/parser"
)

func TestParseAtoms(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		check  func(t *testing.T, n ast.Node)
	}{
		{"nil", "nil", func(t *testing.T, n ast.Node) {
			if _, ok := n.(*ast.NilLit); !ok {
				t.Errorf("got %T, want *ast.NilLit", n)
			}
		}},
		{"true", "true", func(t *testing.T, n ast.Node) {
			b, ok := n.(*ast.BoolLit)
			if !ok || !b.Value {
				t.Errorf("got %#v, want BoolLit{true}", n)
			}
		}},
		{"int", "42", func(t *testing.T, n ast.Node) {
			i, ok := n.(*ast.IntLit)
			if !ok || i.Text != "42" {
				t.Errorf("got %#v, want IntLit{42}", n)
			}
		}},
		{"float", "3.14", func(t *testing.T, n ast.Node) {
			f, ok := n.(*ast.FloatLit)
			if !ok || f.Text != "3.14" {
				t.Errorf("got %#v, want FloatLit{3.14}", n)
			}
		}},
		{"string", `"hi"`, func(t *testing.T, n ast.Node) {
			s, ok := n.(*ast.StringLit)
			if !ok || s.Value != "hi" {
				t.Errorf("got %#v, want StringLit{hi}", n)
			}
		}},
		{"keyword", ":foo", func(t *testing.T, n ast.Node) {
			k, ok := n.(*ast.KeywordLit)
			if !ok || k.Name != "foo" {
				t.Errorf("got %#v, want KeywordLit{foo}", n)
			}
		}},
		{"namespaced symbol", "ctx/name", func(t *testing.T, n ast.Node) {
			s, ok := n.(*ast.Symbol)
			if !ok || s.Namespace != "ctx" || s.Name != "name" {
				t.Errorf("got %#v, want Symbol{ctx, name}", n)
			}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prog, err := parser.Parse(tc.source)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.source, err)
			}
			if len(prog.Forms) != 1 {
				t.Fatalf("Forms = %d, want 1", len(prog.Forms))
			}
			tc.check(t, prog.Forms[0])
		})
	}
}

func TestParseCompoundForms(t *testing.T) {
	prog, err := parser.Parse(`(+ 1 [2 3] {:a 1} #{4})`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	list, ok := prog.Forms[0].(*ast.List)
	if !ok || len(list.Items) != 4 {
		t.Fatalf("got %#v, want a 4-item List", prog.Forms[0])
	}
	if _, ok := list.Items[1].(*ast.Vector); !ok {
		t.Errorf("Items[1] = %T, want *ast.Vector", list.Items[1])
	}
	m, ok := list.Items[2].(*ast.MapLit)
	if !ok || len(m.Keys) != 1 {
		t.Errorf("Items[2] = %#v, want a 1-pair MapLit", list.Items[2])
	}
	if _, ok := list.Items[3].(*ast.SetLit); !ok {
		t.Errorf("Items[3] = %T, want *ast.SetLit", list.Items[3])
	}
}

func TestParseMultipleTopLevelForms(t *testing.T) {
	prog, err := parser.Parse(`1 2 3`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Forms) != 3 {
		t.Fatalf("Forms = %d, want 3", len(prog.Forms))
	}
}

func TestParseUnbalancedParenIsParseError(t *testing.T) {
	_, err := parser.Parse(`(+ 1 2`)
	if err == nil {
		t.Fatal("want a parse_error for an unbalanced '(', got nil")
	}
	if err.Reason != errs.ParseError {
		t.Errorf("Reason = %q, want %q", err.Reason, errs.ParseError)
	}
}

func TestParseOddMapBodyIsParseError(t *testing.T) {
	_, err := parser.Parse(`{:a}`)
	if err == nil {
		t.Fatal("want a parse_error for an odd map body, got nil")
	}
	if err.Reason != errs.ParseError {
		t.Errorf("Reason = %q, want %q", err.Reason, errs.ParseError)
	}
}

func TestParseStrayClosingDelimiterIsParseError(t *testing.T) {
	_, err := parser.Parse(`)`)
	if err == nil {
		t.Fatal("want a parse_error for a stray ')', got nil")
	}
}

func TestParseVarRef(t *testing.T) {
	prog, err := parser.Parse(`#'my-fn`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ref, ok := prog.Forms[0].(*ast.VarRef)
	if !ok || ref.Name != "my-fn" {
		t.Errorf("got %#v, want VarRef{my-fn}", prog.Forms[0])
	}
}

func TestParseLambdaShorthand(t *testing.T) {
	prog, err := parser.Parse(`#(+ % 1)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := prog.Forms[0].(*ast.Lambda); !ok {
		t.Errorf("got %T, want *ast.Lambda", prog.Forms[0])
	}
}

func TestParseNestedLambdaIsParseError(t *testing.T) {
	_, err := parser.Parse(`#(+ 1 #(+ % 1))`)
	if err == nil {
		t.Fatal("want a parse_error for nested #(...), got nil")
	}
}
