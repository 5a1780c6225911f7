package printer_test

import (
	"math/big"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/printer"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func TestPrintScalars(t *testing.T) {
	testCases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, "nil"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"string", "hi", `"hi"`},
		{"keyword", values.Keyword("foo"), ":foo"},
		{"int", big.NewInt(42), "42"},
		{"float", 1.5, "1.5"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := printer.Print(tc.in); got != tc.want {
				t.Errorf("Print(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPrintVector(t *testing.T) {
	v := values.NewVector(big.NewInt(1), big.NewInt(2))
	if got := printer.Print(v); got != "[1 2]" {
		t.Errorf("Print(vector) = %q, want [1 2]", got)
	}
}

func TestPrintMap(t *testing.T) {
	m := values.NewMap().Assoc(values.Keyword("a"), big.NewInt(1))
	if got := printer.Print(m); got != "{:a 1}" {
		t.Errorf("Print(map) = %q, want {:a 1}", got)
	}
}

func TestPrintSet(t *testing.T) {
	s := values.NewSet().Conj(big.NewInt(1))
	if got := printer.Print(s); got != "#{1}" {
		t.Errorf("Print(set) = %q, want #{1}", got)
	}
}

func TestPrintVarReference(t *testing.T) {
	v := &values.VarReference{Name: "my-fn"}
	if got := printer.Print(v); got != "#'my-fn" {
		t.Errorf("Print(VarReference) = %q, want #'my-fn", got)
	}
}

func TestPrintClosureNamedAndAnonymous(t *testing.T) {
	named := &values.Closure{Name: "add1"}
	if got := printer.Print(named); got != "#fn[add1]" {
		t.Errorf("Print(named closure) = %q, want #fn[add1]", got)
	}
	anon := &values.Closure{}
	if got := printer.Print(anon); got != "#fn[anonymous]" {
		t.Errorf("Print(anonymous closure) = %q, want #fn[anonymous]", got)
	}
}

func TestPrintNestedCollections(t *testing.T) {
	v := values.NewVector(values.NewVector(big.NewInt(1)), values.Keyword("x"))
	if got := printer.Print(v); got != `[[1] :x]` {
		t.Errorf("Print(nested) = %q, want [[1] :x]", got)
	}
}
