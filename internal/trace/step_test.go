package trace_test

import (
	"math/big"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/trace"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func TestToJSONScalars(t *testing.T) {
	testCases := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "hi", "hi"},
		{"float64", 1.5, 1.5},
		{"big.Int becomes string", big.NewInt(6), "6"},
		{"keyword becomes string", values.Keyword("foo"), "foo"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := trace.ToJSON(tc.in)
			if got != tc.want {
				t.Errorf("ToJSON(%v) = %v (%T), want %v (%T)", tc.in, got, got, tc.want, tc.want)
			}
		})
	}
}

func TestToJSONVectorOfInts(t *testing.T) {
	v := values.NewVector(big.NewInt(1), big.NewInt(2))
	got, ok := trace.ToJSON(v).([]interface{})
	if !ok || len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("ToJSON(vector) = %#v, want [\"1\" \"2\"]", got)
	}
}

func TestToJSONMapKeyedByPlainString(t *testing.T) {
	m := values.NewMap().Assoc(values.Keyword("name"), "ada")
	got, ok := trace.ToJSON(m).(map[string]interface{})
	if !ok || got["name"] != "ada" {
		t.Errorf("ToJSON(map) = %#v, want {name: ada}", got)
	}
}

func TestToJSONSetBecomesSlice(t *testing.T) {
	s := values.NewSet().Conj("a")
	got, ok := trace.ToJSON(s).([]interface{})
	if !ok || len(got) != 1 || got[0] != "a" {
		t.Errorf("ToJSON(set) = %#v, want [\"a\"]", got)
	}
}

func TestToJSONClosureRendersPlaceholder(t *testing.T) {
	cl := &values.Closure{Name: "add1"}
	got, ok := trace.ToJSON(cl).(string)
	if !ok || got == "" {
		t.Errorf("ToJSON(closure) = %#v, want a non-empty placeholder string", got)
	}
}

func TestToolCallsFromEvalCtxConvertsArgs(t *testing.T) {
	calls := []evaluator.ToolCall{
		{Name: "lookup", Args: values.NewMap().Assoc("id", big.NewInt(1)), ResultSize: 10, DurationMs: 5},
	}
	out := trace.ToolCallsFromEvalCtx(calls)
	if len(out) != 1 || out[0].Name != "lookup" {
		t.Fatalf("got %#v, want one lookup record", out)
	}
	args, ok := out[0].Args.(map[string]interface{})
	if !ok || args["id"] != "1" {
		t.Errorf("Args = %#v, want {id: \"1\"}", out[0].Args)
	}
}

func TestPmapCallsFromEvalCtx(t *testing.T) {
	calls := []evaluator.PmapCall{{ID: "p1", Kind: "pmap", Branches: 3, DurationMs: 9}}
	out := trace.PmapCallsFromEvalCtx(calls)
	if len(out) != 1 || out[0].Branches != 3 {
		t.Errorf("got %#v, want one record with 3 branches", out)
	}
}

func TestNewTraceIDIsUnique(t *testing.T) {
	a := trace.NewTraceID()
	b := trace.NewTraceID()
	if a == b {
		t.Error("NewTraceID() returned the same id twice")
	}
}
