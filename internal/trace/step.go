// Package trace implements the Step execution record of spec §3.4/§6.5:
// a JSON-compatible snapshot of one run, versioned so the layout can evolve.
package trace

import (
	"fmt"
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/andreasronge/ptc-runner-sub009/internal/evaluator"
	"github.com/andreasronge/ptc-runner-sub009/internal/printer"
	"github.com/andreasronge/ptc-runner-sub009/internal/sandbox"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// FormatVersion tags the persisted layout so the trace store can evolve it.
const FormatVersion = 1

// Usage is the resource-usage summary attached to every Step regardless of
// outcome (spec §4.5).
type Usage struct {
	DurationMs  int64  `json:"duration_ms"`
	MemoryBytes uint64 `json:"memory_bytes"`
}

// Describe renders usage for CLI/log output.
func (u Usage) Describe() string {
	return fmt.Sprintf("%s ms, %s", humanize.Comma(u.DurationMs), humanize.Bytes(u.MemoryBytes))
}

func usageFromMetrics(m sandbox.Metrics) Usage {
	return Usage{DurationMs: m.DurationMs, MemoryBytes: m.PeakMemoryBytes}
}

// Fail is the {reason, message} pair a `fail` signal or a propagated error
// produces (spec §4.8).
type Fail struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ToolCallRecord is one entry of Step.tool_calls.
type ToolCallRecord struct {
	Name       string      `json:"name"`
	Args       interface{} `json:"args"`
	ResultSize int         `json:"result_size"`
	DurationMs int64       `json:"duration_ms"`
	Cached     bool        `json:"cached"`
}

// PmapCallRecord is one entry of Step.pmap_calls.
type PmapCallRecord struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Branches   int    `json:"branches"`
	DurationMs int64  `json:"duration_ms"`
}

// Step is the result record of one runtime call (spec §3.4).
type Step struct {
	Version int `json:"version"`

	TraceID       string `json:"trace_id"`
	ParentTraceID string `json:"parent_trace_id,omitempty"`
	Turns         int    `json:"turns,omitempty"`

	Return interface{} `json:"return,omitempty"`
	Fail   *Fail       `json:"fail,omitempty"`
	Memory interface{} `json:"memory"`
	Usage  Usage       `json:"usage"`

	Signature string `json:"signature,omitempty"`

	Prints      []string         `json:"prints"`
	ToolCalls   []ToolCallRecord `json:"tool_calls"`
	PmapCalls   []PmapCallRecord `json:"pmap_calls"`
	ChildSteps  []*Step          `json:"child_steps,omitempty"`
	ChildTraces []string         `json:"child_traces,omitempty"`

	Journal   interface{} `json:"journal,omitempty"`
	Summaries interface{} `json:"summaries,omitempty"`
	ToolCache interface{} `json:"tool_cache,omitempty"`

	FieldDescriptions map[string]string `json:"field_descriptions,omitempty"`
}

// NewTraceID mints a fresh trace id for a top-level run.
func NewTraceID() string { return uuid.NewString() }

// ToJSON converts a runtime value into a tree of plain Go types
// (map[string]interface{}, []interface{}, string, float64, bool, nil) that
// encoding/json can serialize directly, satisfying spec §6.5's
// "JSON-compatible record" requirement. Opaque runtime-only values (closure,
// regex, var-reference) render through the printer's placeholder syntax
// since they have no JSON representation of their own.
func ToJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case bool, string, float64:
		return t
	case *big.Int:
		return t.String()
	case values.Keyword:
		return string(t)
	case *values.Vector:
		out := make([]interface{}, len(t.Items))
		for i, it := range t.Items {
			out[i] = ToJSON(it)
		}
		return out
	case *values.Set:
		out := make([]interface{}, len(t.Items))
		for i, it := range t.Items {
			out[i] = ToJSON(it)
		}
		return out
	case *values.Map:
		out := make(map[string]interface{}, len(t.Entries))
		for _, e := range t.Entries {
			out[keyName(e.Key)] = ToJSON(e.Value)
		}
		return out
	case *values.Regex, *values.VarReference, *values.Closure:
		return printer.Print(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func keyName(k interface{}) string {
	switch v := k.(type) {
	case values.Keyword:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToolCallsFromEvalCtx and PmapCallsFromEvalCtx adapt the evaluator's
// bookkeeping slices into their JSON-ready trace form.
func ToolCallsFromEvalCtx(calls []evaluator.ToolCall) []ToolCallRecord {
	out := make([]ToolCallRecord, len(calls))
	for i, c := range calls {
		out[i] = ToolCallRecord{Name: c.Name, Args: ToJSON(c.Args), ResultSize: c.ResultSize, DurationMs: c.DurationMs, Cached: c.Cached}
	}
	return out
}

func PmapCallsFromEvalCtx(calls []evaluator.PmapCall) []PmapCallRecord {
	out := make([]PmapCallRecord, len(calls))
	for i, c := range calls {
		out[i] = PmapCallRecord{ID: c.ID, Kind: c.Kind, Branches: c.Branches, DurationMs: c.DurationMs}
	}
	return out
}
