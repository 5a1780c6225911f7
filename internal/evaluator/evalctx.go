package evaluator

import (
	"context"
	"sync"

	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// ToolCache is the memo table behind a cacheable tool (spec §6.3). A branch
// snapshot shares the same *ToolCache instance as its parent and every
// sibling branch, so all access is mutex-guarded: pmap/pcalls workers run
// concurrently (internal/evaluator/pmap.go) and a bare Go map would panic
// with a fatal, unrecoverable "concurrent map writes" on simultaneous cache
// fills (spec §5 still holds for everything else a branch touches — Ctx,
// UserNS, Tools — which are read-only once a program starts running).
type ToolCache struct {
	mu    sync.RWMutex
	store map[string]interface{}
}

func NewToolCache() *ToolCache {
	return &ToolCache{store: map[string]interface{}{}}
}

func (c *ToolCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	v, found := c.store[key]
	c.mu.RUnlock()
	return v, found
}

func (c *ToolCache) Set(key string, val interface{}) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

// Snapshot copies the cache's current contents into a plain map, for
// trace serialization (internal/memcontract reads this once evaluation is
// over, when no branch can still be writing).
func (c *ToolCache) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]interface{}, len(c.store))
	for k, v := range c.store {
		out[k] = v
	}
	return out
}

// Tool is one entry of the tool table (spec §6.3).
type Tool struct {
	Fn          func(args *values.Map) (interface{}, error)
	Signature   *signature.Signature
	Cache       bool
	Description string
}

// ToolCall records one invocation for Step.tool_calls.
type ToolCall struct {
	Name       string
	Args       *values.Map
	ResultSize int
	DurationMs int64
	Cached     bool
}

// PmapCall records one pmap/pcalls fan-out for Step.pmap_calls. ID lets a
// trace store correlate this fan-out across turns; per-branch timings are
// not tracked individually (branches share nothing to report through once
// they've joined), only the aggregate duration and branch count.
type PmapCall struct {
	ID         string
	Kind       string // "pmap" or "pcalls"
	Branches   int
	DurationMs int64
}

// ChildStep is an opaque sub-Step attached by a tool that itself ran a
// program; kept as interface{} here so this package need not import
// internal/trace (which itself depends on the evaluator's outcome shape).
type ChildStep struct {
	Value interface{}
}

// EvalCtx is the per-call accumulator threaded through one evaluation
// (spec §4.3's eval_ctx): mutable bookkeeping distinct from the immutable
// Core AST and from the lexical Environment chain.
type EvalCtx struct {
	Ctx       *values.Map
	UserNS    *values.Map
	Tools     map[string]Tool
	ToolCache *ToolCache

	// ValidationMode governs tool-arg/result signature validation (§4.6);
	// zero value is signature.ModeEnabled, the spec's default.
	ValidationMode signature.Mode

	TurnHistory []interface{} // index 0 = *1, 1 = *2, 2 = *3
	Budget      *values.Map

	Journal   *values.Map
	Summaries *values.Map

	Prints    []string
	ToolCalls []ToolCall
	PmapCalls []PmapCall
	ChildSteps []ChildStep

	MaxPrintLength int

	// Suppressed is true while evaluating inside a pmap/pcalls branch or any
	// other nondeterministically-ordered fan-out; println is dropped there
	// (spec §4.3).
	Suppressed bool

	// GoCtx carries the sandbox's wall-clock deadline (spec §4.5); checked
	// on every Eval call. Nil outside a sandboxed run (e.g. in tests).
	GoCtx context.Context
	depth int
}

func NewEvalCtx() *EvalCtx {
	return &EvalCtx{
		Ctx:            values.NewMap(),
		UserNS:         values.NewMap(),
		Tools:          map[string]Tool{},
		ToolCache:      NewToolCache(),
		Journal:        values.NewMap(),
		Summaries:      values.NewMap(),
		MaxPrintLength: 2000,
	}
}

// Snapshot returns a branch-local EvalCtx for a pmap/pcalls worker: a
// read-only view of UserNS/Ctx/Tools and fresh accumulators, so sibling
// branches share nothing mutable (spec §5).
func (ec *EvalCtx) Snapshot() *EvalCtx {
	return &EvalCtx{
		Ctx:            ec.Ctx,
		UserNS:         ec.UserNS,
		Tools:          ec.Tools,
		ToolCache:      ec.ToolCache,
		ValidationMode: ec.ValidationMode,
		TurnHistory:    ec.TurnHistory,
		Budget:         ec.Budget,
		Journal:        ec.Journal,
		Summaries:      ec.Summaries,
		MaxPrintLength: ec.MaxPrintLength,
		Suppressed:     true,
		GoCtx:          ec.GoCtx,
	}
}
