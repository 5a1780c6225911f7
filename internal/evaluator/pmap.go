package evaluator

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// evalPmap implements `(pmap f coll)` (spec §4.3/§5): one branch per
// element, each with a snapshot EvalCtx; branch order is unspecified but
// results are assembled in input order; any branch error aborts the whole
// expression. Prints, tool calls and child steps made inside branches are
// discarded with the branch contexts; the parent records one PmapCall (id,
// kind, branch count, total duration) and no per-branch detail.
func evalPmap(node *coreast.PmapNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	fn, o, err := evalValue(node.Fn, env, ec)
	if err != nil || o != nil {
		return propagate(o, err)
	}
	collVal, o, err := evalValue(node.Coll, env, ec)
	if err != nil || o != nil {
		return propagate(o, err)
	}
	items, okSeq := toItems(collVal)
	if !okSeq {
		return Outcome{}, errAt(node, errs.TypeError, "pmap's second argument must be a collection")
	}
	start := time.Now()
	results := make([]interface{}, len(items))
	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			branch := ec.Snapshot()
			o, err := Apply(fn, []interface{}{item}, branch, node)
			if err != nil {
				return err
			}
			if o.Kind != OutcomeOK {
				return errs.New(errs.RuntimeError, "pmap branch signalled return/fail, which is not supported inside pmap")
			}
			results[i] = o.Value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if e, ok := err.(*errs.Error); ok {
			return Outcome{}, e
		}
		return Outcome{}, errs.New(errs.RuntimeError, "%s", err.Error())
	}
	ec.PmapCalls = append(ec.PmapCalls, PmapCall{ID: uuid.NewString(), Kind: "pmap", Branches: len(items), DurationMs: time.Since(start).Milliseconds()})
	return ok(&values.Vector{Items: results}), nil
}

// evalPcalls implements `(pcalls f1 ... fN)`: identical fan-out, but each
// argument is a zero-arity thunk.
func evalPcalls(node *coreast.PcallsNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	fns := make([]interface{}, 0, len(node.Fns))
	for _, f := range node.Fns {
		v, o, err := evalValue(f, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		fns = append(fns, v)
	}
	start := time.Now()
	results := make([]interface{}, len(fns))
	var g errgroup.Group
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			branch := ec.Snapshot()
			o, err := Apply(fn, nil, branch, node)
			if err != nil {
				return err
			}
			if o.Kind != OutcomeOK {
				return errs.New(errs.RuntimeError, "pcalls branch signalled return/fail, which is not supported inside pcalls")
			}
			results[i] = o.Value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if e, ok := err.(*errs.Error); ok {
			return Outcome{}, e
		}
		return Outcome{}, errs.New(errs.RuntimeError, "%s", err.Error())
	}
	ec.PmapCalls = append(ec.PmapCalls, PmapCall{ID: uuid.NewString(), Kind: "pcalls", Branches: len(fns), DurationMs: time.Since(start).Milliseconds()})
	return ok(&values.Vector{Items: results}), nil
}
