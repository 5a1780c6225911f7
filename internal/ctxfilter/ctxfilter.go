// Package ctxfilter statically collects every ctx/key and data/key a
// program references (spec §4.7), so a host can trim the context/data maps
// it actually sends down to what the program can ever read, and so the
// template package (internal/template) can list an accurate data inventory
// without invoking the evaluator.
package ctxfilter

import "github.com/andreasronge/ptc-runner-sub009/internal/coreast"

// Keys is the result of a static scan: the distinct ctx/data keys reachable
// from some node, in first-seen order.
type Keys struct {
	Ctx  []string
	seen map[string]bool
}

func newKeys() *Keys { return &Keys{seen: map[string]bool{}} }

func (k *Keys) add(key string) {
	if k.seen[key] {
		return
	}
	k.seen[key] = true
	k.Ctx = append(k.Ctx, key)
}

// Collect walks a Core AST node and returns every distinct ctx/data key
// statically referenced anywhere within it, regardless of which branch of a
// conditional actually runs at eval time.
func Collect(n coreast.Node) *Keys {
	k := newKeys()
	walk(n, k)
	return k
}

func walk(n coreast.Node, k *Keys) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *coreast.Data:
		k.add(v.Key)
	case *coreast.Var, *coreast.MemoryRef, *coreast.Literal, *coreast.StringNode,
		*coreast.KeywordNode, *coreast.VarRefNode, *coreast.TurnHistoryNode,
		*coreast.BudgetRemainingNode, *coreast.TaskResetNode:
		// leaves: nothing to recurse into
	case *coreast.VectorNode:
		for _, c := range v.Children {
			walk(c, k)
		}
	case *coreast.SetNode:
		for _, c := range v.Children {
			walk(c, k)
		}
	case *coreast.MapNode:
		for _, p := range v.Pairs {
			walk(p.Key, k)
			walk(p.Value, k)
		}
	case *coreast.LetNode:
		for _, b := range v.Bindings {
			walk(b.Value, k)
			walkPattern(b.Pattern, k)
		}
		walk(v.Body, k)
	case *coreast.LoopNode:
		for _, b := range v.Bindings {
			walk(b.Value, k)
			walkPattern(b.Pattern, k)
		}
		walk(v.Body, k)
	case *coreast.FnNode:
		for _, p := range v.Params {
			walkPattern(p.Pattern, k)
		}
		walk(v.Body, k)
	case *coreast.CallNode:
		walk(v.Target, k)
		for _, a := range v.Args {
			walk(a, k)
		}
	case *coreast.ToolCallNode:
		walk(v.Args, k)
	case *coreast.IfNode:
		walk(v.Cond, k)
		walk(v.Then, k)
		walk(v.Else, k)
	case *coreast.DoNode:
		for _, e := range v.Exprs {
			walk(e, k)
		}
	case *coreast.AndNode:
		for _, e := range v.Exprs {
			walk(e, k)
		}
	case *coreast.OrNode:
		for _, e := range v.Exprs {
			walk(e, k)
		}
	case *coreast.DefNode:
		walk(v.Value, k)
	case *coreast.RecurNode:
		for _, a := range v.Args {
			walk(a, k)
		}
	case *coreast.ReturnNode:
		walk(v.Value, k)
	case *coreast.FailNode:
		walk(v.Value, k)
	case *coreast.WhereNode:
		for _, f := range v.FieldPath {
			walk(f, k)
		}
		walk(v.Value, k)
	case *coreast.PredCombinatorNode:
		for _, p := range v.Preds {
			walk(p, k)
		}
	case *coreast.JuxtNode:
		for _, f := range v.Fns {
			walk(f, k)
		}
	case *coreast.PmapNode:
		walk(v.Fn, k)
		walk(v.Coll, k)
	case *coreast.PcallsNode:
		for _, f := range v.Fns {
			walk(f, k)
		}
	case *coreast.TaskNode:
		walk(v.Body, k)
	case *coreast.TaskDynamicNode:
		walk(v.IDExpr, k)
		walk(v.Body, k)
	case *coreast.StepDoneNode:
		walk(v.Summary, k)
	}
}

func walkPattern(p coreast.Pattern, k *Keys) {
	switch p.Kind {
	case coreast.PatSeq:
		for _, e := range p.Seq {
			walkPattern(e, k)
		}
	case coreast.PatSeqRest:
		for _, e := range p.Leading {
			walkPattern(e, k)
		}
		if p.Rest != nil {
			walkPattern(*p.Rest, k)
		}
	case coreast.PatMap:
		for _, d := range p.Defaults {
			walk(d, k)
		}
	case coreast.PatAs:
		if p.Inner != nil {
			walkPattern(*p.Inner, k)
		}
	}
}
