// Package evaluator implements the tree-walking interpreter of spec §4.3:
// it walks Core AST nodes against (ctx, user_ns, tool table, turn_history)
// and yields one of ok/return_signal/fail_signal/error.
package evaluator

import (
	"math/big"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// OutcomeKind discriminates the four evaluator results of §4.3.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeReturn
	OutcomeFail
	OutcomeRecur // internal-only: bubbles to the nearest loop/fn
)

// Outcome is the evaluator's non-error result for one node.
type Outcome struct {
	Kind  OutcomeKind
	Value interface{}
	Args  []interface{} // OutcomeRecur only
}

func ok(v interface{}) Outcome { return Outcome{Kind: OutcomeOK, Value: v} }

const maxLoopIterations = 1000

// maxEvalDepth bounds Go call-stack recursion from non-tail-recursive user
// programs (tail calls go through loop/recur and don't grow this counter).
const maxEvalDepth = 10000

// Eval walks one Core AST node to completion, guarding against runaway
// recursion and honoring the sandbox's cancellation signal (spec §4.5).
func Eval(n coreast.Node, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	ec.depth++
	if ec.depth > maxEvalDepth {
		ec.depth--
		return Outcome{}, errAt(n, errs.MaxIterationsExceeded, "maximum evaluation depth exceeded")
	}
	if ec.GoCtx != nil {
		select {
		case <-ec.GoCtx.Done():
			ec.depth--
			return Outcome{}, errAt(n, errs.Timeout, "execution cancelled: %s", ec.GoCtx.Err())
		default:
		}
	}
	defer func() { ec.depth-- }()
	return evalCore(n, env, ec)
}

func evalCore(n coreast.Node, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	switch node := n.(type) {
	case *coreast.Literal:
		return ok(node.Value), nil
	case *coreast.StringNode:
		return ok(node.Value), nil
	case *coreast.KeywordNode:
		return ok(values.Keyword(node.Name)), nil
	case *coreast.Data:
		v, found := ec.Ctx.Get(values.Keyword(node.Key))
		if !found {
			v, found = ec.Ctx.Get(node.Key)
		}
		if !found {
			return Outcome{}, errAt(n, errs.UnboundVar, "no ctx/data key %q", node.Key)
		}
		return ok(v), nil
	case *coreast.MemoryRef:
		v, found := ec.UserNS.Get(node.Name)
		if !found {
			return ok(nil), nil
		}
		return ok(v), nil
	case *coreast.Var:
		return evalVar(node, env, ec)
	case *coreast.VectorNode:
		return evalVector(node, env, ec)
	case *coreast.SetNode:
		return evalSet(node, env, ec)
	case *coreast.MapNode:
		return evalMap(node, env, ec)
	case *coreast.LetNode:
		return evalLet(node, env, ec)
	case *coreast.FnNode:
		return ok(&values.Closure{Name: node.Name, Params: toValueParams(node.Params), Body: node.Body, Env: env}), nil
	case *coreast.CallNode:
		return evalCall(node, env, ec)
	case *coreast.ToolCallNode:
		return evalToolCall(node, env, ec)
	case *coreast.IfNode:
		return evalIf(node, env, ec)
	case *coreast.DoNode:
		return evalDo(node.Exprs, env, ec)
	case *coreast.AndNode:
		return evalAnd(node, env, ec)
	case *coreast.OrNode:
		return evalOr(node, env, ec)
	case *coreast.DefNode:
		return evalDef(node, env, ec)
	case *coreast.RecurNode:
		return evalRecur(node, env, ec)
	case *coreast.LoopNode:
		return evalLoop(node, env, ec)
	case *coreast.ReturnNode:
		v, outcome, err := evalValue(node.Value, env, ec)
		if err != nil || outcome != nil {
			return propagate(outcome, err)
		}
		return Outcome{Kind: OutcomeReturn, Value: v}, nil
	case *coreast.FailNode:
		v, outcome, err := evalValue(node.Value, env, ec)
		if err != nil || outcome != nil {
			return propagate(outcome, err)
		}
		return Outcome{Kind: OutcomeFail, Value: v}, nil
	case *coreast.WhereNode:
		return evalWhere(node, env, ec)
	case *coreast.PredCombinatorNode:
		return evalPredCombinator(node, env, ec)
	case *coreast.JuxtNode:
		return evalJuxt(node, env, ec)
	case *coreast.PmapNode:
		return evalPmap(node, env, ec)
	case *coreast.PcallsNode:
		return evalPcalls(node, env, ec)
	case *coreast.TaskNode:
		return evalDo([]coreast.Node{node.Body}, env, ec)
	case *coreast.TaskDynamicNode:
		return evalDo([]coreast.Node{node.Body}, env, ec)
	case *coreast.StepDoneNode:
		return evalStepDone(node, env, ec)
	case *coreast.TaskResetNode:
		ec.Journal = ec.Journal.Dissoc(values.Keyword(node.ID))
		return ok(nil), nil
	case *coreast.BudgetRemainingNode:
		if ec.Budget == nil {
			return ok(nil), nil
		}
		return ok(ec.Budget), nil
	case *coreast.TurnHistoryNode:
		idx := node.N - 1
		if idx < 0 || idx >= len(ec.TurnHistory) {
			return ok(nil), nil
		}
		return ok(ec.TurnHistory[idx]), nil
	case *coreast.VarRefNode:
		return ok(&values.VarReference{Name: node.Name}), nil
	default:
		return Outcome{}, errAt(n, errs.RuntimeError, "unhandled core ast node %T", n)
	}
}

func propagate(o *Outcome, err *errs.Error) (Outcome, *errs.Error) {
	if err != nil {
		return Outcome{}, err
	}
	return *o, nil
}

// evalValue evaluates n and, if the outcome is not plain OK, returns it as
// a non-nil *Outcome for the caller to bubble unchanged.
func evalValue(n coreast.Node, env *Environment, ec *EvalCtx) (interface{}, *Outcome, *errs.Error) {
	o, err := Eval(n, env, ec)
	if err != nil {
		return nil, nil, err
	}
	if o.Kind != OutcomeOK {
		return nil, &o, nil
	}
	return o.Value, nil, nil
}

func errAt(n coreast.Node, reason errs.Reason, format string, args ...interface{}) *errs.Error {
	p := n.Position()
	return errs.New(reason, format, args...).At(p.Line, p.Column)
}

func evalVar(node *coreast.Var, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	if v, found := env.Get(node.Name); found {
		return ok(v), nil
	}
	if v, found := ec.UserNS.Get(node.Name); found {
		return ok(v), nil
	}
	if b, found := LookupBuiltin(node.Name); found {
		return ok(b), nil
	}
	return Outcome{}, errAt(node, errs.UnboundVar, "unbound symbol %q", node.Name)
}

func evalVector(node *coreast.VectorNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	items := make([]interface{}, 0, len(node.Children))
	for _, c := range node.Children {
		v, o, err := evalValue(c, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		items = append(items, v)
	}
	return ok(&values.Vector{Items: items}), nil
}

func evalSet(node *coreast.SetNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	s := values.NewSet()
	for _, c := range node.Children {
		v, o, err := evalValue(c, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		s = s.Conj(v)
	}
	return ok(s), nil
}

func evalMap(node *coreast.MapNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	m := values.NewMap()
	for _, p := range node.Pairs {
		k, o, err := evalValue(p.Key, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		if err := checkMapKey(p.Key, k); err != nil {
			return Outcome{}, err
		}
		v, o, err := evalValue(p.Value, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		m = m.Assoc(k, v)
	}
	return ok(m), nil
}

func checkMapKey(n coreast.Node, k interface{}) *errs.Error {
	switch k.(type) {
	case string, values.Keyword:
		return nil
	default:
		return errAt(n, errs.ValidationError, "map keys must be a keyword or string")
	}
}

func evalDo(exprs []coreast.Node, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	if len(exprs) == 0 {
		return ok(nil), nil
	}
	for _, e := range exprs[:len(exprs)-1] {
		o, err := Eval(e, env, ec)
		if err != nil {
			return Outcome{}, err
		}
		if o.Kind != OutcomeOK {
			return o, nil
		}
	}
	return Eval(exprs[len(exprs)-1], env, ec)
}

func evalIf(node *coreast.IfNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	v, o, err := evalValue(node.Cond, env, ec)
	if err != nil || o != nil {
		return propagate(o, err)
	}
	if values.IsTruthy(v) {
		return Eval(node.Then, env, ec)
	}
	return Eval(node.Else, env, ec)
}

func evalAnd(node *coreast.AndNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	var last interface{} = true
	for _, e := range node.Exprs {
		v, o, err := evalValue(e, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		last = v
		if !values.IsTruthy(v) {
			return ok(v), nil
		}
	}
	return ok(last), nil
}

func evalOr(node *coreast.OrNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	var last interface{}
	for _, e := range node.Exprs {
		v, o, err := evalValue(e, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		last = v
		if values.IsTruthy(v) {
			return ok(v), nil
		}
	}
	return ok(last), nil
}

func evalDef(node *coreast.DefNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	if _, isBuiltin := LookupBuiltin(node.Name); isBuiltin {
		return Outcome{}, errAt(node, errs.AnalysisError, "def cannot shadow builtin %q", node.Name)
	}
	if node.Name == "nil" || node.Name == "true" || node.Name == "false" {
		return Outcome{}, errAt(node, errs.AnalysisError, "cannot rebind %q", node.Name)
	}
	v, o, err := evalValue(node.Value, env, ec)
	if err != nil || o != nil {
		return propagate(o, err)
	}
	if cl, isClosure := v.(*values.Closure); isClosure && cl.Name == "" {
		cl.Name = node.Name
	}
	ec.UserNS = ec.UserNS.Assoc(node.Name, v)
	return ok(&values.VarReference{Name: node.Name}), nil
}

func evalRecur(node *coreast.RecurNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	args := make([]interface{}, 0, len(node.Args))
	for _, a := range node.Args {
		v, o, err := evalValue(a, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		args = append(args, v)
	}
	return Outcome{Kind: OutcomeRecur, Args: args}, nil
}

func evalLet(node *coreast.LetNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	scope := NewEnclosedEnvironment(env)
	for _, b := range node.Bindings {
		v, o, err := evalValue(b.Value, scope, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		if err := bindPattern(b.Pattern, v, scope, ec, b.Value); err != nil {
			return Outcome{}, err
		}
	}
	return Eval(node.Body, scope, ec)
}

func evalLoop(node *coreast.LoopNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	scope := NewEnclosedEnvironment(env)
	names := make([]string, len(node.Bindings))
	for i, b := range node.Bindings {
		v, o, err := evalValue(b.Value, scope, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		if err := bindPattern(b.Pattern, v, scope, ec, b.Value); err != nil {
			return Outcome{}, err
		}
		names[i] = firstBoundName(b.Pattern)
	}
	for iter := 0; ; iter++ {
		if iter >= maxLoopIterations {
			return Outcome{}, errAt(node, errs.MaxIterationsExceeded, "loop exceeded %d iterations", maxLoopIterations)
		}
		o, err := Eval(node.Body, scope, ec)
		if err != nil {
			return Outcome{}, err
		}
		if o.Kind != OutcomeRecur {
			return o, nil
		}
		if len(o.Args) != len(names) {
			return Outcome{}, errAt(node, errs.InvalidArity, "recur expects %d argument(s), got %d", len(names), len(o.Args))
		}
		next := NewEnclosedEnvironment(env)
		for i, name := range names {
			next.Set(name, o.Args[i])
		}
		scope = next
	}
}

func firstBoundName(p coreast.Pattern) string {
	if p.Kind == coreast.PatVar {
		return p.Name
	}
	return "_"
}

func evalStepDone(node *coreast.StepDoneNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	v, o, err := evalValue(node.Summary, env, ec)
	if err != nil || o != nil {
		return propagate(o, err)
	}
	ec.Summaries = ec.Summaries.Assoc(values.Keyword(node.ID), v)
	return ok(nil), nil
}

func toValueParams(params []coreast.Param) []values.Param {
	out := make([]values.Param, len(params))
	for i, p := range params {
		out[i] = values.Param{Pattern: p.Pattern, Variadic: p.Variadic}
	}
	return out
}

func bigFromInt(i int) *big.Int { return big.NewInt(int64(i)) }
