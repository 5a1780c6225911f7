package evaluator

import (
	"strconv"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// BuiltinFunc is the shape of every entry in the builtin library (§4.4). It
// receives the call site's EvalCtx and source node so higher-order builtins
// (map, filter, where, ...) can apply callback values and raise
// well-positioned errors.
type BuiltinFunc func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error)

// BuiltinValue is a named builtin function value, distinct from a
// user-defined Closure so Apply can dispatch without reflection.
type BuiltinValue struct {
	Name string
	Fn   BuiltinFunc
}

func evalCall(node *coreast.CallNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	fn, o, err := evalValue(node.Target, env, ec)
	if err != nil || o != nil {
		return propagate(o, err)
	}
	args := make([]interface{}, 0, len(node.Args))
	for _, a := range node.Args {
		v, o, err := evalValue(a, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		args = append(args, v)
	}
	return Apply(fn, args, ec, node)
}

// Apply invokes a function value (closure, builtin, keyword-as-accessor,
// map-as-function, or set-as-predicate) with already-evaluated args.
func Apply(fn interface{}, args []interface{}, ec *EvalCtx, src coreast.Node) (Outcome, *errs.Error) {
	switch f := fn.(type) {
	case *BuiltinValue:
		v, err := f.Fn(args, ec, src)
		if err != nil {
			return Outcome{}, err
		}
		return ok(v), nil
	case *values.Closure:
		return applyClosure(f, args, ec, src)
	case values.Keyword:
		if len(args) < 1 || len(args) > 2 {
			return Outcome{}, errAt(src, errs.InvalidArity, "keyword-as-function takes a map and an optional default")
		}
		m, isMap := args[0].(*values.Map)
		if !isMap {
			if args[0] == nil {
				return ok(defaultArg(args)), nil
			}
			return Outcome{}, errAt(src, errs.TypeError, "keyword-as-function requires a map argument")
		}
		if v, found := m.Get(f); found {
			return ok(v), nil
		}
		return ok(defaultArg(args)), nil
	case *values.Map:
		if len(args) != 1 {
			return Outcome{}, errAt(src, errs.InvalidArity, "map-as-function takes exactly one key")
		}
		if v, found := f.Get(args[0]); found {
			return ok(v), nil
		}
		return ok(nil), nil
	case *values.Set:
		if len(args) != 1 {
			return Outcome{}, errAt(src, errs.InvalidArity, "set-as-function takes exactly one value")
		}
		if f.Has(args[0]) {
			return ok(args[0]), nil
		}
		return ok(nil), nil
	default:
		return Outcome{}, errAt(src, errs.NotCallable, "value of type %T is not callable", fn)
	}
}

func defaultArg(args []interface{}) interface{} {
	if len(args) == 2 {
		return args[1]
	}
	return nil
}

func applyClosure(f *values.Closure, args []interface{}, ec *EvalCtx, src coreast.Node) (Outcome, *errs.Error) {
	outer, _ := f.Env.(*Environment)
	scope := NewEnclosedEnvironment(outer)
	fixed := f.Params
	variadic := len(fixed) > 0 && fixed[len(fixed)-1].Variadic
	minArgs := len(fixed)
	if variadic {
		minArgs--
	}
	if (!variadic && len(args) != len(fixed)) || (variadic && len(args) < minArgs) {
		return Outcome{}, errAt(src, errs.InvalidArity, "%s expects %s, got %d", closureLabel(f), arityDesc(minArgs, variadic), len(args))
	}
	for i := 0; i < minArgs; i++ {
		pat, _ := fixed[i].Pattern.(coreast.Pattern)
		if err := bindPattern(pat, args[i], scope, ec, src); err != nil {
			return Outcome{}, err
		}
	}
	if variadic {
		rest := append([]interface{}{}, args[minArgs:]...)
		pat, _ := fixed[len(fixed)-1].Pattern.(coreast.Pattern)
		if err := bindPattern(pat, &values.Vector{Items: rest}, scope, ec, src); err != nil {
			return Outcome{}, err
		}
	}
	body, _ := f.Body.(coreast.Node)
	for iter := 0; ; iter++ {
		if iter >= maxLoopIterations {
			return Outcome{}, errAt(src, errs.MaxIterationsExceeded, "function recursion exceeded %d iterations", maxLoopIterations)
		}
		o, err := Eval(body, scope, ec)
		if err != nil {
			return Outcome{}, err
		}
		if o.Kind != OutcomeRecur {
			return o, nil
		}
		if len(o.Args) != len(fixed) && !variadic {
			return Outcome{}, errAt(src, errs.InvalidArity, "recur expects %d argument(s), got %d", len(fixed), len(o.Args))
		}
		next := NewEnclosedEnvironment(outer)
		for i := 0; i < minArgs; i++ {
			pat, _ := fixed[i].Pattern.(coreast.Pattern)
			if err := bindPattern(pat, o.Args[i], next, ec, src); err != nil {
				return Outcome{}, err
			}
		}
		if variadic {
			rest := append([]interface{}{}, o.Args[minArgs:]...)
			pat, _ := fixed[len(fixed)-1].Pattern.(coreast.Pattern)
			if err := bindPattern(pat, &values.Vector{Items: rest}, next, ec, src); err != nil {
				return Outcome{}, err
			}
		}
		scope = next
	}
}

func closureLabel(f *values.Closure) string {
	if f.Name != "" {
		return f.Name
	}
	return "anonymous fn"
}

func arityDesc(min int, variadic bool) string {
	if variadic {
		return "at least " + strconv.Itoa(min) + " argument(s)"
	}
	return strconv.Itoa(min) + " argument(s)"
}
