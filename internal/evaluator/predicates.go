package evaluator

import (
	"math/big"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func typePred(name string, fn func(v interface{}) bool) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, name, "1", len(args))
		}
		return fn(args[0]), nil
	}
}

func init() {
	register("nil?", typePred("nil?", func(v interface{}) bool { return v == nil }))
	register("some?", typePred("some?", func(v interface{}) bool { return v != nil }))
	register("boolean?", typePred("boolean?", func(v interface{}) bool { _, ok := v.(bool); return ok }))
	register("number?", typePred("number?", func(v interface{}) bool { return isNumber(v) }))
	register("string?", typePred("string?", func(v interface{}) bool { _, ok := v.(string); return ok }))
	register("char?", typePred("char?", func(v interface{}) bool {
		s, ok := v.(string)
		return ok && len([]rune(s)) == 1
	}))
	register("keyword?", typePred("keyword?", func(v interface{}) bool { _, ok := v.(values.Keyword); return ok }))
	register("vector?", typePred("vector?", func(v interface{}) bool { _, ok := v.(*values.Vector); return ok }))
	register("map?", typePred("map?", func(v interface{}) bool { _, ok := v.(*values.Map); return ok }))
	register("set?", typePred("set?", func(v interface{}) bool { _, ok := v.(*values.Set); return ok }))
	register("coll?", typePred("coll?", func(v interface{}) bool { _, ok := v.(*values.Vector); return ok }))
	register("regex?", typePred("regex?", func(v interface{}) bool { _, ok := v.(*values.Regex); return ok }))

	register("zero?", intPred("zero?", func(i *big.Int) bool { return i.Sign() == 0 }))
	register("pos?", intPred("pos?", func(i *big.Int) bool { return i.Sign() > 0 }))
	register("neg?", intPred("neg?", func(i *big.Int) bool { return i.Sign() < 0 }))
	register("even?", intPred("even?", func(i *big.Int) bool { return i.Bit(0) == 0 }))
	register("odd?", intPred("odd?", func(i *big.Int) bool { return i.Bit(0) == 1 }))
}

func intPred(name string, fn func(*big.Int) bool) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, name, "1", len(args))
		}
		i, ok := asInt(args[0])
		if !ok {
			return nil, typeErr(src, "%s requires an integer argument, got %T", name, args[0])
		}
		return fn(i), nil
	}
}
