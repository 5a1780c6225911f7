package evaluator

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func init() {
	register("=", binaryCompare("=", func(a, b interface{}) (bool, bool) { return values.Equal(a, b), true }))
	register("not=", binaryCompare("not=", func(a, b interface{}) (bool, bool) { return !values.Equal(a, b), true }))
	register("<", binaryCompare("<", func(a, b interface{}) (bool, bool) { return safeLess(a, b) }))
	register(">", binaryCompare(">", func(a, b interface{}) (bool, bool) { return safeLess(b, a) }))
	register("<=", binaryCompare("<=", func(a, b interface{}) (bool, bool) { r, ok := safeLess(b, a); return !r, ok }))
	register(">=", binaryCompare(">=", func(a, b interface{}) (bool, bool) { r, ok := safeLess(a, b); return !r, ok }))
}

func binaryCompare(name string, cmp func(a, b interface{}) (bool, bool)) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, name, "2", len(args))
		}
		if args[0] == nil || args[1] == nil {
			if name == "=" || name == "not=" {
				r, _ := cmp(args[0], args[1])
				return r, nil
			}
			return nil, typeErr(src, "%s does not support nil operands", name)
		}
		r, ok := cmp(args[0], args[1])
		if !ok {
			return nil, typeErr(src, "%s: operands are not ordered: %T, %T", name, args[0], args[1])
		}
		return r, nil
	}
}
