package evaluator

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func init() {
	register("not", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "not", "1", len(args))
		}
		return !values.IsTruthy(args[0]), nil
	})
	register("identity", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "identity", "1", len(args))
		}
		return args[0], nil
	})
}
