package evaluator

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func init() {
	register("key", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "key", "1", len(args))
		}
		entry, ok := isMapEntry(args[0])
		if !ok {
			return nil, typeErr(src, "key requires a [k v] map entry, got %T", args[0])
		}
		return entry.Items[0], nil
	})

	register("val", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "val", "1", len(args))
		}
		entry, ok := isMapEntry(args[0])
		if !ok {
			return nil, typeErr(src, "val requires a [k v] map entry, got %T", args[0])
		}
		return entry.Items[1], nil
	})

	register("max-key", mapEntryExtreme("max-key", func(a, b float64) bool { return a > b }))
	register("min-key", mapEntryExtreme("min-key", func(a, b float64) bool { return a < b }))
}

// mapEntryExtreme implements max-key/min-key: (f k1 k2 ...) picks the key
// whose (f key) is extremal, Clojure-style.
func mapEntryExtreme(name string, better func(a, b float64) bool) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) < 2 {
			return nil, arityErr(src, name, "at least 2", len(args))
		}
		fn := args[0]
		keys := args[1:]
		bestIdx := 0
		bestScore, err := scoreKey(fn, keys[0], ec, src)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(keys); i++ {
			s, err := scoreKey(fn, keys[i], ec, src)
			if err != nil {
				return nil, err
			}
			if better(s, bestScore) {
				bestScore = s
				bestIdx = i
			}
		}
		return keys[bestIdx], nil
	}
}

func scoreKey(fn, k interface{}, ec *EvalCtx, src coreast.Node) (float64, *errs.Error) {
	o, err := Apply(fn, []interface{}{k}, ec, src)
	if err != nil {
		return 0, err
	}
	f, ok := values.AsFloat(o.Value)
	if !ok {
		return 0, typeErr(src, "%s requires a function returning a numeric score", "max-key/min-key")
	}
	return f, nil
}
