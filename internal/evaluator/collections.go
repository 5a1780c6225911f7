package evaluator

import (
	"math/big"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// callPred applies a callable, keyword, or set value as a single-arg
// predicate/accessor, the shared contract for filter/remove/find/some/every?
func callPred(fn interface{}, arg interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
	o, err := Apply(fn, []interface{}{arg}, ec, src)
	if err != nil {
		return nil, err
	}
	return o.Value, nil
}

func requireSeq(src coreast.Node, name string, v interface{}) ([]interface{}, *errs.Error) {
	items, ok := toItems(v)
	if !ok {
		return nil, typeErr(src, "%s requires a collection argument, got %T", name, v)
	}
	return items, nil
}

func intArg(src coreast.Node, name string, v interface{}) (int, *errs.Error) {
	i, ok := asInt(v)
	if !ok {
		return 0, typeErr(src, "%s requires an integer argument, got %T", name, v)
	}
	return int(i.Int64()), nil
}

func init() {
	register("count", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "count", "1", len(args))
		}
		if s, ok := args[0].(string); ok {
			return big.NewInt(int64(len([]rune(s)))), nil
		}
		items, err := requireSeq(src, "count", args[0])
		if err != nil {
			return nil, err
		}
		return big.NewInt(int64(len(items))), nil
	})

	register("first", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "first", "1", len(args))
		}
		items, err := requireSeq(src, "first", args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items[0], nil
	})

	register("second", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "second", "1", len(args))
		}
		items, err := requireSeq(src, "second", args[0])
		if err != nil {
			return nil, err
		}
		if len(items) < 2 {
			return nil, nil
		}
		return items[1], nil
	})

	register("last", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "last", "1", len(args))
		}
		items, err := requireSeq(src, "last", args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items[len(items)-1], nil
	})

	register("nth", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 && len(args) != 3 {
			return nil, arityErr(src, "nth", "2 or 3", len(args))
		}
		items, err := requireSeq(src, "nth", args[0])
		if err != nil {
			return nil, err
		}
		n, err := intArg(src, "nth", args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 || n >= len(items) {
			if len(args) == 3 {
				return args[2], nil
			}
			return nil, errAt(src, errs.RuntimeError, "nth index %d out of bounds for collection of size %d", n, len(items))
		}
		return items[n], nil
	})

	register("rest", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "rest", "1", len(args))
		}
		items, err := requireSeq(src, "rest", args[0])
		if err != nil {
			return nil, err
		}
		if len(items) <= 1 {
			return values.NewVector(), nil
		}
		return &values.Vector{Items: append([]interface{}{}, items[1:]...)}, nil
	})

	register("next", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "next", "1", len(args))
		}
		items, err := requireSeq(src, "next", args[0])
		if err != nil {
			return nil, err
		}
		if len(items) <= 1 {
			return nil, nil
		}
		return &values.Vector{Items: append([]interface{}{}, items[1:]...)}, nil
	})

	register("ffirst", composeSeqFn("ffirst", "first", "first"))
	register("fnext", composeSeqFn("fnext", "next", "first"))
	register("nfirst", composeSeqFn("nfirst", "first", "next"))
	register("nnext", composeSeqFn("nnext", "next", "next"))

	register("take", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "take", "2", len(args))
		}
		n, err := intArg(src, "take", args[0])
		if err != nil {
			return nil, err
		}
		items, err := requireSeq(src, "take", args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n > len(items) {
			n = len(items)
		}
		return &values.Vector{Items: append([]interface{}{}, items[:n]...)}, nil
	})

	register("drop", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "drop", "2", len(args))
		}
		n, err := intArg(src, "drop", args[0])
		if err != nil {
			return nil, err
		}
		items, err := requireSeq(src, "drop", args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n > len(items) {
			n = len(items)
		}
		return &values.Vector{Items: append([]interface{}{}, items[n:]...)}, nil
	})

	register("take-while", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "take-while", "2", len(args))
		}
		items, err := requireSeq(src, "take-while", args[1])
		if err != nil {
			return nil, err
		}
		out := []interface{}{}
		for _, it := range items {
			v, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if !values.IsTruthy(v) {
				break
			}
			out = append(out, it)
		}
		return &values.Vector{Items: out}, nil
	})

	register("drop-while", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "drop-while", "2", len(args))
		}
		items, err := requireSeq(src, "drop-while", args[1])
		if err != nil {
			return nil, err
		}
		i := 0
		for ; i < len(items); i++ {
			v, cerr := callPred(args[0], items[i], ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if !values.IsTruthy(v) {
				break
			}
		}
		return &values.Vector{Items: append([]interface{}{}, items[i:]...)}, nil
	})

	register("distinct", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "distinct", "1", len(args))
		}
		items, err := requireSeq(src, "distinct", args[0])
		if err != nil {
			return nil, err
		}
		out := []interface{}{}
		for _, it := range items {
			dup := false
			for _, seen := range out {
				if values.Equal(seen, it) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, it)
			}
		}
		return &values.Vector{Items: out}, nil
	})

	register("conj", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) < 1 {
			return nil, arityErr(src, "conj", "at least 1", len(args))
		}
		switch c := args[0].(type) {
		case nil:
			return &values.Vector{Items: append([]interface{}{}, args[1:]...)}, nil
		case *values.Vector:
			out := append([]interface{}{}, c.Items...)
			out = append(out, args[1:]...)
			return &values.Vector{Items: out}, nil
		case *values.Set:
			cur := c
			for _, a := range args[1:] {
				cur = cur.Conj(a)
			}
			return cur, nil
		case *values.Map:
			cur := c
			for _, a := range args[1:] {
				entry, ok := a.(*values.Vector)
				if !ok || len(entry.Items) != 2 {
					return nil, typeErr(src, "conj on a map requires [key value] entries")
				}
				cur = cur.Assoc(entry.Items[0], entry.Items[1])
			}
			return cur, nil
		default:
			return nil, typeErr(src, "conj requires a collection argument, got %T", args[0])
		}
	})

	register("concat", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		out := []interface{}{}
		for _, a := range args {
			items, err := requireSeq(src, "concat", a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
		return &values.Vector{Items: out}, nil
	})

	register("into", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "into", "2", len(args))
		}
		from, err := requireSeq(src, "into", args[1])
		if err != nil {
			return nil, err
		}
		switch to := args[0].(type) {
		case nil:
			return &values.Vector{Items: append([]interface{}{}, from...)}, nil
		case *values.Vector:
			out := append([]interface{}{}, to.Items...)
			out = append(out, from...)
			return &values.Vector{Items: out}, nil
		case *values.Set:
			cur := to
			for _, it := range from {
				cur = cur.Conj(it)
			}
			return cur, nil
		case *values.Map:
			cur := to
			for _, it := range from {
				entry, ok := it.(*values.Vector)
				if !ok || len(entry.Items) != 2 {
					return nil, typeErr(src, "into a map requires [key value] entries")
				}
				cur = cur.Assoc(entry.Items[0], entry.Items[1])
			}
			return cur, nil
		default:
			return nil, typeErr(src, "into requires a collection argument, got %T", args[0])
		}
	})

	register("flatten", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "flatten", "1", len(args))
		}
		items, err := requireSeq(src, "flatten", args[0])
		if err != nil {
			return nil, err
		}
		out := []interface{}{}
		var rec func([]interface{})
		rec = func(xs []interface{}) {
			for _, x := range xs {
				if vec, ok := x.(*values.Vector); ok {
					rec(vec.Items)
					continue
				}
				out = append(out, x)
			}
		}
		rec(items)
		return &values.Vector{Items: out}, nil
	})

	register("interleave", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) == 0 {
			return &values.Vector{}, nil
		}
		seqs := make([][]interface{}, len(args))
		minLen := -1
		for i, a := range args {
			items, err := requireSeq(src, "interleave", a)
			if err != nil {
				return nil, err
			}
			seqs[i] = items
			if minLen == -1 || len(items) < minLen {
				minLen = len(items)
			}
		}
		out := []interface{}{}
		for i := 0; i < minLen; i++ {
			for _, s := range seqs {
				out = append(out, s[i])
			}
		}
		return &values.Vector{Items: out}, nil
	})

	register("zip", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) == 0 {
			return &values.Vector{}, nil
		}
		seqs := make([][]interface{}, len(args))
		minLen := -1
		for i, a := range args {
			items, err := requireSeq(src, "zip", a)
			if err != nil {
				return nil, err
			}
			seqs[i] = items
			if minLen == -1 || len(items) < minLen {
				minLen = len(items)
			}
		}
		out := make([]interface{}, minLen)
		for i := 0; i < minLen; i++ {
			row := make([]interface{}, len(seqs))
			for j, s := range seqs {
				row[j] = s[i]
			}
			out[i] = &values.Vector{Items: row}
		}
		return &values.Vector{Items: out}, nil
	})

	register("reverse", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "reverse", "1", len(args))
		}
		items, err := requireSeq(src, "reverse", args[0])
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(items))
		for i, it := range items {
			out[len(items)-1-i] = it
		}
		return &values.Vector{Items: out}, nil
	})

	register("sort", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "sort", "1", len(args))
		}
		items, err := requireSeq(src, "sort", args[0])
		if err != nil {
			return nil, err
		}
		out := append([]interface{}{}, items...)
		var sortErr *errs.Error
		values.SortStable(out, func(a, b interface{}) bool {
			r, typeOK := safeLess(a, b)
			if !typeOK && sortErr == nil {
				sortErr = typeErr(src, "sort requires mutually ordered elements")
			}
			return r
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return &values.Vector{Items: out}, nil
	})

	register("sort-by", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "sort-by", "2", len(args))
		}
		items, err := requireSeq(src, "sort-by", args[1])
		if err != nil {
			return nil, err
		}
		keys := make([]interface{}, len(items))
		for i, it := range items {
			k, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			keys[i] = k
		}
		idx := make([]int, len(items))
		for i := range idx {
			idx[i] = i
		}
		var sortErr *errs.Error
		values.SortStable(anySlice(idx), func(a, b interface{}) bool {
			r, typeOK := safeLess(keys[a.(int)], keys[b.(int)])
			if !typeOK && sortErr == nil {
				sortErr = typeErr(src, "sort-by requires mutually ordered keys")
			}
			return r
		})
		if sortErr != nil {
			return nil, sortErr
		}
		out := make([]interface{}, len(items))
		for i, ix := range idx {
			out[i] = items[ix.(int)]
		}
		return &values.Vector{Items: out}, nil
	})

	register("seq", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "seq", "1", len(args))
		}
		items, err := requireSeq(src, "seq", args[0])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		return &values.Vector{Items: items}, nil
	})

	register("empty?", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "empty?", "1", len(args))
		}
		if s, ok := args[0].(string); ok {
			return len(s) == 0, nil
		}
		items, err := requireSeq(src, "empty?", args[0])
		if err != nil {
			return nil, err
		}
		return len(items) == 0, nil
	})

	register("contains?", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "contains?", "2", len(args))
		}
		switch c := args[0].(type) {
		case *values.Map:
			_, found := c.Get(args[1])
			return found, nil
		case *values.Set:
			return c.Has(args[1]), nil
		case *values.Vector:
			n, err := intArg(src, "contains?", args[1])
			if err != nil {
				return nil, err
			}
			return n >= 0 && n < len(c.Items), nil
		default:
			return nil, typeErr(src, "contains? requires a collection argument, got %T", args[0])
		}
	})

	register("some", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "some", "2", len(args))
		}
		items, err := requireSeq(src, "some", args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			v, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if values.IsTruthy(v) {
				return v, nil
			}
		}
		return nil, nil
	})

	register("every?", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "every?", "2", len(args))
		}
		items, err := requireSeq(src, "every?", args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			v, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if !values.IsTruthy(v) {
				return false, nil
			}
		}
		return true, nil
	})

	register("not-any?", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "not-any?", "2", len(args))
		}
		items, err := requireSeq(src, "not-any?", args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			v, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if values.IsTruthy(v) {
				return false, nil
			}
		}
		return true, nil
	})

	register("range", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		var start, end, step int64 = 0, 0, 1
		switch len(args) {
		case 1:
			n, err := intArg(src, "range", args[0])
			if err != nil {
				return nil, err
			}
			end = int64(n)
		case 2:
			s, err := intArg(src, "range", args[0])
			if err != nil {
				return nil, err
			}
			e, err := intArg(src, "range", args[1])
			if err != nil {
				return nil, err
			}
			start, end = int64(s), int64(e)
		case 3:
			s, err := intArg(src, "range", args[0])
			if err != nil {
				return nil, err
			}
			e, err := intArg(src, "range", args[1])
			if err != nil {
				return nil, err
			}
			st, err := intArg(src, "range", args[2])
			if err != nil {
				return nil, err
			}
			start, end, step = int64(s), int64(e), int64(st)
		default:
			return nil, arityErr(src, "range", "1, 2 or 3", len(args))
		}
		if step == 0 {
			return nil, errAt(src, errs.ArithmeticError, "range step must not be zero")
		}
		out := []interface{}{}
		if step > 0 {
			for i := start; i < end; i += step {
				out = append(out, big.NewInt(i))
			}
		} else {
			for i := start; i > end; i += step {
				out = append(out, big.NewInt(i))
			}
		}
		return &values.Vector{Items: out}, nil
	})

	register("map", mapFn("map"))
	register("mapv", mapFn("mapv"))

	register("filter", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "filter", "2", len(args))
		}
		items, err := requireSeq(src, "filter", args[1])
		if err != nil {
			return nil, err
		}
		out := []interface{}{}
		for _, it := range items {
			v, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if values.IsTruthy(v) {
				out = append(out, it)
			}
		}
		return &values.Vector{Items: out}, nil
	})

	register("remove", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "remove", "2", len(args))
		}
		items, err := requireSeq(src, "remove", args[1])
		if err != nil {
			return nil, err
		}
		out := []interface{}{}
		for _, it := range items {
			v, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if !values.IsTruthy(v) {
				out = append(out, it)
			}
		}
		return &values.Vector{Items: out}, nil
	})

	register("find", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "find", "2", len(args))
		}
		items, err := requireSeq(src, "find", args[1])
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			v, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			if values.IsTruthy(v) {
				return it, nil
			}
		}
		return nil, nil
	})

	register("pluck", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "pluck", "2", len(args))
		}
		items, err := requireSeq(src, "pluck", args[1])
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(items))
		for i, it := range items {
			v, _ := getInFlexible(it, []interface{}{args[0]})
			out[i] = v
		}
		return &values.Vector{Items: out}, nil
	})

	register("select-keys", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "select-keys", "2", len(args))
		}
		m, ok := asMap(args[0])
		if !ok {
			return nil, typeErr(src, "select-keys requires a map argument, got %T", args[0])
		}
		keys, err := requireSeq(src, "select-keys", args[1])
		if err != nil {
			return nil, err
		}
		out := values.NewMap()
		for _, k := range keys {
			if v, found := m.Get(k); found {
				out = out.Assoc(k, v)
			}
		}
		return out, nil
	})

	register("group-by", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "group-by", "2", len(args))
		}
		items, err := requireSeq(src, "group-by", args[1])
		if err != nil {
			return nil, err
		}
		out := values.NewMap()
		for _, it := range items {
			k, cerr := callPred(args[0], it, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			existing, found := out.Get(k)
			var bucket *values.Vector
			if found {
				bucket, _ = existing.(*values.Vector)
			} else {
				bucket = values.NewVector()
			}
			out = out.Assoc(k, &values.Vector{Items: append(append([]interface{}{}, bucket.Items...), it)})
		}
		return out, nil
	})

	register("sum-by", aggregateBy("sum-by", func(vals []float64) interface{} {
		if len(vals) == 0 {
			return big.NewInt(0)
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum
	}))
	register("avg-by", aggregateBy("avg-by", func(vals []float64) interface{} {
		if len(vals) == 0 {
			return nil
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	}))
	register("min-by", aggregateBy("min-by", func(vals []float64) interface{} {
		if len(vals) == 0 {
			return nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m
	}))
	register("max-by", aggregateBy("max-by", func(vals []float64) interface{} {
		if len(vals) == 0 {
			return nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m
	}))
}

func anySlice(ints []int) []interface{} {
	out := make([]interface{}, len(ints))
	for i, v := range ints {
		out[i] = v
	}
	return out
}

func composeSeqFn(name, outer, inner string) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, name, "1", len(args))
		}
		outerFn, _ := LookupBuiltin(outer)
		v, err := outerFn.Fn(args, ec, src)
		if err != nil {
			return nil, err
		}
		innerFn, _ := LookupBuiltin(inner)
		return innerFn.Fn([]interface{}{v}, ec, src)
	}
}

func mapFn(name string) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) < 2 {
			return nil, arityErr(src, name, "at least 2", len(args))
		}
		fn := args[0]
		seqs := make([][]interface{}, len(args)-1)
		minLen := -1
		for i, a := range args[1:] {
			items, err := requireSeq(src, name, a)
			if err != nil {
				return nil, err
			}
			seqs[i] = items
			if minLen == -1 || len(items) < minLen {
				minLen = len(items)
			}
		}
		out := make([]interface{}, minLen)
		for i := 0; i < minLen; i++ {
			callArgs := make([]interface{}, len(seqs))
			for j, s := range seqs {
				callArgs[j] = s[i]
			}
			o, err := Apply(fn, callArgs, ec, src)
			if err != nil {
				return nil, err
			}
			out[i] = o.Value
		}
		return &values.Vector{Items: out}, nil
	}
}

func aggregateBy(name string, combine func([]float64) interface{}) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, name, "2", len(args))
		}
		items, err := requireSeq(src, name, args[1])
		if err != nil {
			return nil, err
		}
		vals := []float64{}
		for _, it := range items {
			v, _ := getInFlexible(it, []interface{}{args[0]})
			if v == nil {
				continue
			}
			f, ok := values.AsFloat(v)
			if !ok {
				return nil, typeErr(src, "%s requires numeric field values, got %T", name, v)
			}
			vals = append(vals, f)
		}
		return combine(vals), nil
	}
}
