package evaluator

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func init() {
	register("get", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 && len(args) != 3 {
			return nil, arityErr(src, "get", "2 or 3", len(args))
		}
		v, found := getInFlexible(args[0], []interface{}{args[1]})
		if !found {
			if len(args) == 3 {
				return args[2], nil
			}
			return nil, nil
		}
		return v, nil
	})

	register("get-in", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 && len(args) != 3 {
			return nil, arityErr(src, "get-in", "2 or 3", len(args))
		}
		path, ok := asVector(args[1])
		if !ok {
			return nil, typeErr(src, "get-in requires a vector path, got %T", args[1])
		}
		v, found := getInFlexible(args[0], path.Items)
		if !found {
			if len(args) == 3 {
				return args[2], nil
			}
			return nil, nil
		}
		return v, nil
	})

	register("assoc", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) < 3 || len(args)%2 != 1 {
			return nil, arityErr(src, "assoc", "an odd number >= 3", len(args))
		}
		m, ok := args[0].(*values.Map)
		if !ok {
			if args[0] == nil {
				m = values.NewMap()
			} else {
				return nil, typeErr(src, "assoc requires a map argument, got %T", args[0])
			}
		}
		for i := 1; i < len(args); i += 2 {
			m = m.Assoc(args[i], args[i+1])
		}
		return m, nil
	})

	register("assoc-in", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 3 {
			return nil, arityErr(src, "assoc-in", "3", len(args))
		}
		path, ok := asVector(args[1])
		if !ok {
			return nil, typeErr(src, "assoc-in requires a vector path, got %T", args[1])
		}
		v, err := assocInRec(args[0], path.Items, args[2], src)
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	register("update", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) < 3 {
			return nil, arityErr(src, "update", "at least 3", len(args))
		}
		m, ok := args[0].(*values.Map)
		if !ok {
			if args[0] == nil {
				m = values.NewMap()
			} else {
				return nil, typeErr(src, "update requires a map argument, got %T", args[0])
			}
		}
		cur, _ := m.Get(args[1])
		callArgs := append([]interface{}{cur}, args[3:]...)
		o, cerr := Apply(args[2], callArgs, ec, src)
		if cerr != nil {
			return nil, cerr
		}
		return m.Assoc(args[1], o.Value), nil
	})

	register("update-in", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) < 3 {
			return nil, arityErr(src, "update-in", "at least 3", len(args))
		}
		path, ok := asVector(args[1])
		if !ok {
			return nil, typeErr(src, "update-in requires a vector path, got %T", args[1])
		}
		cur, _ := getInFlexible(args[0], path.Items)
		callArgs := append([]interface{}{cur}, args[3:]...)
		o, cerr := Apply(args[2], callArgs, ec, src)
		if cerr != nil {
			return nil, cerr
		}
		v, err := assocInRec(args[0], path.Items, o.Value, src)
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	register("dissoc", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) < 1 {
			return nil, arityErr(src, "dissoc", "at least 1", len(args))
		}
		m, ok := asMap(args[0])
		if !ok {
			return nil, typeErr(src, "dissoc requires a map argument, got %T", args[0])
		}
		for _, k := range args[1:] {
			m = m.Dissoc(k)
		}
		return m, nil
	})

	register("merge", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		out := values.NewMap()
		for _, a := range args {
			if a == nil {
				continue
			}
			m, ok := asMap(a)
			if !ok {
				return nil, typeErr(src, "merge requires map arguments, got %T", a)
			}
			for _, e := range m.Entries {
				out = out.Assoc(e.Key, e.Value)
			}
		}
		return out, nil
	})

	register("keys", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "keys", "1", len(args))
		}
		m, ok := asMap(args[0])
		if !ok {
			return nil, typeErr(src, "keys requires a map argument, got %T", args[0])
		}
		return &values.Vector{Items: m.Keys()}, nil
	})

	register("vals", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "vals", "1", len(args))
		}
		m, ok := asMap(args[0])
		if !ok {
			return nil, typeErr(src, "vals requires a map argument, got %T", args[0])
		}
		return &values.Vector{Items: m.Vals()}, nil
	})

	register("entries", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "entries", "1", len(args))
		}
		m, ok := asMap(args[0])
		if !ok {
			return nil, typeErr(src, "entries requires a map argument, got %T", args[0])
		}
		out := make([]interface{}, len(m.Entries))
		for i, e := range m.Entries {
			out[i] = &values.Vector{Items: []interface{}{e.Key, e.Value}}
		}
		return &values.Vector{Items: out}, nil
	})

	register("update-vals", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "update-vals", "2", len(args))
		}
		m, ok := asMap(args[0])
		if !ok {
			return nil, typeErr(src, "update-vals requires a map argument, got %T", args[0])
		}
		out := m
		for _, e := range m.Entries {
			o, cerr := Apply(args[1], []interface{}{e.Value}, ec, src)
			if cerr != nil {
				return nil, cerr
			}
			out = out.Assoc(e.Key, o.Value)
		}
		return out, nil
	})
}

// assocInRec implements assoc-in/update-in's recursive nested-map construction:
// missing intermediate maps are created, matching spec §4.4's liberal nesting.
func assocInRec(cur interface{}, path []interface{}, value interface{}, src coreast.Node) (interface{}, *errs.Error) {
	if len(path) == 0 {
		return value, nil
	}
	var m *values.Map
	switch c := cur.(type) {
	case *values.Map:
		m = c
	case nil:
		m = values.NewMap()
	default:
		return nil, typeErr(src, "assoc-in requires map values along the path, got %T", cur)
	}
	key := path[0]
	child, _ := m.Get(key)
	updated, err := assocInRec(child, path[1:], value, src)
	if err != nil {
		return nil, err
	}
	return m.Assoc(key, updated), nil
}
