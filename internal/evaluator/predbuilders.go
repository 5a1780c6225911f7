package evaluator

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func flexEqual(a, b interface{}) bool {
	if ak, ok := a.(values.Keyword); ok {
		if bs, ok := b.(string); ok {
			return string(ak) == bs
		}
	}
	if as, ok := a.(string); ok {
		if bk, ok := b.(values.Keyword); ok {
			return as == string(bk)
		}
	}
	return values.Equal(a, b)
}

func safeLess(a, b interface{}) (result bool, typeOK bool) {
	defer func() {
		if recover() != nil {
			typeOK = false
		}
	}()
	return values.Less(a, b), true
}

// getInFlexible walks a nested structure by a key path, trying each key's
// keyword/string alternate on miss (spec §4.4, §4.7).
func getInFlexible(v interface{}, path []interface{}) (interface{}, bool) {
	cur := v
	for _, key := range path {
		m, ok := cur.(*values.Map)
		if !ok {
			return nil, false
		}
		val, found := m.Get(key)
		if !found {
			if ks, ok := key.(values.Keyword); ok {
				val, found = m.Get(string(ks))
			} else if s, ok := key.(string); ok {
				val, found = m.Get(values.Keyword(s))
			}
		}
		if !found {
			return nil, false
		}
		cur = val
	}
	return cur, true
}

func inCollection(needle, coll interface{}) bool {
	switch c := coll.(type) {
	case *values.Vector:
		for _, it := range c.Items {
			if flexEqual(it, needle) {
				return true
			}
		}
	case *values.Set:
		for _, it := range c.Items {
			if flexEqual(it, needle) {
				return true
			}
		}
	}
	return false
}

func evalWhere(node *coreast.WhereNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	path := make([]interface{}, 0, len(node.FieldPath))
	for _, fp := range node.FieldPath {
		v, o, err := evalValue(fp, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		path = append(path, v)
	}
	var cmpVal interface{}
	if node.Op != coreast.WhereTruthy {
		v, o, err := evalValue(node.Value, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		cmpVal = v
	}
	op := node.Op
	pred := &BuiltinValue{Name: "where", Fn: func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, errAt(src, errs.InvalidArity, "predicate expects exactly 1 argument")
		}
		fieldVal, _ := getInFlexible(args[0], path)
		switch op {
		case coreast.WhereTruthy:
			return values.IsTruthy(fieldVal), nil
		case coreast.WhereEq:
			return flexEqual(fieldVal, cmpVal), nil
		case coreast.WhereNotEq:
			return !flexEqual(fieldVal, cmpVal), nil
		case coreast.WhereGt:
			r, okT := safeLess(cmpVal, fieldVal)
			return okT && r, nil
		case coreast.WhereLt:
			r, okT := safeLess(fieldVal, cmpVal)
			return okT && r, nil
		case coreast.WhereGte:
			r, okT := safeLess(fieldVal, cmpVal)
			return okT && !r, nil
		case coreast.WhereLte:
			r, okT := safeLess(cmpVal, fieldVal)
			return okT && !r, nil
		case coreast.WhereIn:
			return inCollection(fieldVal, cmpVal), nil
		case coreast.WhereIncludes:
			return inCollection(cmpVal, fieldVal), nil
		default:
			return nil, errAt(src, errs.AnalysisError, "unknown where operator")
		}
	}}
	return ok(pred), nil
}

func evalPredCombinator(node *coreast.PredCombinatorNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	preds := make([]interface{}, 0, len(node.Preds))
	for _, p := range node.Preds {
		v, o, err := evalValue(p, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		preds = append(preds, v)
	}
	kind := node.Kind
	combined := &BuiltinValue{Name: "pred-combinator", Fn: func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		switch kind {
		case coreast.PredAll:
			for _, p := range preds {
				o, err := Apply(p, args, ec, src)
				if err != nil {
					return nil, err
				}
				if !values.IsTruthy(o.Value) {
					return false, nil
				}
			}
			return true, nil
		case coreast.PredAny:
			for _, p := range preds {
				o, err := Apply(p, args, ec, src)
				if err != nil {
					return nil, err
				}
				if values.IsTruthy(o.Value) {
					return true, nil
				}
			}
			return false, nil
		case coreast.PredNone:
			for _, p := range preds {
				o, err := Apply(p, args, ec, src)
				if err != nil {
					return nil, err
				}
				if values.IsTruthy(o.Value) {
					return false, nil
				}
			}
			return true, nil
		default:
			return nil, errAt(src, errs.AnalysisError, "unknown predicate combinator")
		}
	}}
	return ok(combined), nil
}

func evalJuxt(node *coreast.JuxtNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	fns := make([]interface{}, 0, len(node.Fns))
	for _, f := range node.Fns {
		v, o, err := evalValue(f, env, ec)
		if err != nil || o != nil {
			return propagate(o, err)
		}
		fns = append(fns, v)
	}
	combined := &BuiltinValue{Name: "juxt", Fn: func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		out := make([]interface{}, 0, len(fns))
		for _, f := range fns {
			o, err := Apply(f, args, ec, src)
			if err != nil {
				return nil, err
			}
			out = append(out, o.Value)
		}
		return &values.Vector{Items: out}, nil
	}}
	return ok(combined), nil
}
