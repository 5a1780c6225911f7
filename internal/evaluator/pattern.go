package evaluator

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// bindPattern implements match(pattern, value) -> bindings or error (§4.3).
// srcNode is only used for error positions.
func bindPattern(p coreast.Pattern, v interface{}, env *Environment, ec *EvalCtx, srcNode coreast.Node) *errs.Error {
	switch p.Kind {
	case coreast.PatVar:
		env.Set(p.Name, v)
		return nil
	case coreast.PatSeq:
		items, err := asSeq(p, v, srcNode)
		if err != nil {
			return err
		}
		if len(items) < len(p.Seq) {
			return errAt(srcNode, errs.DestructureError, "expected at least %d elements, got %d", len(p.Seq), len(items))
		}
		for i, sub := range p.Seq {
			if err := bindPattern(sub, items[i], env, ec, srcNode); err != nil {
				return err
			}
		}
		return nil
	case coreast.PatSeqRest:
		items, err := asSeq(p, v, srcNode)
		if err != nil {
			return err
		}
		if len(items) < len(p.Leading) {
			return errAt(srcNode, errs.DestructureError, "expected at least %d elements, got %d", len(p.Leading), len(items))
		}
		for i, sub := range p.Leading {
			if err := bindPattern(sub, items[i], env, ec, srcNode); err != nil {
				return err
			}
		}
		if p.Rest != nil {
			rest := append([]interface{}{}, items[len(p.Leading):]...)
			if err := bindPattern(*p.Rest, &values.Vector{Items: rest}, env, ec, srcNode); err != nil {
				return err
			}
		}
		if p.As != "" {
			env.Set(p.As, v)
		}
		return nil
	case coreast.PatKeys, coreast.PatMap:
		m, isMap := v.(*values.Map)
		if v != nil && !isMap {
			return errAt(srcNode, errs.DestructureError, "expected a map to destructure, got %T", v)
		}
		for _, key := range p.Keys {
			var fieldVal interface{}
			if isMap {
				fieldVal, _ = lookupFlexible(m, key)
			}
			local := key
			if p.Renames != nil {
				if ln, ok := p.Renames[key]; ok {
					local = ln
				}
			}
			if fieldVal == nil {
				if defExpr, ok := p.Defaults[local]; ok {
					dv, o, err := evalValue(defExpr, env, ec)
					if err != nil || o != nil {
						if err != nil {
							return err
						}
						return errAt(srcNode, errs.DestructureError, "default expression for %q signalled non-locally", local)
					}
					fieldVal = dv
				}
			}
			env.Set(local, fieldVal)
		}
		if p.As != "" {
			env.Set(p.As, v)
		}
		return nil
	case coreast.PatAs:
		if p.Inner != nil {
			if err := bindPattern(*p.Inner, v, env, ec, srcNode); err != nil {
				return err
			}
		}
		env.Set(p.As, v)
		return nil
	default:
		return errAt(srcNode, errs.DestructureError, "unknown pattern kind")
	}
}

func asSeq(p coreast.Pattern, v interface{}, srcNode coreast.Node) ([]interface{}, *errs.Error) {
	switch vv := v.(type) {
	case *values.Vector:
		return vv.Items, nil
	case nil:
		return nil, nil
	default:
		return nil, errAt(srcNode, errs.DestructureError, "expected a vector to destructure, got %T", v)
	}
}

// lookupFlexible tries key exactly, then its keyword/string alternate
// representation (spec §4.4's flexible key access).
func lookupFlexible(m *values.Map, key string) (interface{}, bool) {
	if v, ok := m.Get(values.Keyword(key)); ok {
		return v, true
	}
	return m.Get(key)
}
