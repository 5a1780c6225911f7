package analyzer

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/ast"
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
)

// buildPattern compiles a destructuring target (symbol, vector, or map) into
// a coreast.Pattern once, ahead of evaluation (spec §3.3's pattern grammar:
// var/seq/seq_rest/keys/map/as).
func (a *Analyzer) buildPattern(n ast.Node) (coreast.Pattern, *errs.Error) {
	switch v := n.(type) {
	case *ast.Symbol:
		if v.Namespace != "" {
			return coreast.Pattern{}, a.errAt(n, "binding target must be a plain symbol, got %q", v.FullName())
		}
		return coreast.Pattern{Kind: coreast.PatVar, Name: v.Name}, nil
	case *ast.Vector:
		return a.buildSeqPattern(v)
	case *ast.MapLit:
		return a.buildMapPattern(v)
	default:
		return coreast.Pattern{}, a.errAt(n, "invalid destructuring target")
	}
}

func (a *Analyzer) buildSeqPattern(v *ast.Vector) (coreast.Pattern, *errs.Error) {
	var leading []coreast.Pattern
	var rest *coreast.Pattern
	var asAlias string
	i := 0
	for i < len(v.Items) {
		if sym, ok := v.Items[i].(*ast.Symbol); ok && sym.Namespace == "" && sym.Name == "&" {
			if i+1 >= len(v.Items) {
				return coreast.Pattern{}, a.errAt(v, "`&` in binding vector must be followed by a rest pattern")
			}
			p, err := a.buildPattern(v.Items[i+1])
			if err != nil {
				return coreast.Pattern{}, err
			}
			rest = &p
			i += 2
			continue
		}
		if kw, ok := v.Items[i].(*ast.KeywordLit); ok && kw.Name == "as" {
			if i+1 >= len(v.Items) {
				return coreast.Pattern{}, a.errAt(v, "`:as` in binding vector must be followed by a symbol")
			}
			sym, ok := v.Items[i+1].(*ast.Symbol)
			if !ok {
				return coreast.Pattern{}, a.errAt(v, "`:as` alias must be a symbol")
			}
			asAlias = sym.Name
			i += 2
			continue
		}
		p, err := a.buildPattern(v.Items[i])
		if err != nil {
			return coreast.Pattern{}, err
		}
		leading = append(leading, p)
		i++
	}
	if rest != nil || asAlias != "" {
		return coreast.Pattern{Kind: coreast.PatSeqRest, Leading: leading, Rest: rest, As: asAlias}, nil
	}
	return coreast.Pattern{Kind: coreast.PatSeq, Seq: leading}, nil
}

func (a *Analyzer) buildMapPattern(m *ast.MapLit) (coreast.Pattern, *errs.Error) {
	p := coreast.Pattern{Kind: coreast.PatMap, Renames: map[string]string{}, Defaults: map[string]coreast.Node{}}
	for i := range m.Keys {
		kw, isKw := m.Keys[i].(*ast.KeywordLit)
		if isKw && kw.Name == "keys" {
			vec, ok := m.Values[i].(*ast.Vector)
			if !ok {
				return coreast.Pattern{}, a.errAt(m, "`:keys` value must be a vector of symbols")
			}
			for _, item := range vec.Items {
				sym, ok := item.(*ast.Symbol)
				if !ok {
					return coreast.Pattern{}, a.errAt(m, "`:keys` entries must be symbols")
				}
				p.Keys = append(p.Keys, sym.Name)
				p.Renames[sym.Name] = sym.Name
			}
			continue
		}
		if isKw && kw.Name == "or" {
			defaults, ok := m.Values[i].(*ast.MapLit)
			if !ok {
				return coreast.Pattern{}, a.errAt(m, "`:or` value must be a map")
			}
			for j := range defaults.Keys {
				sym, ok := defaults.Keys[j].(*ast.Symbol)
				if !ok {
					return coreast.Pattern{}, a.errAt(m, "`:or` keys must be symbols")
				}
				expr, err := a.expr(defaults.Values[j])
				if err != nil {
					return coreast.Pattern{}, err
				}
				p.Defaults[sym.Name] = expr
			}
			continue
		}
		if isKw && kw.Name == "as" {
			sym, ok := m.Values[i].(*ast.Symbol)
			if !ok {
				return coreast.Pattern{}, a.errAt(m, "`:as` value must be a symbol")
			}
			p.As = sym.Name
			continue
		}
		sym, isSym := m.Keys[i].(*ast.Symbol)
		if !isSym {
			return coreast.Pattern{}, a.errAt(m, "map-destructure keys must be a local symbol or `:keys`/`:or`/`:as`")
		}
		fieldKw, isFieldKw := m.Values[i].(*ast.KeywordLit)
		if !isFieldKw {
			return coreast.Pattern{}, a.errAt(m, "map-destructure %q must map to a keyword field name", sym.Name)
		}
		p.Keys = append(p.Keys, fieldKw.Name)
		p.Renames[fieldKw.Name] = sym.Name
	}
	return p, nil
}
