// Package analyzer desugars the raw syntax tree (internal/ast) into the
// Core AST (internal/coreast) the evaluator walks, per spec §4.2: special
// forms are recognized and lowered, threading macros and `when`/`cond`/
// `if-let`/`when-let`/`defn`/`#(...)` are expanded, namespaced symbols are
// resolved to their Data/MemoryRef/ToolCall shape, and destructuring
// patterns are compiled once instead of re-parsed on every binding.
package analyzer

import (
	"fmt"

	"github.com/andreasronge/ptc-runner-sub009/internal/ast"
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
)

// Config bounds the analysis pass itself (distinct from the sandbox's
// runtime limits): every analyzed form counts, repeats included, and a
// program with more analyzed forms than MaxSymbols is rejected before it
// ever runs. Distinct symbols and keywords are not counted separately.
type Config struct {
	MaxSymbols int
}

// DefaultConfig matches the limits named in spec §4.5/§9.
var DefaultConfig = Config{MaxSymbols: 10000}

// Analyzer holds the desugar pass' mutable bookkeeping (symbol budget).
type Analyzer struct {
	cfg      Config
	symbols  int
}

// New constructs an Analyzer with the given budget.
func New(cfg Config) *Analyzer { return &Analyzer{cfg: cfg} }

// Analyze desugars a full program into a single Core AST node: multiple
// top-level forms are wrapped in an implicit `do` (§4.2.2).
func (a *Analyzer) Analyze(prog *ast.Program) (coreast.Node, *errs.Error) {
	if len(prog.Forms) == 1 {
		return a.expr(prog.Forms[0])
	}
	exprs := make([]coreast.Node, 0, len(prog.Forms))
	for _, f := range prog.Forms {
		n, err := a.expr(f)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
	}
	var pos ast.Pos
	if len(prog.Forms) > 0 {
		pos = prog.Forms[0].Position()
	}
	return &coreast.DoNode{Base: coreast.Base{Pos: pos}, Exprs: exprs}, nil
}

func base(n ast.Node) coreast.Base { return coreast.Base{Pos: n.Position()} }

func (a *Analyzer) bump(n ast.Node) *errs.Error {
	a.symbols++
	if a.symbols > a.cfg.MaxSymbols {
		p := n.Position()
		return errs.New(errs.SymbolLimitExceeded, "program exceeds %d analyzed forms", a.cfg.MaxSymbols).At(p.Line, p.Column)
	}
	return nil
}

// expr is the main desugar dispatch.
func (a *Analyzer) expr(n ast.Node) (coreast.Node, *errs.Error) {
	if err := a.bump(n); err != nil {
		return nil, err
	}
	switch v := n.(type) {
	case *ast.NilLit:
		return &coreast.Literal{Base: base(n), Value: nil}, nil
	case *ast.BoolLit:
		return &coreast.Literal{Base: base(n), Value: v.Value}, nil
	case *ast.IntLit:
		return literalInt(n, v.Text)
	case *ast.FloatLit:
		return literalFloat(n, v.Text)
	case *ast.StringLit:
		return &coreast.StringNode{Base: base(n), Value: v.Value}, nil
	case *ast.CharLit:
		return &coreast.Literal{Base: base(n), Value: v.Value}, nil
	case *ast.KeywordLit:
		return &coreast.KeywordNode{Base: base(n), Name: v.Name}, nil
	case *ast.VarRef:
		return &coreast.VarRefNode{Base: base(n), Name: v.Name}, nil
	case *ast.Percent:
		return &coreast.Var{Base: base(n), Name: percentName(v.Index)}, nil
	case *ast.Symbol:
		return a.symbol(v)
	case *ast.Vector:
		return a.vector(v)
	case *ast.SetLit:
		return a.set(v)
	case *ast.MapLit:
		return a.mapLit(v)
	case *ast.Lambda:
		return a.lambda(v)
	case *ast.List:
		return a.list(v)
	default:
		return nil, errs.New(errs.AnalysisError, "unrecognized syntax node %T", n).At(n.Position().Line, n.Position().Column)
	}
}

func percentName(idx int) string {
	if idx == 0 {
		idx = 1
	}
	return fmt.Sprintf("%%%d", idx)
}

func literalInt(n ast.Node, text string) (coreast.Node, *errs.Error) {
	i, ok := parseBigInt(text)
	if !ok {
		p := n.Position()
		return nil, errs.New(errs.AnalysisError, "invalid integer literal %q", text).At(p.Line, p.Column)
	}
	return &coreast.Literal{Base: base(n), Value: i}, nil
}

func literalFloat(n ast.Node, text string) (coreast.Node, *errs.Error) {
	f, ok := parseFloat(text)
	if !ok {
		p := n.Position()
		return nil, errs.New(errs.AnalysisError, "invalid float literal %q", text).At(p.Line, p.Column)
	}
	return &coreast.Literal{Base: base(n), Value: f}, nil
}

func (a *Analyzer) symbol(s *ast.Symbol) (coreast.Node, *errs.Error) {
	switch s.Namespace {
	case "ctx", "data":
		return &coreast.Data{Base: base(s), Key: s.Name}, nil
	case "memory":
		return &coreast.MemoryRef{Base: base(s), Name: s.Name}, nil
	case "tool":
		// A bare `tool/name` (not in call position) has no meaning beyond a
		// resolvable handle; the call-position case is handled in list().
		return &coreast.Var{Base: base(s), Name: s.FullName()}, nil
	case "budget":
		if s.Name == "remaining" {
			return &coreast.BudgetRemainingNode{Base: base(s)}, nil
		}
	case "":
		switch s.Name {
		case "*1":
			return &coreast.TurnHistoryNode{Base: base(s), N: 1}, nil
		case "*2":
			return &coreast.TurnHistoryNode{Base: base(s), N: 2}, nil
		case "*3":
			return &coreast.TurnHistoryNode{Base: base(s), N: 3}, nil
		}
	}
	return &coreast.Var{Base: base(s), Name: s.FullName()}, nil
}

func (a *Analyzer) vector(v *ast.Vector) (coreast.Node, *errs.Error) {
	children := make([]coreast.Node, 0, len(v.Items))
	for _, item := range v.Items {
		c, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return &coreast.VectorNode{Base: base(v), Children: children}, nil
}

func (a *Analyzer) set(s *ast.SetLit) (coreast.Node, *errs.Error) {
	children := make([]coreast.Node, 0, len(s.Items))
	for _, item := range s.Items {
		c, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return &coreast.SetNode{Base: base(s), Children: children}, nil
}

func (a *Analyzer) mapLit(m *ast.MapLit) (coreast.Node, *errs.Error) {
	pairs := make([]coreast.Pair, 0, len(m.Keys))
	for i := range m.Keys {
		k, err := a.expr(m.Keys[i])
		if err != nil {
			return nil, err
		}
		val, err := a.expr(m.Values[i])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, coreast.Pair{Key: k, Value: val})
	}
	return &coreast.MapNode{Base: base(m), Pairs: pairs}, nil
}

func (a *Analyzer) lambda(l *ast.Lambda) (coreast.Node, *errs.Error) {
	maxIdx := maxPercent(l.Body)
	params := make([]coreast.Param, maxIdx)
	for i := range params {
		params[i] = coreast.Param{Pattern: coreast.Pattern{Kind: coreast.PatVar, Name: percentName(i + 1)}}
	}
	body, err := a.expr(l.Body)
	if err != nil {
		return nil, err
	}
	return &coreast.FnNode{Base: base(l), Params: params, Body: body}, nil
}

func maxPercent(n ast.Node) int {
	max := 0
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Percent:
			idx := v.Index
			if idx == 0 {
				idx = 1
			}
			if idx > max {
				max = idx
			}
		case *ast.List:
			for _, it := range v.Items {
				walk(it)
			}
		case *ast.Vector:
			for _, it := range v.Items {
				walk(it)
			}
		case *ast.MapLit:
			for _, k := range v.Keys {
				walk(k)
			}
			for _, val := range v.Values {
				walk(val)
			}
		case *ast.SetLit:
			for _, it := range v.Items {
				walk(it)
			}
		}
	}
	walk(n)
	return max
}

// list dispatches special forms, then falls back to ordinary call/tool-call
// desugaring.
func (a *Analyzer) list(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) == 0 {
		return &coreast.VectorNode{Base: base(l), Children: nil}, nil // () evaluates as an empty seq, not a call
	}
	head := l.Items[0]
	if sym, ok := head.(*ast.Symbol); ok && sym.Namespace == "" {
		if fn, ok := a.specialForms()[sym.Name]; ok {
			return fn(a, l)
		}
	}
	return a.call(l)
}

func (a *Analyzer) call(l *ast.List) (coreast.Node, *errs.Error) {
	head := l.Items[0]
	if sym, ok := head.(*ast.Symbol); ok && sym.Namespace == "tool" {
		if len(l.Items) > 2 {
			return nil, a.errAt(l, "tool/%s takes at most one argument map", sym.Name)
		}
		var args coreast.Node = &coreast.MapNode{Base: base(l)}
		if len(l.Items) == 2 {
			m, err := a.expr(l.Items[1])
			if err != nil {
				return nil, err
			}
			args = m
		}
		return &coreast.ToolCallNode{Base: base(l), Name: sym.Name, Args: args}, nil
	}
	target, err := a.expr(head)
	if err != nil {
		return nil, err
	}
	args := make([]coreast.Node, 0, len(l.Items)-1)
	for _, a2 := range l.Items[1:] {
		c, err := a.expr(a2)
		if err != nil {
			return nil, err
		}
		args = append(args, c)
	}
	return &coreast.CallNode{Base: base(l), Target: target, Args: args}, nil
}

func (a *Analyzer) errAt(n ast.Node, format string, args ...interface{}) *errs.Error {
	p := n.Position()
	return errs.New(errs.AnalysisError, format, args...).At(p.Line, p.Column)
}
