package analyzer

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/ast"
	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
)

type specialFn func(*Analyzer, *ast.List) (coreast.Node, *errs.Error)

func (a *Analyzer) specialForms() map[string]specialFn {
	return specialTable
}

var specialTable = map[string]specialFn{
	"let":            (*Analyzer).analyzeLet,
	"fn":             (*Analyzer).analyzeFn,
	"defn":           (*Analyzer).analyzeDefn,
	"if":             (*Analyzer).analyzeIf,
	"do":             (*Analyzer).analyzeDo,
	"and":            (*Analyzer).analyzeAnd,
	"or":             (*Analyzer).analyzeOr,
	"def":            (*Analyzer).analyzeDef,
	"recur":          (*Analyzer).analyzeRecur,
	"loop":           (*Analyzer).analyzeLoop,
	"return":         (*Analyzer).analyzeReturn,
	"fail":           (*Analyzer).analyzeFail,
	"where":          (*Analyzer).analyzeWhere,
	"all-of":         (*Analyzer).analyzeAllOf,
	"any-of":         (*Analyzer).analyzeAnyOf,
	"none-of":        (*Analyzer).analyzeNoneOf,
	"juxt":           (*Analyzer).analyzeJuxt,
	"pmap":           (*Analyzer).analyzePmap,
	"pcalls":         (*Analyzer).analyzePcalls,
	"task":           (*Analyzer).analyzeTask,
	"task-dynamic":   (*Analyzer).analyzeTaskDynamic,
	"step-done":      (*Analyzer).analyzeStepDone,
	"task-reset":     (*Analyzer).analyzeTaskReset,
	"->":             (*Analyzer).analyzeThreadFirst,
	"->>":            (*Analyzer).analyzeThreadLast,
	"when":           (*Analyzer).analyzeWhen,
	"when-let":       (*Analyzer).analyzeWhenLet,
	"if-let":         (*Analyzer).analyzeIfLet,
	"cond":           (*Analyzer).analyzeCond,
}

func (a *Analyzer) bodyDo(l *ast.List, base coreast.Base, from int) (coreast.Node, *errs.Error) {
	exprs := make([]coreast.Node, 0, len(l.Items)-from)
	for _, item := range l.Items[from:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &coreast.DoNode{Base: base, Exprs: exprs}, nil
}

func bindingPairs(a *Analyzer, l *ast.List, vec *ast.Vector) ([]coreast.Binding, *errs.Error) {
	if len(vec.Items)%2 != 0 {
		return nil, a.errAt(l, "binding vector requires an even number of forms")
	}
	var bindings []coreast.Binding
	for i := 0; i < len(vec.Items); i += 2 {
		pat, err := a.buildPattern(vec.Items[i])
		if err != nil {
			return nil, err
		}
		val, err := a.expr(vec.Items[i+1])
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, coreast.Binding{Pattern: pat, Value: val})
	}
	return bindings, nil
}

func (a *Analyzer) analyzeLet(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "let requires a binding vector")
	}
	vec, ok := l.Items[1].(*ast.Vector)
	if !ok {
		return nil, a.errAt(l, "let's first argument must be a binding vector")
	}
	bindings, err := bindingPairs(a, l, vec)
	if err != nil {
		return nil, err
	}
	body, err := a.bodyDo(l, base(l), 2)
	if err != nil {
		return nil, err
	}
	return &coreast.LetNode{Base: base(l), Bindings: bindings, Body: body}, nil
}

func (a *Analyzer) parseParams(l *ast.List, vec *ast.Vector) ([]coreast.Param, *errs.Error) {
	var params []coreast.Param
	i := 0
	for i < len(vec.Items) {
		if sym, ok := vec.Items[i].(*ast.Symbol); ok && sym.Namespace == "" && sym.Name == "&" {
			if i+1 >= len(vec.Items) {
				return nil, a.errAt(l, "`&` in param vector must be followed by a rest parameter")
			}
			pat, err := a.buildPattern(vec.Items[i+1])
			if err != nil {
				return nil, err
			}
			params = append(params, coreast.Param{Pattern: pat, Variadic: true})
			i += 2
			continue
		}
		pat, err := a.buildPattern(vec.Items[i])
		if err != nil {
			return nil, err
		}
		params = append(params, coreast.Param{Pattern: pat})
		i++
	}
	return params, nil
}

func (a *Analyzer) analyzeFn(l *ast.List) (coreast.Node, *errs.Error) {
	idx := 1
	name := ""
	if idx < len(l.Items) {
		if sym, ok := l.Items[idx].(*ast.Symbol); ok && sym.Namespace == "" {
			name = sym.Name
			idx++
		}
	}
	if idx >= len(l.Items) {
		return nil, a.errAt(l, "fn requires a parameter vector")
	}
	vec, ok := l.Items[idx].(*ast.Vector)
	if !ok {
		return nil, a.errAt(l, "fn's parameter list must be a vector")
	}
	params, err := a.parseParams(l, vec)
	if err != nil {
		return nil, err
	}
	body, err := a.bodyDo(l, base(l), idx+1)
	if err != nil {
		return nil, err
	}
	return &coreast.FnNode{Base: base(l), Name: name, Params: params, Body: body}, nil
}

func (a *Analyzer) analyzeDefn(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 3 {
		return nil, a.errAt(l, "defn requires a name and parameter vector")
	}
	sym, ok := l.Items[1].(*ast.Symbol)
	if !ok || sym.Namespace != "" {
		return nil, a.errAt(l, "defn's first argument must be a plain symbol")
	}
	idx := 2
	doc := ""
	if s, ok := l.Items[idx].(*ast.StringLit); ok {
		doc = s.Value
		idx++
	}
	if idx >= len(l.Items) {
		return nil, a.errAt(l, "defn requires a parameter vector")
	}
	vec, ok := l.Items[idx].(*ast.Vector)
	if !ok {
		return nil, a.errAt(l, "defn's parameter list must be a vector")
	}
	params, err := a.parseParams(l, vec)
	if err != nil {
		return nil, err
	}
	body, err := a.bodyDo(l, base(l), idx+1)
	if err != nil {
		return nil, err
	}
	fn := &coreast.FnNode{Base: base(l), Name: sym.Name, Params: params, Body: body}
	return &coreast.DefNode{Base: base(l), Name: sym.Name, Value: fn, Doc: doc}, nil
}

func (a *Analyzer) analyzeIf(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 3 || len(l.Items) > 4 {
		return nil, a.errAt(l, "if takes a condition, a then branch, and an optional else branch")
	}
	cond, err := a.expr(l.Items[1])
	if err != nil {
		return nil, err
	}
	then, err := a.expr(l.Items[2])
	if err != nil {
		return nil, err
	}
	var els coreast.Node = &coreast.Literal{Base: base(l)}
	if len(l.Items) == 4 {
		els, err = a.expr(l.Items[3])
		if err != nil {
			return nil, err
		}
	}
	return &coreast.IfNode{Base: base(l), Cond: cond, Then: then, Else: els}, nil
}

func (a *Analyzer) analyzeDo(l *ast.List) (coreast.Node, *errs.Error) {
	exprs := make([]coreast.Node, 0, len(l.Items)-1)
	for _, item := range l.Items[1:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
	}
	return &coreast.DoNode{Base: base(l), Exprs: exprs}, nil
}

func (a *Analyzer) analyzeAnd(l *ast.List) (coreast.Node, *errs.Error) {
	exprs := make([]coreast.Node, 0, len(l.Items)-1)
	for _, item := range l.Items[1:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
	}
	return &coreast.AndNode{Base: base(l), Exprs: exprs}, nil
}

func (a *Analyzer) analyzeOr(l *ast.List) (coreast.Node, *errs.Error) {
	exprs := make([]coreast.Node, 0, len(l.Items)-1)
	for _, item := range l.Items[1:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, n)
	}
	return &coreast.OrNode{Base: base(l), Exprs: exprs}, nil
}

func (a *Analyzer) analyzeDef(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "def requires a name")
	}
	sym, ok := l.Items[1].(*ast.Symbol)
	if !ok || sym.Namespace != "" {
		return nil, a.errAt(l, "def's first argument must be a plain symbol")
	}
	idx := 2
	doc := ""
	if len(l.Items) == 4 {
		if s, ok := l.Items[2].(*ast.StringLit); ok {
			doc = s.Value
			idx = 3
		}
	}
	var val coreast.Node = &coreast.Literal{Base: base(l)}
	if idx < len(l.Items) {
		var err *errs.Error
		val, err = a.expr(l.Items[idx])
		if err != nil {
			return nil, err
		}
	}
	return &coreast.DefNode{Base: base(l), Name: sym.Name, Value: val, Doc: doc}, nil
}

func (a *Analyzer) analyzeRecur(l *ast.List) (coreast.Node, *errs.Error) {
	args := make([]coreast.Node, 0, len(l.Items)-1)
	for _, item := range l.Items[1:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
	}
	return &coreast.RecurNode{Base: base(l), Args: args}, nil
}

func (a *Analyzer) analyzeLoop(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "loop requires a binding vector")
	}
	vec, ok := l.Items[1].(*ast.Vector)
	if !ok {
		return nil, a.errAt(l, "loop's first argument must be a binding vector")
	}
	bindings, err := bindingPairs(a, l, vec)
	if err != nil {
		return nil, err
	}
	body, err := a.bodyDo(l, base(l), 2)
	if err != nil {
		return nil, err
	}
	return &coreast.LoopNode{Base: base(l), Bindings: bindings, Body: body}, nil
}

func (a *Analyzer) analyzeReturn(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) > 2 {
		return nil, a.errAt(l, "return takes at most one value")
	}
	var val coreast.Node = &coreast.Literal{Base: base(l)}
	if len(l.Items) == 2 {
		var err *errs.Error
		val, err = a.expr(l.Items[1])
		if err != nil {
			return nil, err
		}
	}
	return &coreast.ReturnNode{Base: base(l), Value: val}, nil
}

func (a *Analyzer) analyzeFail(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) > 2 {
		return nil, a.errAt(l, "fail takes at most one value")
	}
	var val coreast.Node = &coreast.Literal{Base: base(l)}
	if len(l.Items) == 2 {
		var err *errs.Error
		val, err = a.expr(l.Items[1])
		if err != nil {
			return nil, err
		}
	}
	return &coreast.FailNode{Base: base(l), Value: val}, nil
}

var whereOps = map[string]coreast.WhereOp{
	"=": coreast.WhereEq, "!=": coreast.WhereNotEq,
	">": coreast.WhereGt, "<": coreast.WhereLt,
	">=": coreast.WhereGte, "<=": coreast.WhereLte,
	"in": coreast.WhereIn, "includes": coreast.WhereIncludes,
}

func (a *Analyzer) analyzeWhere(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "where requires a field path")
	}
	var path []coreast.Node
	switch f := l.Items[1].(type) {
	case *ast.Vector:
		for _, item := range f.Items {
			n, err := a.expr(item)
			if err != nil {
				return nil, err
			}
			path = append(path, n)
		}
	default:
		n, err := a.expr(f)
		if err != nil {
			return nil, err
		}
		path = []coreast.Node{n}
	}
	if len(l.Items) == 2 {
		return &coreast.WhereNode{Base: base(l), FieldPath: path, Op: coreast.WhereTruthy}, nil
	}
	if len(l.Items) != 4 {
		return nil, a.errAt(l, "where takes a field, an optional operator, and a value")
	}
	opSym, ok := l.Items[2].(*ast.Symbol)
	if !ok {
		return nil, a.errAt(l, "where's operator must be a bare symbol")
	}
	op, ok := whereOps[opSym.FullName()]
	if !ok {
		return nil, a.errAt(l, "unknown where operator %q", opSym.FullName())
	}
	val, err := a.expr(l.Items[3])
	if err != nil {
		return nil, err
	}
	return &coreast.WhereNode{Base: base(l), FieldPath: path, Op: op, Value: val}, nil
}

func (a *Analyzer) predCombinator(l *ast.List, kind coreast.PredCombinatorKind) (coreast.Node, *errs.Error) {
	preds := make([]coreast.Node, 0, len(l.Items)-1)
	for _, item := range l.Items[1:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		preds = append(preds, n)
	}
	return &coreast.PredCombinatorNode{Base: base(l), Kind: kind, Preds: preds}, nil
}

func (a *Analyzer) analyzeAllOf(l *ast.List) (coreast.Node, *errs.Error) {
	return a.predCombinator(l, coreast.PredAll)
}
func (a *Analyzer) analyzeAnyOf(l *ast.List) (coreast.Node, *errs.Error) {
	return a.predCombinator(l, coreast.PredAny)
}
func (a *Analyzer) analyzeNoneOf(l *ast.List) (coreast.Node, *errs.Error) {
	return a.predCombinator(l, coreast.PredNone)
}

func (a *Analyzer) analyzeJuxt(l *ast.List) (coreast.Node, *errs.Error) {
	fns := make([]coreast.Node, 0, len(l.Items)-1)
	for _, item := range l.Items[1:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		fns = append(fns, n)
	}
	return &coreast.JuxtNode{Base: base(l), Fns: fns}, nil
}

func (a *Analyzer) analyzePmap(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) != 3 {
		return nil, a.errAt(l, "pmap takes a function and a collection")
	}
	fn, err := a.expr(l.Items[1])
	if err != nil {
		return nil, err
	}
	coll, err := a.expr(l.Items[2])
	if err != nil {
		return nil, err
	}
	return &coreast.PmapNode{Base: base(l), Fn: fn, Coll: coll}, nil
}

func (a *Analyzer) analyzePcalls(l *ast.List) (coreast.Node, *errs.Error) {
	fns := make([]coreast.Node, 0, len(l.Items)-1)
	for _, item := range l.Items[1:] {
		n, err := a.expr(item)
		if err != nil {
			return nil, err
		}
		fns = append(fns, n)
	}
	return &coreast.PcallsNode{Base: base(l), Fns: fns}, nil
}

func staticID(a *Analyzer, n ast.Node) (string, *errs.Error) {
	switch v := n.(type) {
	case *ast.KeywordLit:
		return v.Name, nil
	case *ast.StringLit:
		return v.Value, nil
	default:
		return "", a.errAt(n, "expected a static keyword or string id")
	}
}

func (a *Analyzer) analyzeTask(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "task requires an id")
	}
	id, err := staticID(a, l.Items[1])
	if err != nil {
		return nil, err
	}
	body, berr := a.bodyDo(l, base(l), 2)
	if berr != nil {
		return nil, berr
	}
	return &coreast.TaskNode{Base: base(l), ID: id, Body: body}, nil
}

func (a *Analyzer) analyzeTaskDynamic(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "task-dynamic requires an id expression")
	}
	idExpr, err := a.expr(l.Items[1])
	if err != nil {
		return nil, err
	}
	body, berr := a.bodyDo(l, base(l), 2)
	if berr != nil {
		return nil, berr
	}
	return &coreast.TaskDynamicNode{Base: base(l), IDExpr: idExpr, Body: body}, nil
}

func (a *Analyzer) analyzeStepDone(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) != 3 {
		return nil, a.errAt(l, "step-done takes an id and a summary")
	}
	id, err := staticID(a, l.Items[1])
	if err != nil {
		return nil, err
	}
	summary, serr := a.expr(l.Items[2])
	if serr != nil {
		return nil, serr
	}
	return &coreast.StepDoneNode{Base: base(l), ID: id, Summary: summary}, nil
}

func (a *Analyzer) analyzeTaskReset(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) != 2 {
		return nil, a.errAt(l, "task-reset takes exactly one id")
	}
	id, err := staticID(a, l.Items[1])
	if err != nil {
		return nil, err
	}
	return &coreast.TaskResetNode{Base: base(l), ID: id}, nil
}

// threadInto inserts subject as the first (-> ) or last (->> ) argument of
// each subsequent form, then re-parses the rewritten chain as plain
// application forms.
func threadInto(items []ast.Node, first bool) ast.Node {
	subject := items[0]
	for _, step := range items[1:] {
		switch v := step.(type) {
		case *ast.List:
			newItems := make([]ast.Node, len(v.Items)+1)
			if first {
				newItems[0] = v.Items[0]
				newItems[1] = subject
				copy(newItems[2:], v.Items[1:])
			} else {
				copy(newItems, v.Items)
				newItems[len(newItems)-1] = subject
			}
			subject = &ast.List{Base: ast.Base{Pos: v.Position()}, Items: newItems}
		default:
			subject = &ast.List{Base: ast.Base{Pos: step.Position()}, Items: []ast.Node{step, subject}}
		}
	}
	return subject
}

func (a *Analyzer) analyzeThreadFirst(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "-> requires at least one form")
	}
	return a.expr(threadInto(l.Items[1:], true))
}

func (a *Analyzer) analyzeThreadLast(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "->> requires at least one form")
	}
	return a.expr(threadInto(l.Items[1:], false))
}

func (a *Analyzer) analyzeWhen(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "when requires a test")
	}
	cond, err := a.expr(l.Items[1])
	if err != nil {
		return nil, err
	}
	then, berr := a.bodyDo(l, base(l), 2)
	if berr != nil {
		return nil, berr
	}
	return &coreast.IfNode{Base: base(l), Cond: cond, Then: then, Else: &coreast.Literal{Base: base(l)}}, nil
}

func (a *Analyzer) analyzeWhenLet(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 2 {
		return nil, a.errAt(l, "when-let requires a binding vector")
	}
	vec, ok := l.Items[1].(*ast.Vector)
	if !ok || len(vec.Items) != 2 {
		return nil, a.errAt(l, "when-let's binding vector must be [name expr]")
	}
	pat, err := a.buildPattern(vec.Items[0])
	if err != nil {
		return nil, err
	}
	val, verr := a.expr(vec.Items[1])
	if verr != nil {
		return nil, verr
	}
	if pat.Kind != coreast.PatVar {
		return nil, a.errAt(l, "when-let's binding target must be a plain symbol")
	}
	then, berr := a.bodyDo(l, base(l), 2)
	if berr != nil {
		return nil, berr
	}
	testVar := &coreast.Var{Base: base(l), Name: pat.Name}
	ifNode := &coreast.IfNode{Base: base(l), Cond: testVar, Then: then, Else: &coreast.Literal{Base: base(l)}}
	return &coreast.LetNode{Base: base(l), Bindings: []coreast.Binding{{Pattern: pat, Value: val}}, Body: ifNode}, nil
}

func (a *Analyzer) analyzeIfLet(l *ast.List) (coreast.Node, *errs.Error) {
	if len(l.Items) < 3 || len(l.Items) > 4 {
		return nil, a.errAt(l, "if-let takes a binding vector, a then branch, and an optional else branch")
	}
	vec, ok := l.Items[1].(*ast.Vector)
	if !ok || len(vec.Items) != 2 {
		return nil, a.errAt(l, "if-let's binding vector must be [name expr]")
	}
	pat, err := a.buildPattern(vec.Items[0])
	if err != nil {
		return nil, err
	}
	if pat.Kind != coreast.PatVar {
		return nil, a.errAt(l, "if-let's binding target must be a plain symbol")
	}
	val, verr := a.expr(vec.Items[1])
	if verr != nil {
		return nil, verr
	}
	then, terr := a.expr(l.Items[2])
	if terr != nil {
		return nil, terr
	}
	var els coreast.Node = &coreast.Literal{Base: base(l)}
	if len(l.Items) == 4 {
		els, err = a.expr(l.Items[3])
		if err != nil {
			return nil, err
		}
	}
	testVar := &coreast.Var{Base: base(l), Name: pat.Name}
	ifNode := &coreast.IfNode{Base: base(l), Cond: testVar, Then: then, Else: els}
	return &coreast.LetNode{Base: base(l), Bindings: []coreast.Binding{{Pattern: pat, Value: val}}, Body: ifNode}, nil
}

func (a *Analyzer) analyzeCond(l *ast.List) (coreast.Node, *errs.Error) {
	clauses := l.Items[1:]
	if len(clauses)%2 != 0 {
		return nil, a.errAt(l, "cond requires an even number of test/expr forms")
	}
	if len(clauses) == 0 {
		return &coreast.Literal{Base: base(l)}, nil
	}
	var build func(i int) (coreast.Node, *errs.Error)
	build = func(i int) (coreast.Node, *errs.Error) {
		if i >= len(clauses) {
			return &coreast.Literal{Base: base(l)}, nil
		}
		if kw, ok := clauses[i].(*ast.KeywordLit); ok && kw.Name == "else" {
			return a.expr(clauses[i+1])
		}
		cond, err := a.expr(clauses[i])
		if err != nil {
			return nil, err
		}
		then, err := a.expr(clauses[i+1])
		if err != nil {
			return nil, err
		}
		els, err := build(i + 2)
		if err != nil {
			return nil, err
		}
		return &coreast.IfNode{Base: base(l), Cond: cond, Then: then, Else: els}, nil
	}
	return build(0)
}
