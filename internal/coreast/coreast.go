// Package coreast defines the Core AST: the closed set of node variants the
// analyzer desugars raw syntax into (spec §3.3). The evaluator walks only
// this tree — it never sees the raw reader forms of internal/ast.
package coreast

import "github.com/andreasronge/ptc-runner-sub009/internal/ast"

// Node is any Core AST node. Nodes are immutable after construction.
type Node interface {
	Position() ast.Pos
	coreNode()
}

type Base struct{ Pos ast.Pos }

func (b Base) Position() ast.Pos { return b.Pos }
func (Base) coreNode()           {}

// NamespaceKind identifies where a namespaced symbol forces its lookup.
type NamespaceKind int

const (
	NsNone NamespaceKind = iota
	NsCtx                // ctx/ or data/
	NsMemory             // memory/
	NsTool               // tool/
)

// Var is a bare-symbol lookup resolved at eval time through
// local env -> user_ns -> builtin (§4.3).
type Var struct {
	Base
	Name string
}

// Data is a `ctx/key` or `data/key` reference (§3.2).
type Data struct {
	Base
	Key string
}

// MemoryRef is a `memory/name` reference, forcing user_ns lookup.
type MemoryRef struct {
	Base
	Name string
}

// Literal wraps a fully-evaluated constant (nil, bool, number, char-string).
type Literal struct {
	Base
	Value interface{} // nil, bool, *big.Int, float64, string (single-grapheme for chars)
}

// StringNode is a string literal (kept distinct from Literal so tooling can
// tell strings from bare chars without type-asserting the payload).
type StringNode struct {
	Base
	Value string
}

// KeywordNode is a keyword literal.
type KeywordNode struct {
	Base
	Name string
}

// VectorNode is a vector literal with evaluated-at-runtime children.
type VectorNode struct {
	Base
	Children []Node
}

// Pair is one key/value entry of a MapNode.
type Pair struct {
	Key   Node
	Value Node
}

// MapNode is a map literal.
type MapNode struct {
	Base
	Pairs []Pair
}

// SetNode is a set literal.
type SetNode struct {
	Base
	Children []Node
}

// PatternKind discriminates the destructuring-pattern variants of §3.3.
type PatternKind int

const (
	PatVar PatternKind = iota
	PatSeq
	PatSeqRest
	PatKeys
	PatMap
	PatAs
)

// Pattern is a destructuring pattern used by let/fn/loop bindings.
type Pattern struct {
	Kind PatternKind

	// PatVar
	Name string

	// PatSeq
	Seq []Pattern

	// PatSeqRest
	Leading []Pattern
	Rest    *Pattern // nil means no rest capture

	// PatKeys / PatMap: each key is matched keyword/string-tolerantly.
	Keys     []string          // the keys to pull from the map
	Renames  map[string]string // PatMap only: key -> local binding name
	Defaults map[string]Node   // key -> default expression (:or)

	// PatAs
	As    string
	Inner *Pattern
}

// Binding is one `(pattern, value_expr)` entry of a let/loop binding vector.
type Binding struct {
	Pattern Pattern
	Value   Node
}

// LetNode is `(let [bindings...] body...)`.
type LetNode struct {
	Base
	Bindings []Binding
	Body     Node // a Do for several body forms, else the single body node
}

// Param is one function parameter; the last Param may be Variadic (the
// "rest" pattern of a variadic fn).
type Param struct {
	Pattern  Pattern
	Variadic bool
}

// FnNode is `(fn [params...] body...)`.
type FnNode struct {
	Base
	Name   string // "" for anonymous; set for (defn name ...)
	Params []Param
	Body   Node
}

// CallNode is a function application; Target may itself be any expression
// (`(:k m)`, `((fn [..]) x)`, …).
type CallNode struct {
	Base
	Target Node
	Args   []Node
}

// ToolCallNode is `(tool/name args-map)`.
type ToolCallNode struct {
	Base
	Name string
	Args Node // always evaluates to a map
}

// IfNode is `(if c t e)`.
type IfNode struct {
	Base
	Cond, Then, Else Node
}

// DoNode sequences expressions, returning the last.
type DoNode struct {
	Base
	Exprs []Node
}

// AndNode / OrNode short-circuit, returning the last evaluated value.
type AndNode struct {
	Base
	Exprs []Node
}

type OrNode struct {
	Base
	Exprs []Node
}

// DefNode binds name in user_ns to the evaluated Value.
type DefNode struct {
	Base
	Name  string
	Value Node
	Doc   string // discarded docstring, kept only for completeness of meta
}

// RecurNode re-enters the nearest enclosing loop/fn with new arguments.
type RecurNode struct {
	Base
	Args []Node
}

// LoopNode is `(loop [bindings...] body...)`.
type LoopNode struct {
	Base
	Bindings []Binding
	Body     Node
}

// ReturnNode / FailNode are the explicit program-boundary signals of §4.8.
type ReturnNode struct {
	Base
	Value Node
}

type FailNode struct {
	Base
	Value Node
}

// WhereOp is one of the comparison operators a predicate builder supports.
type WhereOp int

const (
	WhereTruthy WhereOp = iota // (where :field) with no operator
	WhereEq
	WhereNotEq
	WhereGt
	WhereLt
	WhereGte
	WhereLte
	WhereIn
	WhereIncludes
)

// WhereNode compiles to a closure `fn(item) -> bool` at eval time.
type WhereNode struct {
	Base
	FieldPath []Node // one element for a bare keyword field, >1 for a vector path
	Op        WhereOp
	Value     Node // nil when Op == WhereTruthy
}

// PredCombinatorKind is all-of / any-of / none-of.
type PredCombinatorKind int

const (
	PredAll PredCombinatorKind = iota
	PredAny
	PredNone
)

// PredCombinatorNode composes predicate closures.
type PredCombinatorNode struct {
	Base
	Kind  PredCombinatorKind
	Preds []Node
}

// JuxtNode builds a function returning a vector of each fn applied to the
// same arguments.
type JuxtNode struct {
	Base
	Fns []Node
}

// PmapNode is `(pmap f coll)`.
type PmapNode struct {
	Base
	Fn   Node
	Coll Node
}

// PcallsNode is `(pcalls f1 f2 ...)`.
type PcallsNode struct {
	Base
	Fns []Node
}

// TaskNode / TaskDynamicNode / StepDoneNode / TaskResetNode back the
// cooperative multi-turn task bookkeeping referenced in §3.4/§6.4
// (journal/summaries): they mark a region of the program as belonging to a
// named sub-task for trace/journal purposes.
type TaskNode struct {
	Base
	ID   string
	Body Node
}

type TaskDynamicNode struct {
	Base
	IDExpr Node
	Body   Node
}

type StepDoneNode struct {
	Base
	ID      string
	Summary Node
}

type TaskResetNode struct {
	Base
	ID string
}

// BudgetRemainingNode is `(budget/remaining)`.
type BudgetRemainingNode struct{ Base }

// TurnHistoryNode is `*1`/`*2`/`*3`.
type TurnHistoryNode struct {
	Base
	N int
}

// VarRefNode is `#'name`, a handle to a user-namespace binding.
type VarRefNode struct {
	Base
	Name string
}
