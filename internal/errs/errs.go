// Package errs implements the tagged-sum error taxonomy of spec §7.
//
// Every stage of the runtime (parser, analyzer, evaluator, sandbox,
// signature validator) returns *Error instead of a bare error so the host
// can pattern-match on Reason and so the Step's `fail` field can carry a
// stable, LLM-legible label instead of an opaque message string.
package errs

import "fmt"

// Reason is one of the taxonomy entries in spec §7.
type Reason string

const (
	ParseError             Reason = "parse_error"
	AnalysisError          Reason = "analysis_error"
	InvalidArity           Reason = "invalid_arity"
	UnboundVar             Reason = "unbound_var"
	NotCallable            Reason = "not_callable"
	TypeError              Reason = "type_error"
	ArithmeticError        Reason = "arithmetic_error"
	ValidationError        Reason = "validation_error"
	UnknownTool            Reason = "unknown_tool"
	InvalidToolArgs        Reason = "invalid_tool_args"
	ToolError              Reason = "tool_error"
	DestructureError       Reason = "destructure_error"
	SymbolLimitExceeded    Reason = "symbol_limit_exceeded"
	Timeout                Reason = "timeout"
	MemoryExceeded         Reason = "memory_exceeded"
	MaxIterationsExceeded  Reason = "max_iterations_exceeded"
	RegexLimitExceeded     Reason = "regex_limit_exceeded"
	RuntimeError           Reason = "runtime" // generic fallback used by (fail v) with no :reason
)

// Error is the runtime's single error type: a reason atom, a message, an
// optional dotted path (validation errors) and an optional source position.
type Error struct {
	Reason  Reason
	Message string
	Path    string // dotted path, e.g. "return.results[0].customer.id"
	Line    int
	Column  int
	Hint    string // e.g. "Did you mean `all-of`?"
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Reason, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s (at %s)", e.Reason, e.Message, e.Path)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s [line %d, col %d]", msg, e.Line, e.Column)
	}
	if e.Hint != "" {
		msg = msg + " — " + e.Hint
	}
	return msg
}

// New builds a plain reason+message error.
func New(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source position.
func (e *Error) At(line, col int) *Error {
	e.Line, e.Column = line, col
	return e
}

// WithPath attaches a dotted validation path.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithHint attaches a short corrective suggestion.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Is reports whether e is non-nil and carries reason.
func (e *Error) Is(reason Reason) bool { return e != nil && e.Reason == reason }
