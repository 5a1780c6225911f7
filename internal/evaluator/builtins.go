package evaluator

import (
	"math/big"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

var builtinRegistry = map[string]*BuiltinValue{}

func register(name string, fn BuiltinFunc) {
	builtinRegistry[name] = &BuiltinValue{Name: name, Fn: fn}
}

// LookupBuiltin resolves a bare symbol against the builtin library (§4.4),
// the last step of variable lookup order (§4.3).
func LookupBuiltin(name string) (*BuiltinValue, bool) {
	b, ok := builtinRegistry[name]
	return b, ok
}

func arityErr(src coreast.Node, name string, want string, got int) *errs.Error {
	return errAt(src, errs.InvalidArity, "%s expects %s argument(s), got %d", name, want, got)
}

func typeErr(src coreast.Node, format string, args ...interface{}) *errs.Error {
	return errAt(src, errs.TypeError, format, args...)
}

func asInt(v interface{}) (*big.Int, bool) {
	i, ok := v.(*big.Int)
	return i, ok
}

func asFloatStrict(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asVector(v interface{}) (*values.Vector, bool) {
	vec, ok := v.(*values.Vector)
	return vec, ok
}

func asMap(v interface{}) (*values.Map, bool) {
	m, ok := v.(*values.Map)
	return m, ok
}
