// Package values defines the runtime value representation of spec §3.1:
// nil, bool, arbitrary-precision int, float64, grapheme-aware string,
// keyword, vector, map, set, closure, var-reference, and regex. Go's own
// nil/bool/float64 stand in directly; the remaining variants get dedicated
// types so the evaluator and printer can type-switch on them cleanly.
package values

import (
	"math/big"
	"regexp"

	"golang.org/x/exp/slices"
)

// Keyword is an interned, non-namespaced symbolic identifier.
type Keyword string

// Vector is an ordered, indexable sequence.
type Vector struct {
	Items []interface{}
}

func NewVector(items ...interface{}) *Vector { return &Vector{Items: items} }

// MapEntry is one key/value pair of a Map, kept in insertion order.
type MapEntry struct {
	Key   interface{}
	Value interface{}
}

// Map is an insertion-ordered map restricted to keyword/string keys.
// Lookup is keyword<->string tolerant: an exact match wins, otherwise the
// alternate representation of the same key is tried (spec §3.1, §4.4).
type Map struct {
	Entries []MapEntry
}

func NewMap() *Map { return &Map{} }

func keyAlt(k interface{}) (interface{}, bool) {
	switch v := k.(type) {
	case Keyword:
		return string(v), true
	case string:
		return Keyword(v), true
	default:
		return nil, false
	}
}

// Get looks up key with keyword/string fallback. ok is false when absent.
func (m *Map) Get(key interface{}) (interface{}, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	if alt, ok := keyAlt(key); ok {
		for _, e := range m.Entries {
			if e.Key == alt {
				return e.Value, true
			}
		}
	}
	return nil, false
}

// Assoc returns a new Map with key set to value (copy-on-write, immutable
// values throughout the runtime).
func (m *Map) Assoc(key, value interface{}) *Map {
	out := &Map{Entries: make([]MapEntry, 0, len(m.Entries)+1)}
	replaced := false
	for _, e := range m.Entries {
		if e.Key == key {
			out.Entries = append(out.Entries, MapEntry{Key: key, Value: value})
			replaced = true
			continue
		}
		out.Entries = append(out.Entries, e)
	}
	if !replaced {
		out.Entries = append(out.Entries, MapEntry{Key: key, Value: value})
	}
	return out
}

// Dissoc returns a new Map without key (and its keyword/string alias).
func (m *Map) Dissoc(key interface{}) *Map {
	alt, hasAlt := keyAlt(key)
	out := &Map{Entries: make([]MapEntry, 0, len(m.Entries))}
	for _, e := range m.Entries {
		if e.Key == key || (hasAlt && e.Key == alt) {
			continue
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}

func (m *Map) Keys() []interface{} {
	out := make([]interface{}, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Key
	}
	return out
}

func (m *Map) Vals() []interface{} {
	out := make([]interface{}, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Value
	}
	return out
}

func (m *Map) Len() int { return len(m.Entries) }

// Set is an unordered collection of unique values, printed in insertion
// order for determinism.
type Set struct {
	Items []interface{}
}

func NewSet() *Set { return &Set{} }

func (s *Set) Has(v interface{}) bool {
	for _, it := range s.Items {
		if Equal(it, v) {
			return true
		}
	}
	return false
}

func (s *Set) Conj(v interface{}) *Set {
	if s.Has(v) {
		return s
	}
	out := &Set{Items: make([]interface{}, len(s.Items), len(s.Items)+1)}
	copy(out.Items, s.Items)
	out.Items = append(out.Items, v)
	return out
}

// Regex is an opaque compiled pattern, constructible only via (re-pattern s).
type Regex struct {
	Source   string
	Compiled *regexp.Regexp
}

// VarReference is a handle to a user_ns binding created by `def`/`#'name`.
type VarReference struct {
	Name string
}

// Closure is a captured lexical function. Env is an opaque *evaluator.Environment
// (interface{} here to avoid an import cycle between values and evaluator).
type Closure struct {
	Name     string
	Params   []Param
	Body     interface{} // coreast.Node
	Env      interface{} // *evaluator.Environment
	Builtin  func(args []interface{}) (interface{}, error)
	Arity    int // -1 means variadic/any arity, used for builtins only
}

// Param mirrors coreast.Param without importing coreast (kept import-free
// to break the values <-> coreast <-> evaluator cycle).
type Param struct {
	Pattern  interface{} // coreast.Pattern
	Variadic bool
}

// IsTruthy implements spec §3.1: only nil and false are falsy.
func IsTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// Equal implements PTC-Lisp value equality: numeric values compare across
// int/float, keyword and string are distinct, collections compare
// structurally and order-sensitively (sets order-insensitively).
func Equal(a, b interface{}) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *big.Int:
		switch bv := b.(type) {
		case *big.Int:
			return av.Cmp(bv) == 0
		case float64:
			f, _ := new(big.Float).SetInt(av).Float64()
			return f == bv
		}
		return false
	case float64:
		switch bv := b.(type) {
		case float64:
			return av == bv
		case *big.Int:
			f, _ := new(big.Float).SetInt(bv).Float64()
			return av == f
		}
		return false
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case Keyword:
		bv, ok := b.(Keyword)
		return ok && av == bv
	case *Vector:
		bv, ok := b.(*Vector)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, e := range av.Entries {
			bval, ok := bv.Get(e.Key)
			if !ok || !Equal(e.Value, bval) {
				return false
			}
		}
		return true
	case *Set:
		bv, ok := b.(*Set)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for _, it := range av.Items {
			if !bv.Has(it) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Less implements ordering for sort/sort-by/comparison operators. Only
// numbers and strings are ordered; other types panic with a *TypeMismatch
// that callers convert to a type_error.
type TypeMismatch struct{ Msg string }

func (t *TypeMismatch) Error() string { return t.Msg }

func Less(a, b interface{}) bool {
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if aok && bok {
		return af < bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}
	panic(&TypeMismatch{Msg: "values are not ordered"})
}

// AsFloat converts an int or float value to float64.
func AsFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	case float64:
		return n, true
	}
	return 0, false
}

// SortStable sorts a slice of values in place using less, stably.
func SortStable(items []interface{}, less func(a, b interface{}) bool) {
	slices.SortStableFunc(items, func(a, b interface{}) int {
		if less(a, b) {
			return -1
		}
		if less(b, a) {
			return 1
		}
		return 0
	})
}
