// Package signature implements the compact type grammar of spec §4.6: tool
// I/O declarations and the `signature:` option on `run` used to validate
// `step.return`.
//
//	signature   := (param-list) -> type | type
//	param-list  := name type (, name type)*
//	type        := primitive | [type] | {field-list} | :map | type?
//	primitive   := :string | :int | :float | :bool | :keyword | :any
//	field-list  := name type (, name type)*
package signature

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// Primitive is one of the scalar leaf types.
type Primitive string

const (
	PString  Primitive = "string"
	PInt     Primitive = "int"
	PFloat   Primitive = "float"
	PBool    Primitive = "bool"
	PKeyword Primitive = "keyword"
	PAny     Primitive = "any"
)

// Kind discriminates the Type sum.
type Kind int

const (
	KindPrimitive Kind = iota
	KindList
	KindRecord
	KindMap
)

// Field is one named, possibly-optional record field.
type Field struct {
	Name     string
	Type     *Type
	Optional bool
	// Firewalled is true when Name begins with "_": present in runtime
	// data and available to the next turn, hidden from prompts/parent view.
	Firewalled bool
}

// Type is one node of the signature grammar.
type Type struct {
	Kind      Kind
	Primitive Primitive // KindPrimitive
	Elem      *Type     // KindList
	Fields    []Field   // KindRecord
	Optional  bool      // trailing `?`
}

// Signature is a full tool/return declaration.
type Signature struct {
	Params []Field // empty for a bare `type` signature
	Return *Type
	Source string // canonical/original source text
}

// Mode controls extra-field handling and error vs. warning severity.
type Mode int

const (
	ModeEnabled Mode = iota // errors on missing/mismatched required; warns on coercion; ignores extras (default, §9)
	ModeWarnOnly
	ModeDisabled
	ModeStrict // extra fields rejected as errors
)

// Parse parses a signature string.
func Parse(src string) (*Signature, *errs.Error) {
	p := &parser{s: src}
	p.skipSpace()
	sig := &Signature{Source: src}

	if p.peek() == '(' {
		p.next()
		p.skipSpace()
		if p.peek() != ')' {
			for {
				name, err := p.ident()
				if err != nil {
					return nil, err
				}
				p.skipSpace()
				typ, err := p.parseType()
				if err != nil {
					return nil, err
				}
				sig.Params = append(sig.Params, Field{Name: name, Type: typ, Optional: typ.Optional, Firewalled: strings.HasPrefix(name, "_")})
				p.skipSpace()
				if p.peek() == ',' {
					p.next()
					p.skipSpace()
					continue
				}
				break
			}
		}
		if p.peek() != ')' {
			return nil, errs.New(errs.AnalysisError, "signature: expected ')' in %q", src)
		}
		p.next()
		p.skipSpace()
		if !p.consumeArrow() {
			return nil, errs.New(errs.AnalysisError, "signature: expected '->' after param list in %q", src)
		}
		p.skipSpace()
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		sig.Return = ret
		return sig, nil
	}

	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	sig.Return = ret
	return sig, nil
}

// Render produces the canonical string form of a signature (§4.6 renderer).
func (s *Signature) Render() string {
	var b strings.Builder
	if len(s.Params) > 0 || s.Return == nil {
		b.WriteByte('(')
		for i, f := range s.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteByte(' ')
			b.WriteString(renderType(f.Type))
		}
		b.WriteString(") -> ")
	}
	b.WriteString(renderType(s.Return))
	return b.String()
}

func renderType(t *Type) string {
	if t == nil {
		return ":any"
	}
	var s string
	switch t.Kind {
	case KindPrimitive:
		s = ":" + string(t.Primitive)
	case KindList:
		s = "[" + renderType(t.Elem) + "]"
	case KindMap:
		s = ":map"
	case KindRecord:
		var b strings.Builder
		b.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteByte(' ')
			b.WriteString(renderType(f.Type))
		}
		b.WriteByte('}')
		s = b.String()
	}
	if t.Optional {
		s += "?"
	}
	return s
}

type parser struct {
	s string
	i int
}

func (p *parser) peek() byte {
	if p.i >= len(p.s) {
		return 0
	}
	return p.s[p.i]
}

func (p *parser) peekAt(n int) byte {
	if p.i+n >= len(p.s) {
		return 0
	}
	return p.s[p.i+n]
}

func (p *parser) next() byte {
	c := p.peek()
	p.i++
	return c
}

func (p *parser) skipSpace() {
	for p.i < len(p.s) && (p.s[p.i] == ' ' || p.s[p.i] == '\t' || p.s[p.i] == '\n') {
		p.i++
	}
}

func (p *parser) consumeArrow() bool {
	if p.peek() == '-' && p.peekAt(1) == '>' {
		p.i += 2
		return true
	}
	return false
}

func (p *parser) ident() (string, *errs.Error) {
	start := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.i++
			continue
		}
		break
	}
	if p.i == start {
		return "", errs.New(errs.AnalysisError, "signature: expected identifier in %q at %d", p.s, start)
	}
	return p.s[start:p.i], nil
}

func (p *parser) parseType() (*Type, *errs.Error) {
	p.skipSpace()
	var t *Type
	switch p.peek() {
	case '[':
		p.next()
		p.skipSpace()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ']' {
			return nil, errs.New(errs.AnalysisError, "signature: expected ']' in %q", p.s)
		}
		p.next()
		t = &Type{Kind: KindList, Elem: elem}
	case '{':
		p.next()
		p.skipSpace()
		var fields []Field
		if p.peek() != '}' {
			for {
				name, err := p.ident()
				if err != nil {
					return nil, err
				}
				p.skipSpace()
				ft, err := p.parseType()
				if err != nil {
					return nil, err
				}
				fields = append(fields, Field{Name: name, Type: ft, Optional: ft.Optional, Firewalled: strings.HasPrefix(name, "_")})
				p.skipSpace()
				if p.peek() == ',' {
					p.next()
					p.skipSpace()
					continue
				}
				break
			}
		}
		if p.peek() != '}' {
			return nil, errs.New(errs.AnalysisError, "signature: expected '}' in %q", p.s)
		}
		p.next()
		t = &Type{Kind: KindRecord, Fields: fields}
	case ':':
		p.next()
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		switch name {
		case "string":
			t = &Type{Kind: KindPrimitive, Primitive: PString}
		case "int":
			t = &Type{Kind: KindPrimitive, Primitive: PInt}
		case "float":
			t = &Type{Kind: KindPrimitive, Primitive: PFloat}
		case "bool":
			t = &Type{Kind: KindPrimitive, Primitive: PBool}
		case "keyword":
			t = &Type{Kind: KindPrimitive, Primitive: PKeyword}
		case "any":
			t = &Type{Kind: KindPrimitive, Primitive: PAny}
		case "map":
			t = &Type{Kind: KindMap}
		default:
			return nil, errs.New(errs.AnalysisError, "signature: unknown primitive ':%s'", name)
		}
	default:
		return nil, errs.New(errs.AnalysisError, "signature: expected a type at position %d in %q", p.i, p.s)
	}
	if p.peek() == '?' {
		p.next()
		t.Optional = true
	}
	return t, nil
}

// Warning is a non-fatal coercion notice produced by Validate.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Path, w.Message) }

// StripFirewalled removes firewalled fields (names starting with "_") from
// v wherever t describes a record shape, recursing into lists and nested
// records. It implements the hiding side of spec §4.6/GLOSSARY's firewalled
// field: the value stays in user_ns for the next turn (memcontract never
// calls this on Step.Memory), but a parent agent's view of the child's
// return — Step.Return, and so any ChildStep nested under it — never sees
// it. t may be nil, in which case v passes through unfiltered: an
// unsignatured return has no declared fields to hide.
func StripFirewalled(t *Type, v interface{}) interface{} {
	if t == nil || v == nil {
		return v
	}
	switch t.Kind {
	case KindRecord:
		m, ok := v.(*values.Map)
		if !ok {
			return v
		}
		out := values.NewMap()
		fields := make(map[string]Field, len(t.Fields))
		for _, f := range t.Fields {
			fields[f.Name] = f
		}
		for _, e := range m.Entries {
			name := keyName(e.Key)
			if f, declared := fields[name]; declared {
				if f.Firewalled {
					continue
				}
				out = out.Assoc(e.Key, StripFirewalled(f.Type, e.Value))
				continue
			}
			out = out.Assoc(e.Key, e.Value)
		}
		return out
	case KindList:
		vec, ok := v.(*values.Vector)
		if !ok {
			return v
		}
		items := make([]interface{}, len(vec.Items))
		for i, it := range vec.Items {
			items[i] = StripFirewalled(t.Elem, it)
		}
		return &values.Vector{Items: items}
	default:
		return v
	}
}

func keyName(k interface{}) string {
	switch v := k.(type) {
	case values.Keyword:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func typeMismatchErr(path, want string, got interface{}) *errs.Error {
	return errs.New(errs.ValidationError, "expected %s, got %T", want, got).WithPath(path)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// ValidateInput validates and coerces a tool/agent argument map against the
// signature's param list (§4.6 "Validation on input"). Lenient coercions
// (string->int/float/bool, int->float) are applied and reported as warnings;
// a missing optional field is accepted, a missing required field is an
// error unless mode is ModeWarnOnly. ModeDisabled skips validation entirely.
func ValidateInput(sig *Signature, args *values.Map, mode Mode) (*values.Map, []Warning, *errs.Error) {
	if mode == ModeDisabled || sig == nil {
		return args, nil, nil
	}
	if args == nil {
		args = values.NewMap()
	}
	recordType := &Type{Kind: KindRecord, Fields: sig.Params}
	coerced, warnings, err := validateType(recordType, args, mode, "", true)
	if err != nil {
		return nil, warnings, err
	}
	m, _ := coerced.(*values.Map)
	return m, warnings, nil
}

// ValidateOutput validates a return value against a signature's return type
// (§4.6 "Validation on output"): strict, no coercion, dotted-path errors
// rooted at "return".
func ValidateOutput(sig *Signature, value interface{}) *errs.Error {
	if sig == nil || sig.Return == nil {
		return nil
	}
	_, _, err := validateType(sig.Return, value, ModeStrict, "return", false)
	return err
}

// validateType is the recursive core shared by input and output validation.
// coerce enables the lenient input-side conversions; mode controls extra
// field handling on records and whether violations are errors or warnings.
func validateType(t *Type, v interface{}, mode Mode, path string, coerce bool) (interface{}, []Warning, *errs.Error) {
	if t == nil {
		return v, nil, nil
	}
	if v == nil {
		if t.Optional {
			return nil, nil, nil
		}
		return nil, nil, errs.New(errs.ValidationError, "missing required value").WithPath(path)
	}
	switch t.Kind {
	case KindPrimitive:
		return validatePrimitive(t.Primitive, v, path, coerce)
	case KindList:
		vec, ok := v.(*values.Vector)
		if !ok {
			return nil, nil, typeMismatchErr(path, "list", v)
		}
		outItems := make([]interface{}, len(vec.Items))
		var warnings []Warning
		for i, it := range vec.Items {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			cv, w, err := validateType(t.Elem, it, mode, elemPath, coerce)
			if err != nil {
				return nil, warnings, err
			}
			outItems[i] = cv
			warnings = append(warnings, w...)
		}
		return &values.Vector{Items: outItems}, warnings, nil
	case KindMap:
		m, ok := v.(*values.Map)
		if !ok {
			return nil, nil, typeMismatchErr(path, "map", v)
		}
		return m, nil, nil
	case KindRecord:
		return validateRecord(t, v, mode, path, coerce)
	default:
		return v, nil, nil
	}
}

func validatePrimitive(p Primitive, v interface{}, path string, coerce bool) (interface{}, []Warning, *errs.Error) {
	switch p {
	case PAny:
		return v, nil, nil
	case PString:
		if s, ok := v.(string); ok {
			return s, nil, nil
		}
		return nil, nil, typeMismatchErr(path, "string", v)
	case PInt:
		if i, ok := v.(*big.Int); ok {
			return i, nil, nil
		}
		if coerce {
			if s, ok := v.(string); ok {
				if i, okParse := new(big.Int).SetString(strings.TrimSpace(s), 10); okParse {
					return i, []Warning{{Path: path, Message: fmt.Sprintf("coerced string %q to int", s)}}, nil
				}
			}
		}
		return nil, nil, typeMismatchErr(path, "int", v)
	case PFloat:
		if f, ok := v.(float64); ok {
			return f, nil, nil
		}
		if coerce {
			if i, ok := v.(*big.Int); ok {
				f, _ := new(big.Float).SetInt(i).Float64()
				return f, []Warning{{Path: path, Message: "coerced int to float"}}, nil
			}
			if s, ok := v.(string); ok {
				if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
					return f, []Warning{{Path: path, Message: fmt.Sprintf("coerced string %q to float", s)}}, nil
				}
			}
		}
		return nil, nil, typeMismatchErr(path, "float", v)
	case PBool:
		if b, ok := v.(bool); ok {
			return b, nil, nil
		}
		if coerce {
			if s, ok := v.(string); ok {
				switch strings.ToLower(strings.TrimSpace(s)) {
				case "true":
					return true, []Warning{{Path: path, Message: fmt.Sprintf("coerced string %q to bool", s)}}, nil
				case "false":
					return false, []Warning{{Path: path, Message: fmt.Sprintf("coerced string %q to bool", s)}}, nil
				}
			}
		}
		return nil, nil, typeMismatchErr(path, "bool", v)
	case PKeyword:
		if k, ok := v.(values.Keyword); ok {
			return k, nil, nil
		}
		return nil, nil, typeMismatchErr(path, "keyword", v)
	default:
		return v, nil, nil
	}
}

func validateRecord(t *Type, v interface{}, mode Mode, path string, coerce bool) (interface{}, []Warning, *errs.Error) {
	m, ok := v.(*values.Map)
	if !ok {
		return nil, nil, typeMismatchErr(path, "record", v)
	}
	out := m
	var warnings []Warning
	seen := map[string]bool{}
	for _, f := range t.Fields {
		seen[f.Name] = true
		fieldPath := joinPath(path, f.Name)
		val, found := m.Get(values.Keyword(f.Name))
		if !found {
			val, found = m.Get(f.Name)
		}
		if !found {
			if f.Optional {
				continue
			}
			if mode == ModeWarnOnly {
				warnings = append(warnings, Warning{Path: fieldPath, Message: "missing required field"})
				continue
			}
			return nil, warnings, errs.New(errs.ValidationError, "missing required field %q", f.Name).WithPath(fieldPath)
		}
		cv, w, verr := validateType(f.Type, val, mode, fieldPath, coerce)
		if verr != nil {
			if mode == ModeWarnOnly {
				warnings = append(warnings, Warning{Path: fieldPath, Message: verr.Message})
				continue
			}
			return nil, warnings, verr
		}
		warnings = append(warnings, w...)
		out = out.Assoc(values.Keyword(f.Name), cv)
	}
	if mode == ModeStrict {
		for _, k := range m.Keys() {
			name := keyName(k)
			if !seen[name] {
				return nil, warnings, errs.New(errs.ValidationError, "unexpected field %q", name).WithPath(path)
			}
		}
	}
	return out, warnings, nil
}
