package evaluator

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/printer"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// stringify renders a value for `str`/`join`: scalars are rendered bare for
// concatenation, and anything else falls back to printer.Print.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case *big.Int:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case values.Keyword:
		return ":" + string(t)
	default:
		return printer.Print(t)
	}
}

func stringArg(src coreast.Node, name string, v interface{}) (string, *errs.Error) {
	s, ok := v.(string)
	if !ok {
		return "", typeErr(src, "%s requires a string argument, got %T", name, v)
	}
	return s, nil
}

// matchTarget resolves a string-or-regex match argument shared by replace/split.
func matchTarget(v interface{}) (string, *values.Regex, bool) {
	switch t := v.(type) {
	case string:
		return t, nil, true
	case *values.Regex:
		return "", t, true
	default:
		return "", nil, false
	}
}

func init() {
	register("str", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteString(stringify(a))
		}
		return b.String(), nil
	})

	register("subs", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 && len(args) != 3 {
			return nil, arityErr(src, "subs", "2 or 3", len(args))
		}
		s, err := stringArg(src, "subs", args[0])
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		start, err := intArg(src, "subs", args[1])
		if err != nil {
			return nil, err
		}
		end := len(runes)
		if len(args) == 3 {
			end, err = intArg(src, "subs", args[2])
			if err != nil {
				return nil, err
			}
		}
		if start < 0 || end > len(runes) || start > end {
			return nil, errAt(src, errs.RuntimeError, "subs range [%d,%d) out of bounds for string of length %d", start, end, len(runes))
		}
		return string(runes[start:end]), nil
	})

	register("split", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "split", "2", len(args))
		}
		s, err := stringArg(src, "split", args[0])
		if err != nil {
			return nil, err
		}
		var parts []string
		if sep, re, ok := matchTarget(args[1]); ok {
			if re != nil {
				parts = re.Compiled.Split(s, -1)
			} else {
				parts = strings.Split(s, sep)
			}
		} else {
			return nil, typeErr(src, "split requires a string or regex separator, got %T", args[1])
		}
		out := make([]interface{}, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return &values.Vector{Items: out}, nil
	})

	register("join", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 && len(args) != 2 {
			return nil, arityErr(src, "join", "1 or 2", len(args))
		}
		coll := args[0]
		sep := ""
		if len(args) == 2 {
			coll = args[1]
			s, err := stringArg(src, "join", args[0])
			if err != nil {
				return nil, err
			}
			sep = s
		}
		items, err := requireSeq(src, "join", coll)
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = stringify(it)
		}
		return strings.Join(parts, sep), nil
	})

	register("trim", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "trim", "1", len(args))
		}
		s, err := stringArg(src, "trim", args[0])
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(s), nil
	})

	register("replace", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 3 {
			return nil, arityErr(src, "replace", "3", len(args))
		}
		s, err := stringArg(src, "replace", args[0])
		if err != nil {
			return nil, err
		}
		repl, err := stringArg(src, "replace", args[2])
		if err != nil {
			return nil, err
		}
		if _, re, ok := matchTarget(args[1]); ok && re != nil {
			return re.Compiled.ReplaceAllString(s, repl), nil
		}
		match, err := stringArg(src, "replace", args[1])
		if err != nil {
			return nil, err
		}
		return strings.ReplaceAll(s, match, repl), nil
	})

	register("upcase", strCaseFn("upcase", strings.ToUpper))
	register("upper-case", strCaseFn("upper-case", strings.ToUpper))
	register("downcase", strCaseFn("downcase", strings.ToLower))
	register("lower-case", strCaseFn("lower-case", strings.ToLower))

	register("starts-with?", strBinaryPred("starts-with?", strings.HasPrefix))
	register("ends-with?", strBinaryPred("ends-with?", strings.HasSuffix))
	register("includes?", strBinaryPred("includes?", strings.Contains))

	register("index-of", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "index-of", "2", len(args))
		}
		s, err := stringArg(src, "index-of", args[0])
		if err != nil {
			return nil, err
		}
		sub, err := stringArg(src, "index-of", args[1])
		if err != nil {
			return nil, err
		}
		idx := strings.Index(s, sub)
		if idx < 0 {
			return nil, nil
		}
		return big.NewInt(int64(len([]rune(s[:idx])))), nil
	})

	register("last-index-of", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, "last-index-of", "2", len(args))
		}
		s, err := stringArg(src, "last-index-of", args[0])
		if err != nil {
			return nil, err
		}
		sub, err := stringArg(src, "last-index-of", args[1])
		if err != nil {
			return nil, err
		}
		idx := strings.LastIndex(s, sub)
		if idx < 0 {
			return nil, nil
		}
		return big.NewInt(int64(len([]rune(s[:idx])))), nil
	})

	register("parse-long", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "parse-long", "1", len(args))
		}
		s, err := stringArg(src, "parse-long", args[0])
		if err != nil {
			return nil, err
		}
		i, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return nil, nil
		}
		return i, nil
	})

	register("parse-double", func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, "parse-double", "1", len(args))
		}
		s, err := stringArg(src, "parse-double", args[0])
		if err != nil {
			return nil, err
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return nil, nil
		}
		return f, nil
	})
}

func strCaseFn(name string, fn func(string) string) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 1 {
			return nil, arityErr(src, name, "1", len(args))
		}
		s, err := stringArg(src, name, args[0])
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func strBinaryPred(name string, fn func(s, sub string) bool) BuiltinFunc {
	return func(args []interface{}, ec *EvalCtx, src coreast.Node) (interface{}, *errs.Error) {
		if len(args) != 2 {
			return nil, arityErr(src, name, "2", len(args))
		}
		s, err := stringArg(src, name, args[0])
		if err != nil {
			return nil, err
		}
		sub, err := stringArg(src, name, args[1])
		if err != nil {
			return nil, err
		}
		return fn(s, sub), nil
	}
}
