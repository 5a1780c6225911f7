// Package printer renders runtime values back to PTC-Lisp literal syntax
// (spec §8.1's parse(print(tree)) round-trip, and `str`'s fallback
// stringification of non-scalar values). Closures, regexes, and
// var-references have no literal syntax of their own, so they render as
// opaque placeholders rather than attempting to reproduce source.
package printer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// maxDepth bounds recursive rendering so a pathological or cyclic-looking
// structure can't hang formatting; collections deeper than this are elided.
const maxDepth = 64

// Print renders v as a PTC-Lisp literal.
func Print(v interface{}) string {
	return print(v, 0)
}

func print(v interface{}, depth int) string {
	if depth > maxDepth {
		return "..."
	}
	switch t := v.(type) {
	case nil:
		return "nil"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return strconv.Quote(t)
	case values.Keyword:
		return ":" + string(t)
	case *values.Vector:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = print(it, depth+1)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case *values.Set:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = print(it, depth+1)
		}
		return "#{" + strings.Join(parts, " ") + "}"
	case *values.Map:
		parts := make([]string, len(t.Entries))
		for i, e := range t.Entries {
			parts[i] = print(e.Key, depth+1) + " " + print(e.Value, depth+1)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *values.Regex:
		return fmt.Sprintf("#regex[%s]", t.Source)
	case *values.VarReference:
		return "#'" + t.Name
	case *values.Closure:
		name := t.Name
		if name == "" {
			name = "anonymous"
		}
		return fmt.Sprintf("#fn[%s]", name)
	case *big.Int:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
