// Package template implements the prompt-assembly helpers of spec §2's
// "Template/prompt assembly" row: `{{placeholder}}` expansion and a data
// inventory renderer listing ctx's keys, shapes, and sizes. Both operate
// purely on values the runtime already computed; neither calls a host LLM
// transport, which stays out of scope per §1.
package template

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/andreasronge/ptc-runner-sub009/internal/printer"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// scanner walks tpl byte-by-byte to find `{{name}}` spans, the same
// position/readPosition/ch scanning shape internal/lexer uses for source
// text.
type scanner struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

func newScanner(input string) *scanner {
	s := &scanner{input: input}
	s.readChar()
	return s
}

func (s *scanner) readChar() {
	if s.readPosition >= len(s.input) {
		s.ch = 0
		s.position = s.readPosition
		return
	}
	s.ch = s.input[s.readPosition]
	s.position = s.readPosition
	s.readPosition++
}

func (s *scanner) peekAt(offset int) byte {
	pos := s.position + offset
	if pos >= len(s.input) {
		return 0
	}
	return s.input[pos]
}

// Expand replaces every `{{name}}` placeholder in tpl with the rendered
// value of data[name]. Names are plain keys (no dotted paths); a non-string
// value is rendered with the runtime's own printer. An unresolved
// placeholder, or an unterminated `{{`, is reported as an error rather than
// left verbatim, so a malformed prompt template fails fast at assembly time
// instead of silently shipping `{{typo}}` to the model.
func Expand(tpl string, data map[string]interface{}) (string, error) {
	var out strings.Builder
	s := newScanner(tpl)

	for s.ch != 0 {
		if s.ch == '{' && s.peekAt(1) == '{' {
			s.readChar()
			s.readChar()
			start := s.position
			for s.ch != 0 && !(s.ch == '}' && s.peekAt(1) == '}') {
				s.readChar()
			}
			if s.ch == 0 {
				return "", fmt.Errorf("template: unterminated {{ starting at byte %d", start-2)
			}
			name := strings.TrimSpace(tpl[start:s.position])
			s.readChar()
			s.readChar()

			v, ok := data[name]
			if !ok {
				return "", fmt.Errorf("template: unresolved placeholder {{%s}}", name)
			}
			out.WriteString(renderPlaceholder(v))
			continue
		}
		out.WriteByte(s.ch)
		s.readChar()
	}
	return out.String(), nil
}

func renderPlaceholder(v interface{}) string {
	if str, ok := v.(string); ok {
		return str
	}
	return printer.Print(v)
}

// DataInventory renders one line per ctx key describing its shape and size,
// sorted by key for deterministic output — the listing a host splices into
// a prompt so the model knows what `ctx/`/`data/` names are available
// without being shown the values themselves.
func DataInventory(ctx *values.Map) string {
	if ctx == nil || ctx.Len() == 0 {
		return "(no data)"
	}
	lines := make([]string, 0, ctx.Len())
	for _, e := range ctx.Entries {
		lines = append(lines, fmt.Sprintf("- %s: %s", keyName(e.Key), shapeOf(e.Value)))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
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

// shapeOf names a value's type and, for collections, its size — enough for
// a model to decide whether to iterate, index, or treat it as a scalar.
func shapeOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case string:
		return fmt.Sprintf("string (%d chars)", len([]rune(t)))
	case float64:
		return "float"
	case *big.Int:
		return "int"
	case values.Keyword:
		return "keyword"
	case *values.Vector:
		return fmt.Sprintf("vector of %d item(s)", len(t.Items))
	case *values.Map:
		return fmt.Sprintf("map with %d key(s)", t.Len())
	case *values.Set:
		return fmt.Sprintf("set of %d item(s)", len(t.Items))
	default:
		return "value"
	}
}
