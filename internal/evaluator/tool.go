package evaluator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andreasronge/ptc-runner-sub009/internal/coreast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func evalToolCall(node *coreast.ToolCallNode, env *Environment, ec *EvalCtx) (Outcome, *errs.Error) {
	argVal, o, err := evalValue(node.Args, env, ec)
	if err != nil || o != nil {
		return propagate(o, err)
	}
	argMap, isMap := argVal.(*values.Map)
	if !isMap {
		if argVal != nil {
			return Outcome{}, errAt(node, errs.InvalidToolArgs, "tool/%s requires a single map argument", node.Name)
		}
		argMap = values.NewMap()
	}

	tool, found := ec.Tools[node.Name]
	if !found {
		if len(ec.Tools) == 0 {
			return Outcome{}, errAt(node, errs.UnknownTool, "no tools available")
		}
		names := make([]string, 0, len(ec.Tools))
		for n := range ec.Tools {
			names = append(names, n)
		}
		sort.Strings(names)
		return Outcome{}, errAt(node, errs.UnknownTool, "unknown tool %q; available: %s", node.Name, strings.Join(names, ", "))
	}

	normalized, _ := snakeCaseKeys(argMap).(*values.Map)

	if tool.Signature != nil {
		coerced, _, verr := signature.ValidateInput(tool.Signature, normalized, ec.ValidationMode)
		if verr != nil {
			return Outcome{}, errAt(node, errs.InvalidToolArgs, "tool/%s args: %s", node.Name, verr.Error())
		}
		normalized = coerced
	}

	key := canonicalKey(node.Name, normalized)
	if tool.Cache {
		if cached, found := ec.ToolCache.Get(key); found {
			ec.ToolCalls = append(ec.ToolCalls, ToolCall{Name: node.Name, Args: normalized, Cached: true})
			return ok(cached), nil
		}
	}

	start := time.Now()
	result, callErr := tool.Fn(normalized)
	duration := time.Since(start).Milliseconds()
	if callErr != nil {
		return Outcome{}, errAt(node, errs.ToolError, "tool %q raised: %s", node.Name, callErr.Error())
	}

	value, stepErr := unwrapToolResult(node, result, ec)
	if stepErr != nil {
		return Outcome{}, stepErr
	}
	if tool.Signature != nil && tool.Signature.Return != nil {
		if verr := signature.ValidateOutput(tool.Signature, value); verr != nil {
			return Outcome{}, errAt(node, errs.TypeError, "tool/%s result: %s", node.Name, verr.Error())
		}
	}

	if tool.Cache {
		ec.ToolCache.Set(key, value)
	}
	ec.ToolCalls = append(ec.ToolCalls, ToolCall{Name: node.Name, Args: normalized, ResultSize: approxSize(value), DurationMs: duration})
	return ok(value), nil
}

// unwrapToolResult implements the tool-return envelope of §4.3: a plain
// value, {ok value}, {error reason}, or one carrying a __child_step__.
func unwrapToolResult(node *coreast.ToolCallNode, result interface{}, ec *EvalCtx) (interface{}, *errs.Error) {
	m, isMap := result.(*values.Map)
	if !isMap {
		return result, nil
	}
	if reason, found := m.Get(values.Keyword("error")); found {
		return nil, errAt(node, errs.ToolError, "tool %q returned error: %v", node.Name, reason)
	}
	childStep, hasChild := m.Get(values.Keyword("__child_step__"))
	value, hasValue := m.Get(values.Keyword("value"))
	if hasChild {
		ec.ChildSteps = append(ec.ChildSteps, ChildStep{Value: childStep})
		if hasValue {
			return value, nil
		}
		return nil, nil
	}
	if okVal, found := m.Get(values.Keyword("ok")); found {
		return okVal, nil
	}
	return m, nil
}

func kebabToSnake(s string) string { return strings.ReplaceAll(s, "-", "_") }

func snakeCaseKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case *values.Map:
		out := values.NewMap()
		for _, e := range val.Entries {
			var keyStr string
			switch k := e.Key.(type) {
			case values.Keyword:
				keyStr = kebabToSnake(string(k))
			case string:
				keyStr = kebabToSnake(k)
			default:
				keyStr = fmt.Sprint(k)
			}
			out = out.Assoc(keyStr, snakeCaseKeys(e.Value))
		}
		return out
	case *values.Vector:
		items := make([]interface{}, len(val.Items))
		for i, it := range val.Items {
			items[i] = snakeCaseKeys(it)
		}
		return &values.Vector{Items: items}
	default:
		return v
	}
}

func canonicalKey(name string, args *values.Map) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('|')
	keys := make([]string, 0, args.Len())
	index := map[string]interface{}{}
	for _, e := range args.Entries {
		ks := fmt.Sprint(e.Key)
		keys = append(keys, ks)
		index[ks] = e.Value
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, index[k])
	}
	return b.String()
}

func approxSize(v interface{}) int {
	return len(fmt.Sprintf("%v", v))
}
