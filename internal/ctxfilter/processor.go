package ctxfilter

import (
	"github.com/andreasronge/ptc-runner-sub009/internal/pipeline"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// Processor trims ctx.Options.Ctx down to the keys the program can actually
// read when Options.FilterContext is set (spec §4.7): a no-op otherwise, and
// a no-op once a prior stage has already failed.
type Processor struct{}

func (Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.CoreNode == nil || ctx.Failed() || !ctx.Options.FilterContext {
		return ctx
	}
	keys := Collect(ctx.CoreNode)
	referenced := make(map[string]bool, len(keys.Ctx))
	for _, k := range keys.Ctx {
		referenced[k] = true
	}
	trimmed := values.NewMap()
	for _, e := range ctx.Options.Ctx.Entries {
		if referenced[keyName(e.Key)] || !isCollection(e.Value) {
			trimmed = trimmed.Assoc(e.Key, e.Value)
		}
	}
	ctx.Options.Ctx = trimmed
	return ctx
}

func keyName(k interface{}) string {
	switch v := k.(type) {
	case values.Keyword:
		return string(v)
	case string:
		return v
	default:
		return ""
	}
}

// isCollection reports whether v is a vector/map/set, the only kinds §4.7
// allows FilterContext to drop when unreferenced; every scalar ctx value is
// always kept regardless of whether the program statically references it.
func isCollection(v interface{}) bool {
	switch v.(type) {
	case *values.Vector, *values.Map, *values.Set:
		return true
	default:
		return false
	}
}
