package parser

import "github.com/andreasronge/ptc-runner-sub009/internal/pipeline"

// Processor is the parse stage of the run pipeline (spec §6.1), grounded on
// the teacher's own `ParserProcessor` (internal/parser/processor.go): read
// the full source into a Program or record its parse_error and let later
// stages no-op.
type Processor struct{}

func (Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	prog, err := Parse(ctx.Source)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Program = prog
	return ctx
}
