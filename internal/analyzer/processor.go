package analyzer

import "github.com/andreasronge/ptc-runner-sub009/internal/pipeline"

// Processor is the desugar/analysis stage (spec §4.2, §6.1), grounded on the
// teacher's `SemanticAnalyzerProcessor` (internal/analyzer/processor.go):
// no-op once a prior stage already failed, otherwise desugar the Program
// into a single Core AST node.
type Processor struct{ Config Config }

func NewProcessor() Processor { return Processor{Config: DefaultConfig} }

func (p Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil || ctx.Failed() {
		return ctx
	}
	node, err := New(p.Config).Analyze(ctx.Program)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.CoreNode = node
	return ctx
}
