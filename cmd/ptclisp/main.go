// Command ptclisp is a small development CLI: it runs one program against
// JSON ctx/memory fixtures and prints the resulting Step, grounded on the
// teacher's own "resolve args, build pipeline, run, print diagnostics" shape
// (cmd/funxy/main.go's runPipeline, pkg/cli/entry.go) but trimmed down to
// this runtime's single entry point — no modules, no bundler, no REPL.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/andreasronge/ptc-runner-sub009/internal/config"
	"github.com/andreasronge/ptc-runner-sub009/internal/trace"
	"github.com/andreasronge/ptc-runner-sub009/internal/tracestore"
	"github.com/andreasronge/ptc-runner-sub009/pkg/ptclisp"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ptclisp run <file> [options]

options:
  -ctx FILE              JSON object loaded as the run's ctx/data map
  -memory FILE           JSON object loaded as the run's starting user_ns
  -signature SIG         output signature to validate step.return against
  -float-precision N     round floats in step.return to N decimal places
  -config FILE           YAML file overriding the default sandbox timeout/heap limits
  -filter-context        trim ctx down to the keys the program actually reads
  -trace-store FILE      append the run's Step to a sqlite trace store`)
}

func main() {
	if len(os.Args) < 3 || os.Args[1] != "run" {
		usage()
		os.Exit(1)
	}

	path := os.Args[2]
	if !config.HasSourceExt(path) {
		fmt.Fprintf(os.Stderr, "ptclisp: %s: not a recognized source file (want one of %v)\n", path, config.SourceFileExtensions)
		os.Exit(1)
	}
	var (
		ctxPath, memPath, sig, configPath, traceStorePath string
		floatPrecision                                   *int
		filterContext                                    bool
	)

	args := os.Args[3:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-ctx":
			i++
			ctxPath = argAt(args, i)
		case "-memory":
			i++
			memPath = argAt(args, i)
		case "-signature":
			i++
			sig = argAt(args, i)
		case "-config":
			i++
			configPath = argAt(args, i)
		case "-filter-context":
			filterContext = true
		case "-trace-store":
			i++
			traceStorePath = argAt(args, i)
		case "-float-precision":
			i++
			var n int
			if _, err := fmt.Sscanf(argAt(args, i), "%d", &n); err == nil {
				floatPrecision = &n
			}
		default:
			fmt.Fprintf(os.Stderr, "ptclisp: unrecognized option %q\n", args[i])
			usage()
			os.Exit(1)
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptclisp: %s\n", err)
		os.Exit(1)
	}

	limits := config.DefaultLimits()
	if configPath != "" {
		limits, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ptclisp: config: %s\n", err)
			os.Exit(1)
		}
	}

	ctxData, err := loadJSONMap(ctxPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptclisp: ctx: %s\n", err)
		os.Exit(1)
	}
	memData, err := loadJSONMap(memPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptclisp: memory: %s\n", err)
		os.Exit(1)
	}

	step, err := ptclisp.Run(string(source), ptclisp.Options{
		Ctx:            ctxData,
		Memory:         memData,
		Signature:      sig,
		FloatPrecision: floatPrecision,
		Timeout:        limits.Timeout,
		MaxHeapBytes:   limits.MaxHeapBytes,
		FilterContext:  filterContext,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptclisp: %s\n", err)
		os.Exit(1)
	}

	if traceStorePath != "" {
		if err := saveToTraceStore(traceStorePath, step); err != nil {
			fmt.Fprintf(os.Stderr, "ptclisp: trace-store: %s\n", err)
			os.Exit(1)
		}
		name := config.TrimSourceExt(filepath.Base(path))
		fmt.Fprintf(os.Stderr, "ptclisp: saved trace for %q to %s\n", name, traceStorePath)
	}

	printStep(step)
	if step.Fail != nil {
		os.Exit(1)
	}
}

func saveToTraceStore(path string, step *trace.Step) error {
	ctx := context.Background()
	store, err := tracestore.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, step)
}

func argAt(args []string, i int) string {
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i]
}

func loadJSONMap(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func printStep(step *trace.Step) {
	out, err := json.MarshalIndent(step, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptclisp: encoding step: %s\n", err)
		return
	}
	if useColor() && step.Fail != nil {
		fmt.Printf("\x1b[31m%s\x1b[0m\n", out)
		return
	}
	if useColor() {
		fmt.Printf("\x1b[32m%s\x1b[0m\n", out)
		return
	}
	fmt.Println(string(out))
}

// useColor mirrors the teacher's detectColorLevel (internal/evaluator/builtins_term.go):
// NO_COLOR convention, a real terminal, and TERM != "dumb".
func useColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
