// Package config carries the runtime's fixed limits and file-extension
// conventions, plain const/var declarations in the teacher's own
// internal/config/constants.go style, extended with a YAML override loader
// for the limits a host wants to tune (spec §4.5/§9's sandbox/analysis
// budgets).
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the current runtime version.
var Version = "0.1.0"

const SourceFileExt = ".ptcl"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".ptcl", ".ptclisp"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// Default limits, matching the figures named throughout spec §4.5/§9.
const (
	DefaultTimeoutMs            = 1000
	DefaultMaxHeapBytes         = 10 * 1024 * 1024
	DefaultMaxSymbols           = 10000
	DefaultMaxPrintLength       = 2000
	DefaultMaxEvalDepth         = 10000
	DefaultMaxLoopIterations    = 1000
	DefaultRegexMaxPatternBytes = 256
	DefaultRegexMaxScanBytes    = 32 * 1024
)

// Limits bundles every tunable budget a host can override. Fields mirror
// sandbox.Limits/analyzer.Config/the evaluator's own depth and loop caps,
// kept as a separate struct here (rather than importing those packages)
// so config stays a leaf dependency loadable before any of them.
type Limits struct {
	Timeout              time.Duration
	MaxHeapBytes         uint64
	MaxSymbols           int
	MaxPrintLength       int
	MaxEvalDepth         int
	MaxLoopIterations    int
	RegexMaxPatternBytes int
	RegexMaxScanBytes    int
}

// DefaultLimits returns the spec's out-of-the-box budget.
func DefaultLimits() Limits {
	return Limits{
		Timeout:              DefaultTimeoutMs * time.Millisecond,
		MaxHeapBytes:         DefaultMaxHeapBytes,
		MaxSymbols:           DefaultMaxSymbols,
		MaxPrintLength:       DefaultMaxPrintLength,
		MaxEvalDepth:         DefaultMaxEvalDepth,
		MaxLoopIterations:    DefaultMaxLoopIterations,
		RegexMaxPatternBytes: DefaultRegexMaxPatternBytes,
		RegexMaxScanBytes:    DefaultRegexMaxScanBytes,
	}
}

// fileOverrides is the YAML shape a host config file may carry; any field
// left unset (zero) keeps the default.
type fileOverrides struct {
	TimeoutMs            int   `yaml:"timeout_ms"`
	MaxHeapBytes          uint64 `yaml:"max_heap_bytes"`
	MaxSymbols            int   `yaml:"max_symbols"`
	MaxPrintLength        int   `yaml:"max_print_length"`
	MaxEvalDepth          int   `yaml:"max_eval_depth"`
	MaxLoopIterations     int   `yaml:"max_loop_iterations"`
	RegexMaxPatternBytes  int   `yaml:"regex_max_pattern_bytes"`
	RegexMaxScanBytes     int   `yaml:"regex_max_scan_bytes"`
}

// Load reads a YAML file and applies any overrides on top of DefaultLimits.
// A missing file is not an error: it just yields the defaults, matching a
// host that ships no config at all.
func Load(path string) (Limits, error) {
	limits := DefaultLimits()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return limits, nil
	}
	if err != nil {
		return limits, err
	}
	var ov fileOverrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return limits, err
	}
	if ov.TimeoutMs > 0 {
		limits.Timeout = time.Duration(ov.TimeoutMs) * time.Millisecond
	}
	if ov.MaxHeapBytes > 0 {
		limits.MaxHeapBytes = ov.MaxHeapBytes
	}
	if ov.MaxSymbols > 0 {
		limits.MaxSymbols = ov.MaxSymbols
	}
	if ov.MaxPrintLength > 0 {
		limits.MaxPrintLength = ov.MaxPrintLength
	}
	if ov.MaxEvalDepth > 0 {
		limits.MaxEvalDepth = ov.MaxEvalDepth
	}
	if ov.MaxLoopIterations > 0 {
		limits.MaxLoopIterations = ov.MaxLoopIterations
	}
	if ov.RegexMaxPatternBytes > 0 {
		limits.RegexMaxPatternBytes = ov.RegexMaxPatternBytes
	}
	if ov.RegexMaxScanBytes > 0 {
		limits.RegexMaxScanBytes = ov.RegexMaxScanBytes
	}
	return limits, nil
}
