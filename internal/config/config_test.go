package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andreasronge/ptc-runner-sub009/internal/config"
)

func TestTrimSourceExt(t *testing.T) {
	testCases := []struct{ in, want string }{
		{"program.ptcl", "program"},
		{"program.ptclisp", "program"},
		{"program.txt", "program.txt"},
	}
	for _, tc := range testCases {
		if got := config.TrimSourceExt(tc.in); got != tc.want {
			t.Errorf("TrimSourceExt(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHasSourceExt(t *testing.T) {
	if !config.HasSourceExt("a/b/program.ptcl") {
		t.Error("HasSourceExt(.ptcl) = false, want true")
	}
	if config.HasSourceExt("a/b/program.txt") {
		t.Error("HasSourceExt(.txt) = true, want false")
	}
}

func TestDefaultLimitsMatchConstants(t *testing.T) {
	l := config.DefaultLimits()
	if l.Timeout != config.DefaultTimeoutMs*time.Millisecond {
		t.Errorf("Timeout = %v, want %dms", l.Timeout, config.DefaultTimeoutMs)
	}
	if l.MaxHeapBytes != config.DefaultMaxHeapBytes {
		t.Errorf("MaxHeapBytes = %d, want %d", l.MaxHeapBytes, config.DefaultMaxHeapBytes)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	l, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load(missing file) error: %v", err)
	}
	if l != config.DefaultLimits() {
		t.Errorf("Load(missing file) = %+v, want DefaultLimits()", l)
	}
}

func TestLoadAppliesPartialOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.yaml")
	content := "timeout_ms: 5000\nmax_symbols: 42\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	l, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Timeout != 5000*time.Millisecond {
		t.Errorf("Timeout = %v, want 5000ms", l.Timeout)
	}
	if l.MaxSymbols != 42 {
		t.Errorf("MaxSymbols = %d, want 42", l.MaxSymbols)
	}
	if l.MaxHeapBytes != config.DefaultMaxHeapBytes {
		t.Errorf("MaxHeapBytes = %d, want the untouched default %d", l.MaxHeapBytes, config.DefaultMaxHeapBytes)
	}
}
