// Package tests runs .ptcl fixtures through the compiled ptclisp binary and
// checks the resulting Step, the same "build the binary, exec it against
// fixture files, compare output" shape as the teacher's own functional
// suite — adapted to compare structured JSON fields (return/fail) rather
// than a verbatim text diff, since this CLI's whole output is one JSON Step
// rather than free-form REPL text.
package tests

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type wantStep struct {
	Return     interface{} `json:"return"`
	FailReason string      `json:"fail_reason"`
}

// TestFunctional runs every testdata/*.ptcl file that has a sibling
// testdata/*.want.json through the built binary and checks step.return or
// step.fail.reason against it.
func TestFunctional(t *testing.T) {
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("resolving project root: %v", err)
	}

	binaryPath := filepath.Join(projectRoot, "ptclisp-test-binary")
	defer os.Remove(binaryPath)

	build := exec.Command("go", "build", "-o", binaryPath, "./cmd/ptclisp")
	build.Dir = projectRoot
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("building ptclisp: %v\n%s", err, out)
	}

	fixtures, err := filepath.Glob("testdata/*.ptcl")
	if err != nil {
		t.Fatalf("globbing fixtures: %v", err)
	}
	if len(fixtures) == 0 {
		t.Skip("no testdata/*.ptcl fixtures found")
	}

	for _, fixture := range fixtures {
		fixture := fixture
		name := strings.TrimSuffix(filepath.Base(fixture), ".ptcl")

		t.Run(name, func(t *testing.T) {
			wantPath := strings.TrimSuffix(fixture, ".ptcl") + ".want.json"
			wantBytes, err := os.ReadFile(wantPath)
			if err != nil {
				t.Fatalf("reading %s: %v", wantPath, err)
			}
			var want wantStep
			if err := json.Unmarshal(wantBytes, &want); err != nil {
				t.Fatalf("parsing %s: %v", wantPath, err)
			}

			absFixture, err := filepath.Abs(fixture)
			if err != nil {
				t.Fatalf("resolving fixture path: %v", err)
			}

			cmd := exec.Command(binaryPath, "run", absFixture)
			out, _ := cmd.Output()

			var got struct {
				Return interface{} `json:"return"`
				Fail   *struct {
					Reason string `json:"reason"`
				} `json:"fail"`
			}
			if err := json.Unmarshal(out, &got); err != nil {
				t.Fatalf("unmarshaling step output: %v\noutput was:\n%s", err, out)
			}

			if want.FailReason != "" {
				if got.Fail == nil {
					t.Fatalf("want fail reason %q, got a successful step: %s", want.FailReason, out)
				}
				if got.Fail.Reason != want.FailReason {
					t.Errorf("fail reason = %q, want %q", got.Fail.Reason, want.FailReason)
				}
				return
			}

			if got.Fail != nil {
				t.Fatalf("want return %v, got fail %q: %s", want.Return, got.Fail.Reason, out)
			}
			gotJSON, _ := json.Marshal(got.Return)
			wantJSON, _ := json.Marshal(want.Return)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("return = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}
