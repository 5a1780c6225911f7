package signature_test

import (
	"math/big"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/signature"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func TestParseAndRender(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"bare_primitive", ":int"},
		{"optional_primitive", ":string?"},
		{"list", "[:int]"},
		{"params_to_return", "(id :int, name :string) -> :bool"},
		{"record_return", "(id :int) -> {name :string, age :int?}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sig, err := signature.Parse(tc.src)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.src, err)
			}
			if sig.Render() == "" {
				t.Errorf("Render() of parsed %q is empty", tc.src)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	testCases := []string{"", ":bogus", "(id) -> :int", "[:int"}
	for _, src := range testCases {
		t.Run(src, func(t *testing.T) {
			if _, err := signature.Parse(src); err == nil {
				t.Errorf("Parse(%q) = nil error, want an error", src)
			}
		})
	}
}

func TestValidateInputCoercesStringToInt(t *testing.T) {
	sig, err := signature.Parse("(id :int) -> :bool")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	args := values.NewMap().Assoc("id", "42")

	coerced, warnings, verr := signature.ValidateInput(sig, args, signature.ModeEnabled)
	if verr != nil {
		t.Fatalf("ValidateInput error: %v", verr)
	}
	if len(warnings) != 1 {
		t.Fatalf("len(warnings) = %d, want 1", len(warnings))
	}
	got, found := coerced.Get(values.Keyword("id"))
	if !found {
		t.Fatal("coerced args missing id")
	}
	if bi, ok := got.(*big.Int); !ok || bi.Int64() != 42 {
		t.Errorf("coerced id = %#v, want *big.Int(42)", got)
	}
}

func TestValidateInputMissingRequired(t *testing.T) {
	sig, err := signature.Parse("(id :int) -> :bool")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, _, verr := signature.ValidateInput(sig, values.NewMap(), signature.ModeEnabled)
	if verr == nil {
		t.Fatal("ValidateInput with missing required field: want error, got nil")
	}
}

func TestValidateInputModeDisabled(t *testing.T) {
	sig, err := signature.Parse("(id :int) -> :bool")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	args := values.NewMap()
	coerced, _, verr := signature.ValidateInput(sig, args, signature.ModeDisabled)
	if verr != nil {
		t.Fatalf("ModeDisabled should skip validation entirely, got error: %v", verr)
	}
	if coerced != args {
		t.Error("ModeDisabled should return args unchanged")
	}
}

func TestValidateOutputStrictNoCoercion(t *testing.T) {
	sig, err := signature.Parse(":int")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if verr := signature.ValidateOutput(sig, "42"); verr == nil {
		t.Error("ValidateOutput(string for :int) = nil, want error (output is strict, no coercion)")
	}
	if verr := signature.ValidateOutput(sig, big.NewInt(42)); verr != nil {
		t.Errorf("ValidateOutput(*big.Int for :int) error: %v", verr)
	}
}

func TestValidateOutputRecordExtraFieldRejected(t *testing.T) {
	sig, err := signature.Parse("{name :string}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v := values.NewMap().Assoc("name", "a").Assoc("extra", "b")
	if verr := signature.ValidateOutput(sig, v); verr == nil {
		t.Error("ValidateOutput with an undeclared record field: want error (output is strict)")
	}
}
