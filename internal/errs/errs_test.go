package errs_test

import (
	"strings"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
)

func TestNewBuildsReasonAndMessage(t *testing.T) {
	e := errs.New(errs.TypeError, "expected %s, got %s", "int", "string")
	if e.Reason != errs.TypeError {
		t.Errorf("Reason = %q, want %q", e.Reason, errs.TypeError)
	}
	if e.Message != "expected int, got string" {
		t.Errorf("Message = %q, want formatted message", e.Message)
	}
}

func TestErrorStringIncludesReasonAndMessage(t *testing.T) {
	e := errs.New(errs.UnboundVar, "unbound: y")
	s := e.Error()
	if !strings.Contains(s, "unbound_var") || !strings.Contains(s, "unbound: y") {
		t.Errorf("Error() = %q, want it to contain reason and message", s)
	}
}

func TestErrorStringIncludesPathWhenSet(t *testing.T) {
	e := errs.New(errs.ValidationError, "wrong type").WithPath("return.id")
	if !strings.Contains(e.Error(), "return.id") {
		t.Errorf("Error() = %q, want it to include the path", e.Error())
	}
}

func TestErrorStringIncludesPositionWhenSet(t *testing.T) {
	e := errs.New(errs.ParseError, "bad token").At(3, 7)
	s := e.Error()
	if !strings.Contains(s, "line 3") || !strings.Contains(s, "col 7") {
		t.Errorf("Error() = %q, want it to include line/col", s)
	}
}

func TestErrorStringIncludesHintWhenSet(t *testing.T) {
	e := errs.New(errs.UnboundVar, "unbound: al-of").WithHint("Did you mean `all-of`?")
	if !strings.Contains(e.Error(), "Did you mean") {
		t.Errorf("Error() = %q, want it to include the hint", e.Error())
	}
}

func TestErrorStringOmitsPositionWhenUnset(t *testing.T) {
	e := errs.New(errs.TypeError, "bad")
	if strings.Contains(e.Error(), "line") {
		t.Errorf("Error() = %q, want no line/col when never set", e.Error())
	}
}

func TestIsMatchesReason(t *testing.T) {
	e := errs.New(errs.Timeout, "deadline exceeded")
	if !e.Is(errs.Timeout) {
		t.Error("Is(Timeout) = false, want true")
	}
	if e.Is(errs.MemoryExceeded) {
		t.Error("Is(MemoryExceeded) = true, want false")
	}
}

func TestIsOnNilErrorIsFalse(t *testing.T) {
	var e *errs.Error
	if e.Is(errs.Timeout) {
		t.Error("(*Error)(nil).Is(...) = true, want false")
	}
}
