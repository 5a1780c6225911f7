package ptclisp

import (
	"math/big"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func TestToValueScalars(t *testing.T) {
	testCases := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "hi", "hi"},
		{"float64", 1.5, 1.5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToValue(tc.in)
			if err != nil {
				t.Fatalf("ToValue(%v) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ToValue(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestToValueIntBecomesBigInt(t *testing.T) {
	got, err := ToValue(42)
	if err != nil {
		t.Fatalf("ToValue(42) error: %v", err)
	}
	bi, ok := got.(*big.Int)
	if !ok || bi.Int64() != 42 {
		t.Errorf("ToValue(42) = %#v, want *big.Int(42)", got)
	}
}

func TestToValueNestedMapAndSlice(t *testing.T) {
	in := map[string]interface{}{
		"name": "ada",
		"tags": []interface{}{"a", "b"},
	}
	got, err := ToValue(in)
	if err != nil {
		t.Fatalf("ToValue error: %v", err)
	}
	m, ok := got.(*values.Map)
	if !ok {
		t.Fatalf("ToValue(map) = %#v, want *values.Map", got)
	}
	tags, found := m.Get("tags")
	if !found {
		t.Fatal("missing tags key")
	}
	vec, ok := tags.(*values.Vector)
	if !ok || len(vec.Items) != 2 {
		t.Errorf("tags = %#v, want a 2-item *values.Vector", tags)
	}
}

func TestToValueUnsupportedType(t *testing.T) {
	if _, err := ToValue(struct{}{}); err == nil {
		t.Error("ToValue(struct{}{}) = nil error, want an error for an unsupported host type")
	}
}

func TestMapToValueNilDefaultsToEmptyMap(t *testing.T) {
	m, err := mapToValue(nil)
	if err != nil {
		t.Fatalf("mapToValue(nil) error: %v", err)
	}
	if m == nil || m.Len() != 0 {
		t.Errorf("mapToValue(nil) = %#v, want an empty map", m)
	}
}
