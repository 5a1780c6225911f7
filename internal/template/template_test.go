package template_test

import (
	"strings"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/template"
	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

func TestExpand(t *testing.T) {
	testCases := []struct {
		name    string
		tpl     string
		data    map[string]interface{}
		want    string
		wantErr bool
	}{
		{"no_placeholders", "hello world", nil, "hello world", false},
		{"string_value", "hello {{name}}!", map[string]interface{}{"name": "ptc"}, "hello ptc!", false},
		{"non_string_value", "count: {{n}}", map[string]interface{}{"n": false}, "count: false", false},
		{"multiple", "{{a}}-{{b}}", map[string]interface{}{"a": "x", "b": "y"}, "x-y", false},
		{"unresolved", "{{missing}}", map[string]interface{}{}, "", true},
		{"unterminated", "{{oops", map[string]interface{}{}, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := template.Expand(tc.tpl, tc.data)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expand(%q) = %q, nil; want error", tc.tpl, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expand(%q) unexpected error: %v", tc.tpl, err)
			}
			if got != tc.want {
				t.Errorf("Expand(%q) = %q, want %q", tc.tpl, got, tc.want)
			}
		})
	}
}

func TestDataInventory(t *testing.T) {
	ctx := values.NewMap().
		Assoc(values.Keyword("employees"), values.NewVector(1, 2, 3)).
		Assoc(values.Keyword("limit"), false)

	got := template.DataInventory(ctx)
	if !strings.Contains(got, "employees: vector of 3 item(s)") {
		t.Errorf("DataInventory missing employees line, got:\n%s", got)
	}
	if !strings.Contains(got, "limit: bool") {
		t.Errorf("DataInventory missing limit line, got:\n%s", got)
	}
}

func TestDataInventoryEmpty(t *testing.T) {
	got := template.DataInventory(values.NewMap())
	if got != "(no data)" {
		t.Errorf("DataInventory(empty) = %q, want %q", got, "(no data)")
	}
}
