package wizard

import (
	"reflect"
	"testing"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "OPENROUTER_API_KEY",
			expected: []string{"OPENROUTER_API_KEY"},
		},
		{
			name:     "multiple values",
			input:    "reasoning, quality, light",
			expected: []string{"reasoning", "quality", "light"},
		},
		{
			name:     "extra whitespace and empty items",
			input:    "  reasoning  ,, light ,",
			expected: []string{"reasoning", "light"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseList(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseList(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRequirePath(t *testing.T) {
	if err := requirePath(".agent/skills"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := requirePath("  "); err == nil {
		t.Error("expected error for blank path")
	}
}

func TestValidateProbe(t *testing.T) {
	if err := validateProbe("T2/C1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "T2", "T2/"} {
		if err := validateProbe(bad); err == nil {
			t.Errorf("validateProbe(%q) expected error", bad)
		}
	}
}
