package cmd

import (
	"testing"
)

func TestEscapeQueryTerm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain term",
			input:    "report",
			expected: "report",
		},
		{
			name:     "empty term",
			input:    "",
			expected: "",
		},
		{
			name:     "term with single quote",
			input:    "summer's end",
			expected: `summer\'s end`,
		},
		{
			name:     "term with backslash",
			input:    `c:\files`,
			expected: `c:\\files`,
		},
		{
			name:     "term with quote and backslash",
			input:    `it's a \ test`,
			expected: `it\'s a \\ test`,
		},
		{
			name:     "term with spaces",
			input:    "annual report 2025",
			expected: "annual report 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeQueryTerm(tt.input); got != tt.expected {
				t.Errorf("escapeQueryTerm(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestQueryCommandDefaults(t *testing.T) {
	cmd := newQueryCmd()

	if got := cmd.Flags().Lookup("max").DefValue; got != "100" {
		t.Errorf("default max = %s, want 100", got)
	}
	if got := cmd.Flags().Lookup("order-by").DefValue; got != "createdTime" {
		t.Errorf("default order-by = %s, want createdTime", got)
	}
}
