package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"simple lowercase", "PAC", "pac"},
		{"trailing space", "CONTACT ", "contact"},
		{"parenthetical suffix", "Account Name (CN)", "account_name"},
		{"single letter alias", "I", "account_name"},
		{"spaces collapse", "Next  Steps", "next_steps"},
		{"brand note", "SkinPen Notes", "skinpen_notes"},
		{"already normalized", "address", "address"},
		{"mixed separators", "Account-Name CN", "account_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.header))
		})
	}
}

func TestParseQuarterHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		// The four accepted formats.
		{"1Q24", "2024-Q1", true},
		{"2q24", "2024-Q2", true},
		{"Q2 2025", "2025-Q2", true},
		{"q3 2024", "2024-Q3", true},
		{"Q42026", "2026-Q4", true},
		{"2024-Q3", "2024-Q3", true},
		{"2024-q2", "2024-Q2", true},
		{"2024Q3", "2024-Q3", true},
		{" 2Q24 ", "2024-Q2", true},

		// Quarter out of range.
		{"5Q24", "", false},
		{"Q5 2024", "", false},
		{"2024-Q5", "", false},
		{"0Q24", "", false},

		// Year out of range.
		{"2Q19", "", false},
		{"2Q31", "", false},
		{"Q2 2019", "", false},
		{"2031-Q1", "", false},
		{"2019Q4", "", false},

		// Not quarter columns at all.
		{"PAC", "", false},
		{"Brand", "", false},
		{"Address", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := ParseQuarterHeader(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectQuarterColumns(t *testing.T) {
	headers := []string{"PAC", "Account Name (CN)", "Brand", "1Q24", "2Q24", "Q1 2025", "Notes", "2025-Q2"}

	columns := DetectQuarterColumns(headers)

	// Appearance order, never sorted.
	assert.Equal(t, []QuarterColumn{
		{Original: "1Q24", Standardized: "2024-Q1", normalized: "1q24"},
		{Original: "2Q24", Standardized: "2024-Q2", normalized: "2q24"},
		{Original: "Q1 2025", Standardized: "2025-Q1", normalized: "q1_2025"},
		{Original: "2025-Q2", Standardized: "2025-Q2", normalized: "2025_q2"},
	}, columns)
}

func TestMissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []string
	}{
		{"all present", []string{"PAC", "Account Name (CN)", "Brand"}, nil},
		{"brand absent", []string{"PAC", "Account Name (CN)", "Address"}, []string{"Brand"}},
		{"rep absent", []string{"Account Name (CN)", "Brand"}, []string{"PAC"}},
		{"both absent", []string{"Name", "Address", "Contact"}, []string{"PAC", "Brand"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, missingRequiredColumns(tt.headers))
		})
	}
}
