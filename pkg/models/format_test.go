package models

import "testing"

func TestResponseFormat_Valid(t *testing.T) {
	tests := []struct {
		name   string
		format ResponseFormat
		want   bool
	}{
		{"concise is valid", FormatConcise, true},
		{"detailed is valid", FormatDetailed, true},
		{"technical is valid", FormatTechnical, true},
		{"empty string is invalid", ResponseFormat(""), false},
		{"unknown format is invalid", ResponseFormat("verbose"), false},
		{"uppercase is invalid", ResponseFormat("CONCISE"), false},
		{"mixed case is invalid", ResponseFormat("Concise"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Valid(); got != tt.want {
				t.Errorf("ResponseFormat(%q).Valid() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestResponseFormat_ReportsGaps(t *testing.T) {
	tests := []struct {
		name   string
		format ResponseFormat
		want   bool
	}{
		{"concise omits gaps", FormatConcise, false},
		{"detailed reports gaps", FormatDetailed, true},
		{"technical reports gaps", FormatTechnical, true},
		{"unknown format omits gaps", ResponseFormat("verbose"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.ReportsGaps(); got != tt.want {
				t.Errorf("ResponseFormat(%q).ReportsGaps() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
