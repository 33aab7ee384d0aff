package tools

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/hive/pkg/models"
)

func testSpec() models.ToolSpec {
	return models.ToolSpec{
		Name:        "weather",
		Description: "Get current weather",
		Parameters: map[string]models.ParamSpec{
			"location": {
				Type:     models.ParamString,
				Required: true,
			},
			"units": {
				Type:    models.ParamString,
				Enum:    []any{"celsius", "fahrenheit"},
				Default: "celsius",
			},
			"days": {
				Type:    models.ParamInteger,
				Default: 1,
			},
		},
	}
}

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		wantErr  bool
		contains string
	}{
		{
			name: "valid minimal",
			args: map[string]any{"location": "Paris"},
		},
		{
			name: "valid full",
			args: map[string]any{"location": "Paris", "units": "fahrenheit", "days": 3},
		},
		{
			name:     "missing required",
			args:     map[string]any{"units": "celsius"},
			wantErr:  true,
			contains: `missing required parameter "location"`,
		},
		{
			name:     "unknown parameter",
			args:     map[string]any{"location": "Paris", "altitude": 100},
			wantErr:  true,
			contains: `unknown parameter "altitude"`,
		},
		{
			name:     "wrong type for string",
			args:     map[string]any{"location": 42},
			wantErr:  true,
			contains: `parameter "location" expects string`,
		},
		{
			name:     "wrong type for integer",
			args:     map[string]any{"location": "Paris", "days": "three"},
			wantErr:  true,
			contains: `parameter "days" expects integer`,
		},
		{
			name: "integer accepts whole float",
			args: map[string]any{"location": "Paris", "days": float64(3)},
		},
		{
			name:     "integer rejects fraction",
			args:     map[string]any{"location": "Paris", "days": 2.5},
			wantErr:  true,
			contains: `parameter "days" expects integer`,
		},
		{
			name:     "enum violation",
			args:     map[string]any{"location": "Paris", "units": "kelvin"},
			wantErr:  true,
			contains: "is not one of",
		},
		{
			name: "optional absent is fine",
			args: map[string]any{"location": "Oslo"},
		},
	}

	spec := testSpec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgs(spec, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateArgs(%v) should return an error", tt.args)
				}
				if !models.IsCode(err, models.ErrCodeValidation) {
					t.Errorf("ValidateArgs(%v) error code = %q, want %q", tt.args, models.CodeOf(err), models.ErrCodeValidation)
				}
				if !strings.Contains(err.Error(), tt.contains) {
					t.Errorf("ValidateArgs(%v) error = %q, want substring %q", tt.args, err.Error(), tt.contains)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateArgs(%v) error = %v, want nil", tt.args, err)
			}
		})
	}
}

func TestMatchesType(t *testing.T) {
	tests := []struct {
		name  string
		value any
		typ   models.ParamType
		want  bool
	}{
		{"string ok", "hi", models.ParamString, true},
		{"string rejects int", 1, models.ParamString, false},
		{"number accepts float", 1.5, models.ParamNumber, true},
		{"number accepts int", 2, models.ParamNumber, true},
		{"number rejects string", "2", models.ParamNumber, false},
		{"integer accepts int", 3, models.ParamInteger, true},
		{"integer accepts whole float64", float64(3), models.ParamInteger, true},
		{"integer rejects fractional float64", 3.5, models.ParamInteger, false},
		{"boolean ok", true, models.ParamBoolean, true},
		{"boolean rejects string", "true", models.ParamBoolean, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesType(tt.value, tt.typ); got != tt.want {
				t.Errorf("matchesType(%v, %q) = %v, want %v", tt.value, tt.typ, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	spec := testSpec()

	args := map[string]any{"location": "Paris"}
	filled := ApplyDefaults(spec, args)

	if filled["units"] != "celsius" {
		t.Errorf("units default = %v, want celsius", filled["units"])
	}
	if filled["days"] != 1 {
		t.Errorf("days default = %v, want 1", filled["days"])
	}
	if filled["location"] != "Paris" {
		t.Errorf("location = %v, want Paris", filled["location"])
	}
	if _, ok := args["units"]; ok {
		t.Error("ApplyDefaults modified the input map")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	spec := testSpec()

	filled := ApplyDefaults(spec, map[string]any{"location": "Paris", "units": "fahrenheit"})
	if filled["units"] != "fahrenheit" {
		t.Errorf("units = %v, want explicit fahrenheit kept", filled["units"])
	}
}

func TestInEnum(t *testing.T) {
	tests := []struct {
		name  string
		value any
		enum  []any
		want  bool
	}{
		{"string match", "celsius", []any{"celsius", "fahrenheit"}, true},
		{"string miss", "kelvin", []any{"celsius", "fahrenheit"}, false},
		{"int matches float option", float64(3), []any{1, 2, 3}, true},
		{"numeric miss", float64(4), []any{1, 2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inEnum(tt.value, tt.enum); got != tt.want {
				t.Errorf("inEnum(%v, %v) = %v, want %v", tt.value, tt.enum, got, tt.want)
			}
		})
	}
}
