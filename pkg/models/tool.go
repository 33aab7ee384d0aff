package models

import (
	"fmt"
	"time"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	// ParamString accepts text values.
	ParamString ParamType = "string"
	// ParamNumber accepts any numeric value.
	ParamNumber ParamType = "number"
	// ParamInteger accepts whole numbers only.
	ParamInteger ParamType = "integer"
	// ParamBoolean accepts true or false.
	ParamBoolean ParamType = "boolean"
)

// Valid returns true if the type is a known value.
func (t ParamType) Valid() bool {
	switch t {
	case ParamString, ParamNumber, ParamInteger, ParamBoolean:
		return true
	default:
		return false
	}
}

// ParamSpec declares one tool parameter.
type ParamSpec struct {
	// Type is the declared value type.
	Type ParamType `json:"type"`
	// Description explains the parameter to the capability provider.
	Description string `json:"description,omitempty"`
	// Required indicates the parameter must be present in every call.
	Required bool `json:"required,omitempty"`
	// Default is filled in when an optional parameter is absent.
	Default any `json:"default,omitempty"`
	// Enum restricts the value to one of the listed options.
	Enum []any `json:"enum,omitempty"`
}

// ToolSpec declares a tool: its identity, purpose, and parameter schema.
// Specs are immutable after catalog load; they validate calls and advertise
// the tool to reasoning steps.
type ToolSpec struct {
	// Name is the unique key of the tool.
	Name string `json:"name"`
	// Description explains what the tool does.
	Description string `json:"description"`
	// Parameters maps parameter name to its declaration.
	Parameters map[string]ParamSpec `json:"parameters,omitempty"`
}

// Validate checks the spec itself is well-formed.
func (s ToolSpec) Validate() error {
	if s.Name == "" {
		return NewError(ErrCodeValidation, "tool spec has empty name")
	}
	for name, p := range s.Parameters {
		if name == "" {
			return Errorf(ErrCodeValidation, "tool %q declares an unnamed parameter", s.Name)
		}
		if !p.Type.Valid() {
			return Errorf(ErrCodeValidation, "tool %q parameter %q has unknown type %q", s.Name, name, p.Type)
		}
	}
	return nil
}

// ToolCall is one decided tool invocation extracted from capability output.
type ToolCall struct {
	// Name is the tool to invoke.
	Name string `json:"tool"`
	// Arguments maps parameter name to the supplied value.
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the structured outcome of one tool invocation.
type ToolResult struct {
	// Name is the tool that was invoked.
	Name string `json:"name"`
	// Output is the tool's textual result when the call succeeded.
	Output string `json:"output,omitempty"`
	// Err describes the typed failure when the call did not succeed.
	Err string `json:"error,omitempty"`
	// Duration is how long the invocation took.
	Duration time.Duration `json:"duration,omitempty"`
}

// IsError returns true if the invocation failed.
func (r ToolResult) IsError() bool {
	return r.Err != ""
}

// String renders the result for inclusion in a reasoning context.
func (r ToolResult) String() string {
	if r.IsError() {
		return fmt.Sprintf("%s: error: %s", r.Name, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Name, r.Output)
}
