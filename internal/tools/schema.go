// Package tools provides the tool invoker: argument validation against
// tool specs, a capability registry resolved at startup, and the built-in
// tool set.
package tools

import (
	"fmt"
	"math"
	"sort"

	"github.com/ShayCichocki/hive/pkg/models"
)

// ValidateArgs checks a call's arguments against the tool's parameter
// schema. It reports the first violation found, scanning parameters in
// name order so failures are deterministic.
func ValidateArgs(spec models.ToolSpec, args map[string]any) error {
	// Unknown parameters first: the caller sent something the schema
	// does not declare.
	for _, name := range sortedKeys(args) {
		if _, ok := spec.Parameters[name]; !ok {
			return models.Errorf(models.ErrCodeValidation, "tool %q: unknown parameter %q", spec.Name, name)
		}
	}

	for _, name := range sortedParamNames(spec) {
		param := spec.Parameters[name]
		value, present := args[name]

		if !present {
			if param.Required {
				return models.Errorf(models.ErrCodeValidation, "tool %q: missing required parameter %q", spec.Name, name)
			}
			continue
		}

		if !matchesType(value, param.Type) {
			return models.Errorf(models.ErrCodeValidation,
				"tool %q: parameter %q expects %s, got %T", spec.Name, name, param.Type, value)
		}

		if len(param.Enum) > 0 && !inEnum(value, param.Enum) {
			return models.Errorf(models.ErrCodeValidation,
				"tool %q: parameter %q value %v is not one of %v", spec.Name, name, value, param.Enum)
		}
	}

	return nil
}

// ApplyDefaults returns a copy of args with declared defaults filled in
// for absent optional parameters. The input map is not modified.
func ApplyDefaults(spec models.ToolSpec, args map[string]any) map[string]any {
	filled := make(map[string]any, len(args))
	for k, v := range args {
		filled[k] = v
	}
	for name, param := range spec.Parameters {
		if _, present := filled[name]; !present && param.Default != nil {
			filled[name] = param.Default
		}
	}
	return filled
}

// matchesType reports whether a decoded argument value satisfies the
// declared parameter type. JSON decoding produces float64 for every
// number, so integer checks accept whole floats.
func matchesType(value any, typ models.ParamType) bool {
	switch typ {
	case models.ParamString:
		_, ok := value.(string)
		return ok
	case models.ParamNumber:
		switch value.(type) {
		case float64, float32, int, int64, int32:
			return true
		}
		return false
	case models.ParamInteger:
		switch v := value.(type) {
		case int, int64, int32:
			return true
		case float64:
			return v == math.Trunc(v)
		}
		return false
	case models.ParamBoolean:
		_, ok := value.(bool)
		return ok
	default:
		return false
	}
}

// inEnum reports whether value matches one of the allowed options.
// Comparison is by rendered value so catalog enums survive the
// int-versus-float64 mismatch JSON decoding introduces.
func inEnum(value any, enum []any) bool {
	rendered := fmt.Sprintf("%v", value)
	for _, option := range enum {
		if fmt.Sprintf("%v", option) == rendered {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedParamNames(spec models.ToolSpec) []string {
	names := make([]string, 0, len(spec.Parameters))
	for name := range spec.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
