package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Invoker executes named tools with validated arguments. It never retries
// and never panics across the orchestration boundary: every call yields a
// ToolResult or a typed error. Retry policy belongs to the worker.
type Invoker struct {
	registry *Registry
}

// NewInvoker creates an invoker over the given registry.
func NewInvoker(registry *Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Registry returns the underlying tool registry.
func (i *Invoker) Registry() *Registry {
	return i.registry
}

// Invoke validates the call against the tool's schema, fills defaults,
// and dispatches to the capability. The returned ToolResult always names
// the tool; on failure its Err field carries the same detail as the
// returned typed error so callers can feed it back into reasoning.
func (i *Invoker) Invoke(ctx context.Context, call models.ToolCall) (models.ToolResult, error) {
	started := time.Now()
	result := models.ToolResult{Name: call.Name}

	spec, fn, err := i.registry.Lookup(call.Name)
	if err != nil {
		result.Err = err.Error()
		result.Duration = time.Since(started)
		return result, err
	}

	if err := ValidateArgs(spec, call.Arguments); err != nil {
		result.Err = err.Error()
		result.Duration = time.Since(started)
		return result, err
	}

	args := ApplyDefaults(spec, call.Arguments)

	output, err := fn(ctx, args)
	if err != nil {
		wrapped := models.Errorf(models.ErrCodeToolExecution, "tool %q failed", call.Name).WithCause(err)
		result.Err = wrapped.Error()
		result.Duration = time.Since(started)
		return result, wrapped
	}

	result.Output = output
	result.Duration = time.Since(started)
	return result, nil
}

// Describe renders the specs of the named tools for inclusion in a
// reasoning prompt: one line per tool plus its parameters.
func (i *Invoker) Describe(names []string) string {
	specs := i.registry.SpecsFor(names)
	if len(specs) == 0 {
		return "none"
	}

	var out string
	for _, spec := range specs {
		out += fmt.Sprintf("- %s: %s\n", spec.Name, spec.Description)
		for _, name := range sortedParamNames(spec) {
			p := spec.Parameters[name]
			line := fmt.Sprintf("    %s (%s)", name, p.Type)
			if p.Required {
				line += ", required"
			}
			if p.Default != nil {
				line += fmt.Sprintf(", default %v", p.Default)
			}
			if len(p.Enum) > 0 {
				line += fmt.Sprintf(", one of %v", p.Enum)
			}
			if p.Description != "" {
				line += ": " + p.Description
			}
			out += line + "\n"
		}
	}
	return out
}
