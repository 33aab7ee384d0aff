package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/hive/pkg/models"
)

func TestInvokerUnknownTool(t *testing.T) {
	inv := NewInvoker(NewRegistry())

	result, err := inv.Invoke(context.Background(), models.ToolCall{Name: "ghost"})
	if err == nil {
		t.Fatal("Invoke(ghost) should return an error")
	}
	if !models.IsCode(err, models.ErrCodeNotFound) {
		t.Errorf("Invoke(ghost) error code = %q, want %q", models.CodeOf(err), models.ErrCodeNotFound)
	}
	if result.Name != "ghost" {
		t.Errorf("result.Name = %q, want ghost", result.Name)
	}
	if result.Err == "" {
		t.Error("result.Err should carry the failure detail")
	}
}

func TestInvokerValidationStopsDispatch(t *testing.T) {
	r := NewRegistry()
	calls := 0
	spec := simpleSpec("echo")
	if err := r.Register(spec, func(_ context.Context, args map[string]any) (string, error) {
		calls++
		return args["input"].(string), nil
	}); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	inv := NewInvoker(r)

	_, err := inv.Invoke(context.Background(), models.ToolCall{
		Name:      "echo",
		Arguments: map[string]any{"input": 42},
	})
	if err == nil {
		t.Fatal("Invoke with wrong argument type should return an error")
	}
	if !models.IsCode(err, models.ErrCodeValidation) {
		t.Errorf("error code = %q, want %q", models.CodeOf(err), models.ErrCodeValidation)
	}
	if calls != 0 {
		t.Errorf("capability ran %d times despite validation failure, want 0", calls)
	}
}

func TestInvokerWrapsCapabilityError(t *testing.T) {
	r := NewRegistry()
	cause := errors.New("connection refused")
	if err := r.Register(simpleSpec("flaky"), func(_ context.Context, _ map[string]any) (string, error) {
		return "", cause
	}); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	inv := NewInvoker(r)

	result, err := inv.Invoke(context.Background(), models.ToolCall{
		Name:      "flaky",
		Arguments: map[string]any{"input": "x"},
	})
	if err == nil {
		t.Fatal("Invoke should surface the capability error")
	}
	if !models.IsCode(err, models.ErrCodeToolExecution) {
		t.Errorf("error code = %q, want %q", models.CodeOf(err), models.ErrCodeToolExecution)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to the capability cause")
	}
	if result.Err != err.Error() {
		t.Errorf("result.Err = %q, want %q", result.Err, err.Error())
	}
	if !result.IsError() {
		t.Error("result.IsError() = false, want true")
	}
}

func TestInvokerSuccess(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(simpleSpec("echo"), func(_ context.Context, args map[string]any) (string, error) {
		return args["input"].(string), nil
	}); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	inv := NewInvoker(r)

	result, err := inv.Invoke(context.Background(), models.ToolCall{
		Name:      "echo",
		Arguments: map[string]any{"input": "hello"},
	})
	if err != nil {
		t.Fatalf("Invoke error = %v", err)
	}
	if result.Output != "hello" {
		t.Errorf("result.Output = %q, want hello", result.Output)
	}
	if result.IsError() {
		t.Error("result.IsError() = true, want false")
	}
	if result.Duration <= 0 {
		t.Error("result.Duration should be set")
	}
}

func TestInvokerAppliesDefaults(t *testing.T) {
	r := NewRegistry()
	spec := models.ToolSpec{
		Name:        "greet",
		Description: "greeter",
		Parameters: map[string]models.ParamSpec{
			"name":     {Type: models.ParamString, Required: true},
			"greeting": {Type: models.ParamString, Default: "hello"},
		},
	}
	if err := r.Register(spec, func(_ context.Context, args map[string]any) (string, error) {
		return args["greeting"].(string) + " " + args["name"].(string), nil
	}); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	inv := NewInvoker(r)

	result, err := inv.Invoke(context.Background(), models.ToolCall{
		Name:      "greet",
		Arguments: map[string]any{"name": "world"},
	})
	if err != nil {
		t.Fatalf("Invoke error = %v", err)
	}
	if result.Output != "hello world" {
		t.Errorf("result.Output = %q, want %q", result.Output, "hello world")
	}
}

// Deterministic capabilities must yield identical results on repeated
// invocation with the same arguments.
func TestInvokerIdempotent(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r, BuiltinOptions{}); err != nil {
		t.Fatalf("RegisterBuiltins error = %v", err)
	}
	inv := NewInvoker(r)

	calls := []models.ToolCall{
		{Name: "calculator", Arguments: map[string]any{"expression": "6 * 7"}},
		{Name: "weather", Arguments: map[string]any{"location": "Lisbon"}},
		{Name: "web_search", Arguments: map[string]any{"query": "market trends"}},
	}

	for _, call := range calls {
		t.Run(call.Name, func(t *testing.T) {
			first, err1 := inv.Invoke(context.Background(), call)
			second, err2 := inv.Invoke(context.Background(), call)
			if err1 != nil || err2 != nil {
				t.Fatalf("Invoke errors = %v, %v", err1, err2)
			}
			if first.Output != second.Output {
				t.Errorf("repeated Invoke(%s) output differs: %q vs %q", call.Name, first.Output, second.Output)
			}
			if first.Err != second.Err {
				t.Errorf("repeated Invoke(%s) error detail differs: %q vs %q", call.Name, first.Err, second.Err)
			}
		})
	}
}

func TestInvokerDescribe(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltins(r, BuiltinOptions{}); err != nil {
		t.Fatalf("RegisterBuiltins error = %v", err)
	}
	inv := NewInvoker(r)

	out := inv.Describe([]string{"weather"})
	for _, want := range []string{"weather", "location", "required", "celsius"} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe(weather) missing %q in:\n%s", want, out)
		}
	}

	if got := inv.Describe(nil); got != "none" {
		t.Errorf("Describe(nil) = %q, want none", got)
	}
}
