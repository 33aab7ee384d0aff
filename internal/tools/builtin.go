package tools

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/ShayCichocki/hive/pkg/models"
)

// BuiltinOptions configures the built-in capability set.
type BuiltinOptions struct {
	// Runner executes code_executor snippets. Nil means os/exec.
	Runner CommandRunner
	// WorkDir is the working directory for code_executor. Empty means
	// the process working directory.
	WorkDir string
	// Specs override the default parameter schemas by tool name, so an
	// agent catalog can refine descriptions, defaults, and enums. An
	// override must keep the parameter names the capability reads.
	Specs map[string]models.ToolSpec
}

// RegisterBuiltins adds the built-in tool set to the registry:
// calculator, web_search, weather, and code_executor.
func RegisterBuiltins(registry *Registry, opts BuiltinOptions) error {
	runner := opts.Runner
	if runner == nil {
		runner = NewRunner()
	}

	builtins := []struct {
		spec models.ToolSpec
		fn   Capability
	}{
		{calculatorSpec(), calculatorCapability()},
		{webSearchSpec(), webSearchCapability()},
		{weatherSpec(), weatherCapability()},
		{codeExecutorSpec(), codeExecutorCapability(runner, opts.WorkDir)},
	}

	for _, b := range builtins {
		spec := b.spec
		if override, ok := opts.Specs[spec.Name]; ok {
			override.Name = spec.Name
			if override.Description == "" {
				override.Description = spec.Description
			}
			spec = override
		}
		if err := registry.Register(spec, b.fn); err != nil {
			return fmt.Errorf("register builtin %q: %w", spec.Name, err)
		}
	}
	return nil
}

func calculatorSpec() models.ToolSpec {
	return models.ToolSpec{
		Name:        "calculator",
		Description: "Evaluate a mathematical expression",
		Parameters: map[string]models.ParamSpec{
			"expression": {
				Type:        models.ParamString,
				Description: "Mathematical expression to evaluate (e.g. '2 + 2')",
				Required:    true,
			},
		},
	}
}

func calculatorCapability() Capability {
	return func(_ context.Context, args map[string]any) (string, error) {
		expression, _ := args["expression"].(string)
		value, err := Evaluate(expression)
		if err != nil {
			return "", fmt.Errorf("evaluate %q: %w", expression, err)
		}
		return formatNumber(value), nil
	}
}

func webSearchSpec() models.ToolSpec {
	return models.ToolSpec{
		Name:        "web_search",
		Description: "Search the web for information on a topic",
		Parameters: map[string]models.ParamSpec{
			"query": {
				Type:        models.ParamString,
				Description: "Search query",
				Required:    true,
			},
			"max_results": {
				Type:        models.ParamInteger,
				Description: "Maximum number of results to return",
				Default:     3,
			},
		},
	}
}

// searchCorpus is the demo result set served by web_search. Real network
// search stays behind the same capability signature.
var searchCorpus = []struct {
	topic   string
	snippet string
}{
	{"market trends", "Industry analysts report steady growth across consumer segments, with digital channels outpacing retail."},
	{"sales data", "Quarterly sales figures show seasonal variance; Q1 typically trails Q4 holidays by 10-20%."},
	{"golang", "Go is a statically typed, compiled language designed at Google, known for built-in concurrency."},
	{"climate", "Global average temperatures have risen roughly 1.2C above pre-industrial levels."},
	{"ai agents", "Multi-agent systems decompose complex goals into subtasks handled by specialized workers."},
	{"stock market", "Major indices closed mixed this week as investors weighed inflation data against earnings."},
}

func webSearchCapability() Capability {
	return func(_ context.Context, args map[string]any) (string, error) {
		query, _ := args["query"].(string)
		maxResults := intArg(args["max_results"], 3)

		terms := strings.Fields(strings.ToLower(query))
		var matches []string
		for _, doc := range searchCorpus {
			for _, term := range terms {
				if strings.Contains(doc.topic, term) || strings.Contains(strings.ToLower(doc.snippet), term) {
					matches = append(matches, fmt.Sprintf("[%s] %s", doc.topic, doc.snippet))
					break
				}
			}
		}

		if len(matches) == 0 {
			return fmt.Sprintf("No results found for %q.", query), nil
		}
		if len(matches) > maxResults {
			matches = matches[:maxResults]
		}
		return strings.Join(matches, "\n"), nil
	}
}

func weatherSpec() models.ToolSpec {
	return models.ToolSpec{
		Name:        "weather",
		Description: "Get current weather conditions for a location",
		Parameters: map[string]models.ParamSpec{
			"location": {
				Type:        models.ParamString,
				Description: "City or region name",
				Required:    true,
			},
			"units": {
				Type:        models.ParamString,
				Description: "Temperature units",
				Enum:        []any{"celsius", "fahrenheit"},
				Default:     "celsius",
			},
		},
	}
}

// weatherConditions are cycled deterministically per location so repeated
// calls with the same arguments return identical results.
var weatherConditions = []string{"clear", "partly cloudy", "overcast", "light rain", "windy"}

func weatherCapability() Capability {
	return func(_ context.Context, args map[string]any) (string, error) {
		location, _ := args["location"].(string)
		units, _ := args["units"].(string)

		h := fnv.New32a()
		h.Write([]byte(strings.ToLower(strings.TrimSpace(location))))
		seed := h.Sum32()

		tempC := int(seed%30) - 2
		condition := weatherConditions[int(seed)%len(weatherConditions)]

		if units == "fahrenheit" {
			tempF := tempC*9/5 + 32
			return fmt.Sprintf("%s: %s, %dF", location, condition, tempF), nil
		}
		return fmt.Sprintf("%s: %s, %dC", location, condition, tempC), nil
	}
}

func codeExecutorSpec() models.ToolSpec {
	return models.ToolSpec{
		Name:        "code_executor",
		Description: "Run a shell snippet and return its combined output",
		Parameters: map[string]models.ParamSpec{
			"code": {
				Type:        models.ParamString,
				Description: "Shell snippet to execute",
				Required:    true,
			},
			"timeout_seconds": {
				Type:        models.ParamInteger,
				Description: "Maximum execution time in seconds",
				Default:     10,
			},
		},
	}
}

// maxExecutorOutput bounds how much tool output is carried back into the
// reasoning context.
const maxExecutorOutput = 4000

func codeExecutorCapability(runner CommandRunner, workDir string) Capability {
	return func(ctx context.Context, args map[string]any) (string, error) {
		code, _ := args["code"].(string)
		timeout := intArg(args["timeout_seconds"], 10)

		execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()

		output, err := runner.RunShell(execCtx, workDir, code)
		if err != nil {
			if execCtx.Err() == context.DeadlineExceeded {
				return "", fmt.Errorf("execution exceeded %ds timeout", timeout)
			}
			return "", fmt.Errorf("execution failed: %w (output: %s)", err, truncateOutput(output))
		}
		return truncateOutput(output), nil
	}
}

func truncateOutput(output []byte) string {
	s := strings.TrimSpace(string(output))
	if len(s) > maxExecutorOutput {
		return s[:maxExecutorOutput] + "..."
	}
	return s
}

// intArg coerces a decoded argument into an int, falling back when the
// value is absent or of an unexpected shape.
func intArg(value any, fallback int) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// SortedToolNames is a helper for deterministic catalog listings.
func SortedToolNames(registry *Registry) []string {
	names := registry.Names()
	sort.Strings(names)
	return names
}
