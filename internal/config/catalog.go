package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/hive/internal/registry"
	"github.com/ShayCichocki/hive/internal/router"
	"github.com/ShayCichocki/hive/pkg/models"
)

// Catalog is the agent catalog: the worker roster, delegation settings,
// and tool parameter schemas. It is the declarative source the runtime
// roster is built from, loadable from YAML or JSON.
type Catalog struct {
	Agents         []AgentEntry          `yaml:"agents" json:"agents"`
	TaskDelegation DelegationConfig      `yaml:"task_delegation" json:"task_delegation"`
	ToolConfigs    map[string]ToolConfig `yaml:"tool_configs,omitempty" json:"tool_configs,omitempty"`
}

// AgentEntry declares one worker agent.
type AgentEntry struct {
	Name           string      `yaml:"agent_name" json:"agent_name"`
	Config         AgentConfig `yaml:"config" json:"config"`
	Specialization []string    `yaml:"specialization" json:"specialization"`
}

// AgentConfig holds the per-agent settings nested under an entry.
type AgentConfig struct {
	Backstory string   `yaml:"backstory" json:"backstory"`
	Task      string   `yaml:"task" json:"task"`
	Tools     []string `yaml:"tools,omitempty" json:"tools,omitempty"`
	Memory    bool     `yaml:"memory,omitempty" json:"memory,omitempty"`
	Backend   string   `yaml:"backend,omitempty" json:"backend,omitempty"`
}

// Profile converts the catalog entry to the runtime profile.
func (a AgentEntry) Profile() models.AgentProfile {
	return models.AgentProfile{
		Name:            a.Name,
		Backstory:       a.Config.Backstory,
		TaskDescription: a.Config.Task,
		Specializations: a.Specialization,
		Tools:           a.Config.Tools,
		Memory:          a.Config.Memory,
		Backend:         a.Config.Backend,
	}
}

// DelegationConfig holds how queries fan out to the roster.
type DelegationConfig struct {
	DelegationMethod string `yaml:"delegation_method,omitempty" json:"delegation_method,omitempty"`
	ExecutionMode    string `yaml:"execution_mode,omitempty" json:"execution_mode,omitempty"`
	MaxSubtasks      int    `yaml:"max_subtasks,omitempty" json:"max_subtasks,omitempty"`
	ResultFormat     string `yaml:"result_format,omitempty" json:"result_format,omitempty"`
}

// ToolConfig is a JSON-Schema-shaped parameter declaration for one tool.
type ToolConfig struct {
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Type        string               `yaml:"type,omitempty" json:"type,omitempty"`
	Properties  map[string]ToolParam `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required    []string             `yaml:"required,omitempty" json:"required,omitempty"`
}

// ToolParam declares one tool parameter.
type ToolParam struct {
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Enum        []any  `yaml:"enum,omitempty" json:"enum,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
}

// Spec converts the tool config to the runtime spec under the given name.
func (tc ToolConfig) Spec(name string) models.ToolSpec {
	required := make(map[string]bool, len(tc.Required))
	for _, r := range tc.Required {
		required[r] = true
	}
	params := make(map[string]models.ParamSpec, len(tc.Properties))
	for pname, p := range tc.Properties {
		params[pname] = models.ParamSpec{
			Type:        models.ParamType(p.Type),
			Description: p.Description,
			Required:    required[pname],
			Default:     p.Default,
			Enum:        p.Enum,
		}
	}
	return models.ToolSpec{Name: name, Description: tc.Description, Parameters: params}
}

// LoadCatalog reads and validates an agent catalog. The format is chosen
// by file extension: .yaml/.yml or .json.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	default:
		return nil, models.Errorf(models.ErrCodeValidation, "catalog %s has unsupported extension %q", path, ext)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks the catalog is internally consistent: agents are
// well-formed and unique, delegation settings are known values, and tool
// schemas declare only supported parameter types.
func (c *Catalog) Validate() error {
	if len(c.Agents) == 0 {
		return models.NewError(models.ErrCodeValidation, "catalog defines no agents")
	}

	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		profile := a.Profile()
		if err := profile.Validate(); err != nil {
			return err
		}
		if seen[profile.Name] {
			return models.Errorf(models.ErrCodeValidation, "duplicate agent %q in catalog", profile.Name)
		}
		seen[profile.Name] = true
		for _, tool := range a.Config.Tools {
			if strings.TrimSpace(tool) == "" {
				return models.Errorf(models.ErrCodeValidation, "agent %q lists an empty tool name", profile.Name)
			}
		}
	}

	if method := c.TaskDelegation.DelegationMethod; method != "" {
		if _, err := router.StrategyFor(method); err != nil {
			return err
		}
	}
	if mode := c.TaskDelegation.ExecutionMode; mode != "" && !models.ExecutionMode(mode).Valid() {
		return models.Errorf(models.ErrCodeValidation, "unknown execution_mode %q", mode)
	}
	if format := c.TaskDelegation.ResultFormat; format != "" && !models.ResponseFormat(format).Valid() {
		return models.Errorf(models.ErrCodeValidation, "unknown result_format %q", format)
	}
	if c.TaskDelegation.MaxSubtasks < 0 {
		return models.NewError(models.ErrCodeValidation, "max_subtasks cannot be negative")
	}

	for name, tc := range c.ToolConfigs {
		if tc.Type != "" && tc.Type != "object" {
			return models.Errorf(models.ErrCodeValidation, "tool %q has unsupported schema type %q", name, tc.Type)
		}
		for _, req := range tc.Required {
			if _, ok := tc.Properties[req]; !ok {
				return models.Errorf(models.ErrCodeValidation, "tool %q requires undeclared parameter %q", name, req)
			}
		}
		if err := tc.Spec(name).Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Profiles returns the runtime profiles for all catalog agents.
func (c *Catalog) Profiles() []models.AgentProfile {
	profiles := make([]models.AgentProfile, 0, len(c.Agents))
	for _, a := range c.Agents {
		profiles = append(profiles, a.Profile())
	}
	return profiles
}

// BuildRegistry loads the catalog's agents into a fresh registry.
func (c *Catalog) BuildRegistry() (*registry.Registry, error) {
	reg := registry.New()
	if err := reg.Load(c.Profiles()); err != nil {
		return nil, err
	}
	return reg, nil
}

// ToolSpecs returns the catalog's tool schema overrides by tool name.
func (c *Catalog) ToolSpecs() map[string]models.ToolSpec {
	if len(c.ToolConfigs) == 0 {
		return nil
	}
	specs := make(map[string]models.ToolSpec, len(c.ToolConfigs))
	for name, tc := range c.ToolConfigs {
		specs[name] = tc.Spec(name)
	}
	return specs
}

// ExecutionMode returns the catalog's execution mode, defaulting to parallel.
func (c *Catalog) ExecutionMode() models.ExecutionMode {
	if c.TaskDelegation.ExecutionMode == "" {
		return models.ModeParallel
	}
	return models.ExecutionMode(c.TaskDelegation.ExecutionMode)
}

// ResultFormat returns the catalog's result format, defaulting to concise.
func (c *Catalog) ResultFormat() models.ResponseFormat {
	if c.TaskDelegation.ResultFormat == "" {
		return models.FormatConcise
	}
	return models.ResponseFormat(c.TaskDelegation.ResultFormat)
}

// MaxSubtasks returns the catalog's subtask cap, defaulting to the model default.
func (c *Catalog) MaxSubtasks() int {
	if c.TaskDelegation.MaxSubtasks <= 0 {
		return models.DefaultMaxSubtasks
	}
	return c.TaskDelegation.MaxSubtasks
}

// Strategy resolves the catalog's delegation method to a scoring strategy.
func (c *Catalog) Strategy() (router.ScoreStrategy, error) {
	return router.StrategyFor(c.TaskDelegation.DelegationMethod)
}

// DefaultCatalog returns the built-in roster used when no catalog file
// is configured: a data analyst, a researcher, and a coder over the
// built-in tool set.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Agents: []AgentEntry{
			{
				Name: "data_analyst",
				Config: AgentConfig{
					Backstory: "You are a meticulous data analyst. You quantify claims and check the arithmetic behind them.",
					Task:      "Analyze numeric questions and produce verifiable figures.",
					Tools:     []string{"calculator", "code_executor"},
					Backend:   "anthropic",
				},
				Specialization: []string{"data-analysis", "statistics", "math"},
			},
			{
				Name: "researcher",
				Config: AgentConfig{
					Backstory: "You are a thorough researcher. You ground every statement in what your sources actually say.",
					Task:      "Gather background information and summarize what is known.",
					Tools:     []string{"web_search", "weather"},
					Backend:   "anthropic",
				},
				Specialization: []string{"research", "general", "current-events"},
			},
			{
				Name: "coder",
				Config: AgentConfig{
					Backstory: "You are a pragmatic software engineer. You answer with working code and its observed output.",
					Task:      "Write and run short programs to settle technical questions.",
					Tools:     []string{"code_executor", "calculator"},
					Backend:   "anthropic",
				},
				Specialization: []string{"coding", "software", "automation"},
			},
		},
		TaskDelegation: DelegationConfig{
			DelegationMethod: "specialization_match",
			ExecutionMode:    string(models.ModeParallel),
			MaxSubtasks:      models.DefaultMaxSubtasks,
			ResultFormat:     string(models.FormatConcise),
		},
	}
}
