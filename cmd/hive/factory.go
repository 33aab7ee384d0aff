package main

import (
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/hive/internal/backend"
	"github.com/ShayCichocki/hive/internal/config"
	"github.com/ShayCichocki/hive/internal/memory"
	"github.com/ShayCichocki/hive/internal/orchestrator"
	"github.com/ShayCichocki/hive/internal/registry"
	"github.com/ShayCichocki/hive/internal/router"
	"github.com/ShayCichocki/hive/internal/tools"
	"github.com/ShayCichocki/hive/pkg/models"
)

// app bundles everything a command needs to serve queries.
type app struct {
	cfg      *config.Config
	catalog  *config.Catalog
	registry *registry.Registry
	invoker  *tools.Invoker
	provider *backend.AnthropicProvider
	store    memory.Store
	orch     *orchestrator.Orchestrator
	watcher  *config.CatalogWatcher
}

// buildApp loads configuration and the agent catalog and assembles the
// orchestrator stack.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildAppFromConfig(cfg)
}

func buildAppFromConfig(cfg *config.Config) (*app, error) {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	providerCfg := backend.AnthropicConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	}
	if !cfg.Anthropic.UseBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w\n\nSet ANTHROPIC_API_KEY or add anthropic.api_key to %s", err, config.GetUserConfigPath())
		}
		providerCfg.APIKey = key
	}
	provider, err := backend.NewAnthropicProvider(providerCfg)
	if err != nil {
		return nil, err
	}

	toolRegistry := tools.NewRegistry()
	if err := tools.RegisterBuiltins(toolRegistry, tools.BuiltinOptions{Specs: catalog.ToolSpecs()}); err != nil {
		return nil, err
	}
	invoker := tools.NewInvoker(toolRegistry)

	reg, err := catalog.BuildRegistry()
	if err != nil {
		return nil, err
	}

	strategy, err := pickStrategy(cfg, catalog)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Provider:       provider,
		Registry:       reg,
		Invoker:        invoker,
		Store:          store,
		Strategy:       strategy,
		MaxSubtasks:    maxSubtasks(cfg, catalog),
		MaxParallel:    cfg.Limits.MaxParallel,
		SubtaskTimeout: cfg.Timeouts.Subtask,
		Tracker:        provider.Tracker(),
		DebugLogPath:   orchestrator.DefaultDebugLogPath("."),
	})
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		catalog:  catalog,
		registry: reg,
		invoker:  invoker,
		provider: provider,
		store:    store,
		orch:     orch,
	}

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		watcher, err := config.WatchCatalog(cfg.Catalog.Path, func(c *config.Catalog) {
			newReg, err := c.BuildRegistry()
			if err != nil {
				log.Printf("[hive] catalog swap skipped: %v", err)
				return
			}
			if err := a.orch.SwapRegistry(newReg); err != nil {
				log.Printf("[hive] catalog swap skipped: %v", err)
			}
		})
		if err != nil {
			log.Printf("[hive] catalog watching disabled: %v", err)
		} else {
			a.watcher = watcher
		}
	}

	return a, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.orch != nil {
		a.orch.Close()
	}
}

// loadCatalog reads the configured catalog file, or falls back to the
// built-in roster.
func loadCatalog(cfg *config.Config) (*config.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return config.DefaultCatalog(), nil
	}
	return config.LoadCatalog(cfg.Catalog.Path)
}

// pickStrategy resolves the scoring strategy: the catalog's delegation
// method wins, then the config default.
func pickStrategy(cfg *config.Config, catalog *config.Catalog) (router.ScoreStrategy, error) {
	if catalog.TaskDelegation.DelegationMethod != "" {
		return catalog.Strategy()
	}
	return router.StrategyFor(cfg.Defaults.Strategy)
}

// maxSubtasks resolves the subtask cap: catalog over config default.
func maxSubtasks(cfg *config.Config, catalog *config.Catalog) int {
	if catalog.TaskDelegation.MaxSubtasks > 0 {
		return catalog.TaskDelegation.MaxSubtasks
	}
	return cfg.Defaults.MaxSubtasks
}

// taskDefaults resolves the execution mode and result format applied
// when flags do not choose: catalog delegation over config defaults.
func taskDefaults(cfg *config.Config, catalog *config.Catalog) (models.ExecutionMode, models.ResponseFormat) {
	mode := models.ExecutionMode(cfg.Defaults.Mode)
	if catalog.TaskDelegation.ExecutionMode != "" {
		mode = catalog.ExecutionMode()
	}
	format := models.ResponseFormat(cfg.Defaults.Format)
	if catalog.TaskDelegation.ResultFormat != "" {
		format = catalog.ResultFormat()
	}
	return mode, format
}

// openStore opens the conversation memory store, or returns nil when
// memory is disabled.
func openStore(cfg *config.Config) (memory.Store, error) {
	if !cfg.Memory.Enabled {
		return nil, nil
	}
	if cfg.Memory.Path == "" {
		return memory.NewInMemoryStore(cfg.Memory.HistoryLimit, cfg.Memory.MaxConversations), nil
	}
	return memory.OpenSQLite(cfg.Memory.Path, cfg.Memory.HistoryLimit, cfg.Memory.Retention())
}
