package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/internal/config"
	"github.com/ShayCichocki/hive/internal/tools"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [path]",
	Short: "Show or validate the agent catalog",
	Long: `Print the agent roster, tool schemas, and delegation settings that
hive would run with. Pass a path to validate a specific catalog file
instead of the configured one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: showCatalog,
}

func showCatalog(cmd *cobra.Command, args []string) error {
	var (
		catalog *config.Catalog
		source  string
		err     error
	)
	if len(args) == 1 {
		source = args[0]
		catalog, err = config.LoadCatalog(source)
	} else {
		cfg, cfgErr := config.Load()
		if cfgErr != nil {
			return cfgErr
		}
		source = cfg.Catalog.Path
		if source == "" {
			source = "built-in defaults"
		}
		catalog, err = loadCatalog(cfg)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Catalog: %s\n\n", source)

	color.New(color.Bold).Println("Agents")
	reg, err := catalog.BuildRegistry()
	if err != nil {
		return err
	}
	fmt.Print(reg.String())

	toolReg := tools.NewRegistry()
	if err := tools.RegisterBuiltins(toolReg, tools.BuiltinOptions{Specs: catalog.ToolSpecs()}); err != nil {
		return err
	}
	fmt.Println()
	color.New(color.Bold).Println("Tools")
	fmt.Print(tools.NewInvoker(toolReg).Describe(tools.SortedToolNames(toolReg)))

	strategy, err := catalog.Strategy()
	if err != nil {
		return err
	}
	fmt.Println()
	color.New(color.Bold).Println("Delegation")
	fmt.Printf("  method: %s\n", strategy.Name())
	fmt.Printf("  mode: %s\n", catalog.ExecutionMode())
	fmt.Printf("  format: %s\n", catalog.ResultFormat())
	fmt.Printf("  max subtasks: %d\n", catalog.MaxSubtasks())

	fmt.Println()
	fmt.Printf("%s catalog valid: %d agents\n", color.GreenString("✓"), len(catalog.Agents))
	return nil
}
