package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/pkg/models"
)

var (
	runMode         string
	runFormat       string
	runMaxSubtasks  int
	runConversation string
	runHeadless     bool
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Answer a single query with the worker team",
	Long: `Run one query through the full pipeline: plan subtasks, route them
to specialized workers, execute concurrently, and synthesize a final
answer with per-subtask provenance.

Subtasks that no registered worker covers are reported as gaps rather
than failing the run. Worker failures and timeouts degrade only their
own subtask.

Examples:
  hive run "Compare Q3 revenue against the market forecast"
  hive run --mode sequential --format detailed "Audit the deploy pipeline"
  hive run --conversation weekly-report "Summarize this week's findings"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "Execution mode: parallel or sequential (default from catalog)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "Response format: concise, detailed, or technical")
	runCmd.Flags().IntVar(&runMaxSubtasks, "max-subtasks", 0, "Cap on planned subtasks (default from catalog)")
	runCmd.Flags().StringVar(&runConversation, "conversation", "", "Conversation id for cross-run memory")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Run without the progress console")
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()

	task := buildTask(a, strings.Join(args, " "))

	if a.cfg.TUI.Enabled && !runHeadless {
		return runWithTUI(ctx, a, task)
	}

	resp, err := a.orch.HandleQuery(ctx, task)
	if err != nil {
		return err
	}
	printResponse(resp, a.provider.Tracker().Cost())
	return nil
}

// buildTask resolves per-run settings: flags win over the catalog's
// task_delegation block, which wins over config defaults.
func buildTask(a *app, query string) models.Task {
	mode, format := taskDefaults(a.cfg, a.catalog)
	if runMode != "" {
		mode = models.ExecutionMode(runMode)
	}
	if runFormat != "" {
		format = models.ResponseFormat(runFormat)
	}

	return models.Task{
		Query:          query,
		ConversationID: runConversation,
		MaxSubtasks:    runMaxSubtasks,
		Mode:           mode,
		Format:         format,
	}
}
