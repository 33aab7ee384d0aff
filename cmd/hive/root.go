package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hive",
	Short: "Hierarchical multi-agent task orchestrator",
	Long: `Hive answers complex queries with a team of specialized agents.

A head agent plans the query into subtasks, routes each subtask to the
worker whose specializations match best, executes the routed subtasks
concurrently with per-subtask timeouts, and synthesizes the partial
results into a single answer. Subtasks that fail, time out, or match no
worker degrade the answer instead of aborting it.

With no arguments, starts an interactive chat session with conversation
memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
