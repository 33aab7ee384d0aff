package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/pkg/models"
)

var chatFormat string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session with conversation memory",
	Long: `Start an interactive session. Each prompt runs through the full
plan/route/execute/synthesize pipeline, and recent exchanges are fed
back to the planner so follow-up questions carry context.

Commands inside the session:
  /new    start a fresh conversation (drops accumulated context)
  /reset  clear a failed orchestrator after a backend outage
  /quit   exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatFormat, "format", "", "Response format: concise, detailed, or technical")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()

	mode, format := taskDefaults(a.cfg, a.catalog)
	if chatFormat != "" {
		format = models.ResponseFormat(chatFormat)
	}

	conversationID := uuid.New().String()

	color.New(color.Bold).Printf("hive chat")
	fmt.Printf(" (%d workers: %s)\n", a.registry.Len(), strings.Join(a.registry.Names(), ", "))
	fmt.Println("Type a query, or /new, /reset, /quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			conversationID = uuid.New().String()
			a.provider.Tracker().Reset()
			fmt.Println("Started a new conversation.")
			continue
		case "/reset":
			a.orch.Reset()
			fmt.Println("Orchestrator reset.")
			continue
		}

		resp, err := a.orch.HandleQuery(ctx, models.Task{
			Query:          line,
			ConversationID: conversationID,
			Mode:           mode,
			Format:         format,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			color.Red("error: %v", err)
			if models.IsBackendFailure(err) {
				fmt.Println("The backend failed; /reset once it recovers.")
			}
			continue
		}

		fmt.Println()
		fmt.Println(resp.Text)
		fmt.Printf("%s\n\n", color.New(color.Faint).Sprintf("confidence %.2f, %d subtasks, ~$%.4f", resp.Confidence, len(resp.Provenance), a.provider.Tracker().Cost()))
	}
	return scanner.Err()
}
