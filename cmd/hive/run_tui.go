package main

import (
	"context"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/hive/internal/orchestrator"
	"github.com/ShayCichocki/hive/internal/tui"
	"github.com/ShayCichocki/hive/pkg/models"
)

// runWithTUI runs one query behind the progress console and prints the
// final response after the console exits.
func runWithTUI(ctx context.Context, a *app, task models.Task) error {
	// Suppress log output while the TUI is active (it corrupts the display)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	program, view := tui.NewProgram(task.Query)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go forwardEventsToTUI(ctx, program, a.orch.Events())

	queryDone := make(chan struct{})
	go func() {
		defer close(queryDone)
		resp, err := a.orch.HandleQuery(ctx, task)
		if err != nil {
			program.Send(tui.DoneMsg{Err: err})
			return
		}
		program.Send(tui.DoneMsg{Response: &resp})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-queryDone
		return err
	}

	if view.Quit() {
		// User aborted: cancel the in-flight run and wait for it to unwind.
		cancel()
		<-queryDone
		return nil
	}
	<-queryDone

	resp, err := view.Outcome()
	if err != nil {
		return err
	}
	if resp != nil {
		printResponse(*resp, a.provider.Tracker().Cost())
	}
	return nil
}

// forwardEventsToTUI converts orchestrator events to TUI messages.
func forwardEventsToTUI(ctx context.Context, program *tea.Program, events <-chan orchestrator.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			program.Send(tui.EventMsg{Event: ev})
		case <-ctx.Done():
			return
		}
	}
}
