package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/ShayCichocki/hive/pkg/models"
)

// printResponse renders the synthesized answer with its provenance.
func printResponse(resp models.FinalResponse, cost float64) {
	fmt.Println(resp.Text)

	if len(resp.Provenance) > 0 {
		fmt.Println()
		color.New(color.Bold).Println("Subtasks:")
		for _, p := range resp.Provenance {
			fmt.Println(provenanceLine(p))
		}
	}

	fmt.Println()
	fmt.Printf("%s %.2f\n", color.New(color.Bold).Sprint("Confidence:"), resp.Confidence)

	if len(resp.Unrouted) > 0 {
		color.Yellow("No worker matched: %s", strings.Join(resp.Unrouted, "; "))
	}
	if len(resp.Overflow) > 0 {
		color.Yellow("Dropped by subtask cap: %s", strings.Join(resp.Overflow, "; "))
	}
	if resp.Usage.Total() > 0 {
		fmt.Printf("Tokens: %d in / %d out (~$%.4f)\n", resp.Usage.InputTokens, resp.Usage.OutputTokens, cost)
	}
}

func provenanceLine(p models.Provenance) string {
	line := fmt.Sprintf("  %s %s", statusMark(p.Status), p.Title)
	if p.Worker != "" {
		line += fmt.Sprintf(" [%s]", color.CyanString(p.Worker))
	}
	if p.Status == models.StatusOK {
		line += fmt.Sprintf(" (%.2f)", p.Confidence)
	} else {
		line += fmt.Sprintf(" (%s)", p.Status)
	}
	return line
}

func statusMark(status models.SubtaskStatus) string {
	switch status {
	case models.StatusOK:
		return color.GreenString("✓")
	case models.StatusFailed, models.StatusTimedOut:
		return color.RedString("✗")
	case models.StatusUnroutable:
		return color.YellowString("~")
	default:
		return "?"
	}
}
