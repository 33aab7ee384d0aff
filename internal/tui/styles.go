package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/hive/pkg/models"
)

const pendingGlyph = "·"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	queryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	stateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	workerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// statusGlyph maps a terminal subtask status to its row marker.
func statusGlyph(status models.SubtaskStatus) string {
	switch status {
	case models.StatusOK:
		return okStyle.Render("✓")
	case models.StatusFailed:
		return failStyle.Render("✗")
	case models.StatusTimedOut:
		return warnStyle.Render("~")
	case models.StatusUnroutable:
		return warnStyle.Render("?")
	default:
		return pendingGlyph
	}
}

// statusLabel renders the status word shown next to non-ok rows.
func statusLabel(status models.SubtaskStatus) string {
	switch status {
	case models.StatusFailed:
		return failStyle.Render("failed")
	case models.StatusTimedOut:
		return warnStyle.Render("timed out")
	case models.StatusUnroutable:
		return warnStyle.Render("no worker")
	default:
		return ""
	}
}
