// Package tui provides the terminal progress console for hive runs.
// It renders the pipeline state and one row per subtask, fed by
// orchestrator events bridged in as messages.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/hive/internal/orchestrator"
	"github.com/ShayCichocki/hive/pkg/models"
)

// EventMsg wraps an orchestrator event for the TUI.
type EventMsg struct {
	Event orchestrator.Event
}

// DoneMsg signals that the run finished, successfully or not.
type DoneMsg struct {
	Response *models.FinalResponse
	Err      error
}

// subtaskRow is the display state of one subtask.
type subtaskRow struct {
	id      string
	title   string
	worker  string
	status  models.SubtaskStatus
	running bool
}

// App is the bubbletea model for a single run.
type App struct {
	query string
	spin  spinner.Model

	state orchestrator.State
	rows  []subtaskRow
	index map[string]int

	response *models.FinalResponse
	err      error
	done     bool
	quitting bool
	width    int
}

// New creates the progress console for the given query.
func New(query string) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return &App{
		query: query,
		spin:  s,
		state: orchestrator.StateIdle,
		index: make(map[string]int),
	}
}

// NewProgram creates a bubbletea program around the app. Events are
// delivered with program.Send(EventMsg{...}) and the run's outcome with
// program.Send(DoneMsg{...}).
func NewProgram(query string) (*tea.Program, *App) {
	app := New(query)
	p := tea.NewProgram(app, tea.WithAltScreen())
	return p, app
}

// Outcome returns the run's response and error once the program exits.
func (a *App) Outcome() (*models.FinalResponse, error) {
	return a.response, a.err
}

// Quit reports whether the user aborted the run.
func (a *App) Quit() bool {
	return a.quitting
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.spin.Tick
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case EventMsg:
		a.apply(msg.Event)

	case DoneMsg:
		a.done = true
		a.response = msg.Response
		a.err = msg.Err
		return a, tea.Quit
	}

	return a, nil
}

// apply folds one orchestrator event into the display state.
func (a *App) apply(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventStateChanged:
		a.state = ev.State

	case orchestrator.EventPlanReady:
		a.rows = make([]subtaskRow, 0, len(ev.Plan))
		a.index = make(map[string]int, len(ev.Plan))
		for _, st := range ev.Plan {
			a.index[st.ID] = len(a.rows)
			a.rows = append(a.rows, subtaskRow{id: st.ID, title: st.Title})
		}

	case orchestrator.EventSubtaskUpdate:
		i, ok := a.index[ev.SubtaskID]
		if !ok {
			a.index[ev.SubtaskID] = len(a.rows)
			a.rows = append(a.rows, subtaskRow{id: ev.SubtaskID, title: ev.SubtaskTitle})
			i = len(a.rows) - 1
		}
		row := &a.rows[i]
		if ev.Worker != "" {
			row.worker = ev.Worker
		}
		switch {
		case ev.Status != "":
			row.status = ev.Status
			row.running = false
		case ev.Message == "started":
			row.running = true
		}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Run aborted.\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("hive"))
	b.WriteString("  ")
	b.WriteString(queryStyle.Render(a.query))
	b.WriteString("\n\n")

	if a.done {
		b.WriteString(stateStyle.Render("done"))
	} else {
		b.WriteString(a.spin.View())
		b.WriteString(stateStyle.Render(string(a.state)))
	}
	b.WriteString("\n\n")

	for _, row := range a.rows {
		b.WriteString("  ")
		b.WriteString(a.renderRow(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q to abort"))
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderRow(row subtaskRow) string {
	glyph := pendingGlyph
	switch {
	case row.running:
		glyph = a.spin.View()
	case row.status != "":
		glyph = statusGlyph(row.status)
	}

	line := fmt.Sprintf("%s %s", glyph, row.title)
	if row.worker != "" {
		line += workerStyle.Render(fmt.Sprintf("  [%s]", row.worker))
	}
	if row.status != "" && row.status != models.StatusOK {
		line += "  " + statusLabel(row.status)
	}
	return line
}
