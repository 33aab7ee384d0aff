package orchestrator

import (
	"time"

	"github.com/ShayCichocki/hive/pkg/models"
)

// EventType is the kind of orchestrator event.
type EventType string

const (
	// EventStateChanged reports a pipeline state transition.
	EventStateChanged EventType = "state_changed"
	// EventPlanReady reports the validated plan, before routing.
	EventPlanReady EventType = "plan_ready"
	// EventSubtaskUpdate reports a subtask starting or reaching a
	// terminal status, including unroutable ones that never start.
	EventSubtaskUpdate EventType = "subtask_update"
	// EventResponseReady reports that the final response was produced.
	EventResponseReady EventType = "response_ready"
)

// Event is one progress update emitted by the orchestrator. Consumers
// such as the TUI receive these on a buffered channel; when no one
// drains the channel, events are dropped rather than blocking the run.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// State is the pipeline state, set on state_changed events.
	State State
	// TaskID identifies the task this event belongs to.
	TaskID string
	// SubtaskID identifies the subtask, for subtask_update events.
	SubtaskID string
	// SubtaskTitle is the subtask's short title, for subtask_update events.
	SubtaskTitle string
	// Worker is the assigned worker name, if one was resolved.
	Worker string
	// Status is the subtask's terminal status, once it has one.
	Status models.SubtaskStatus
	// Plan carries the planned subtasks on plan_ready events.
	Plan []models.Subtask
	// Confidence is the aggregate confidence on response_ready events.
	Confidence float64
	// Message provides additional context about the event.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
