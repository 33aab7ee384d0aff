package models

import "time"

// ExecutionMode controls how assigned subtasks are executed.
type ExecutionMode string

const (
	// ModeParallel executes all assigned subtasks concurrently.
	ModeParallel ExecutionMode = "parallel"
	// ModeSequential executes assigned subtasks one at a time in order.
	ModeSequential ExecutionMode = "sequential"
)

// Valid returns true if the mode is a known value.
func (m ExecutionMode) Valid() bool {
	switch m {
	case ModeParallel, ModeSequential:
		return true
	default:
		return false
	}
}

// DefaultMaxSubtasks bounds how many subtasks a single task may fan out to
// when the catalog does not say otherwise.
const DefaultMaxSubtasks = 5

// Task represents one user request flowing through the orchestrator.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Query is the root user query to be decomposed and answered.
	Query string `json:"query"`
	// ConversationID links this task to a conversation history, if any.
	ConversationID string `json:"conversation_id,omitempty"`
	// MaxSubtasks bounds how many subtasks the planner may produce.
	MaxSubtasks int `json:"max_subtasks"`
	// Mode selects parallel or sequential subtask execution.
	Mode ExecutionMode `json:"mode"`
	// Format selects how the final response is synthesized.
	Format ResponseFormat `json:"format"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
}

// Subtask is one decomposed unit of the original query, independently
// executable by a single worker.
type Subtask struct {
	// ID is the unique identifier for this subtask.
	ID string `json:"id"`
	// Title is the short description of the subtask.
	Title string `json:"title"`
	// Description provides detailed instructions for the worker.
	Description string `json:"description,omitempty"`
	// Specializations lists the tags a worker must match to handle this.
	Specializations []string `json:"specializations"`
	// AssignedTo is the name of the worker resolved by the router.
	AssignedTo string `json:"assigned_to,omitempty"`
	// DependsOn lists subtask IDs that must complete before this one.
	DependsOn []string `json:"depends_on,omitempty"`
}
