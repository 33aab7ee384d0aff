package models

import "time"

// SubtaskStatus represents the terminal state of a subtask execution.
type SubtaskStatus string

const (
	// StatusOK indicates the worker produced a usable result.
	StatusOK SubtaskStatus = "ok"
	// StatusFailed indicates the worker could not produce a result.
	StatusFailed SubtaskStatus = "failed"
	// StatusTimedOut indicates the subtask exceeded its execution timeout.
	StatusTimedOut SubtaskStatus = "timed_out"
	// StatusUnroutable indicates no registered worker matched the subtask.
	StatusUnroutable SubtaskStatus = "unroutable"
)

// Valid returns true if the status is a known value.
func (s SubtaskStatus) Valid() bool {
	switch s {
	case StatusOK, StatusFailed, StatusTimedOut, StatusUnroutable:
		return true
	default:
		return false
	}
}

// SubtaskResult is the typed outcome of executing one subtask.
type SubtaskResult struct {
	// SubtaskID identifies the subtask this result belongs to.
	SubtaskID string `json:"subtask_id"`
	// Worker is the name of the worker that handled the subtask.
	Worker string `json:"worker"`
	// Status is the terminal state of the execution.
	Status SubtaskStatus `json:"status"`
	// Findings is the worker's summary of what it learned or produced.
	Findings string `json:"findings,omitempty"`
	// Details is the free-form body backing the findings.
	Details string `json:"details,omitempty"`
	// Confidence is the worker's self-assessed confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// ErrorDetail describes the failure when Status is not ok.
	ErrorDetail string `json:"error_detail,omitempty"`
	// Duration is how long the subtask execution took.
	Duration time.Duration `json:"duration,omitempty"`
	// ToolCalls is the number of tool invocations the worker issued.
	ToolCalls int `json:"tool_calls,omitempty"`
}

// ClampConfidence forces a confidence value into the [0,1] range.
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SynthesisRequest carries an ordered result sequence into the synthesizer.
type SynthesisRequest struct {
	// Query is the original user query the results answer.
	Query string `json:"query"`
	// Results holds one entry per terminal subtask, in subtask order.
	Results []SubtaskResult `json:"results"`
	// Titles maps subtask IDs to their planner titles, for provenance.
	Titles map[string]string `json:"titles,omitempty"`
	// Format selects the synthesis style.
	Format ResponseFormat `json:"format"`
}

// Provenance records which worker produced which part of a final response.
type Provenance struct {
	// SubtaskID identifies the subtask.
	SubtaskID string `json:"subtask_id"`
	// Title is the subtask's planner title.
	Title string `json:"title,omitempty"`
	// Worker is the name of the worker that handled it.
	Worker string `json:"worker"`
	// Status is the terminal state of the subtask.
	Status SubtaskStatus `json:"status"`
	// Confidence is the worker's confidence for this subtask.
	Confidence float64 `json:"confidence"`
}

// TokenUsage is a snapshot of capability-provider token consumption.
type TokenUsage struct {
	// InputTokens counts prompt tokens sent to the provider.
	InputTokens int64 `json:"input_tokens"`
	// OutputTokens counts completion tokens returned by the provider.
	OutputTokens int64 `json:"output_tokens"`
}

// Total returns the combined token count.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// FinalResponse is the synthesized answer for one task.
type FinalResponse struct {
	// Text is the synthesized narrative.
	Text string `json:"text"`
	// Provenance references every subtask that reached a terminal state.
	Provenance []Provenance `json:"provenance"`
	// Confidence is the aggregate confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Unrouted lists titles of subtasks no worker could handle.
	Unrouted []string `json:"unrouted,omitempty"`
	// Overflow lists titles of planned subtasks dropped by the subtask cap.
	Overflow []string `json:"overflow,omitempty"`
	// Usage is the provider token usage accumulated for this task.
	Usage TokenUsage `json:"usage,omitempty"`
}
