// Package worker runs one specialized agent: reason about a subtask,
// optionally call tools, and produce a typed result.
package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/hive/internal/backend"
	"github.com/ShayCichocki/hive/internal/tools"
	"github.com/ShayCichocki/hive/pkg/models"
)

// defaultMaxToolCalls bounds how many tool invocations one subtask may
// spend. Each call is gated by its own reasoning step.
const defaultMaxToolCalls = 4

// Worker wraps one agent profile around the capability-provider and the
// tool invoker. A worker never raises past its boundary: Handle always
// returns a SubtaskResult, failed or otherwise.
type Worker struct {
	profile      models.AgentProfile
	provider     backend.Provider
	invoker      *tools.Invoker
	maxToolCalls int
}

// New creates a worker for the given profile.
func New(profile models.AgentProfile, provider backend.Provider, invoker *tools.Invoker) *Worker {
	return &Worker{
		profile:      profile,
		provider:     provider,
		invoker:      invoker,
		maxToolCalls: defaultMaxToolCalls,
	}
}

// Name returns the worker's registered name.
func (w *Worker) Name() string { return w.profile.Name }

// Handle executes one subtask. The loop alternates reasoning steps with
// at most maxToolCalls tool invocations; a tool failure is fed back to
// the capability-provider exactly once before the subtask is abandoned
// as failed. Context cancellation yields a timed_out result. Backend
// failures degrade this subtask only.
func (w *Worker) Handle(ctx context.Context, st models.Subtask) models.SubtaskResult {
	started := time.Now()
	result := models.SubtaskResult{SubtaskID: st.ID, Worker: w.profile.Name}

	system := w.systemPrompt()
	messages := []backend.Message{{Role: backend.RoleUser, Content: subtaskPrompt(st)}}

	toolBudget := w.maxToolCalls
	retriedToolFailure := false
	forceFinal := false

	// Completion budget: one initial step, one per tool call, and the
	// wrap-up after the budget-exhausted notice.
	for completions := 0; completions < w.maxToolCalls+2; completions++ {
		if ctx.Err() != nil {
			return w.timedOut(result, started, ctx.Err())
		}

		reply, err := w.provider.Complete(ctx, backend.PromptRequest{System: system, Messages: messages})
		if err != nil {
			if ctx.Err() != nil {
				return w.timedOut(result, started, ctx.Err())
			}
			return w.failed(result, started, fmt.Sprintf("backend failure: %v", err))
		}
		messages = append(messages, backend.Message{Role: backend.RoleAssistant, Content: reply})

		d := parseDirective(reply)

		if d.isToolCall() && !forceFinal {
			if toolBudget == 0 {
				forceFinal = true
				messages = append(messages, backend.Message{
					Role:    backend.RoleUser,
					Content: "No more tool calls are available. Produce your final answer now.",
				})
				continue
			}
			toolBudget--

			call := models.ToolCall{Name: d.Tool, Arguments: d.Arguments}
			feedback, ok := w.runTool(ctx, call, &result)
			if !ok {
				if retriedToolFailure {
					return w.failed(result, started, feedback)
				}
				retriedToolFailure = true
				messages = append(messages, backend.Message{
					Role:    backend.RoleUser,
					Content: feedback + "\nAdjust the call or answer without this tool.",
				})
				continue
			}
			messages = append(messages, backend.Message{Role: backend.RoleUser, Content: feedback})
			continue
		}

		findings, details, confidence := d.answer(reply)
		result.Status = models.StatusOK
		result.Findings = findings
		result.Details = details
		result.Confidence = models.ClampConfidence(confidence)
		result.Duration = time.Since(started)
		return result
	}

	return w.failed(result, started, "reasoning budget exhausted without a final answer")
}

// runTool invokes one decided tool call. The returned string is the
// context fed back to the capability-provider; ok is false when the call
// failed (permission, validation, or execution).
func (w *Worker) runTool(ctx context.Context, call models.ToolCall, result *models.SubtaskResult) (string, bool) {
	if !w.profile.AllowsTool(call.Name) {
		return fmt.Sprintf("Tool %q is not available to you. Permitted tools: %s.",
			call.Name, strings.Join(w.profile.Tools, ", ")), false
	}

	res, err := w.invoker.Invoke(ctx, call)
	result.ToolCalls++
	if err != nil {
		return fmt.Sprintf("Tool %q failed: %s.", call.Name, res.Err), false
	}
	return fmt.Sprintf("Tool %q returned:\n%s", call.Name, res.Output), true
}

func (w *Worker) failed(result models.SubtaskResult, started time.Time, detail string) models.SubtaskResult {
	result.Status = models.StatusFailed
	result.ErrorDetail = detail
	result.Confidence = 0
	result.Duration = time.Since(started)
	return result
}

func (w *Worker) timedOut(result models.SubtaskResult, started time.Time, cause error) models.SubtaskResult {
	result.Status = models.StatusTimedOut
	result.ErrorDetail = fmt.Sprintf("subtask abandoned: %v", cause)
	result.Confidence = 0
	result.Duration = time.Since(started)
	return result
}

// systemPrompt renders the worker's role and its tool contract.
func (w *Worker) systemPrompt() string {
	var b strings.Builder
	if w.profile.Backstory != "" {
		b.WriteString(w.profile.Backstory)
		b.WriteString("\n\n")
	}
	if w.profile.TaskDescription != "" {
		b.WriteString("Your role: ")
		b.WriteString(w.profile.TaskDescription)
		b.WriteString("\n\n")
	}

	b.WriteString("Available tools:\n")
	b.WriteString(w.invoker.Describe(w.profile.Tools))
	b.WriteString("\n")
	b.WriteString("To call a tool, reply with a JSON object only:\n")
	b.WriteString(`{"tool": "<name>", "arguments": {...}}`)
	b.WriteString("\n\nWhen you have what you need, reply with your final answer as JSON:\n")
	b.WriteString(`{"findings": "<one-paragraph summary>", "details": "<supporting detail>", "confidence": <0.0-1.0>}`)
	return b.String()
}

func subtaskPrompt(st models.Subtask) string {
	var b strings.Builder
	b.WriteString("Subtask: ")
	b.WriteString(st.Title)
	if st.Description != "" && st.Description != st.Title {
		b.WriteString("\n")
		b.WriteString(st.Description)
	}
	return b.String()
}
