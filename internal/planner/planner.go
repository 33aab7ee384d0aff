// Package planner decomposes a user query into bounded subtasks via the
// capability-provider.
package planner

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ShayCichocki/hive/internal/backend"
	"github.com/ShayCichocki/hive/pkg/models"
)

// Planner turns a query into an ordered set of subtasks. The underlying
// capability is generative, so output is validated before it is returned
// and a fallback covers the case where nothing usable comes back.
type Planner struct {
	provider    backend.Provider
	maxSubtasks int
}

// New creates a planner. A non-positive maxSubtasks falls back to the
// model default.
func New(provider backend.Provider, maxSubtasks int) *Planner {
	if maxSubtasks <= 0 {
		maxSubtasks = models.DefaultMaxSubtasks
	}
	return &Planner{provider: provider, maxSubtasks: maxSubtasks}
}

// Plan decomposes the task query into at most maxSubtasks subtasks, each
// with a non-empty title and at least one specialization tag. vocabulary
// is the union of registered worker tags and steers decomposition toward
// routable subtasks; history carries prior-turn digests for follow-up
// queries. Provider failures propagate: there is no local recovery from
// an unreachable backend at this stage.
func (p *Planner) Plan(ctx context.Context, task models.Task, vocabulary, history []string) ([]models.Subtask, error) {
	limit := task.MaxSubtasks
	if limit <= 0 || limit > p.maxSubtasks {
		limit = p.maxSubtasks
	}

	reply, err := p.provider.Complete(ctx, backend.PromptRequest{
		System:   planSystemPrompt(limit, vocabulary),
		Messages: []backend.Message{{Role: backend.RoleUser, Content: planUserPrompt(task.Query, history)}},
	})
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", task.Query, err)
	}

	subtasks, dropped := parsePlan(reply, limit)
	if dropped > 0 {
		log.Printf("[planner] dropped %d invalid plan entries", dropped)
	}
	if len(subtasks) == 0 {
		log.Printf("[planner] no usable subtasks extracted, falling back to general subtask")
		return []models.Subtask{fallbackSubtask(task.Query)}, nil
	}
	return subtasks, nil
}

// fallbackSubtask covers the whole query under the general tag so a
// non-empty query never yields zero subtasks.
func fallbackSubtask(query string) models.Subtask {
	return models.Subtask{
		ID:              uuid.New().String(),
		Title:           "general",
		Description:     query,
		Specializations: []string{"general"},
	}
}

func planSystemPrompt(limit int, vocabulary []string) string {
	var b strings.Builder
	b.WriteString("You are a task planner for a team of specialized workers. ")
	b.WriteString("Decompose the user's query into independent subtasks.\n\n")
	fmt.Fprintf(&b, "Rules:\n")
	fmt.Fprintf(&b, "- Produce at most %d subtasks.\n", limit)
	b.WriteString("- Each subtask needs a short title, a self-contained description, and one or more specialization tags.\n")
	if len(vocabulary) > 0 {
		fmt.Fprintf(&b, "- Prefer specialization tags from this list: %s.\n", strings.Join(vocabulary, ", "))
	}
	b.WriteString("- Keep subtasks independent. Only use depends_on (titles of other subtasks) when one genuinely needs another's output.\n")
	b.WriteString("- Reply with a JSON array only, no prose:\n")
	b.WriteString(`[{"title": "...", "description": "...", "specializations": ["..."], "depends_on": []}]`)
	return b.String()
}

func planUserPrompt(query string, history []string) string {
	if len(history) == 0 {
		return query
	}
	var b strings.Builder
	b.WriteString("Prior conversation context:\n")
	for _, h := range history {
		b.WriteString(h)
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent query: ")
	b.WriteString(query)
	return b.String()
}
