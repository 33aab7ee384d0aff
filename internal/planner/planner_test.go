package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/ShayCichocki/hive/internal/backend"
	"github.com/ShayCichocki/hive/pkg/models"
)

// fakeProvider replays scripted replies and records the prompts it saw.
type fakeProvider struct {
	replies []string
	errs    []error
	calls   int
	prompts []backend.PromptRequest
}

func (f *fakeProvider) Complete(_ context.Context, req backend.PromptRequest) (string, error) {
	f.prompts = append(f.prompts, req)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", nil
}

func (f *fakeProvider) Name() string { return "fake" }

var _ backend.Provider = (*fakeProvider)(nil)

const salesPlan = `[
  {"title": "Analyze Q1 sales", "description": "Crunch the Q1 numbers", "specializations": ["data analysis"]},
  {"title": "Summarize market trends", "description": "Survey recent market reports", "specializations": ["research"]}
]`

func TestPlan(t *testing.T) {
	p := New(&fakeProvider{replies: []string{salesPlan}}, 5)

	subtasks, err := p.Plan(context.Background(), models.Task{Query: "Analyze Q1 sales data and summarize market trends"}, nil, nil)
	if err != nil {
		t.Fatalf("Plan error = %v", err)
	}
	if len(subtasks) != 2 {
		t.Fatalf("Plan returned %d subtasks, want 2", len(subtasks))
	}
	if subtasks[0].Title != "Analyze Q1 sales" {
		t.Errorf("subtasks[0].Title = %q, want %q", subtasks[0].Title, "Analyze Q1 sales")
	}
	if subtasks[0].Specializations[0] != "data analysis" {
		t.Errorf("subtasks[0] tags = %v, want [data analysis]", subtasks[0].Specializations)
	}
	if subtasks[0].ID == "" || subtasks[1].ID == "" {
		t.Error("subtask IDs should be generated")
	}
	if subtasks[0].ID == subtasks[1].ID {
		t.Error("subtask IDs should be unique")
	}
}

func TestPlanFallback(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose only", "I cannot break this down."},
		{"empty array", "[]"},
		{"not an array", `{"title": "single object"}`},
		{"all entries invalid", `[{"title": "", "specializations": []}, {"title": "  ", "specializations": ["x"]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&fakeProvider{replies: []string{tt.reply}}, 5)
			subtasks, err := p.Plan(context.Background(), models.Task{Query: "do something"}, nil, nil)
			if err != nil {
				t.Fatalf("Plan error = %v", err)
			}
			if len(subtasks) != 1 {
				t.Fatalf("Plan returned %d subtasks, want 1 fallback", len(subtasks))
			}
			if subtasks[0].Title != "general" {
				t.Errorf("fallback title = %q, want general", subtasks[0].Title)
			}
			if subtasks[0].Description != "do something" {
				t.Errorf("fallback description = %q, want the whole query", subtasks[0].Description)
			}
		})
	}
}

func TestPlanDropsInvalidEntries(t *testing.T) {
	reply := `[
  {"title": "", "description": "no title", "specializations": ["research"]},
  {"title": "keep me", "description": "valid", "specializations": ["data analysis"]},
  {"title": "no tags", "description": "tagless", "specializations": []}
]`
	p := New(&fakeProvider{replies: []string{reply}}, 5)

	subtasks, err := p.Plan(context.Background(), models.Task{Query: "q"}, nil, nil)
	if err != nil {
		t.Fatalf("Plan error = %v", err)
	}
	if len(subtasks) != 1 {
		t.Fatalf("Plan returned %d subtasks, want 1", len(subtasks))
	}
	if subtasks[0].Title != "keep me" {
		t.Errorf("kept title = %q, want %q", subtasks[0].Title, "keep me")
	}
}

func TestPlanClampsToTaskLimit(t *testing.T) {
	reply := `[
  {"title": "a", "specializations": ["x"]},
  {"title": "b", "specializations": ["x"]},
  {"title": "c", "specializations": ["x"]},
  {"title": "d", "specializations": ["x"]}
]`
	p := New(&fakeProvider{replies: []string{reply}}, 5)

	subtasks, err := p.Plan(context.Background(), models.Task{Query: "q", MaxSubtasks: 2}, nil, nil)
	if err != nil {
		t.Fatalf("Plan error = %v", err)
	}
	if len(subtasks) != 2 {
		t.Errorf("Plan returned %d subtasks, want task limit 2", len(subtasks))
	}
	if subtasks[0].Title != "a" || subtasks[1].Title != "b" {
		t.Errorf("clamp kept [%s %s], want first N in plan order", subtasks[0].Title, subtasks[1].Title)
	}
}

func TestPlanTaskLimitCannotExceedConfigured(t *testing.T) {
	reply := `[
  {"title": "a", "specializations": ["x"]},
  {"title": "b", "specializations": ["x"]},
  {"title": "c", "specializations": ["x"]}
]`
	p := New(&fakeProvider{replies: []string{reply}}, 2)

	subtasks, err := p.Plan(context.Background(), models.Task{Query: "q", MaxSubtasks: 10}, nil, nil)
	if err != nil {
		t.Fatalf("Plan error = %v", err)
	}
	if len(subtasks) != 2 {
		t.Errorf("Plan returned %d subtasks, want configured limit 2", len(subtasks))
	}
}

func TestPlanResolvesDependencies(t *testing.T) {
	reply := `[
  {"title": "gather data", "specializations": ["research"]},
  {"title": "analyze", "specializations": ["data analysis"], "depends_on": ["gather data", "unknown step"]}
]`
	p := New(&fakeProvider{replies: []string{reply}}, 5)

	subtasks, err := p.Plan(context.Background(), models.Task{Query: "q"}, nil, nil)
	if err != nil {
		t.Fatalf("Plan error = %v", err)
	}
	if len(subtasks) != 2 {
		t.Fatalf("Plan returned %d subtasks, want 2", len(subtasks))
	}
	deps := subtasks[1].DependsOn
	if len(deps) != 1 {
		t.Fatalf("DependsOn = %v, want single resolved reference (unknown discarded)", deps)
	}
	if deps[0] != subtasks[0].ID {
		t.Errorf("DependsOn[0] = %q, want sibling ID %q", deps[0], subtasks[0].ID)
	}
}

func TestPlanCycleFallsBack(t *testing.T) {
	reply := `[
  {"title": "a", "specializations": ["x"], "depends_on": ["b"]},
  {"title": "b", "specializations": ["x"], "depends_on": ["a"]}
]`
	p := New(&fakeProvider{replies: []string{reply}}, 5)

	subtasks, err := p.Plan(context.Background(), models.Task{Query: "q"}, nil, nil)
	if err != nil {
		t.Fatalf("Plan error = %v", err)
	}
	if len(subtasks) != 1 || subtasks[0].Title != "general" {
		t.Errorf("cyclic plan should fall back to general subtask, got %v", subtasks)
	}
}

func TestPlanPropagatesBackendFailure(t *testing.T) {
	cause := models.Errorf(models.ErrCodeBackendUnavailable, "api unreachable")
	p := New(&fakeProvider{errs: []error{cause}}, 5)

	_, err := p.Plan(context.Background(), models.Task{Query: "q"}, nil, nil)
	if err == nil {
		t.Fatal("Plan should propagate backend failure")
	}
	if !models.IsBackendFailure(err) {
		t.Errorf("error %v should classify as backend failure", err)
	}
}

func TestPlanPromptContents(t *testing.T) {
	f := &fakeProvider{replies: []string{salesPlan}}
	p := New(f, 3)

	history := []string{"Q: previous question | A: previous answer"}
	vocabulary := []string{"data analysis", "research"}
	if _, err := p.Plan(context.Background(), models.Task{Query: "current question"}, vocabulary, history); err != nil {
		t.Fatalf("Plan error = %v", err)
	}

	if len(f.prompts) != 1 {
		t.Fatalf("provider called %d times, want 1", len(f.prompts))
	}
	req := f.prompts[0]
	if !strings.Contains(req.System, "data analysis, research") {
		t.Errorf("system prompt missing vocabulary:\n%s", req.System)
	}
	if !strings.Contains(req.System, "at most 3 subtasks") {
		t.Errorf("system prompt missing subtask limit:\n%s", req.System)
	}
	user := req.Messages[0].Content
	if !strings.Contains(user, "previous answer") {
		t.Errorf("user prompt missing history:\n%s", user)
	}
	if !strings.Contains(user, "current question") {
		t.Errorf("user prompt missing query:\n%s", user)
	}
}
