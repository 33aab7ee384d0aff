package planner

import (
	"testing"

	"github.com/ShayCichocki/hive/pkg/models"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "raw array",
			text: `[{"title": "a"}]`,
			want: `[{"title": "a"}]`,
			ok:   true,
		},
		{
			name: "json fence",
			text: "Here is the plan:\n```json\n[{\"title\": \"a\"}]\n```\nDone.",
			want: `[{"title": "a"}]`,
			ok:   true,
		},
		{
			name: "bare fence",
			text: "```\n[{\"title\": \"a\"}]\n```",
			want: `[{"title": "a"}]`,
			ok:   true,
		},
		{
			name: "prose wrapped",
			text: `Sure! The subtasks are [{"title": "a"}] as requested.`,
			want: `[{"title": "a"}]`,
			ok:   true,
		},
		{
			name: "no json",
			text: "I cannot decompose this.",
			ok:   false,
		},
		{
			name: "invalid json in fence",
			text: "```json\n[{broken\n```",
			ok:   false,
		},
		{
			name: "empty",
			text: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONArray(tt.text)
			if ok != tt.ok {
				t.Fatalf("extractJSONArray(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("extractJSONArray(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestHasCycle(t *testing.T) {
	chain := []models.Subtask{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	}
	if hasCycle(chain) {
		t.Error("linear chain reported as cyclic")
	}

	loop := []models.Subtask{
		{ID: "a", DependsOn: []string{"c"}},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"b"}},
	}
	if !hasCycle(loop) {
		t.Error("three-node loop not detected")
	}

	diamond := []models.Subtask{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a"}},
		{ID: "d", DependsOn: []string{"b", "c"}},
	}
	if hasCycle(diamond) {
		t.Error("diamond dependency reported as cyclic")
	}
}

func TestParsePlanCountsDropped(t *testing.T) {
	reply := `[
  {"title": "good", "specializations": ["x"]},
  {"title": "", "specializations": ["x"]},
  {"title": "tagless", "specializations": []}
]`
	subtasks, dropped := parsePlan(reply, 5)
	if len(subtasks) != 1 {
		t.Errorf("parsePlan kept %d subtasks, want 1", len(subtasks))
	}
	if dropped != 2 {
		t.Errorf("parsePlan dropped = %d, want 2", dropped)
	}
}
