package planner

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ShayCichocki/hive/pkg/models"
)

// planEntry is the wire shape a decomposition reply must carry.
type planEntry struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Specializations []string `json:"specializations"`
	DependsOn       []string `json:"depends_on"`
}

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	bareFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// extractJSONArray pulls a JSON array out of a capability reply. Stages:
// the raw reply, a ```json fence, a bare ``` fence, then the outermost
// bracketed span. Generative output wraps JSON in prose often enough
// that all four are needed.
func extractJSONArray(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "[") && json.Valid([]byte(text)) {
		return text, true
	}
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		if candidate := strings.TrimSpace(m[1]); json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	if m := bareFenceRe.FindStringSubmatch(text); m != nil {
		if candidate := strings.TrimSpace(m[1]); json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if candidate := text[start : end+1]; json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// parsePlan converts a capability reply into validated subtasks. Entries
// with an empty title or no tags are dropped and counted; the plan is
// clamped to limit; dependency titles resolve to subtask IDs, unknown
// references are discarded, and a dependency cycle invalidates the whole
// plan (zero subtasks returned, caller falls back).
func parsePlan(reply string, limit int) (subtasks []models.Subtask, dropped int) {
	raw, ok := extractJSONArray(reply)
	if !ok {
		return nil, 0
	}

	var entries []planEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, 0
	}

	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		tags := cleanTags(e.Specializations)
		if title == "" || len(tags) == 0 {
			dropped++
			continue
		}
		subtasks = append(subtasks, models.Subtask{
			ID:              uuid.New().String(),
			Title:           title,
			Description:     strings.TrimSpace(e.Description),
			Specializations: tags,
			DependsOn:       cleanTags(e.DependsOn),
		})
	}

	if len(subtasks) > limit {
		subtasks = subtasks[:limit]
	}

	resolveDependencies(subtasks)
	if hasCycle(subtasks) {
		return nil, len(entries)
	}
	return subtasks, dropped
}

// resolveDependencies rewrites depends_on titles into subtask IDs.
// References to titles outside the plan are discarded.
func resolveDependencies(subtasks []models.Subtask) {
	idByTitle := make(map[string]string, len(subtasks))
	for _, st := range subtasks {
		idByTitle[strings.ToLower(st.Title)] = st.ID
	}
	for i := range subtasks {
		var deps []string
		for _, ref := range subtasks[i].DependsOn {
			id, ok := idByTitle[strings.ToLower(ref)]
			if !ok || id == subtasks[i].ID {
				continue
			}
			deps = append(deps, id)
		}
		subtasks[i].DependsOn = deps
	}
}

// hasCycle runs a three-color DFS over the dependency edges.
func hasCycle(subtasks []models.Subtask) bool {
	deps := make(map[string][]string, len(subtasks))
	for _, st := range subtasks {
		deps[st.ID] = st.DependsOn
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(deps))

	var visit func(string) bool
	visit = func(id string) bool {
		switch color[id] {
		case gray:
			return true
		case black:
			return false
		}
		color[id] = gray
		for _, dep := range deps[id] {
			if visit(dep) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, st := range subtasks {
		if visit(st.ID) {
			return true
		}
	}
	return false
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
