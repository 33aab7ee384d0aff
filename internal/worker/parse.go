package worker

import (
	"encoding/json"
	"regexp"
	"strings"
)

// directive is what a reasoning reply can carry: either a tool call or a
// final answer. A reply that decodes to neither degrades to bare text.
type directive struct {
	Tool       string         `json:"tool"`
	Arguments  map[string]any `json:"arguments"`
	Findings   string         `json:"findings"`
	Details    string         `json:"details"`
	Confidence *float64       `json:"confidence"`
}

func (d directive) isToolCall() bool { return d.Tool != "" }

// answer extracts the final findings/details/confidence triple. Replies
// without a parsed findings field degrade gracefully: the raw text
// becomes the findings with default confidence 0.5.
func (d directive) answer(raw string) (findings, details string, confidence float64) {
	if d.Findings != "" {
		confidence = 0.5
		if d.Confidence != nil {
			confidence = *d.Confidence
		}
		return d.Findings, d.Details, confidence
	}
	return strings.TrimSpace(raw), "", 0.5
}

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	bareFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// parseDirective pulls the first JSON object out of a reply, trying the
// raw text, a ```json fence, a bare fence, then the outermost braced
// span. Absent or malformed JSON yields the zero directive.
func parseDirective(reply string) directive {
	var d directive
	text := strings.TrimSpace(reply)

	candidates := make([]string, 0, 4)
	if strings.HasPrefix(text, "{") {
		candidates = append(candidates, text)
	}
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := bareFenceRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	for _, candidate := range candidates {
		if !json.Valid([]byte(candidate)) {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), &d); err == nil {
			return d
		}
	}
	return directive{}
}
