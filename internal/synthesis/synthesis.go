// Package synthesis merges per-subtask results into one final response.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/hive/internal/backend"
	"github.com/ShayCichocki/hive/pkg/models"
)

// noCompletionText is the fixed response when nothing succeeded. Content
// is never fabricated from failed subtasks.
const noCompletionText = "No subtask could be completed, so there are no findings to report."

// Synthesizer turns an ordered result sequence into a FinalResponse.
// Every input result appears in the provenance, succeeded or not.
type Synthesizer struct {
	provider backend.Provider
}

// New creates a synthesizer over the capability-provider.
func New(provider backend.Provider) *Synthesizer {
	return &Synthesizer{provider: provider}
}

// Synthesize merges the results into a narrative in the requested format.
// Failed, timed-out, and unroutable subtasks carry zero narrative weight:
// they surface as known gaps in detailed and technical formats and stay
// out of the narrative in concise format, but always appear in the
// provenance. When no result is ok the provider is not called at all.
// Provider failures propagate; there is no local recovery here.
func (s *Synthesizer) Synthesize(ctx context.Context, req models.SynthesisRequest) (models.FinalResponse, error) {
	resp := models.FinalResponse{
		Provenance: provenance(req),
		Confidence: aggregateConfidence(req.Results),
		Unrouted:   unroutedTitles(req),
	}

	ok := okResults(req.Results)
	if len(ok) == 0 {
		resp.Text = noCompletionText
		return resp, nil
	}

	reply, err := s.provider.Complete(ctx, backend.PromptRequest{
		System:   synthesisSystemPrompt(req.Format),
		Messages: []backend.Message{{Role: backend.RoleUser, Content: synthesisUserPrompt(req)}},
	})
	if err != nil {
		return models.FinalResponse{}, fmt.Errorf("synthesize: %w", err)
	}

	resp.Text = strings.TrimSpace(reply)
	if resp.Text == "" {
		resp.Text = mechanicalNarrative(req)
	}
	return resp, nil
}

// provenance builds one entry per input result, in input order.
func provenance(req models.SynthesisRequest) []models.Provenance {
	entries := make([]models.Provenance, 0, len(req.Results))
	for _, r := range req.Results {
		entries = append(entries, models.Provenance{
			SubtaskID:  r.SubtaskID,
			Title:      req.Titles[r.SubtaskID],
			Worker:     r.Worker,
			Status:     r.Status,
			Confidence: r.Confidence,
		})
	}
	return entries
}

// aggregateConfidence is the weighted mean of result confidences with
// weight 1 for ok and 0 otherwise. Unroutable subtasks still count as
// zero-confidence constituents: the plan claimed that coverage and the
// roster could not deliver it. Attempted units that failed or timed out
// drop out of the mean entirely.
func aggregateConfidence(results []models.SubtaskResult) float64 {
	var sum float64
	var n int
	for _, r := range results {
		switch r.Status {
		case models.StatusOK:
			sum += r.Confidence
			n++
		case models.StatusUnroutable:
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return models.ClampConfidence(sum / float64(n))
}

func okResults(results []models.SubtaskResult) []models.SubtaskResult {
	var ok []models.SubtaskResult
	for _, r := range results {
		if r.Status == models.StatusOK {
			ok = append(ok, r)
		}
	}
	return ok
}

func unroutedTitles(req models.SynthesisRequest) []string {
	var titles []string
	for _, r := range req.Results {
		if r.Status != models.StatusUnroutable {
			continue
		}
		title := req.Titles[r.SubtaskID]
		if title == "" {
			title = r.SubtaskID
		}
		titles = append(titles, title)
	}
	return titles
}

func synthesisSystemPrompt(format models.ResponseFormat) string {
	var b strings.Builder
	b.WriteString("You are the lead agent of a worker team. Merge the subtask findings below into one coherent answer to the user's query. Only use the findings given; never invent content for missing subtasks.\n\n")

	switch format {
	case models.FormatDetailed:
		b.WriteString("Format: a thorough answer with short sections per theme. Explicitly note subtasks that could not be completed as known gaps.")
	case models.FormatTechnical:
		b.WriteString("Format: a technical report with precise terminology and the data behind each claim. Explicitly note subtasks that could not be completed as known gaps.")
	default:
		b.WriteString("Format: one concise paragraph covering the successful findings. Do not mention incomplete subtasks.")
	}
	return b.String()
}

func synthesisUserPrompt(req models.SynthesisRequest) string {
	var b strings.Builder
	if req.Query != "" {
		fmt.Fprintf(&b, "User query: %s\n\n", req.Query)
	}

	b.WriteString("Subtask findings:\n")
	for _, r := range req.Results {
		if r.Status != models.StatusOK {
			continue
		}
		fmt.Fprintf(&b, "- %s (worker %s, confidence %.2f): %s\n", titleOf(req, r), r.Worker, r.Confidence, r.Findings)
		if r.Details != "" {
			fmt.Fprintf(&b, "  %s\n", r.Details)
		}
	}

	if req.Format.ReportsGaps() {
		if gaps := gapLines(req); len(gaps) > 0 {
			b.WriteString("\nIncomplete subtasks (report as gaps, never fill in):\n")
			for _, g := range gaps {
				b.WriteString("- " + g + "\n")
			}
		}
	}
	return b.String()
}

// mechanicalNarrative assembles the response deterministically from the
// findings, in input order. Used when the provider returns empty text.
func mechanicalNarrative(req models.SynthesisRequest) string {
	var b strings.Builder
	for _, r := range req.Results {
		if r.Status != models.StatusOK {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", titleOf(req, r), r.Findings)
	}
	if req.Format.ReportsGaps() {
		for _, g := range gapLines(req) {
			fmt.Fprintf(&b, "Gap: %s\n", g)
		}
	}
	return strings.TrimSpace(b.String())
}

func gapLines(req models.SynthesisRequest) []string {
	var gaps []string
	for _, r := range req.Results {
		switch r.Status {
		case models.StatusOK:
			continue
		case models.StatusUnroutable:
			gaps = append(gaps, fmt.Sprintf("%s (no worker could handle it)", titleOf(req, r)))
		case models.StatusTimedOut:
			gaps = append(gaps, fmt.Sprintf("%s (timed out)", titleOf(req, r)))
		default:
			detail := r.ErrorDetail
			if detail == "" {
				detail = "failed"
			}
			gaps = append(gaps, fmt.Sprintf("%s (%s)", titleOf(req, r), detail))
		}
	}
	return gaps
}

func titleOf(req models.SynthesisRequest, r models.SubtaskResult) string {
	if title := req.Titles[r.SubtaskID]; title != "" {
		return title
	}
	return r.SubtaskID
}
