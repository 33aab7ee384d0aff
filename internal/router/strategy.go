package router

import (
	"strings"

	"github.com/ShayCichocki/hive/pkg/models"
)

// ScoreStrategy scores how well a worker's specialization tags cover a
// subtask's required tags. Higher is better; zero means no fit at all.
// Strategies only change scoring, never the assignment control flow.
type ScoreStrategy interface {
	Score(subtaskTags, workerTags []string) float64
	Name() string
}

// TagOverlap counts case-insensitive matching tags. The default strategy.
type TagOverlap struct{}

// Name returns the catalog identifier for this strategy.
func (TagOverlap) Name() string { return "specialization_match" }

// Score returns the number of subtask tags the worker covers.
func (TagOverlap) Score(subtaskTags, workerTags []string) float64 {
	workerSet := tagSet(workerTags)
	var score float64
	for _, tag := range subtaskTags {
		if workerSet[normalizeTag(tag)] {
			score++
		}
	}
	return score
}

// WeightedOverlap weighs earlier subtask tags more: the tag at index i
// contributes 1/(i+1). Planners list the most important tag first, so a
// worker matching the lead tag beats one matching only trailing tags.
type WeightedOverlap struct{}

// Name returns the catalog identifier for this strategy.
func (WeightedOverlap) Name() string { return "weighted_match" }

// Score returns the position-weighted coverage of the subtask tags.
func (WeightedOverlap) Score(subtaskTags, workerTags []string) float64 {
	workerSet := tagSet(workerTags)
	var score float64
	for i, tag := range subtaskTags {
		if workerSet[normalizeTag(tag)] {
			score += 1 / float64(i+1)
		}
	}
	return score
}

// StrategyFor maps a catalog delegation_method value to its strategy.
// Empty input selects the default.
func StrategyFor(name string) (ScoreStrategy, error) {
	switch name {
	case "", "specialization_match":
		return TagOverlap{}, nil
	case "weighted_match":
		return WeightedOverlap{}, nil
	default:
		return nil, models.Errorf(models.ErrCodeValidation, "unknown delegation_method %q", name)
	}
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if t := normalizeTag(tag); t != "" {
			set[t] = true
		}
	}
	return set
}

var (
	_ ScoreStrategy = TagOverlap{}
	_ ScoreStrategy = WeightedOverlap{}
)
