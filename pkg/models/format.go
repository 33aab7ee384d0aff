package models

// ResponseFormat selects how the synthesizer shapes the final response.
type ResponseFormat string

const (
	// FormatConcise produces a short merged narrative; failed subtasks are
	// omitted from the text but kept in provenance.
	FormatConcise ResponseFormat = "concise"
	// FormatDetailed produces a full narrative that also names failed or
	// timed-out subtasks as known gaps.
	FormatDetailed ResponseFormat = "detailed"
	// FormatTechnical produces a detailed narrative with per-subtask
	// confidence and error detail.
	FormatTechnical ResponseFormat = "technical"
)

// Valid returns true if the format is a known value.
func (f ResponseFormat) Valid() bool {
	switch f {
	case FormatConcise, FormatDetailed, FormatTechnical:
		return true
	default:
		return false
	}
}

// ReportsGaps returns true if failed or timed-out subtasks should be
// named in the synthesized narrative for this format.
func (f ResponseFormat) ReportsGaps() bool {
	return f == FormatDetailed || f == FormatTechnical
}
