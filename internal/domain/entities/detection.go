package entities

// Severity grades an issue found by a detector.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordering rank of the severity. Unset severities rank
// below low.
func (s Severity) Rank() int {
	if rank, ok := severityRanks[s]; ok {
		return rank
	}
	return -1
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// SeverityFromRank maps a rank back to a severity, clamping to the valid range.
func SeverityFromRank(rank int) Severity {
	switch {
	case rank >= severityRanks[SeverityCritical]:
		return SeverityCritical
	case rank == severityRanks[SeverityHigh]:
		return SeverityHigh
	case rank == severityRanks[SeverityMedium]:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// RecommendedAction is what a detector advises the caller to do.
type RecommendedAction string

const (
	ActionProceed       RecommendedAction = "proceed"
	ActionManualTesting RecommendedAction = "manual_testing"
	ActionBlock         RecommendedAction = "block"
)

// DetectionResult is the outcome of one heuristic detector (breaking-change
// or security). Detectors never mutate upstream data.
type DetectionResult struct {
	HasIssue          bool
	Severity          Severity
	Indicators        []string
	Confidence        Confidence
	RecommendedAction RecommendedAction
}
