package entities

// VersionChange classifies the magnitude of a version delta.
type VersionChange string

const (
	VersionChangeNone       VersionChange = "none"
	VersionChangeUnknown    VersionChange = "unknown"
	VersionChangePrerelease VersionChange = "prerelease"
	VersionChangePatch      VersionChange = "patch"
	VersionChangeMinor      VersionChange = "minor"
	VersionChangeMajor      VersionChange = "major"
)

// versionChangeRanks orders version changes by severity for aggregation.
var versionChangeRanks = map[VersionChange]int{
	VersionChangeNone:       0,
	VersionChangeUnknown:    1,
	VersionChangePrerelease: 2,
	VersionChangePatch:      3,
	VersionChangeMinor:      4,
	VersionChangeMajor:      5,
}

// Rank returns the severity rank of the version change. Unknown values rank
// lowest so a malformed input can never escalate an aggregate.
func (v VersionChange) Rank() int { return versionChangeRanks[v] }

// MaxVersionChange returns the more severe of two version changes.
func MaxVersionChange(a, b VersionChange) VersionChange {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Confidence expresses how reliable a classification is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

var confidenceRanks = map[Confidence]int{
	ConfidenceLow:    0,
	ConfidenceMedium: 1,
	ConfidenceHigh:   2,
}

// Rank returns the ordering rank of the confidence level.
func (c Confidence) Rank() int { return confidenceRanks[c] }

// MinConfidence returns the lower of two confidence levels (pessimistic
// combination).
func MinConfidence(a, b Confidence) Confidence {
	if b.Rank() < a.Rank() {
		return b
	}
	return a
}

// SemverImpact is the per-dependency version-delta classification.
type SemverImpact struct {
	Dependency    DependencyChange
	VersionChange VersionChange
	IsBreaking    bool
	IsDowngrade   bool
	IsPrerelease  bool
	Confidence    Confidence
	Reasoning     []string
}

// AggregateImpact rolls up the per-dependency impacts of one pull request.
// Confidence is the minimum across dependencies; overall impact the maximum.
type AggregateImpact struct {
	Impacts                  []SemverImpact
	OverallImpact            VersionChange
	RecommendedChangesetType BumpType
	IsSecurityUpdate         bool
	HasBreakingChanges       bool
	Confidence               Confidence
	Reasoning                []string
}
