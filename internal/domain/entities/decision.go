package entities

// BumpType is the semantic-versioning category assigned to a change.
type BumpType string

const (
	BumpPatch BumpType = "patch"
	BumpMinor BumpType = "minor"
	BumpMajor BumpType = "major"
)

var bumpRanks = map[BumpType]int{
	BumpPatch: 0,
	BumpMinor: 1,
	BumpMajor: 2,
}

// Rank returns the ordering rank of the bump type.
func (b BumpType) Rank() int { return bumpRanks[b] }

// MaxBump returns the higher of two bump types.
func MaxBump(a, b BumpType) BumpType {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ValidBumpType reports whether the string names a known bump type.
func ValidBumpType(s string) bool {
	_, ok := bumpRanks[BumpType(s)]
	return ok
}

// BumpForImpact maps an overall version change to the changeset bump it
// recommends. Unknown, none and prerelease deltas fall back to the
// configured default.
func BumpForImpact(impact VersionChange, fallback BumpType) BumpType {
	switch impact {
	case VersionChangeMajor:
		return BumpMajor
	case VersionChangeMinor:
		return BumpMinor
	case VersionChangePatch:
		return BumpPatch
	default:
		return fallback
	}
}

// BumpDecision is the final arbiter output consumed by the synthesizer;
// never recomputed downstream. The reasoning chain is mandatory output: it
// is the audit trail surfaced to the PR comment.
type BumpDecision struct {
	BumpType        BumpType
	Confidence      Confidence
	PrimaryReason   string
	OverriddenRules []string
	ReasoningChain  []string
}
