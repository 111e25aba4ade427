package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

var (
	rangeOperatorPrefix = regexp.MustCompile(`^[\^~=<>\s]+`)
	commitHashPattern   = regexp.MustCompile(`^(?:sha256:)?[0-9a-f]{7,64}$`)
)

// ImpactAssessor classifies version deltas per dependency and aggregates
// them per pull request. Parsing is permissive: range operators, v-prefixes
// and prerelease suffixes are tolerated; anything unparsable degrades to an
// unknown impact with low confidence instead of failing.
type ImpactAssessor struct {
	settings *entities.Settings
}

// NewImpactAssessor creates an assessor governed by the given rule settings.
func NewImpactAssessor(settings *entities.Settings) *ImpactAssessor {
	return &ImpactAssessor{settings: settings}
}

// Assess classifies a single dependency change.
func (a *ImpactAssessor) Assess(dep entities.DependencyChange) entities.SemverImpact {
	impact := entities.SemverImpact{
		Dependency: dep,
		Confidence: entities.ConfidenceHigh,
	}

	current, currentOK := parseVersion(dep.CurrentVersion)
	next, nextOK := parseVersion(dep.NewVersion)

	if !currentOK || !nextOK {
		impact.VersionChange = entities.VersionChangeUnknown
		impact.Confidence = entities.ConfidenceLow
		impact.Reasoning = append(impact.Reasoning, fmt.Sprintf(
			"versions %q -> %q are not dot-separated numeric versions, impact unknown",
			dep.CurrentVersion, dep.NewVersion,
		))
		a.applySecurityFloor(dep, &impact)
		return impact
	}

	a.classifyDelta(current, next, &impact)
	a.flagDowngrade(current, next, &impact)
	a.flagPrerelease(current, next, &impact)
	a.applyEcosystemCap(dep, &impact)
	a.applySecurityFloor(dep, &impact)
	a.capUnknownEcosystemConfidence(dep, &impact)

	return impact
}

// AssessAll aggregates the per-dependency impacts of one pull request:
// overall impact is the maximum, confidence the minimum (pessimistic).
// Empty input yields a default-patch aggregate, never an error.
func (a *ImpactAssessor) AssessAll(deps []entities.DependencyChange) entities.AggregateImpact {
	defaultType := a.settings.Changeset.DefaultType

	if len(deps) == 0 {
		return entities.AggregateImpact{
			OverallImpact:            entities.VersionChangeNone,
			RecommendedChangesetType: defaultType,
			Confidence:               entities.ConfidenceMedium,
			Reasoning:                []string{"nothing to assess: no dependency changes extracted"},
		}
	}

	aggregate := entities.AggregateImpact{
		OverallImpact: entities.VersionChangeNone,
		Confidence:    entities.ConfidenceHigh,
	}

	securityCount := 0
	breakingCount := 0

	for _, dep := range deps {
		impact := a.Assess(dep)
		aggregate.Impacts = append(aggregate.Impacts, impact)

		aggregate.OverallImpact = entities.MaxVersionChange(aggregate.OverallImpact, impact.VersionChange)
		aggregate.Confidence = entities.MinConfidence(aggregate.Confidence, impact.Confidence)

		if impact.IsBreaking {
			aggregate.HasBreakingChanges = true
			breakingCount++
		}
		if dep.IsSecurityUpdate {
			aggregate.IsSecurityUpdate = true
			securityCount++
		}

		aggregate.Reasoning = append(aggregate.Reasoning, fmt.Sprintf(
			"%s %s -> %s: %s",
			dep.Name, dep.CurrentVersion, dep.NewVersion, impact.VersionChange,
		))
		aggregate.Reasoning = append(aggregate.Reasoning, impact.Reasoning...)
	}

	aggregate.Reasoning = append(aggregate.Reasoning, fmt.Sprintf(
		"%d dependency change(s): %d security, %d breaking",
		len(deps), securityCount, breakingCount,
	))

	aggregate.RecommendedChangesetType = entities.BumpForImpact(aggregate.OverallImpact, defaultType)
	return aggregate
}

// classifyDelta compares (major, minor, patch) positionally; the first
// differing component determines the change class. A minor change under
// major 0 follows the pre-1.0 convention and is treated as breaking.
func (a *ImpactAssessor) classifyDelta(current, next *semver.Version, impact *entities.SemverImpact) {
	switch {
	case next.Major() != current.Major():
		impact.VersionChange = entities.VersionChangeMajor
		impact.IsBreaking = true
		impact.Reasoning = append(impact.Reasoning, fmt.Sprintf(
			"major version changed %d -> %d", current.Major(), next.Major(),
		))
	case next.Minor() != current.Minor():
		impact.VersionChange = entities.VersionChangeMinor
		if current.Major() == 0 {
			impact.IsBreaking = true
			impact.Confidence = entities.MinConfidence(impact.Confidence, entities.ConfidenceMedium)
			impact.Reasoning = append(impact.Reasoning,
				"pre-1.0 minor change, treated as breaking by convention")
		}
	case next.Patch() != current.Patch():
		impact.VersionChange = entities.VersionChangePatch
	case current.Prerelease() != "" && next.Prerelease() == "":
		// prerelease -> stable at the same numeric tuple
		impact.VersionChange = entities.VersionChangePatch
		impact.Reasoning = append(impact.Reasoning,
			"prerelease promoted to stable at the same version")
	case current.Prerelease() != next.Prerelease():
		impact.VersionChange = entities.VersionChangePrerelease
	default:
		impact.VersionChange = entities.VersionChangeNone
	}
}

func (a *ImpactAssessor) flagDowngrade(current, next *semver.Version, impact *entities.SemverImpact) {
	if next.LessThan(current) {
		impact.IsDowngrade = true
		impact.Reasoning = append(impact.Reasoning,
			"new version sorts below the current one (downgrade)")
	}
}

func (a *ImpactAssessor) flagPrerelease(current, next *semver.Version, impact *entities.SemverImpact) {
	if current.Prerelease() == "" && next.Prerelease() == "" {
		return
	}
	impact.IsPrerelease = true
	impact.Confidence = entities.MinConfidence(impact.Confidence, entities.ConfidenceMedium)
	impact.Reasoning = append(impact.Reasoning, "prerelease version involved")
}

// applyEcosystemCap lowers (never raises) the computed impact when the
// ecosystem rule table declares a ceiling, e.g. pin-only ecosystems.
func (a *ImpactAssessor) applyEcosystemCap(dep entities.DependencyChange, impact *entities.SemverImpact) {
	ceiling, ok := a.settings.Rules.EcosystemImpactCaps[dep.Ecosystem]
	if !ok || impact.VersionChange.Rank() <= ceiling.Rank() {
		return
	}
	impact.Reasoning = append(impact.Reasoning, fmt.Sprintf(
		"impact lowered from %s to %s by the %s ecosystem rule",
		impact.VersionChange, ceiling, dep.Ecosystem,
	))
	impact.VersionChange = ceiling
}

// applySecurityFloor raises a security update to at least patch, and a
// critical one to at least minor, when security_minimum_patch is enabled.
func (a *ImpactAssessor) applySecurityFloor(dep entities.DependencyChange, impact *entities.SemverImpact) {
	if !dep.IsSecurityUpdate || !a.settings.Rules.SecurityMinimumPatch {
		return
	}

	floor := entities.VersionChangePatch
	if dep.SecuritySeverity == entities.SeverityCritical {
		floor = entities.VersionChangeMinor
	}

	if impact.VersionChange.Rank() < floor.Rank() {
		impact.Reasoning = append(impact.Reasoning, fmt.Sprintf(
			"security update raised impact to %s (severity %s)", floor, dep.SecuritySeverity,
		))
		impact.VersionChange = floor
	}
}

func (a *ImpactAssessor) capUnknownEcosystemConfidence(
	dep entities.DependencyChange,
	impact *entities.SemverImpact,
) {
	if dep.Ecosystem != entities.EcosystemUnknown {
		return
	}
	impact.Confidence = entities.MinConfidence(impact.Confidence, entities.ConfidenceMedium)
	impact.Reasoning = append(impact.Reasoning,
		"dependency extracted without an ecosystem match, confidence reduced")
}

// parseVersion tolerates leading range operators (^, ~, v), scoped
// prefixes and prerelease suffixes. Commit hashes, digests, and branch
// names are rejected so they classify as unknown.
func parseVersion(raw string) (*semver.Version, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = rangeOperatorPrefix.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimPrefix(cleaned, "v")

	if cleaned == "" || commitHashPattern.MatchString(cleaned) {
		return nil, false
	}

	version, err := semver.NewVersion(cleaned)
	if err != nil {
		return nil, false
	}
	return version, true
}
