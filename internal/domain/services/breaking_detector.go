package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

var breakingTextCues = regexp.MustCompile(
	`(?i)\bBREAKING[ -]CHANGE\b|\bmigration guide\b|\bincompatible\b|\bdeprecated and removed\b`,
)

// BreakingDetector flags breaking-change signals independently of strict
// semver: known broad-breaking-surface packages receiving any bump, text
// cues in the PR, and breaking version deltas. It never mutates upstream
// data.
type BreakingDetector struct {
	settings *entities.Settings
}

// NewBreakingDetector creates a detector governed by the given rule settings.
func NewBreakingDetector(settings *entities.Settings) *BreakingDetector {
	return &BreakingDetector{settings: settings}
}

// Detect inspects the PR context and the per-dependency impacts.
func (d *BreakingDetector) Detect(
	prCtx entities.PRContext,
	aggregate entities.AggregateImpact,
) entities.DetectionResult {
	result := entities.DetectionResult{
		Severity:          entities.SeverityLow,
		Confidence:        entities.ConfidenceHigh,
		RecommendedAction: entities.ActionProceed,
	}

	broadSurfaceHit := false
	for _, impact := range aggregate.Impacts {
		if impact.IsBreaking {
			result.HasIssue = true
			result.Severity = entities.MaxSeverity(result.Severity, entities.SeverityHigh)
			result.Indicators = append(result.Indicators, fmt.Sprintf(
				"%s: breaking version change (%s)", impact.Dependency.Name, impact.VersionChange,
			))
		}
		if d.isBroadBreakingSurface(impact.Dependency.Name) &&
			impact.VersionChange != entities.VersionChangeNone {
			broadSurfaceHit = true
			result.HasIssue = true
			result.Severity = entities.MaxSeverity(result.Severity, entities.SeverityMedium)
			result.Indicators = append(result.Indicators, fmt.Sprintf(
				"%s: known broad breaking surface, any bump needs attention",
				impact.Dependency.Name,
			))
		}
	}

	if breakingTextCues.MatchString(prCtx.Title + "\n" + prCtx.Body) {
		result.HasIssue = true
		result.Severity = entities.MaxSeverity(result.Severity, entities.SeverityMedium)
		result.Indicators = append(result.Indicators, "breaking-change wording found in PR text")
		if !aggregate.HasBreakingChanges {
			// Text-only evidence is weaker than a version delta.
			result.Confidence = entities.ConfidenceMedium
		}
	}

	if broadSurfaceHit && aggregate.HasBreakingChanges {
		result.Severity = entities.SeverityCritical
	}

	result.RecommendedAction = actionForSeverity(result.HasIssue, result.Severity)
	return result
}

func (d *BreakingDetector) isBroadBreakingSurface(name string) bool {
	lowered := strings.ToLower(name)
	for _, known := range d.settings.Rules.BroadBreakingSurface {
		if lowered == strings.ToLower(known) {
			return true
		}
	}
	return false
}

// actionForSeverity maps a detector severity onto the advised action:
// critical blocks, high asks for manual testing, anything else proceeds.
func actionForSeverity(hasIssue bool, severity entities.Severity) entities.RecommendedAction {
	if !hasIssue {
		return entities.ActionProceed
	}
	switch severity {
	case entities.SeverityCritical:
		return entities.ActionBlock
	case entities.SeverityHigh:
		return entities.ActionManualTesting
	default:
		return entities.ActionProceed
	}
}
