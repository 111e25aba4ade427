package services

import (
	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// Categorizer merges impact and detector signals into one primary category
// with supporting categories. Priority is declarative configuration
// (default: security > breaking > grouped > routine) — security outranks
// even a larger breaking change because urgency beats scope.
type Categorizer struct {
	settings *entities.Settings
}

// NewCategorizer creates a categorizer governed by the given rule settings.
func NewCategorizer(settings *entities.Settings) *Categorizer {
	return &Categorizer{settings: settings}
}

// Categorize combines the aggregate impact with both detector results.
func (c *Categorizer) Categorize(
	prCtx entities.PRContext,
	aggregate entities.AggregateImpact,
	breaking, security entities.DetectionResult,
) entities.CategorizationResult {
	present := map[entities.Category]bool{
		entities.CategorySecurity: security.HasIssue || aggregate.IsSecurityUpdate,
		entities.CategoryBreaking: breaking.HasIssue || aggregate.HasBreakingChanges,
		entities.CategoryGrouped:  prCtx.IsGroupedUpdate || prCtx.Ecosystem == entities.EcosystemMixed,
		entities.CategoryRoutine:  len(prCtx.Dependencies) > 0,
	}

	var all []entities.Category
	for _, category := range c.settings.Rules.CategoryPriority {
		if present[category] {
			all = append(all, category)
		}
	}

	primary := entities.CategoryRoutine
	if len(all) > 0 {
		primary = all[0]
	}

	confidence := entities.MinConfidence(aggregate.Confidence, breaking.Confidence)
	confidence = entities.MinConfidence(confidence, security.Confidence)

	return entities.CategorizationResult{
		PrimaryCategory: primary,
		AllCategories:   all,
		Confidence:      confidence,
		Summary:         summarize(aggregate),
	}
}

// summarize computes the plain aggregates exposed to calling automation.
func summarize(aggregate entities.AggregateImpact) entities.CategorySummary {
	summary := entities.CategorySummary{}

	riskTotal := 0
	for _, impact := range aggregate.Impacts {
		risk := riskOf(impact)
		riskTotal += risk.Rank()

		if impact.Dependency.IsSecurityUpdate {
			summary.SecurityUpdates++
		}
		if impact.IsBreaking {
			summary.BreakingChanges++
		}
		if risk.Rank() >= entities.SeverityHigh.Rank() {
			summary.HighPriorityUpdates++
		}
	}

	if count := len(aggregate.Impacts); count > 0 {
		summary.AverageRiskLevel = entities.SeverityFromRank(riskTotal / count)
	} else {
		summary.AverageRiskLevel = entities.SeverityLow
	}

	return summary
}

// riskOf grades one dependency: the larger of its version-delta risk and
// its stated security severity.
func riskOf(impact entities.SemverImpact) entities.Severity {
	risk := entities.SeverityLow
	switch impact.VersionChange {
	case entities.VersionChangeMajor:
		risk = entities.SeverityHigh
	case entities.VersionChangeMinor:
		risk = entities.SeverityMedium
	}
	if impact.Dependency.IsSecurityUpdate {
		risk = entities.MaxSeverity(risk, impact.Dependency.SecuritySeverity)
	}
	return risk
}
