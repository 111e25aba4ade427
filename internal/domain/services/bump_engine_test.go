//go:build unit

package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/services"
)

func TestBumpEngineDecide(t *testing.T) {
	t.Parallel()

	cleanDetection := entities.DetectionResult{
		Confidence:        entities.ConfidenceHigh,
		RecommendedAction: entities.ActionProceed,
	}

	t.Run("should keep the aggregate recommendation when no rule fires", func(t *testing.T) {
		// given
		engine := services.NewBumpEngine(entities.DefaultSettings())
		aggregate := entities.AggregateImpact{
			OverallImpact:            entities.VersionChangePatch,
			RecommendedChangesetType: entities.BumpPatch,
		}
		categorization := entities.CategorizationResult{
			PrimaryCategory: entities.CategoryRoutine,
			Confidence:      entities.ConfidenceHigh,
		}

		// when
		decision := engine.Decide(aggregate, categorization, cleanDetection, cleanDetection)

		// then
		assert.Equal(t, entities.BumpPatch, decision.BumpType)
		assert.Empty(t, decision.OverriddenRules)
		assert.NotEmpty(t, decision.ReasoningChain)
	})

	t.Run("should raise high-severity security findings to at least minor", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.SecurityTakesPrecedence = true
		engine := services.NewBumpEngine(settings)

		aggregate := entities.AggregateImpact{
			OverallImpact:            entities.VersionChangePatch,
			RecommendedChangesetType: entities.BumpPatch,
		}
		categorization := entities.CategorizationResult{
			PrimaryCategory: entities.CategorySecurity,
			Confidence:      entities.ConfidenceHigh,
		}
		security := entities.DetectionResult{
			HasIssue:   true,
			Severity:   entities.SeverityCritical,
			Confidence: entities.ConfidenceHigh,
		}

		// when
		decision := engine.Decide(aggregate, categorization, cleanDetection, security)

		// then
		assert.Equal(t, entities.BumpMinor, decision.BumpType)
		assert.Contains(t, decision.OverriddenRules, services.RuleSecurityTakesPrecedence)
		assert.Equal(t, "security update", decision.PrimaryReason)
	})

	t.Run("should not lower an already-major bump for a security finding", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.SecurityTakesPrecedence = true
		engine := services.NewBumpEngine(settings)

		aggregate := entities.AggregateImpact{
			OverallImpact:            entities.VersionChangeMajor,
			RecommendedChangesetType: entities.BumpMajor,
		}
		security := entities.DetectionResult{
			HasIssue:   true,
			Severity:   entities.SeverityHigh,
			Confidence: entities.ConfidenceHigh,
		}

		// when
		decision := engine.Decide(
			aggregate,
			entities.CategorizationResult{PrimaryCategory: entities.CategorySecurity},
			cleanDetection,
			security,
		)

		// then
		assert.Equal(t, entities.BumpMajor, decision.BumpType)
		assert.Empty(t, decision.OverriddenRules)
	})

	t.Run("should force major for breaking-change indicators", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.BreakingChangesAlwaysMajor = true
		engine := services.NewBumpEngine(settings)

		aggregate := entities.AggregateImpact{
			OverallImpact:            entities.VersionChangeMinor,
			RecommendedChangesetType: entities.BumpMinor,
			HasBreakingChanges:       true,
		}
		categorization := entities.CategorizationResult{
			PrimaryCategory: entities.CategoryBreaking,
			Confidence:      entities.ConfidenceHigh,
		}

		// when
		decision := engine.Decide(aggregate, categorization, cleanDetection, cleanDetection)

		// then
		assert.Equal(t, entities.BumpMajor, decision.BumpType)
		assert.Contains(t, decision.OverriddenRules, services.RuleBreakingChangesAlwaysMajor)
		assert.Equal(t, "breaking change", decision.PrimaryReason)
	})

	t.Run("should leave the bump alone when the breaking rule is disabled", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.BreakingChangesAlwaysMajor = false
		engine := services.NewBumpEngine(settings)

		aggregate := entities.AggregateImpact{
			OverallImpact:            entities.VersionChangeMinor,
			RecommendedChangesetType: entities.BumpMinor,
			HasBreakingChanges:       true,
		}

		// when
		decision := engine.Decide(
			aggregate,
			entities.CategorizationResult{PrimaryCategory: entities.CategoryBreaking},
			cleanDetection,
			cleanDetection,
		)

		// then
		assert.Equal(t, entities.BumpMinor, decision.BumpType)
	})

	t.Run("should never leave a critical security update at patch", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.SecurityTakesPrecedence = true
		engine := services.NewBumpEngine(settings)

		security := entities.DetectionResult{
			HasIssue:   true,
			Severity:   entities.SeverityCritical,
			Confidence: entities.ConfidenceHigh,
		}

		for _, impact := range []entities.VersionChange{
			entities.VersionChangeNone,
			entities.VersionChangeUnknown,
			entities.VersionChangePatch,
		} {
			aggregate := entities.AggregateImpact{
				OverallImpact:            impact,
				RecommendedChangesetType: entities.BumpForImpact(impact, entities.BumpPatch),
			}

			// when
			decision := engine.Decide(
				aggregate,
				entities.CategorizationResult{PrimaryCategory: entities.CategorySecurity},
				cleanDetection,
				security,
			)

			// then
			assert.GreaterOrEqual(t, decision.BumpType.Rank(), entities.BumpMinor.Rank(),
				"impact %s must not stay below minor", impact)
		}
	})

	t.Run("should close the reasoning chain with the final decision", func(t *testing.T) {
		// given
		engine := services.NewBumpEngine(entities.DefaultSettings())

		// when
		decision := engine.Decide(
			entities.AggregateImpact{RecommendedChangesetType: entities.BumpPatch},
			entities.CategorizationResult{PrimaryCategory: entities.CategoryRoutine},
			cleanDetection,
			cleanDetection,
		)

		// then
		assert.Equal(t, "final decision: patch", decision.ReasoningChain[len(decision.ReasoningChain)-1])
	})
}
