//go:build unit

package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/services"
	builders "github.com/rios0rios0/changesetter/test/domain/entitybuilders"
)

func TestCategorizerCategorize(t *testing.T) {
	t.Parallel()

	categorizer := services.NewCategorizer(entities.DefaultSettings())

	cleanDetection := entities.DetectionResult{
		Confidence:        entities.ConfidenceHigh,
		RecommendedAction: entities.ActionProceed,
	}

	t.Run("should classify a plain update as routine", func(t *testing.T) {
		// given
		prCtx := entities.PRContext{
			Dependencies: []entities.DependencyChange{
				builders.NewDependencyChangeBuilder().BuildDependencyChange(),
			},
		}
		aggregate := entities.AggregateImpact{Confidence: entities.ConfidenceHigh}

		// when
		result := categorizer.Categorize(prCtx, aggregate, cleanDetection, cleanDetection)

		// then
		assert.Equal(t, entities.CategoryRoutine, result.PrimaryCategory)
		assert.Equal(t, []entities.Category{entities.CategoryRoutine}, result.AllCategories)
		assert.Equal(t, entities.ConfidenceHigh, result.Confidence)
	})

	t.Run("should let security outrank a breaking change", func(t *testing.T) {
		// given
		securityDep := builders.NewDependencyChangeBuilder().
			WithName("minimist").
			WithSecurity(entities.SeverityHigh).
			BuildDependencyChange()
		prCtx := entities.PRContext{
			IsSecurityUpdate: true,
			Dependencies:     []entities.DependencyChange{securityDep},
		}
		aggregate := entities.AggregateImpact{
			IsSecurityUpdate:   true,
			HasBreakingChanges: true,
			Confidence:         entities.ConfidenceHigh,
			Impacts: []entities.SemverImpact{{
				Dependency:    securityDep,
				VersionChange: entities.VersionChangeMajor,
				IsBreaking:    true,
			}},
		}
		breaking := entities.DetectionResult{
			HasIssue:   true,
			Severity:   entities.SeverityHigh,
			Confidence: entities.ConfidenceHigh,
		}
		security := entities.DetectionResult{
			HasIssue:   true,
			Severity:   entities.SeverityHigh,
			Confidence: entities.ConfidenceHigh,
		}

		// when
		result := categorizer.Categorize(prCtx, aggregate, breaking, security)

		// then
		assert.Equal(t, entities.CategorySecurity, result.PrimaryCategory)
		assert.True(t, result.HasCategory(entities.CategoryBreaking))
		assert.Equal(t, 1, result.Summary.SecurityUpdates)
		assert.Equal(t, 1, result.Summary.BreakingChanges)
	})

	t.Run("should honor a custom category priority", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.CategoryPriority = []entities.Category{
			entities.CategoryBreaking,
			entities.CategorySecurity,
			entities.CategoryGrouped,
			entities.CategoryRoutine,
		}
		custom := services.NewCategorizer(settings)

		aggregate := entities.AggregateImpact{
			IsSecurityUpdate:   true,
			HasBreakingChanges: true,
			Confidence:         entities.ConfidenceHigh,
		}

		// when
		result := custom.Categorize(entities.PRContext{}, aggregate, cleanDetection, cleanDetection)

		// then
		assert.Equal(t, entities.CategoryBreaking, result.PrimaryCategory)
	})

	t.Run("should take the minimum confidence across all inputs", func(t *testing.T) {
		// given
		aggregate := entities.AggregateImpact{Confidence: entities.ConfidenceHigh}
		breaking := entities.DetectionResult{Confidence: entities.ConfidenceLow}
		security := entities.DetectionResult{Confidence: entities.ConfidenceHigh}

		// when
		result := categorizer.Categorize(entities.PRContext{}, aggregate, breaking, security)

		// then
		assert.Equal(t, entities.ConfidenceLow, result.Confidence)
	})

	t.Run("should compute the summary risk from deltas and severities", func(t *testing.T) {
		// given
		aggregate := entities.AggregateImpact{
			Confidence: entities.ConfidenceHigh,
			Impacts: []entities.SemverImpact{
				{
					Dependency: builders.NewDependencyChangeBuilder().
						WithName("react").BuildDependencyChange(),
					VersionChange: entities.VersionChangeMajor,
					IsBreaking:    true,
				},
				{
					Dependency: builders.NewDependencyChangeBuilder().
						WithName("left-pad").BuildDependencyChange(),
					VersionChange: entities.VersionChangePatch,
				},
			},
		}

		// when
		result := categorizer.Categorize(entities.PRContext{}, aggregate, cleanDetection, cleanDetection)

		// then
		assert.Equal(t, 1, result.Summary.HighPriorityUpdates)
		assert.Equal(t, entities.SeverityMedium, result.Summary.AverageRiskLevel)
	})
}
