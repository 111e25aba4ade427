//go:build unit

package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/services"
	builders "github.com/rios0rios0/changesetter/test/domain/entitybuilders"
)

func routineOutcome() (entities.AggregateImpact, entities.CategorizationResult, entities.BumpDecision) {
	dep := builders.NewDependencyChangeBuilder().
		WithName("lodash").
		WithVersions("4.17.20", "4.17.21").
		BuildDependencyChange()

	aggregate := entities.AggregateImpact{
		Impacts:       []entities.SemverImpact{{Dependency: dep, VersionChange: entities.VersionChangePatch}},
		OverallImpact: entities.VersionChangePatch,
	}
	categorization := entities.CategorizationResult{
		PrimaryCategory: entities.CategoryRoutine,
		Confidence:      entities.ConfidenceHigh,
	}
	decision := entities.BumpDecision{
		BumpType:       entities.BumpPatch,
		Confidence:     entities.ConfidenceHigh,
		PrimaryReason:  "routine dependency maintenance (patch)",
		ReasoningChain: []string{"default bump patch from aggregate impact patch", "final decision: patch"},
	}
	return aggregate, categorization, decision
}

func TestSynthesizerBuildRecords(t *testing.T) {
	t.Parallel()

	t.Run("should render one combined record for the single strategy", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Repository.Name = "my-service"
		synthesizer := services.NewSynthesizer(settings)
		aggregate, categorization, decision := routineOutcome()

		// when
		records := synthesizer.BuildRecords(
			entities.PRContext{Dependencies: []entities.DependencyChange{aggregate.Impacts[0].Dependency}},
			aggregate, categorization,
			entities.WorkspaceAnalysis{ChangesetStrategy: entities.StrategySingle},
			decision,
		)

		// then
		require.Len(t, records, 1)
		assert.Equal(t, entities.BumpPatch, records[0].Header["my-service"])
		assert.Contains(t, records[0].Body, "update lodash from 4.17.20 to 4.17.21")
		assert.Equal(t, "routine", records[0].Metadata["category"])
	})

	t.Run("should split one record per package for the per-package strategy", func(t *testing.T) {
		// given
		synthesizer := services.NewSynthesizer(entities.DefaultSettings())
		aggregate, categorization, decision := routineOutcome()
		analysis := entities.WorkspaceAnalysis{
			AffectedPackages:  []string{"@acme/api", "@acme/cli"},
			ChangesetStrategy: entities.StrategyPerPackage,
		}

		// when
		records := synthesizer.BuildRecords(entities.PRContext{}, aggregate, categorization, analysis, decision)

		// then
		require.Len(t, records, 2)
		assert.Equal(t, entities.BumpPatch, records[0].Header["@acme/api"])
		assert.Equal(t, entities.BumpPatch, records[1].Header["@acme/cli"])
	})

	t.Run("should produce identical output for identical input", func(t *testing.T) {
		// given
		synthesizer := services.NewSynthesizer(entities.DefaultSettings())
		aggregate, categorization, decision := routineOutcome()
		analysis := entities.WorkspaceAnalysis{ChangesetStrategy: entities.StrategySingle}

		// when
		first := synthesizer.BuildRecords(entities.PRContext{}, aggregate, categorization, analysis, decision)
		second := synthesizer.BuildRecords(entities.PRContext{}, aggregate, categorization, analysis, decision)

		// then
		require.Len(t, first, 1)
		assert.Equal(t, first[0].Render(), second[0].Render())
	})

	t.Run("should mark breaking and security lines in the summary", func(t *testing.T) {
		// given
		synthesizer := services.NewSynthesizer(entities.DefaultSettings())
		dep := builders.NewDependencyChangeBuilder().
			WithName("react").
			WithVersions("17.0.2", "18.0.0").
			WithSecurity(entities.SeverityHigh).
			BuildDependencyChange()
		aggregate := entities.AggregateImpact{
			Impacts: []entities.SemverImpact{{
				Dependency:    dep,
				VersionChange: entities.VersionChangeMajor,
				IsBreaking:    true,
			}},
		}

		// when
		records := synthesizer.BuildRecords(
			entities.PRContext{},
			aggregate,
			entities.CategorizationResult{PrimaryCategory: entities.CategoryBreaking},
			entities.WorkspaceAnalysis{},
			entities.BumpDecision{BumpType: entities.BumpMajor},
		)

		// then
		require.Len(t, records, 1)
		assert.Contains(t, records[0].Body, "(BREAKING)")
		assert.Contains(t, records[0].Body, "[security: high]")
	})

	t.Run("should include emoji only when configured", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Changeset.IncludeEmoji = true
		withEmoji := services.NewSynthesizer(settings)
		plain := services.NewSynthesizer(entities.DefaultSettings())
		aggregate, categorization, decision := routineOutcome()
		analysis := entities.WorkspaceAnalysis{}

		// when
		decorated := withEmoji.BuildRecords(entities.PRContext{}, aggregate, categorization, analysis, decision)
		bare := plain.BuildRecords(entities.PRContext{}, aggregate, categorization, analysis, decision)

		// then
		assert.Contains(t, decorated[0].Body, "⬆️")
		assert.NotContains(t, bare[0].Body, "⬆️")
	})
}

func TestSynthesizerCommentBody(t *testing.T) {
	t.Parallel()

	t.Run("should include the bump type and the full reasoning chain", func(t *testing.T) {
		// given
		synthesizer := services.NewSynthesizer(entities.DefaultSettings())
		aggregate, categorization, decision := routineOutcome()
		decision.OverriddenRules = []string{services.RuleSecurityTakesPrecedence}

		// when
		body := synthesizer.CommentBody(entities.PRContext{}, aggregate, categorization, decision)

		// then
		assert.True(t, strings.HasPrefix(body, "## Changeset"))
		assert.Contains(t, body, "Bump type: **patch**")
		for _, step := range decision.ReasoningChain {
			assert.Contains(t, body, step)
		}
		assert.Contains(t, body, "### Overridden rules")
		assert.Contains(t, body, services.RuleSecurityTakesPrecedence)
	})
}
