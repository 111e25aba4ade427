//go:build unit

package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/services"
	builders "github.com/rios0rios0/changesetter/test/domain/entitybuilders"
)

func TestImpactAssessorAssess(t *testing.T) {
	t.Parallel()

	assessor := services.NewImpactAssessor(entities.DefaultSettings())

	t.Run("should classify a patch delta as patch with high confidence", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithName("lodash").
			WithVersions("4.17.20", "4.17.21").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangePatch, impact.VersionChange)
		assert.Equal(t, entities.ConfidenceHigh, impact.Confidence)
		assert.False(t, impact.IsBreaking)
	})

	t.Run("should classify a major delta as breaking", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithName("react").
			WithVersions("17.0.2", "18.0.0").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangeMajor, impact.VersionChange)
		assert.True(t, impact.IsBreaking)
	})

	t.Run("should treat a pre-1.0 minor change as breaking by convention", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithVersions("0.4.1", "0.5.0").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangeMinor, impact.VersionChange)
		assert.True(t, impact.IsBreaking)
		assert.Equal(t, entities.ConfidenceMedium, impact.Confidence)
	})

	t.Run("should tolerate range operators and v-prefixes", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithVersions("^1.2.3", "v1.3.0").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangeMinor, impact.VersionChange)
	})

	t.Run("should degrade commit hashes to unknown with low confidence", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithEcosystem(entities.EcosystemGitHubActions).
			WithVersions("a81bbbf8298c0fa03ea29cdc473d45769f953675", "8e5e7e5ab8b370d6c329ec480221332ada57f0ab").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangeUnknown, impact.VersionChange)
		assert.Equal(t, entities.ConfidenceLow, impact.Confidence)
		assert.NotEmpty(t, impact.Reasoning)
	})

	t.Run("should flag a downgrade without failing", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithVersions("2.1.0", "2.0.4").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.True(t, impact.IsDowngrade)
		assert.Equal(t, entities.VersionChangeMinor, impact.VersionChange)
	})

	t.Run("should flag prerelease versions and cap confidence at medium", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithVersions("2.0.0", "3.0.0-beta.1").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.True(t, impact.IsPrerelease)
		assert.Equal(t, entities.VersionChangeMajor, impact.VersionChange)
		assert.Equal(t, entities.ConfidenceMedium, impact.Confidence)
	})

	t.Run("should classify prerelease promotion to stable as patch", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithVersions("3.0.0-rc.2", "3.0.0").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangePatch, impact.VersionChange)
	})

	t.Run("should raise a security update to at least patch", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.SecurityMinimumPatch = true
		secAssessor := services.NewImpactAssessor(settings)

		dep := builders.NewDependencyChangeBuilder().
			WithVersions("1.2.3", "1.2.3").
			WithSecurity(entities.SeverityHigh).
			BuildDependencyChange()

		// when
		impact := secAssessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangePatch, impact.VersionChange)
	})

	t.Run("should raise a critical security update to at least minor", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.SecurityMinimumPatch = true
		secAssessor := services.NewImpactAssessor(settings)

		dep := builders.NewDependencyChangeBuilder().
			WithVersions("1.2.3", "1.2.4").
			WithSecurity(entities.SeverityCritical).
			BuildDependencyChange()

		// when
		impact := secAssessor.Assess(dep)

		// then
		assert.Equal(t, entities.VersionChangeMinor, impact.VersionChange)
	})

	t.Run("should lower impact to the ecosystem ceiling, never raise it", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Rules.EcosystemImpactCaps = map[string]entities.VersionChange{
			entities.EcosystemDocker: entities.VersionChangePatch,
		}
		cappedAssessor := services.NewImpactAssessor(settings)

		capped := builders.NewDependencyChangeBuilder().
			WithEcosystem(entities.EcosystemDocker).
			WithVersions("1.0.0", "2.0.0").
			BuildDependencyChange()
		untouched := builders.NewDependencyChangeBuilder().
			WithEcosystem(entities.EcosystemDocker).
			WithVersions("1.0.0", "1.0.1").
			BuildDependencyChange()

		// when
		cappedImpact := cappedAssessor.Assess(capped)
		untouchedImpact := cappedAssessor.Assess(untouched)

		// then
		assert.Equal(t, entities.VersionChangePatch, cappedImpact.VersionChange)
		assert.Equal(t, entities.VersionChangePatch, untouchedImpact.VersionChange)
	})

	t.Run("should cap confidence for unknown-ecosystem dependencies", func(t *testing.T) {
		// given
		dep := builders.NewDependencyChangeBuilder().
			WithEcosystem(entities.EcosystemUnknown).
			WithVersions("1.0.0", "1.0.1").
			BuildDependencyChange()

		// when
		impact := assessor.Assess(dep)

		// then
		assert.Equal(t, entities.ConfidenceMedium, impact.Confidence)
	})
}

func TestImpactAssessorAssessAll(t *testing.T) {
	t.Parallel()

	assessor := services.NewImpactAssessor(entities.DefaultSettings())

	t.Run("should take the maximum impact and minimum confidence", func(t *testing.T) {
		// given
		deps := []entities.DependencyChange{
			builders.NewDependencyChangeBuilder().
				WithName("left-pad").WithVersions("1.3.0", "1.3.1").
				BuildDependencyChange(),
			builders.NewDependencyChangeBuilder().
				WithName("webpack").WithVersions("4.46.0", "5.0.0").
				BuildDependencyChange(),
			builders.NewDependencyChangeBuilder().
				WithName("pinned-action").
				WithEcosystem(entities.EcosystemUnknown).
				WithVersions("deadbeefcafe", "cafedeadbeef").
				BuildDependencyChange(),
		}

		// when
		aggregate := assessor.AssessAll(deps)

		// then
		require.Len(t, aggregate.Impacts, 3)
		assert.Equal(t, entities.VersionChangeMajor, aggregate.OverallImpact)
		assert.Equal(t, entities.ConfidenceLow, aggregate.Confidence)
		assert.Equal(t, entities.BumpMajor, aggregate.RecommendedChangesetType)
		assert.True(t, aggregate.HasBreakingChanges)
	})

	t.Run("should never let an unknown delta escalate the aggregate", func(t *testing.T) {
		// given
		deps := []entities.DependencyChange{
			builders.NewDependencyChangeBuilder().
				WithName("ok").WithVersions("1.0.0", "1.0.1").
				BuildDependencyChange(),
			builders.NewDependencyChangeBuilder().
				WithName("weird").WithVersions("main", "latest").
				BuildDependencyChange(),
		}

		// when
		aggregate := assessor.AssessAll(deps)

		// then
		assert.Equal(t, entities.VersionChangePatch, aggregate.OverallImpact)
		assert.Equal(t, entities.BumpPatch, aggregate.RecommendedChangesetType)
	})

	t.Run("should mark the aggregate as security when any dependency is", func(t *testing.T) {
		// given
		deps := []entities.DependencyChange{
			builders.NewDependencyChangeBuilder().
				WithVersions("1.0.0", "1.0.1").
				WithSecurity(entities.SeverityHigh).
				BuildDependencyChange(),
		}

		// when
		aggregate := assessor.AssessAll(deps)

		// then
		assert.True(t, aggregate.IsSecurityUpdate)
	})

	t.Run("should yield a default-type aggregate for empty input", func(t *testing.T) {
		// when
		aggregate := assessor.AssessAll(nil)

		// then
		assert.Equal(t, entities.VersionChangeNone, aggregate.OverallImpact)
		assert.Equal(t, entities.BumpPatch, aggregate.RecommendedChangesetType)
		assert.Equal(t, entities.ConfidenceMedium, aggregate.Confidence)
		assert.NotEmpty(t, aggregate.Reasoning)
	})
}
