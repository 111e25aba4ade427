//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/changesetter/internal/domain/commands"
	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
	"github.com/rios0rios0/changesetter/internal/domain/services"
	infraRepos "github.com/rios0rios0/changesetter/internal/infrastructure/repositories"
	doubles "github.com/rios0rios0/changesetter/test/infrastructure/repositorydoubles"
)

func newProcessCommand(
	source repositories.SourceRepository,
	git *doubles.SpyGitRepository,
	workspace repositories.WorkspaceRepository,
) *commands.ProcessCommand {
	registry := infraRepos.NewSourceRegistry()
	registry.Register("github", func(_, _ string) repositories.SourceRepository {
		return source
	})

	return commands.NewProcessCommand(
		registry,
		git,
		workspace,
		services.NewContextExtractor(),
		services.NewSecurityDetector(),
		services.NewWorkspaceAnalyzer(),
	)
}

func testSettings(t *testing.T) *entities.Settings {
	t.Helper()
	settings := entities.DefaultSettings()
	settings.Provider.Type = "github"
	settings.Provider.Token = "test-token"
	settings.Repository.Organization = "acme"
	settings.Repository.Name = "my-service"
	settings.Repository.CheckoutDir = t.TempDir()
	return settings
}

func patchUpdateMetadata() *entities.PullRequestMetadata {
	return &entities.PullRequestMetadata{
		Number:     42,
		Title:      "Bump lodash from 4.17.20 to 4.17.21",
		Author:     "dependabot[bot]",
		BranchName: "dependabot/npm_and_yarn/lodash-4.17.21",
		BaseBranch: "main",
		Files: []entities.ChangedFile{{
			Path:  "package.json",
			Patch: `-    "lodash": "4.17.20",` + "\n" + `+    "lodash": "4.17.21",`,
		}},
	}
}

func TestProcessCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should classify and publish a routine patch update", func(t *testing.T) {
		// given
		source := &doubles.SpySourceRepository{Metadata: patchUpdateMetadata()}
		git := &doubles.SpyGitRepository{CommitChanged: true}
		workspace := &doubles.StubWorkspaceRepository{}
		cmd := newProcessCommand(source, git, workspace)

		// when
		err := cmd.Execute(context.Background(), testSettings(t), commands.ProcessOptions{PRNumber: 42})

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{42}, source.FetchedNumbers)
		require.Len(t, git.Commits, 1)
		assert.Equal(t, 1, git.PushCalls)
		require.Len(t, source.Comments, 1)
		assert.Contains(t, source.Comments[0], "Bump type: **patch**")
	})

	t.Run("should not touch git or the PR in dry-run mode", func(t *testing.T) {
		// given
		source := &doubles.SpySourceRepository{Metadata: patchUpdateMetadata()}
		git := &doubles.SpyGitRepository{}
		cmd := newProcessCommand(source, git, &doubles.StubWorkspaceRepository{})

		// when
		err := cmd.Execute(context.Background(), testSettings(t), commands.ProcessOptions{
			PRNumber: 42,
			DryRun:   true,
		})

		// then
		require.NoError(t, err)
		assert.Empty(t, git.Commits)
		assert.Zero(t, git.PushCalls)
		assert.Empty(t, source.Comments)
	})

	t.Run("should fail for an unknown provider", func(t *testing.T) {
		// given
		cmd := newProcessCommand(
			&doubles.SpySourceRepository{},
			&doubles.SpyGitRepository{},
			&doubles.StubWorkspaceRepository{},
		)
		settings := testSettings(t)
		settings.Provider.Type = "bitbucket"

		// when
		err := cmd.Execute(context.Background(), settings, commands.ProcessOptions{PRNumber: 42})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bitbucket")
	})

	t.Run("should wrap a fetch failure with the PR number", func(t *testing.T) {
		// given
		source := &doubles.SpySourceRepository{FetchErr: errors.New("404 not found")}
		cmd := newProcessCommand(source, &doubles.SpyGitRepository{}, &doubles.StubWorkspaceRepository{})

		// when
		err := cmd.Execute(context.Background(), testSettings(t), commands.ProcessOptions{PRNumber: 42})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "#42")
	})

	t.Run("should degrade when the workspace layout cannot be read", func(t *testing.T) {
		// given
		source := &doubles.SpySourceRepository{Metadata: patchUpdateMetadata()}
		git := &doubles.SpyGitRepository{CommitChanged: true}
		workspace := &doubles.StubWorkspaceRepository{LayoutErr: errors.New("no checkout")}
		cmd := newProcessCommand(source, git, workspace)

		// when
		err := cmd.Execute(context.Background(), testSettings(t), commands.ProcessOptions{PRNumber: 42})

		// then
		require.NoError(t, err)
		assert.True(t, git.PushCalls > 0)
	})

	t.Run("should surface a publish failure as an error", func(t *testing.T) {
		// given
		source := &doubles.SpySourceRepository{Metadata: patchUpdateMetadata()}
		git := &doubles.SpyGitRepository{
			CommitChanged: true,
			PushErrs:      []error{errors.New("remote: permission denied")},
		}
		cmd := newProcessCommand(source, git, &doubles.StubWorkspaceRepository{})

		// when
		err := cmd.Execute(context.Background(), testSettings(t), commands.ProcessOptions{PRNumber: 42})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "publish failed")
	})

	t.Run("should use the CLI provider override", func(t *testing.T) {
		// given
		gitlabSource := &doubles.SpySourceRepository{
			SourceName: "gitlab",
			Metadata:   patchUpdateMetadata(),
		}
		registry := infraRepos.NewSourceRegistry()
		registry.Register("gitlab", func(_, _ string) repositories.SourceRepository {
			return gitlabSource
		})
		cmd := commands.NewProcessCommand(
			registry,
			&doubles.SpyGitRepository{},
			&doubles.StubWorkspaceRepository{},
			services.NewContextExtractor(),
			services.NewSecurityDetector(),
			services.NewWorkspaceAnalyzer(),
		)

		// when
		err := cmd.Execute(context.Background(), testSettings(t), commands.ProcessOptions{
			PRNumber:     42,
			DryRun:       true,
			ProviderName: "gitlab",
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{42}, gitlabSource.FetchedNumbers)
	})
}

func TestPreviewCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should classify without any side effect", func(t *testing.T) {
		// given
		source := &doubles.SpySourceRepository{Metadata: patchUpdateMetadata()}
		git := &doubles.SpyGitRepository{}
		process := newProcessCommand(source, git, &doubles.StubWorkspaceRepository{})
		preview := commands.NewPreviewCommand(process)

		// when
		err := preview.Execute(context.Background(), testSettings(t), commands.PreviewOptions{PRNumber: 42})

		// then
		require.NoError(t, err)
		assert.Empty(t, git.Commits)
		assert.Zero(t, git.PushCalls)
		assert.Empty(t, source.Comments)
	})
}
