package repositories

import (
	"go.uber.org/dig"

	gitRepo "github.com/rios0rios0/changesetter/internal/infrastructure/repositories/git"
	ghRepo "github.com/rios0rios0/changesetter/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/changesetter/internal/infrastructure/repositories/gitlab"
	wsRepo "github.com/rios0rios0/changesetter/internal/infrastructure/repositories/workspace"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register source registry with all hosting provider factories
	if err := container.Provide(func() *SourceRegistry {
		reg := NewSourceRegistry()
		reg.Register("github", ghRepo.NewSourceRepository)
		reg.Register("gitlab", glRepo.NewSourceRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(gitRepo.NewGitRepository); err != nil {
		return err
	}
	if err := container.Provide(wsRepo.NewWorkspaceRepository); err != nil {
		return err
	}

	return nil
}
