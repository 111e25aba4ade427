package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rios0rios0/changesetter/internal/domain/repositories"
)

const shortHashLength = 7

// GoGitRepository implements repositories.GitRepository on top of go-git,
// operating on an already-checked-out working tree.
type GoGitRepository struct{}

// NewGitRepository creates a new go-git backed repository.
func NewGitRepository() repositories.GitRepository {
	return &GoGitRepository{}
}

// HeadShortHash returns the abbreviated hash of HEAD.
func (g *GoGitRepository) HeadShortHash(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %q: %w", dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	return head.Hash().String()[:shortHashLength], nil
}

// CurrentBranch returns the short name of the checked-out branch.
func (g *GoGitRepository) CurrentBranch(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %q: %w", dir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash())
	}

	return head.Name().Short(), nil
}

// StageAndCommit stages the given paths and commits them. It returns false
// without error when the staged paths produce no change.
func (g *GoGitRepository) StageAndCommit(
	dir string,
	paths []string,
	message, authorName, authorEmail string,
) (bool, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return false, fmt.Errorf("failed to open repository at %q: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, path := range paths {
		if _, err = worktree.Add(path); err != nil {
			return false, fmt.Errorf("failed to stage %q: %w", path, err)
		}
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}

	_, err = worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	return true, nil
}

// Push pushes the branch to origin. A rejected push because the remote
// moved ahead is reported as repositories.ErrNonFastForward.
func (g *GoGitRepository) Push(ctx context.Context, dir, branch string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository at %q: %w", dir, err)
	}

	refSpec := config.RefSpec(
		fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch),
	)
	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refSpec},
	})
	if err == nil || err == gogit.NoErrAlreadyUpToDate {
		return nil
	}
	if strings.Contains(err.Error(), "non-fast-forward") {
		return fmt.Errorf("%w: %s", repositories.ErrNonFastForward, err)
	}
	return fmt.Errorf("failed to push %q: %w", branch, err)
}

// ResetToRemote fetches origin and hard-resets the worktree to the remote
// tip of the branch, discarding local commits.
func (g *GoGitRepository) ResetToRemote(ctx context.Context, dir, branch string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository at %q: %w", dir, err)
	}

	err = repo.FetchContext(ctx, &gogit.FetchOptions{RemoteName: "origin"})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to fetch origin: %w", err)
	}

	remoteRef, err := repo.Reference(
		plumbing.NewRemoteReferenceName("origin", branch), true,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve origin/%s: %w", branch, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.Reset(&gogit.ResetOptions{
		Commit: remoteRef.Hash(),
		Mode:   gogit.HardReset,
	})
	if err != nil {
		return fmt.Errorf("failed to reset to origin/%s: %w", branch, err)
	}

	return nil
}
