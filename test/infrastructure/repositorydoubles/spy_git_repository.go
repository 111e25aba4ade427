//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
)

// CommitCall records a single invocation of StageAndCommit.
type CommitCall struct {
	Dir     string
	Paths   []string
	Message string
	Author  string
	Email   string
}

// SpyGitRepository implements repositories.GitRepository as a configurable spy.
// PushErrs is consumed in order, one entry per Push call, so tests can
// script a rejected push followed by a clean one.
type SpyGitRepository struct {
	// --- HeadShortHash ---
	ShortHash    string
	ShortHashErr error

	// --- CurrentBranch ---
	Branch    string
	BranchErr error

	// --- StageAndCommit ---
	CommitChanged bool
	CommitErr     error
	// spy: commits received
	Commits []CommitCall

	// --- Push ---
	PushErrs []error
	// spy: number of pushes attempted
	PushCalls int

	// --- ResetToRemote ---
	ResetErr error
	// spy: number of resets performed
	ResetCalls int
}

var _ repositories.GitRepository = (*SpyGitRepository)(nil)

func (g *SpyGitRepository) HeadShortHash(_ string) (string, error) {
	if g.ShortHashErr != nil {
		return "", g.ShortHashErr
	}
	if g.ShortHash == "" {
		return "abc1234", nil
	}
	return g.ShortHash, nil
}

func (g *SpyGitRepository) CurrentBranch(_ string) (string, error) {
	return g.Branch, g.BranchErr
}

func (g *SpyGitRepository) StageAndCommit(
	dir string, paths []string, message, authorName, authorEmail string,
) (bool, error) {
	g.Commits = append(g.Commits, CommitCall{
		Dir:     dir,
		Paths:   paths,
		Message: message,
		Author:  authorName,
		Email:   authorEmail,
	})
	return g.CommitChanged, g.CommitErr
}

func (g *SpyGitRepository) Push(_ context.Context, _, _ string) error {
	var err error
	if g.PushCalls < len(g.PushErrs) {
		err = g.PushErrs[g.PushCalls]
	}
	g.PushCalls++
	return err
}

func (g *SpyGitRepository) ResetToRemote(_ context.Context, _, _ string) error {
	g.ResetCalls++
	return g.ResetErr
}

// StubWorkspaceRepository implements repositories.WorkspaceRepository with a
// fixed layout.
type StubWorkspaceRepository struct {
	Layouts   entities.WorkspaceLayout
	LayoutErr error
}

var _ repositories.WorkspaceRepository = (*StubWorkspaceRepository)(nil)

func (w *StubWorkspaceRepository) Layout(
	_ context.Context, _ string,
) (entities.WorkspaceLayout, error) {
	return w.Layouts, w.LayoutErr
}
