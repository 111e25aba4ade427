//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
)

// CommittedFile records a single invocation of CommitFileToBranch.
type CommittedFile struct {
	Branch  string
	Path    string
	Content string
	Message string
}

// SpySourceRepository implements repositories.SourceRepository as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpySourceRepository struct {
	// --- identity ---
	SourceName string

	// --- FetchPullRequest ---
	Metadata *entities.PullRequestMetadata
	FetchErr error
	// spy: PR numbers that were requested
	FetchedNumbers []int

	// --- ListSiblingPullRequests ---
	Siblings    []entities.SiblingPullRequest
	SiblingsErr error
	// spy: prefixes that were queried
	QueriedPrefixes []string

	// --- CommitFileToBranch ---
	CommitFileErr error
	// spy: files committed through the API
	CommittedFiles []CommittedFile

	// --- CommentOnPullRequest ---
	CommentErr error
	// spy: comment bodies posted
	Comments []string

	// --- UpdatePullRequestDescription ---
	UpdateDescriptionErr error
	// spy: descriptions set
	Descriptions []string
}

var _ repositories.SourceRepository = (*SpySourceRepository)(nil)

func (s *SpySourceRepository) Name() string {
	if s.SourceName == "" {
		return "spy"
	}
	return s.SourceName
}

func (s *SpySourceRepository) FetchPullRequest(
	_ context.Context, _ entities.Repository, number int,
) (*entities.PullRequestMetadata, error) {
	s.FetchedNumbers = append(s.FetchedNumbers, number)
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	if s.Metadata != nil {
		return s.Metadata, nil
	}
	return nil, fmt.Errorf("pull request not found: %d", number)
}

func (s *SpySourceRepository) ListSiblingPullRequests(
	_ context.Context, _ entities.Repository, groupPrefix string, _ int,
) ([]entities.SiblingPullRequest, error) {
	s.QueriedPrefixes = append(s.QueriedPrefixes, groupPrefix)
	return s.Siblings, s.SiblingsErr
}

func (s *SpySourceRepository) CommitFileToBranch(
	_ context.Context, _ entities.Repository, branch, path, content, message string,
) error {
	s.CommittedFiles = append(s.CommittedFiles, CommittedFile{
		Branch:  branch,
		Path:    path,
		Content: content,
		Message: message,
	})
	return s.CommitFileErr
}

func (s *SpySourceRepository) CommentOnPullRequest(
	_ context.Context, _ entities.Repository, _ int, body string,
) error {
	s.Comments = append(s.Comments, body)
	return s.CommentErr
}

func (s *SpySourceRepository) UpdatePullRequestDescription(
	_ context.Context, _ entities.Repository, _ int, body string,
) error {
	s.Descriptions = append(s.Descriptions, body)
	return s.UpdateDescriptionErr
}
