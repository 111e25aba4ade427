package repositories

import (
	"context"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// SourceRepository abstracts a Git hosting service (GitHub, GitLab, etc.)
// serving pull-request metadata and accepting PR interactions. Everything
// it returns is already fetched; the core performs no pagination or
// rate-limit handling on top of it.
type SourceRepository interface {
	Name() string

	// FetchPullRequest returns the full metadata view of one pull request:
	// title, body, commit messages and changed files with patch text.
	FetchPullRequest(
		ctx context.Context,
		repo entities.Repository,
		number int,
	) (*entities.PullRequestMetadata, error)

	// ListSiblingPullRequests returns the open pull requests whose source
	// branch shares the given group prefix, excluding the given PR number.
	ListSiblingPullRequests(
		ctx context.Context,
		repo entities.Repository,
		groupPrefix string,
		excludeNumber int,
	) ([]entities.SiblingPullRequest, error)

	// CommitFileToBranch creates or updates a single file on the given
	// branch through the provider API, producing one commit.
	CommitFileToBranch(
		ctx context.Context,
		repo entities.Repository,
		branch, path, content, message string,
	) error

	// CommentOnPullRequest posts the rendered comment body. A failure here
	// must not roll back an already-successful publish.
	CommentOnPullRequest(
		ctx context.Context,
		repo entities.Repository,
		number int,
		body string,
	) error

	// UpdatePullRequestDescription replaces the PR description.
	UpdatePullRequestDescription(
		ctx context.Context,
		repo entities.Repository,
		number int,
		body string,
	) error
}
