package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
)

const (
	sourceName = "github"
	perPage    = 100
)

// GitHubSourceRepository implements repositories.SourceRepository for GitHub.
type GitHubSourceRepository struct {
	client *gh.Client
}

// NewSourceRepository creates a GitHub source with the given token. The
// underlying HTTP client retries transient failures transparently.
func NewSourceRepository(token, baseURL string) repositories.SourceRepository {
	retrying := retryablehttp.NewClient()
	retrying.Logger = nil

	client := gh.NewClient(retrying.StandardClient()).WithAuthToken(token)
	if baseURL != "" {
		if enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL); err == nil {
			client = enterprise
		}
	}

	return &GitHubSourceRepository{client: client}
}

func (s *GitHubSourceRepository) Name() string { return sourceName }

// FetchPullRequest returns the PR with its commit messages and changed
// files (patch text included), fully paginated.
func (s *GitHubSourceRepository) FetchPullRequest(
	ctx context.Context,
	repo entities.Repository,
	number int,
) (*entities.PullRequestMetadata, error) {
	pr, _, err := s.client.PullRequests.Get(ctx, repo.Organization, repo.Name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get PR #%d: %w", number, err)
	}

	commits, err := s.listCommits(ctx, repo, number)
	if err != nil {
		return nil, err
	}
	files, err := s.listFiles(ctx, repo, number)
	if err != nil {
		return nil, err
	}

	return &entities.PullRequestMetadata{
		Number:     number,
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		Author:     pr.GetUser().GetLogin(),
		BranchName: pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
		Commits:    commits,
		Files:      files,
	}, nil
}

func (s *GitHubSourceRepository) listCommits(
	ctx context.Context,
	repo entities.Repository,
	number int,
) ([]entities.Commit, error) {
	var all []entities.Commit
	opts := &gh.ListOptions{PerPage: perPage}

	for {
		commits, resp, err := s.client.PullRequests.ListCommits(
			ctx, repo.Organization, repo.Name, number, opts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list PR commits: %w", err)
		}

		for _, commit := range commits {
			all = append(all, entities.Commit{
				SHA:     commit.GetSHA(),
				Message: commit.GetCommit().GetMessage(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (s *GitHubSourceRepository) listFiles(
	ctx context.Context,
	repo entities.Repository,
	number int,
) ([]entities.ChangedFile, error) {
	var all []entities.ChangedFile
	opts := &gh.ListOptions{PerPage: perPage}

	for {
		files, resp, err := s.client.PullRequests.ListFiles(
			ctx, repo.Organization, repo.Name, number, opts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list PR files: %w", err)
		}

		for _, file := range files {
			all = append(all, entities.ChangedFile{
				Path:  file.GetFilename(),
				Patch: file.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListSiblingPullRequests returns the open PRs whose head branch shares
// the grouped-update prefix.
func (s *GitHubSourceRepository) ListSiblingPullRequests(
	ctx context.Context,
	repo entities.Repository,
	groupPrefix string,
	excludeNumber int,
) ([]entities.SiblingPullRequest, error) {
	var siblings []entities.SiblingPullRequest
	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	for {
		prs, resp, err := s.client.PullRequests.List(ctx, repo.Organization, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests: %w", err)
		}

		for _, pr := range prs {
			branch := pr.GetHead().GetRef()
			if pr.GetNumber() == excludeNumber || !strings.HasPrefix(branch, groupPrefix) {
				continue
			}
			siblings = append(siblings, entities.SiblingPullRequest{
				Number:     pr.GetNumber(),
				BranchName: branch,
				Title:      pr.GetTitle(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return siblings, nil
}

// CommitFileToBranch creates or updates one file on the branch through the
// contents API, producing a single commit.
func (s *GitHubSourceRepository) CommitFileToBranch(
	ctx context.Context,
	repo entities.Repository,
	branch, path, content, message string,
) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: &message,
		Content: []byte(content),
		Branch:  &branch,
	}

	existing, _, _, getErr := s.client.Repositories.GetContents(
		ctx, repo.Organization, repo.Name, path,
		&gh.RepositoryContentGetOptions{Ref: branch},
	)
	if getErr == nil && existing != nil {
		opts.SHA = existing.SHA
		_, _, err := s.client.Repositories.UpdateFile(
			ctx, repo.Organization, repo.Name, path, opts,
		)
		if err != nil {
			return fmt.Errorf("failed to update %q on %q: %w", path, branch, err)
		}
		return nil
	}

	_, _, err := s.client.Repositories.CreateFile(
		ctx, repo.Organization, repo.Name, path, opts,
	)
	if err != nil {
		return fmt.Errorf("failed to create %q on %q: %w", path, branch, err)
	}
	return nil
}

func (s *GitHubSourceRepository) CommentOnPullRequest(
	ctx context.Context,
	repo entities.Repository,
	number int,
	body string,
) error {
	_, _, err := s.client.Issues.CreateComment(
		ctx, repo.Organization, repo.Name, number,
		&gh.IssueComment{Body: &body},
	)
	if err != nil {
		return fmt.Errorf("failed to comment on PR #%d: %w", number, err)
	}
	return nil
}

func (s *GitHubSourceRepository) UpdatePullRequestDescription(
	ctx context.Context,
	repo entities.Repository,
	number int,
	body string,
) error {
	_, _, err := s.client.PullRequests.Edit(
		ctx, repo.Organization, repo.Name, number,
		&gh.PullRequest{Body: &body},
	)
	if err != nil {
		return fmt.Errorf("failed to update PR #%d description: %w", number, err)
	}
	return nil
}
