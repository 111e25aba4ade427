package gitlab

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
)

const (
	sourceName = "gitlab"
	perPage    = 100
)

// GitLabSourceRepository implements repositories.SourceRepository for GitLab.
type GitLabSourceRepository struct {
	client *gl.Client
}

// NewSourceRepository creates a GitLab source with the given token. An empty
// baseURL targets gitlab.com; self-hosted instances pass their API root.
func NewSourceRepository(token, baseURL string) repositories.SourceRepository {
	var opts []gl.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gl.WithBaseURL(baseURL))
	}

	client, err := gl.NewClient(token, opts...)
	if err != nil {
		// NewClient only fails on an unparsable base URL.
		logger.Errorf("Failed to create GitLab client: %v", err)
	}

	return &GitLabSourceRepository{client: client}
}

func (s *GitLabSourceRepository) Name() string { return sourceName }

func projectID(repo entities.Repository) string {
	return repo.Organization + "/" + repo.Name
}

// FetchPullRequest returns the merge request with its commit messages and
// changed files (diff text included).
func (s *GitLabSourceRepository) FetchPullRequest(
	ctx context.Context,
	repo entities.Repository,
	number int,
) (*entities.PullRequestMetadata, error) {
	pid := projectID(repo)

	mr, _, err := s.client.MergeRequests.GetMergeRequest(
		pid, int64(number), nil, gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get MR !%d: %w", number, err)
	}

	commits, err := s.listCommits(ctx, pid, number)
	if err != nil {
		return nil, err
	}
	files, err := s.listFiles(ctx, pid, number)
	if err != nil {
		return nil, err
	}

	author := ""
	if mr.Author != nil {
		author = mr.Author.Username
	}

	return &entities.PullRequestMetadata{
		Number:     number,
		Title:      mr.Title,
		Body:       mr.Description,
		Author:     author,
		BranchName: mr.SourceBranch,
		BaseBranch: mr.TargetBranch,
		Commits:    commits,
		Files:      files,
	}, nil
}

func (s *GitLabSourceRepository) listCommits(
	ctx context.Context,
	pid string,
	number int,
) ([]entities.Commit, error) {
	var all []entities.Commit
	opts := &gl.GetMergeRequestCommitsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}

	for {
		commits, resp, err := s.client.MergeRequests.GetMergeRequestCommits(
			pid, int64(number), opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list MR commits: %w", err)
		}

		for _, commit := range commits {
			all = append(all, entities.Commit{
				SHA:     commit.ID,
				Message: commit.Message,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (s *GitLabSourceRepository) listFiles(
	ctx context.Context,
	pid string,
	number int,
) ([]entities.ChangedFile, error) {
	var all []entities.ChangedFile
	opts := &gl.ListMergeRequestDiffsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}

	for {
		diffs, resp, err := s.client.MergeRequests.ListMergeRequestDiffs(
			pid, int64(number), opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list MR diffs: %w", err)
		}

		for _, diff := range diffs {
			all = append(all, entities.ChangedFile{
				Path:  diff.NewPath,
				Patch: diff.Diff,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListSiblingPullRequests returns the open MRs whose source branch shares
// the grouped-update prefix.
func (s *GitLabSourceRepository) ListSiblingPullRequests(
	ctx context.Context,
	repo entities.Repository,
	groupPrefix string,
	excludeNumber int,
) ([]entities.SiblingPullRequest, error) {
	var siblings []entities.SiblingPullRequest
	opts := &gl.ListProjectMergeRequestsOptions{
		State:       gl.Ptr("opened"),
		ListOptions: gl.ListOptions{PerPage: perPage},
	}

	for {
		mrs, resp, err := s.client.MergeRequests.ListProjectMergeRequests(
			projectID(repo), opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list merge requests: %w", err)
		}

		for _, mr := range mrs {
			if mr.IID == int64(excludeNumber) || !strings.HasPrefix(mr.SourceBranch, groupPrefix) {
				continue
			}
			siblings = append(siblings, entities.SiblingPullRequest{
				Number:     int(mr.IID),
				BranchName: mr.SourceBranch,
				Title:      mr.Title,
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
// repository files API, producing a single commit.
func (s *GitLabSourceRepository) CommitFileToBranch(
	ctx context.Context,
	repo entities.Repository,
	branch, path, content, message string,
) error {
	pid := projectID(repo)

	_, _, getErr := s.client.RepositoryFiles.GetFile(
		pid, path,
		&gl.GetFileOptions{Ref: gl.Ptr(branch)},
		gl.WithContext(ctx),
	)
	if getErr == nil {
		_, _, err := s.client.RepositoryFiles.UpdateFile(
			pid, path,
			&gl.UpdateFileOptions{
				Branch:        gl.Ptr(branch),
				Content:       gl.Ptr(content),
				CommitMessage: gl.Ptr(message),
			},
			gl.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("failed to update %q on %q: %w", path, branch, err)
		}
		return nil
	}

	_, _, err := s.client.RepositoryFiles.CreateFile(
		pid, path,
		&gl.CreateFileOptions{
			Branch:        gl.Ptr(branch),
			Content:       gl.Ptr(content),
			CommitMessage: gl.Ptr(message),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create %q on %q: %w", path, branch, err)
	}
	return nil
}

func (s *GitLabSourceRepository) CommentOnPullRequest(
	ctx context.Context,
	repo entities.Repository,
	number int,
	body string,
) error {
	_, _, err := s.client.Notes.CreateMergeRequestNote(
		projectID(repo), int64(number),
		&gl.CreateMergeRequestNoteOptions{Body: gl.Ptr(body)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to comment on MR !%d: %w", number, err)
	}
	return nil
}

func (s *GitLabSourceRepository) UpdatePullRequestDescription(
	ctx context.Context,
	repo entities.Repository,
	number int,
	body string,
) error {
	_, _, err := s.client.MergeRequests.UpdateMergeRequest(
		projectID(repo), int64(number),
		&gl.UpdateMergeRequestOptions{Description: gl.Ptr(body)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to update MR !%d description: %w", number, err)
	}
	return nil
}
