package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
)

// PublishState is the explicit state of the publish machine. Modeled as an
// enumerated value with a bounded attempt counter so retry logic stays
// testable without real network or git.
type PublishState string

const (
	StateIdle       PublishState = "idle"
	StateStaging    PublishState = "staging"
	StateCommitting PublishState = "committing"
	StatePushing    PublishState = "pushing"
	StateRebasing   PublishState = "rebasing"
	StateSuccess    PublishState = "success"
	StateFailure    PublishState = "failure"
)

const (
	changesetFileMode = 0o644
	changesetDirMode  = 0o755
	commitMessage     = "chore: add dependency changeset"
)

// PublishPlan is everything the orchestrator needs for one target.
type PublishPlan struct {
	Repo        entities.Repository
	PRNumber    int
	Branch      string
	Records     []entities.ChangesetRecord
	CommentBody string
	// Description is the current PR body, used when the audit trail is
	// appended to the description instead of (only) a comment.
	Description string
	// GroupPrefix correlates sibling PRs of a grouped update; empty
	// disables propagation.
	GroupPrefix string
}

// SiblingResult reports the outcome of one sibling propagation. Failures
// are per sibling, never aggregated away.
type SiblingResult struct {
	PRNumber int
	Branch   string
	Err      error
}

// PublishResult is the structured outcome of one publish run.
type PublishResult struct {
	State        PublishState
	Committed    bool
	Pushed       bool
	Attempts     int
	WrittenFiles []string
	Err          error
	Siblings     []SiblingResult
}

// PublishOrchestrator writes, commits and pushes changeset records, then
// propagates grouped updates to sibling pull requests. It is the only
// pipeline stage with side effects.
type PublishOrchestrator struct {
	settings *entities.Settings
	git      repositories.GitRepository
	sleep    func(time.Duration)
}

// NewPublishOrchestrator creates an orchestrator using the given git primitives.
func NewPublishOrchestrator(
	settings *entities.Settings,
	git repositories.GitRepository,
) *PublishOrchestrator {
	return &PublishOrchestrator{
		settings: settings,
		git:      git,
		sleep:    time.Sleep,
	}
}

// WithSleep replaces the backoff sleeper. Intended for tests.
func (o *PublishOrchestrator) WithSleep(sleep func(time.Duration)) *PublishOrchestrator {
	o.sleep = sleep
	return o
}

// Publish runs the state machine:
// idle -> staging -> committing -> pushing ->
// {success | conflict -> rebasing -> pushing | failure}.
// Re-running against an unchanged PR is a no-op: identical record files
// produce no commit.
func (o *PublishOrchestrator) Publish(
	ctx context.Context,
	source repositories.SourceRepository,
	plan PublishPlan,
) PublishResult {
	result := PublishResult{State: StateIdle}
	dir := o.settings.Repository.CheckoutDir

	result.State = StateStaging
	written, changed, stageErr := o.stageRecords(dir, plan.Records)
	if stageErr != nil {
		result.State = StateFailure
		result.Err = stageErr
		return result
	}
	result.WrittenFiles = written

	if !changed {
		logger.Info("Changeset records unchanged, nothing to publish")
		result.State = StateSuccess
		return result
	}

	maxAttempts := o.settings.Publish.MaxPushAttempts
	backoff := time.Duration(o.settings.Publish.BackoffSeconds) * time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		result.State = StateCommitting
		committed, commitErr := o.commitRecords(dir, written)
		if commitErr != nil {
			result.State = StateFailure
			result.Err = commitErr
			return result
		}
		result.Committed = result.Committed || committed

		result.State = StatePushing
		pushErr := o.git.Push(ctx, dir, plan.Branch)
		if pushErr == nil {
			result.Pushed = true
			result.State = StateSuccess
			break
		}
		if !errors.Is(pushErr, repositories.ErrNonFastForward) || attempt == maxAttempts {
			result.State = StateFailure
			result.Err = fmt.Errorf("push failed after %d attempt(s): %w", attempt, pushErr)
			return result
		}

		// conflict: the remote advanced underneath us
		logger.Warnf(
			"Push rejected (non-fast-forward), rebasing and retrying (%d/%d)",
			attempt, maxAttempts,
		)
		result.State = StateRebasing
		if resetErr := o.git.ResetToRemote(ctx, dir, plan.Branch); resetErr != nil {
			result.State = StateFailure
			result.Err = fmt.Errorf("failed to sync with remote: %w", resetErr)
			return result
		}
		if _, _, restageErr := o.stageRecords(dir, plan.Records); restageErr != nil {
			result.State = StateFailure
			result.Err = restageErr
			return result
		}
		o.sleep(backoff)
	}

	o.notifyPullRequest(ctx, source, plan)
	result.Siblings = o.propagateToSiblings(ctx, source, plan)

	return result
}

// stageRecords writes every record into the changeset directory, plus the
// optional changelog mirror. Returns the staged relative paths and whether
// any file content actually changed; identical re-runs change nothing.
func (o *PublishOrchestrator) stageRecords(
	dir string,
	records []entities.ChangesetRecord,
) ([]string, bool, error) {
	identifier, err := o.git.HeadShortHash(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve head commit: %w", err)
	}

	changesetDir := filepath.Join(dir, o.settings.Changeset.Directory)
	if mkErr := os.MkdirAll(changesetDir, changesetDirMode); mkErr != nil {
		return nil, false, fmt.Errorf("failed to create changeset directory: %w", mkErr)
	}

	var staged []string
	changed := false

	for _, record := range records {
		relPath := filepath.Join(o.settings.Changeset.Directory, record.Filename(identifier))
		target := filepath.Join(dir, relPath)
		content := record.Render()

		existing, readErr := os.ReadFile(target)
		if readErr == nil && string(existing) == content {
			staged = append(staged, relPath)
			continue // idempotent re-run
		}

		if writeErr := os.WriteFile(target, []byte(content), changesetFileMode); writeErr != nil {
			return nil, false, fmt.Errorf("failed to write changeset %q: %w", relPath, writeErr)
		}
		staged = append(staged, relPath)
		changed = true
	}

	if o.settings.Changeset.MirrorChangelog {
		if mirrored := o.mirrorChangelog(dir, records); mirrored != "" {
			staged = append(staged, mirrored)
			changed = true
		}
	}

	return staged, changed, nil
}

func (o *PublishOrchestrator) commitRecords(dir string, paths []string) (bool, error) {
	return o.git.StageAndCommit(
		dir, paths, commitMessage,
		o.settings.Publish.CommitAuthorName,
		o.settings.Publish.CommitAuthorEmail,
	)
}

// mirrorChangelog inserts the record bodies into CHANGELOG.md's Unreleased
// section when configured. Returns the relative path when the file changed.
func (o *PublishOrchestrator) mirrorChangelog(
	dir string,
	records []entities.ChangesetRecord,
) string {
	path := filepath.Join(dir, "CHANGELOG.md")
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	section := entities.ChangelogSectionChanged
	var bullets []string
	for _, record := range records {
		if record.Metadata["category"] == string(entities.CategorySecurity) {
			section = entities.ChangelogSectionSecurity
		}
		bullets = append(bullets, "- "+firstLine(record.Body))
	}

	modified := entities.MirrorChangesetIntoChangelog(string(content), section, bullets)
	if modified == string(content) {
		return ""
	}
	if writeErr := os.WriteFile(path, []byte(modified), changesetFileMode); writeErr != nil {
		logger.Warnf("Failed to mirror changelog: %v", writeErr)
		return ""
	}
	return "CHANGELOG.md"
}

// notifyPullRequest posts the audit comment and, when configured, appends
// it to the PR description. Failures here never roll back the
// already-successful push.
func (o *PublishOrchestrator) notifyPullRequest(
	ctx context.Context,
	source repositories.SourceRepository,
	plan PublishPlan,
) {
	if plan.CommentBody == "" {
		return
	}
	if err := source.CommentOnPullRequest(ctx, plan.Repo, plan.PRNumber, plan.CommentBody); err != nil {
		logger.Warnf("Failed to comment on PR #%d: %v", plan.PRNumber, err)
	}

	if !o.settings.Publish.UpdateDescription {
		return
	}
	if strings.Contains(plan.Description, plan.CommentBody) {
		return // already appended on a previous run
	}
	description := strings.TrimRight(plan.Description, "\n") + "\n\n---\n\n" + plan.CommentBody
	err := source.UpdatePullRequestDescription(ctx, plan.Repo, plan.PRNumber, description)
	if err != nil {
		logger.Warnf("Failed to update description of PR #%d: %v", plan.PRNumber, err)
	}
}

// propagateToSiblings replays the changeset write against every sibling PR
// of a grouped update, sequentially, reporting failures per sibling.
func (o *PublishOrchestrator) propagateToSiblings(
	ctx context.Context,
	source repositories.SourceRepository,
	plan PublishPlan,
) []SiblingResult {
	if plan.GroupPrefix == "" || !o.settings.Publish.PropagateToSiblings {
		return nil
	}

	siblings, err := source.ListSiblingPullRequests(ctx, plan.Repo, plan.GroupPrefix, plan.PRNumber)
	if err != nil {
		logger.Warnf("Failed to list sibling PRs: %v", err)
		return []SiblingResult{{Err: fmt.Errorf("failed to list siblings: %w", err)}}
	}

	var results []SiblingResult
	for _, sibling := range siblings {
		results = append(results, o.publishToSibling(ctx, source, plan, sibling))
	}
	return results
}

func (o *PublishOrchestrator) publishToSibling(
	ctx context.Context,
	source repositories.SourceRepository,
	plan PublishPlan,
	sibling entities.SiblingPullRequest,
) SiblingResult {
	result := SiblingResult{PRNumber: sibling.Number, Branch: sibling.BranchName}

	identifier := entities.Slugify(sibling.BranchName)
	for _, record := range plan.Records {
		path := o.settings.Changeset.Directory + "/" + record.Filename(identifier)
		err := source.CommitFileToBranch(
			ctx, plan.Repo, sibling.BranchName, path, record.Render(), commitMessage,
		)
		if err != nil {
			result.Err = fmt.Errorf("failed to publish to sibling #%d: %w", sibling.Number, err)
			return result
		}
	}

	logger.Infof("Propagated changeset to sibling PR #%d (%s)", sibling.Number, sibling.BranchName)
	return result
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return s
}
