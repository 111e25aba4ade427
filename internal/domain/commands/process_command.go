package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
	"github.com/rios0rios0/changesetter/internal/domain/services"
	infraRepos "github.com/rios0rios0/changesetter/internal/infrastructure/repositories"
)

// Process is the interface for the process command (classify + publish).
type Process interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ProcessOptions) error
}

// ProcessOptions holds runtime options for a single run.
type ProcessOptions struct {
	PRNumber     int
	DryRun       bool
	Verbose      bool
	ProviderName string // If set, overrides the configured provider (CLI override)
}

// ProcessCommand runs the full pipeline for one pull request:
// extract context -> assess impact -> detect breaking/security ->
// categorize -> analyze workspace -> decide bump -> synthesize -> publish.
type ProcessCommand struct {
	sourceRegistry    *infraRepos.SourceRegistry
	git               repositories.GitRepository
	workspace         repositories.WorkspaceRepository
	extractor         *services.ContextExtractor
	securityDetector  *services.SecurityDetector
	workspaceAnalyzer *services.WorkspaceAnalyzer
}

// NewProcessCommand creates a new ProcessCommand with the given collaborators.
func NewProcessCommand(
	sourceRegistry *infraRepos.SourceRegistry,
	git repositories.GitRepository,
	workspace repositories.WorkspaceRepository,
	extractor *services.ContextExtractor,
	securityDetector *services.SecurityDetector,
	workspaceAnalyzer *services.WorkspaceAnalyzer,
) *ProcessCommand {
	return &ProcessCommand{
		sourceRegistry:    sourceRegistry,
		git:               git,
		workspace:         workspace,
		extractor:         extractor,
		securityDetector:  securityDetector,
		workspaceAnalyzer: workspaceAnalyzer,
	}
}

// Execute classifies the pull request and publishes the resulting
// changeset record(s).
func (it *ProcessCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ProcessOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	outcome, err := it.classify(ctx, settings, opts)
	if err != nil {
		return err
	}

	logger.Infof(
		"PR #%d: category=%s bump=%s confidence=%s (%d dependency change(s))",
		opts.PRNumber,
		outcome.Categorization.PrimaryCategory,
		outcome.Decision.BumpType,
		outcome.Decision.Confidence,
		len(outcome.PRContext.Dependencies),
	)

	if opts.DryRun {
		logger.Infof(
			"[DRY RUN] Would publish %d changeset record(s) to %q",
			len(outcome.Records), settings.Changeset.Directory,
		)
		return nil
	}

	return it.publish(ctx, settings, opts, outcome)
}

// PipelineOutcome bundles every intermediate record of one classification
// run, so preview and publish share the same pipeline.
type PipelineOutcome struct {
	Metadata       *entities.PullRequestMetadata
	PRContext      entities.PRContext
	Aggregate      entities.AggregateImpact
	Breaking       entities.DetectionResult
	Security       entities.DetectionResult
	Categorization entities.CategorizationResult
	Analysis       entities.WorkspaceAnalysis
	Decision       entities.BumpDecision
	Records        []entities.ChangesetRecord
	CommentBody    string
	Source         repositories.SourceRepository
}

// classify runs the side-effect-free half of the pipeline.
func (it *ProcessCommand) classify(
	ctx context.Context,
	settings *entities.Settings,
	opts ProcessOptions,
) (*PipelineOutcome, error) {
	providerName := settings.Provider.Type
	if opts.ProviderName != "" {
		providerName = opts.ProviderName
	}

	source, err := it.sourceRegistry.Get(providerName, settings.Provider.Token, settings.Provider.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider %q: %w", providerName, err)
	}

	repo := entities.Repository{
		Organization: settings.Repository.Organization,
		Name:         settings.Repository.Name,
		ProviderName: providerName,
	}

	meta, err := source.FetchPullRequest(ctx, repo, opts.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PR #%d: %w", opts.PRNumber, err)
	}

	prCtx := it.extractor.BuildContext(*meta)

	assessor := services.NewImpactAssessor(settings)
	aggregate := assessor.AssessAll(prCtx.Dependencies)

	breaking := services.NewBreakingDetector(settings).Detect(prCtx, aggregate)
	security := it.securityDetector.Detect(prCtx, aggregate)

	categorization := services.NewCategorizer(settings).Categorize(prCtx, aggregate, breaking, security)

	layout, layoutErr := it.workspace.Layout(ctx, settings.Repository.CheckoutDir)
	if layoutErr != nil {
		// Degrade to a single-package view rather than failing the run.
		logger.Warnf("Failed to read workspace layout: %v", layoutErr)
		layout = entities.WorkspaceLayout{}
	}
	analysis := it.workspaceAnalyzer.Analyze(meta.Files, layout)

	decision := services.NewBumpEngine(settings).Decide(aggregate, categorization, breaking, security)

	synthesizer := services.NewSynthesizer(settings)
	records := synthesizer.BuildRecords(prCtx, aggregate, categorization, analysis, decision)
	comment := synthesizer.CommentBody(prCtx, aggregate, categorization, decision)

	return &PipelineOutcome{
		Metadata:       meta,
		PRContext:      prCtx,
		Aggregate:      aggregate,
		Breaking:       breaking,
		Security:       security,
		Categorization: categorization,
		Analysis:       analysis,
		Decision:       decision,
		Records:        records,
		CommentBody:    comment,
		Source:         source,
	}, nil
}

func (it *ProcessCommand) publish(
	ctx context.Context,
	settings *entities.Settings,
	opts ProcessOptions,
	outcome *PipelineOutcome,
) error {
	repo := entities.Repository{
		Organization: settings.Repository.Organization,
		Name:         settings.Repository.Name,
	}

	plan := services.PublishPlan{
		Repo:        repo,
		PRNumber:    opts.PRNumber,
		Branch:      outcome.Metadata.BranchName,
		Records:     outcome.Records,
		CommentBody: outcome.CommentBody,
		Description: outcome.Metadata.Body,
		GroupPrefix: groupPrefixOf(outcome.PRContext),
	}

	orchestrator := services.NewPublishOrchestrator(settings, it.git)
	result := orchestrator.Publish(ctx, outcome.Source, plan)

	for _, sibling := range result.Siblings {
		if sibling.Err != nil {
			logger.Errorf("Sibling PR #%d: %v", sibling.PRNumber, sibling.Err)
		}
	}

	if result.State == services.StateFailure {
		return fmt.Errorf("publish failed for PR #%d: %w", opts.PRNumber, result.Err)
	}

	logger.Infof(
		"Published %d record(s) for PR #%d (committed=%v, pushed=%v, attempts=%d)",
		len(result.WrittenFiles), opts.PRNumber,
		result.Committed, result.Pushed, result.Attempts,
	)
	return nil
}

// groupPrefixOf derives the sibling-correlation prefix for grouped updates:
// the branch path up to its last segment, e.g. "dependabot/npm_and_yarn/".
// Non-grouped updates have no prefix and no propagation.
func groupPrefixOf(prCtx entities.PRContext) string {
	if !prCtx.IsGroupedUpdate {
		return ""
	}
	idx := strings.LastIndex(prCtx.BranchName, "/")
	if idx < 0 {
		return ""
	}
	return prCtx.BranchName[:idx+1]
}
