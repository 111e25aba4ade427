package controllers

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/changesetter/internal/domain/commands"
	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// ProcessController handles the "process" subcommand (classify + publish).
type ProcessController struct {
	command commands.Process
}

// NewProcessController creates a new ProcessController.
func NewProcessController(command commands.Process) *ProcessController {
	return &ProcessController{command: command}
}

// GetBind returns the Cobra command metadata for the process controller.
func (it *ProcessController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "process",
		Short: "Classify a dependency-update PR and publish its changeset",
		Long: `Fetch a dependency-update Pull Request, classify its impact
(patch, minor or major), synthesize a changeset record, and commit it
back to the PR's source branch.

This is the main command intended to be triggered by CI when an
automated dependency-update PR opens or updates. Conflicting pushes
are retried against the refreshed branch tip, and grouped updates
propagate their changeset to open sibling PRs.`,
	}
}

// Execute runs the classify-and-publish pipeline for one PR.
func (it *ProcessController) Execute(cmd *cobra.Command, _ []string) {
	ctx := context.Background()

	settings, ok := loadSettings(cmd)
	if !ok {
		return
	}

	prNumber, _ := cmd.Flags().GetInt("pr")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	providerOverride, _ := cmd.Flags().GetString("provider")

	if prNumber <= 0 {
		logger.Error("A pull request number is required: use --pr")
		return
	}

	if err := it.command.Execute(ctx, settings, commands.ProcessOptions{
		PRNumber:     prNumber,
		DryRun:       dryRun,
		Verbose:      verbose,
		ProviderName: providerOverride,
	}); err != nil {
		logger.Errorf("Process failed: %v", err)
	}
}

// AddFlags adds the process-specific flags to the given Cobra command.
func (it *ProcessController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Int("pr", 0, "Pull request number to process (required)")
	cmd.Flags().String("provider", "", "Override the configured provider (github, gitlab)")
	cmd.Flags().String("repo", "", "Override the configured repository (org/name)")
}

// loadSettings resolves and loads the configuration file, honoring the
// --config and --token overrides. Shared by all controllers.
func loadSettings(cmd *cobra.Command) (*entities.Settings, bool) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		var err error
		cfgPath, err = entities.FindConfigFile()
		if err != nil {
			logger.Errorf(
				"no config file found: %v\nSpecify one with --config or create changesetter.yaml",
				err,
			)
			return nil, false
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	settings, err := entities.NewSettings(cfgPath)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return nil, false
	}

	if token, _ := cmd.Flags().GetString("token"); token != "" {
		settings.Provider.Token = token
	}

	if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
		org, name, found := strings.Cut(repo, "/")
		if !found || org == "" || name == "" {
			logger.Errorf("invalid --repo %q, expected org/name", repo)
			return nil, false
		}
		settings.Repository.Organization = org
		settings.Repository.Name = name
	}

	return settings, true
}
