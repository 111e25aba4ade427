package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/changesetter/internal/domain/commands"
	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// PreviewController handles the "preview" subcommand (classification only).
type PreviewController struct {
	command commands.Preview
}

// NewPreviewController creates a new PreviewController.
func NewPreviewController(command commands.Preview) *PreviewController {
	return &PreviewController{command: command}
}

// GetBind returns the Cobra command metadata for the preview controller.
func (it *PreviewController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "preview",
		Short: "Classify a dependency-update PR without publishing",
		Long: `Fetch a dependency-update Pull Request, classify its impact, and
print the rendered changeset record(s) and the full reasoning chain.
Nothing is committed, pushed or commented.`,
	}
}

// Execute runs the classification pipeline and prints the outcome.
func (it *PreviewController) Execute(cmd *cobra.Command, _ []string) {
	ctx := context.Background()

	settings, ok := loadSettings(cmd)
	if !ok {
		return
	}

	prNumber, _ := cmd.Flags().GetInt("pr")
	verbose, _ := cmd.Flags().GetBool("verbose")
	providerOverride, _ := cmd.Flags().GetString("provider")

	if prNumber <= 0 {
		logger.Error("A pull request number is required: use --pr")
		return
	}

	if err := it.command.Execute(ctx, settings, commands.PreviewOptions{
		PRNumber:     prNumber,
		Verbose:      verbose,
		ProviderName: providerOverride,
	}); err != nil {
		logger.Errorf("Preview failed: %v", err)
	}
}

// AddFlags adds the preview-specific flags to the given Cobra command.
func (it *PreviewController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Int("pr", 0, "Pull request number to preview (required)")
	cmd.Flags().String("provider", "", "Override the configured provider (github, gitlab)")
	cmd.Flags().String("repo", "", "Override the configured repository (org/name)")
}
