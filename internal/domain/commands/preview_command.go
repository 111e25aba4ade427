package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// Preview is the interface for the preview command (classification only).
type Preview interface {
	Execute(ctx context.Context, settings *entities.Settings, opts PreviewOptions) error
}

// PreviewOptions holds runtime options for a preview run.
type PreviewOptions struct {
	PRNumber     int
	Verbose      bool
	ProviderName string
}

// PreviewCommand runs the classification pipeline and prints the rendered
// records and the reasoning chain without any side effect.
type PreviewCommand struct {
	process *ProcessCommand
}

// NewPreviewCommand creates a new PreviewCommand sharing the process pipeline.
func NewPreviewCommand(process *ProcessCommand) *PreviewCommand {
	return &PreviewCommand{process: process}
}

// Execute classifies the pull request and prints the outcome.
func (it *PreviewCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts PreviewOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	outcome, err := it.process.classify(ctx, settings, ProcessOptions{
		PRNumber:     opts.PRNumber,
		ProviderName: opts.ProviderName,
	})
	if err != nil {
		return err
	}

	fmt.Printf("PR #%d: %s\n", opts.PRNumber, outcome.PRContext.Title)
	fmt.Printf("Category: %s (all: %v)\n",
		outcome.Categorization.PrimaryCategory, outcome.Categorization.AllCategories)
	fmt.Printf("Bump: %s (confidence %s)\n",
		outcome.Decision.BumpType, outcome.Decision.Confidence)
	fmt.Printf("Strategy: %s, affected packages: %v\n\n",
		outcome.Analysis.ChangesetStrategy, outcome.Analysis.AffectedPackages)

	for _, record := range outcome.Records {
		fmt.Println("--- record ---")
		fmt.Print(record.Render())
	}

	fmt.Println("\nReasoning:")
	for _, step := range outcome.Decision.ReasoningChain {
		fmt.Println("  - " + step)
	}

	return nil
}
