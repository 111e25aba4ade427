package controllers

import (
	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"go.uber.org/dig"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewProcessController); err != nil {
		return err
	}
	if err := container.Provide(NewPreviewController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	processController *ProcessController,
	previewController *PreviewController,
) *[]entities.Controller {
	return &[]entities.Controller{
		processController,
		previewController,
	}
}
