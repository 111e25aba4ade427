package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	if err := container.Provide(NewProcessCommand); err != nil {
		return err
	}
	if err := container.Provide(NewPreviewCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *ProcessCommand) Process {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *PreviewCommand) Preview {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
