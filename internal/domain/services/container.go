package services

import (
	"go.uber.org/dig"
)

// RegisterProviders registers the settings-independent pipeline services
// with the DIG container. Settings-bound stages (assessor, detectors,
// engines) are constructed per run from the loaded configuration.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewContextExtractor); err != nil {
		return err
	}
	if err := container.Provide(NewSecurityDetector); err != nil {
		return err
	}
	if err := container.Provide(NewWorkspaceAnalyzer); err != nil {
		return err
	}

	return nil
}
