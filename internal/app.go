package internal

import (
	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// AppInternal holds the application's wired controllers.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the application context from the injected controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllers}
}

// GetControllers returns all registered controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}
