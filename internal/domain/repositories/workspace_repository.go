package repositories

import (
	"context"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// WorkspaceRepository reads the package boundaries of a repository checkout:
// package roots and their declared inter-dependencies.
type WorkspaceRepository interface {
	Layout(ctx context.Context, dir string) (entities.WorkspaceLayout, error)
}
