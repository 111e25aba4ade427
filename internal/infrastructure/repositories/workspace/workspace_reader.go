package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
	"github.com/rios0rios0/changesetter/internal/domain/repositories"
)

// WorkspaceReader implements repositories.WorkspaceRepository by inspecting
// the checked-out tree for monorepo manifests: npm/pnpm workspaces and Go
// workspaces (go.work or a single go.mod).
type WorkspaceReader struct{}

// NewWorkspaceRepository creates a filesystem-backed workspace reader.
func NewWorkspaceRepository() repositories.WorkspaceRepository {
	return &WorkspaceReader{}
}

type packageManifest struct {
	Name            string            `json:"name"`
	Workspaces      []string          `json:"workspaces"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type pnpmWorkspaceFile struct {
	Packages []string `yaml:"packages"`
}

// Layout reads the workspace manifests under dir and returns the package
// layout. An empty layout (no error) means a single-package repository.
func (w *WorkspaceReader) Layout(
	ctx context.Context,
	dir string,
) (entities.WorkspaceLayout, error) {
	if err := ctx.Err(); err != nil {
		return entities.WorkspaceLayout{}, err
	}
	if dir == "" {
		return entities.WorkspaceLayout{}, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return entities.WorkspaceLayout{}, fmt.Errorf("failed to access %q: %w", dir, err)
	}

	if packages, ok := w.readNodeWorkspace(dir); ok {
		return entities.WorkspaceLayout{Packages: packages}, nil
	}
	if packages, ok := w.readGoWorkspace(dir); ok {
		return entities.WorkspaceLayout{Packages: packages}, nil
	}

	return entities.WorkspaceLayout{}, nil
}

// readNodeWorkspace resolves npm "workspaces" globs or pnpm-workspace.yaml
// entries into concrete package roots.
func (w *WorkspaceReader) readNodeWorkspace(dir string) ([]entities.WorkspacePackage, bool) {
	globs := w.workspaceGlobs(dir)
	if len(globs) == 0 {
		return nil, false
	}

	var packages []entities.WorkspacePackage
	for _, glob := range globs {
		matches, err := filepath.Glob(filepath.Join(dir, glob))
		if err != nil {
			logger.Warnf("Invalid workspace glob %q: %v", glob, err)
			continue
		}
		for _, match := range matches {
			manifest, err := readPackageManifest(filepath.Join(match, "package.json"))
			if err != nil {
				continue
			}
			root, relErr := filepath.Rel(dir, match)
			if relErr != nil {
				continue
			}
			name := manifest.Name
			if name == "" {
				name = filepath.Base(match)
			}
			packages = append(packages, entities.WorkspacePackage{
				Name:         name,
				Root:         filepath.ToSlash(root),
				Dependencies: dependencyNames(manifest),
			})
		}
	}

	if len(packages) == 0 {
		return nil, false
	}
	return crossReference(packages), true
}

func (w *WorkspaceReader) workspaceGlobs(dir string) []string {
	pnpmPath := filepath.Join(dir, "pnpm-workspace.yaml")
	if raw, err := os.ReadFile(pnpmPath); err == nil {
		var pnpm pnpmWorkspaceFile
		if err = yaml.Unmarshal(raw, &pnpm); err != nil {
			logger.Warnf("Failed to parse %q: %v", pnpmPath, err)
			return nil
		}
		return pnpm.Packages
	}

	manifest, err := readPackageManifest(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil
	}
	return manifest.Workspaces
}

// readGoWorkspace lists go.work modules, or the single go.mod module when
// no go.work exists.
func (w *WorkspaceReader) readGoWorkspace(dir string) ([]entities.WorkspacePackage, bool) {
	workPath := filepath.Join(dir, "go.work")
	if raw, err := os.ReadFile(workPath); err == nil {
		work, parseErr := modfile.ParseWork(workPath, raw, nil)
		if parseErr != nil {
			logger.Warnf("Failed to parse %q: %v", workPath, parseErr)
			return nil, false
		}

		var packages []entities.WorkspacePackage
		for _, use := range work.Use {
			root := filepath.ToSlash(filepath.Clean(use.Path))
			if root == "." {
				root = ""
			}
			pkg, readErr := readGoModule(filepath.Join(dir, use.Path), root)
			if readErr != nil {
				logger.Warnf("Failed to read module %q: %v", use.Path, readErr)
				continue
			}
			packages = append(packages, pkg)
		}
		if len(packages) == 0 {
			return nil, false
		}
		return crossReference(packages), true
	}

	pkg, err := readGoModule(dir, "")
	if err != nil {
		return nil, false
	}
	return []entities.WorkspacePackage{pkg}, true
}

func readGoModule(moduleDir, root string) (entities.WorkspacePackage, error) {
	modPath := filepath.Join(moduleDir, "go.mod")
	raw, err := os.ReadFile(modPath)
	if err != nil {
		return entities.WorkspacePackage{}, err
	}

	mod, err := modfile.Parse(modPath, raw, nil)
	if err != nil {
		return entities.WorkspacePackage{}, fmt.Errorf("failed to parse %q: %w", modPath, err)
	}

	deps := make([]string, 0, len(mod.Require))
	for _, require := range mod.Require {
		deps = append(deps, require.Mod.Path)
	}

	name := ""
	if mod.Module != nil {
		name = mod.Module.Mod.Path
	}
	if name == "" {
		name = filepath.Base(moduleDir)
	}

	return entities.WorkspacePackage{
		Name:         name,
		Root:         root,
		Dependencies: deps,
	}, nil
}

func readPackageManifest(path string) (packageManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return packageManifest{}, err
	}

	var manifest packageManifest
	if err = json.Unmarshal(raw, &manifest); err != nil {
		return packageManifest{}, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return manifest, nil
}

func dependencyNames(manifest packageManifest) []string {
	deps := make([]string, 0, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for name := range manifest.Dependencies {
		deps = append(deps, name)
	}
	for name := range manifest.DevDependencies {
		deps = append(deps, name)
	}
	return deps
}

// crossReference keeps only dependencies that point at other workspace
// packages, so downstream analysis sees intra-repo relations.
func crossReference(packages []entities.WorkspacePackage) []entities.WorkspacePackage {
	known := make(map[string]bool, len(packages))
	for _, pkg := range packages {
		known[pkg.Name] = true
	}

	for i := range packages {
		var internal []string
		for _, dep := range packages[i].Dependencies {
			if known[dep] && !strings.EqualFold(dep, packages[i].Name) {
				internal = append(internal, dep)
			}
		}
		packages[i].Dependencies = internal
	}
	return packages
}
