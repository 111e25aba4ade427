package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// WorkspaceAnalyzer maps changed files onto the packages of a
// multi-package repository and recommends how many changeset records to
// produce.
type WorkspaceAnalyzer struct{}

// NewWorkspaceAnalyzer creates a workspace analyzer.
func NewWorkspaceAnalyzer() *WorkspaceAnalyzer {
	return &WorkspaceAnalyzer{}
}

// Analyze resolves each changed file to its owning package by longest
// prefix match against the known package roots. One affected package keeps
// a single record; several unrelated ones split per package; related ones
// escalate risk and stay combined so their versions move together.
func (a *WorkspaceAnalyzer) Analyze(
	changedFiles []entities.ChangedFile,
	layout entities.WorkspaceLayout,
) entities.WorkspaceAnalysis {
	affected := map[string]bool{}
	for _, file := range changedFiles {
		if owner, ok := ownerOf(file.Path, layout); ok {
			affected[owner] = true
		}
	}

	names := make([]string, 0, len(affected))
	for name := range affected {
		names = append(names, name)
	}
	sort.Strings(names)

	analysis := entities.WorkspaceAnalysis{
		AffectedPackages:  names,
		ChangesetStrategy: entities.StrategySingle,
		RiskLevel:         entities.SeverityLow,
	}

	switch {
	case len(names) <= 1:
		analysis.Reasoning = append(analysis.Reasoning,
			fmt.Sprintf("%d package(s) affected, single changeset", len(names)))
	case relatedPackages(names, layout):
		analysis.RiskLevel = entities.SeverityHigh
		analysis.Reasoning = append(analysis.Reasoning,
			"affected packages depend on each other, keeping one combined changeset to avoid inconsistent versioning")
	default:
		analysis.ChangesetStrategy = entities.StrategyPerPackage
		analysis.RiskLevel = entities.SeverityMedium
		analysis.Reasoning = append(analysis.Reasoning, fmt.Sprintf(
			"%d unrelated packages affected, one changeset per package", len(names)))
	}

	return analysis
}

// ownerOf returns the package owning the path: the one with the longest
// matching root prefix. The root package ("" root) owns everything no
// other package claims.
func ownerOf(path string, layout entities.WorkspaceLayout) (string, bool) {
	bestName := ""
	bestLen := -1
	for _, pkg := range layout.Packages {
		root := strings.Trim(pkg.Root, "/")
		if root != "" && !strings.HasPrefix(path, root+"/") && path != root {
			continue
		}
		if len(root) > bestLen {
			bestLen = len(root)
			bestName = pkg.Name
		}
	}
	return bestName, bestLen >= 0
}

// relatedPackages reports whether any affected package declares another
// affected package as a dependency.
func relatedPackages(names []string, layout entities.WorkspaceLayout) bool {
	affected := map[string]bool{}
	for _, name := range names {
		affected[name] = true
	}
	for _, name := range names {
		pkg, ok := layout.PackageByName(name)
		if !ok {
			continue
		}
		for _, dep := range pkg.Dependencies {
			if affected[dep] {
				return true
			}
		}
	}
	return false
}
