package entities

// ChangesetStrategy decides how many changeset records one PR produces.
type ChangesetStrategy string

const (
	StrategySingle     ChangesetStrategy = "single"
	StrategyPerPackage ChangesetStrategy = "per-package"
)

// WorkspacePackage is one package in a (possibly multi-package) repository.
type WorkspacePackage struct {
	Name         string
	Root         string   // path relative to the repository root, "" for the root package
	Dependencies []string // names of sibling packages this one depends on
}

// WorkspaceLayout describes the package boundaries of the current checkout,
// supplied by the workspace reader collaborator.
type WorkspaceLayout struct {
	Packages []WorkspacePackage
}

// PackageByName returns the package with the given name, if present.
func (l WorkspaceLayout) PackageByName(name string) (WorkspacePackage, bool) {
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return WorkspacePackage{}, false
}

// WorkspaceAnalysis maps the changed files of one PR onto the workspace
// packages and recommends a changeset-splitting strategy.
type WorkspaceAnalysis struct {
	AffectedPackages  []string
	ChangesetStrategy ChangesetStrategy
	RiskLevel         Severity
	Reasoning         []string
}
