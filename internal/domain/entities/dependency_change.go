package entities

// UpdateKind describes how a dependency reference changed.
type UpdateKind string

const (
	UpdateKindVersion     UpdateKind = "version"     // numeric version bump
	UpdateKindReplacement UpdateKind = "replacement" // dependency swapped for another
	UpdateKindDigest      UpdateKind = "digest"      // content digest / commit pin moved
)

// Well-known ecosystems. EcosystemUnknown is a valid fallback, never an error.
const (
	EcosystemNpm           = "npm"
	EcosystemGoMod         = "gomod"
	EcosystemDocker        = "docker"
	EcosystemGitHubActions = "github-actions"
	EcosystemTerraform     = "terraform"
	EcosystemPip           = "pip"
	EcosystemMixed         = "mixed"
	EcosystemUnknown       = "unknown"
)

// DependencyChange is a single dependency update extracted from a pull
// request. Immutable once extracted; identified by (Name, SourceFile)
// within one PR.
type DependencyChange struct {
	Name             string
	CurrentVersion   string
	NewVersion       string
	Ecosystem        string
	UpdateKind       UpdateKind
	IsSecurityUpdate bool
	SecuritySeverity Severity // empty when IsSecurityUpdate is false
	IsGrouped        bool
	SourceFile       string
	Scope            string // e.g. npm scope or Go module prefix
}
