//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/changesetter/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyChangeBuilder helps create test dependency changes with a fluent interface.
type DependencyChangeBuilder struct {
	*testkit.BaseBuilder
	name           string
	currentVersion string
	newVersion     string
	ecosystem      string
	updateKind     entities.UpdateKind
	isSecurity     bool
	severity       entities.Severity
	sourceFile     string
}

// NewDependencyChangeBuilder creates a new builder with sensible defaults.
func NewDependencyChangeBuilder() *DependencyChangeBuilder {
	return &DependencyChangeBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		name:           "lodash",
		currentVersion: "4.17.20",
		newVersion:     "4.17.21",
		ecosystem:      entities.EcosystemNpm,
		updateKind:     entities.UpdateKindVersion,
		sourceFile:     "package.json",
	}
}

// WithName sets the dependency name.
func (b *DependencyChangeBuilder) WithName(name string) *DependencyChangeBuilder {
	b.name = name
	return b
}

// WithVersions sets the current and new version.
func (b *DependencyChangeBuilder) WithVersions(current, next string) *DependencyChangeBuilder {
	b.currentVersion = current
	b.newVersion = next
	return b
}

// WithEcosystem sets the ecosystem.
func (b *DependencyChangeBuilder) WithEcosystem(ecosystem string) *DependencyChangeBuilder {
	b.ecosystem = ecosystem
	return b
}

// WithUpdateKind sets the update kind.
func (b *DependencyChangeBuilder) WithUpdateKind(kind entities.UpdateKind) *DependencyChangeBuilder {
	b.updateKind = kind
	return b
}

// WithSecurity marks the change as a security update with the given severity.
func (b *DependencyChangeBuilder) WithSecurity(severity entities.Severity) *DependencyChangeBuilder {
	b.isSecurity = true
	b.severity = severity
	return b
}

// WithSourceFile sets the manifest file the change was parsed from.
func (b *DependencyChangeBuilder) WithSourceFile(path string) *DependencyChangeBuilder {
	b.sourceFile = path
	return b
}

// Build creates the dependency change (satisfies testkit.Builder interface).
func (b *DependencyChangeBuilder) Build() interface{} {
	return b.BuildDependencyChange()
}

// BuildDependencyChange creates the dependency change with a concrete return type.
func (b *DependencyChangeBuilder) BuildDependencyChange() entities.DependencyChange {
	return entities.DependencyChange{
		Name:             b.name,
		CurrentVersion:   b.currentVersion,
		NewVersion:       b.newVersion,
		Ecosystem:        b.ecosystem,
		UpdateKind:       b.updateKind,
		IsSecurityUpdate: b.isSecurity,
		SecuritySeverity: b.severity,
		SourceFile:       b.sourceFile,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyChangeBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "lodash"
	b.currentVersion = "4.17.20"
	b.newVersion = "4.17.21"
	b.ecosystem = entities.EcosystemNpm
	b.updateKind = entities.UpdateKindVersion
	b.isSecurity = false
	b.severity = ""
	b.sourceFile = "package.json"
	return b
}

// Clone creates a deep copy of the DependencyChangeBuilder.
func (b *DependencyChangeBuilder) Clone() testkit.Builder {
	return &DependencyChangeBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:           b.name,
		currentVersion: b.currentVersion,
		newVersion:     b.newVersion,
		ecosystem:      b.ecosystem,
		updateKind:     b.updateKind,
		isSecurity:     b.isSecurity,
		severity:       b.severity,
		sourceFile:     b.sourceFile,
	}
}
