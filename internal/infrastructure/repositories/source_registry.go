package repositories

import (
	"fmt"

	domainRepos "github.com/rios0rios0/changesetter/internal/domain/repositories"
)

// SourceFactory is a constructor function that creates a SourceRepository
// given an auth token and an optional base URL (self-hosted instances).
type SourceFactory func(token, baseURL string) domainRepos.SourceRepository

// SourceRegistry manages all registered Git hosting implementations.
type SourceRegistry struct {
	sources map[string]SourceFactory
}

// NewSourceRegistry creates an empty source registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		sources: make(map[string]SourceFactory),
	}
}

// Register adds a source factory under the given name (e.g. "github").
func (r *SourceRegistry) Register(name string, factory SourceFactory) {
	r.sources[name] = factory
}

// Get returns a configured source instance for the given name and token.
func (r *SourceRegistry) Get(name, token, baseURL string) (domainRepos.SourceRepository, error) {
	factory, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %q", name)
	}
	return factory(token, baseURL), nil
}

// Names returns the list of registered source names.
func (r *SourceRegistry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}
