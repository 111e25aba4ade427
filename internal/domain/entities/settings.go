package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Settings is the top-level configuration for changesetter. Invalid rule
// configuration is fatal and detected before any side effect.
type Settings struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Repository RepositoryConfig `yaml:"repository"`
	Changeset  ChangesetConfig  `yaml:"changeset"`
	Rules      RulesConfig      `yaml:"rules"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ProviderConfig describes the Git hosting provider serving PR metadata.
type ProviderConfig struct {
	Type    string `yaml:"type"`     // "github" or "gitlab"
	Token   string `yaml:"token"`    // Inline, ${ENV_VAR}, or file path
	BaseURL string `yaml:"base_url"` // Optional, for self-hosted instances
}

// RepositoryConfig identifies the repository and local checkout being processed.
type RepositoryConfig struct {
	Organization string `yaml:"organization"`
	Name         string `yaml:"name"`
	CheckoutDir  string `yaml:"checkout_dir"`
}

// ChangesetConfig controls how records are rendered and where they land.
type ChangesetConfig struct {
	Directory        string   `yaml:"directory"`
	DefaultType      BumpType `yaml:"default_type"`
	IncludeEmoji     bool     `yaml:"include_emoji"`
	IncludeTimestamp bool     `yaml:"include_timestamp"`
	MirrorChangelog  bool     `yaml:"mirror_changelog"`
}

// RulesConfig holds the declarative rule tables consumed by the pipeline.
// Rules are data, not branching code: new ecosystems and overrides are
// additive entries here. The three safety toggles are enabled by default;
// a config file disables them with an explicit false.
type RulesConfig struct {
	SecurityMinimumPatch       bool                     `yaml:"security_minimum_patch"`
	SecurityTakesPrecedence    bool                     `yaml:"security_takes_precedence"`
	BreakingChangesAlwaysMajor bool                     `yaml:"breaking_changes_always_major"`
	CategoryPriority           []Category               `yaml:"category_priority"`
	EcosystemImpactCaps        map[string]VersionChange `yaml:"ecosystem_impact_caps"`
	BroadBreakingSurface       []string                 `yaml:"broad_breaking_surface"`
}

// PublishConfig controls the commit/push/retry behaviour of the orchestrator.
type PublishConfig struct {
	MaxPushAttempts     int    `yaml:"max_push_attempts"`
	BackoffSeconds      int    `yaml:"backoff_seconds"`
	PropagateToSiblings bool   `yaml:"propagate_to_siblings"`
	UpdateDescription   bool   `yaml:"update_description"`
	CommitAuthorName    string `yaml:"commit_author_name"`
	CommitAuthorEmail   string `yaml:"commit_author_email"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads and parses a configuration file, expanding environment
// variables, resolving token file paths, applying defaults, and validating.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	// Unmarshal over the pre-seeded toggles so only an explicit false in
	// the file disables them.
	settings := baseSettings()
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Provider.Token = resolveToken(settings.Provider.Token)
	settings.applyDefaults()

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}

	return &settings, nil
}

// DefaultSettings returns a Settings with every default applied and no
// provider configured. Used by preview mode, which needs no credentials.
func DefaultSettings() *Settings {
	settings := baseSettings()
	settings.applyDefaults()
	return &settings
}

// baseSettings seeds the safety rules that hold unless a config file turns
// them off: security findings floor the bump, high/critical security takes
// precedence, and breaking indicators force major.
func baseSettings() Settings {
	var settings Settings
	settings.Rules.SecurityMinimumPatch = true
	settings.Rules.SecurityTakesPrecedence = true
	settings.Rules.BreakingChangesAlwaysMajor = true
	return settings
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".changesetter.yaml",
		".changesetter.yml",
		"changesetter.yaml",
		"changesetter.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

func (s *Settings) applyDefaults() {
	if s.Repository.CheckoutDir == "" {
		s.Repository.CheckoutDir = "."
	}
	if s.Changeset.Directory == "" {
		s.Changeset.Directory = ".changeset"
	}
	if s.Changeset.DefaultType == "" {
		s.Changeset.DefaultType = BumpPatch
	}
	if len(s.Rules.CategoryPriority) == 0 {
		s.Rules.CategoryPriority = DefaultCategoryPriority
	}
	if s.Publish.MaxPushAttempts == 0 {
		s.Publish.MaxPushAttempts = 3
	}
	if s.Publish.BackoffSeconds == 0 {
		s.Publish.BackoffSeconds = 2
	}
	if s.Publish.CommitAuthorName == "" {
		s.Publish.CommitAuthorName = "changesetter[bot]"
	}
	if s.Publish.CommitAuthorEmail == "" {
		s.Publish.CommitAuthorEmail = "changesetter[bot]@users.noreply.github.com"
	}
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks the rule configuration. Every failure here is a
// configuration error: the run must stop before any side effect.
func (s *Settings) validate() error {
	if s.Provider.Type == "" {
		return errors.New("provider.type is required")
	}
	if s.Provider.Token == "" {
		return errors.New(
			"provider.token is required (set inline, via ${ENV_VAR}, or as file path)",
		)
	}
	if s.Repository.Organization == "" || s.Repository.Name == "" {
		return errors.New("repository.organization and repository.name are required")
	}

	if !ValidBumpType(string(s.Changeset.DefaultType)) {
		return fmt.Errorf("changeset.default_type %q is not one of patch/minor/major",
			s.Changeset.DefaultType)
	}

	for i, category := range s.Rules.CategoryPriority {
		switch category {
		case CategorySecurity, CategoryBreaking, CategoryGrouped, CategoryRoutine:
		default:
			return fmt.Errorf("rules.category_priority[%d] has unknown category %q", i, category)
		}
	}

	for ecosystem, maxImpact := range s.Rules.EcosystemImpactCaps {
		if _, ok := versionChangeRanks[maxImpact]; !ok {
			return fmt.Errorf(
				"rules.ecosystem_impact_caps[%q] has unknown impact %q", ecosystem, maxImpact,
			)
		}
	}

	if s.Publish.MaxPushAttempts < 1 {
		return fmt.Errorf(
			"publish.max_push_attempts must be at least 1, got %d",
			s.Publish.MaxPushAttempts,
		)
	}

	return nil
}
