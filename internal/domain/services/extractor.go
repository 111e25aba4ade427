package services

import (
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// Patterns shared across ecosystems.
var (
	botAuthorPattern  = regexp.MustCompile(`(?i)\[bot\]$|^dependabot|^renovate`)
	botBranchPrefixes = []string{"dependabot/", "renovate/", "chore/upgrade-"}

	// Dependabot-style title: "Bump lodash from 4.17.20 to 4.17.21".
	titleBumpPattern = regexp.MustCompile(
		`(?i)\bbumps?\s+([\w@/.:-]+)\s+(?:requirement\s+)?from\s+([\w.+-]+)\s+to\s+([\w.+-]+)`,
	)
	groupTitlePattern = regexp.MustCompile(`(?i)\bthe\s+[\w./-]+\s+group\b`)

	securityTokenPattern = regexp.MustCompile(
		`(?i)\b(CVE-\d{4}-\d{4,}|GHSA-[\w-]{4,}|security\s+(?:update|fix|advisory)|vulnerabilit(?:y|ies))\b`,
	)
	severityPattern = regexp.MustCompile(
		`(?i)\b(critical|high|moderate|medium|low)\b[^.\n]{0,30}\bseverity\b|` +
			`\bseverity\b[^.\n]{0,30}\b(critical|high|moderate|medium|low)\b`,
	)

	// Last-resort pattern for dependency-shaped lines in unmatched files.
	genericDependencyPattern = regexp.MustCompile(`^\s*"?(@?[\w./-]{2,})"?\s*[:=@ ]+\s*"?v?([\d][\w.+-]*)"?`)

	digestPattern = regexp.MustCompile(`^(?:sha256:)?[0-9a-f]{7,64}$`)
)

// ContextExtractor turns raw pull-request metadata into a normalized
// PRContext. It is a pure function over the provided text: malformed diff
// content degrades to partial results, never to an error.
type ContextExtractor struct {
	strategies []EcosystemStrategy
}

// NewContextExtractor creates an extractor with the built-in strategy table.
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{strategies: builtinStrategies}
}

// BuildContext extracts the dependency changes and PR-level signals from
// the given metadata.
func (e *ContextExtractor) BuildContext(meta entities.PullRequestMetadata) entities.PRContext {
	isSecurityUpdate := securityTokenPattern.MatchString(meta.Title + "\n" + meta.Body)
	severity := extractSeverity(meta.Title + "\n" + meta.Body)

	dependencies := e.extractFromFiles(meta.Files)
	if len(dependencies) == 0 {
		dependencies = extractFromTitle(meta.Title)
	}

	isGrouped := detectGroupedUpdate(meta, dependencies)

	for i := range dependencies {
		dependencies[i].IsGrouped = isGrouped
		if isSecurityUpdate {
			dependencies[i].IsSecurityUpdate = true
			dependencies[i].SecuritySeverity = severity
		}
	}

	logger.Debugf(
		"Extracted %d dependency change(s) from PR %q (grouped=%v, security=%v)",
		len(dependencies), meta.Title, isGrouped, isSecurityUpdate,
	)

	return entities.PRContext{
		IsBotAuthored:    e.detectBotAuthorship(meta),
		BranchName:       meta.BranchName,
		Title:            meta.Title,
		Body:             meta.Body,
		IsGroupedUpdate:  isGrouped,
		IsSecurityUpdate: isSecurityUpdate,
		Ecosystem:        dominantEcosystem(dependencies),
		Dependencies:     dependencies,
	}
}

// extractFromFiles runs the generic strategy evaluator over every changed
// file. Files no strategy owns still get a low-confidence pass with the
// generic pattern under the unknown ecosystem rather than being dropped.
func (e *ContextExtractor) extractFromFiles(files []entities.ChangedFile) []entities.DependencyChange {
	var changes []entities.DependencyChange

	for _, file := range files {
		if file.Patch == "" {
			continue
		}

		strategy, owned := e.strategyFor(file.Path)
		if owned {
			changes = append(changes, evaluateStrategy(strategy, file)...)
			continue
		}
		if looksDependencyShaped(file.Path) {
			changes = append(changes, evaluateStrategy(EcosystemStrategy{
				Ecosystem:      entities.EcosystemUnknown,
				RemovedPattern: genericDependencyPattern,
				AddedPattern:   genericDependencyPattern,
			}, file)...)
		}
	}

	return changes
}

func (e *ContextExtractor) strategyFor(path string) (EcosystemStrategy, bool) {
	for _, strategy := range e.strategies {
		if strategy.MatchesFile(path) {
			return strategy, true
		}
	}
	return EcosystemStrategy{}, false
}

// evaluateStrategy is the single generic evaluator: it pairs removed and
// added (name, version) captures from the patch into dependency changes.
func evaluateStrategy(strategy EcosystemStrategy, file entities.ChangedFile) []entities.DependencyChange {
	removed := map[string]string{}
	added := map[string]string{}
	var addedOrder []string

	for _, line := range strings.Split(file.Patch, "\n") {
		if len(line) < 2 {
			continue
		}
		marker, content := line[0], line[1:]
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			continue
		}

		name, version, ok := captureLine(strategy, marker, content)
		if !ok {
			continue
		}
		if name == "" {
			name = fallbackName(file.Path)
		}

		switch marker {
		case '-':
			removed[name] = version
		case '+':
			if _, seen := added[name]; !seen {
				addedOrder = append(addedOrder, name)
			}
			added[name] = version
		}
	}

	var changes []entities.DependencyChange
	for _, name := range addedOrder {
		newVersion := added[name]
		currentVersion, wasPresent := removed[name]
		if wasPresent && currentVersion == newVersion {
			continue // context noise, not a change
		}

		kind := entities.UpdateKindVersion
		if !wasPresent {
			kind = entities.UpdateKindReplacement
		} else if digestPattern.MatchString(newVersion) {
			kind = entities.UpdateKindDigest
		}

		changes = append(changes, entities.DependencyChange{
			Name:           name,
			CurrentVersion: currentVersion,
			NewVersion:     newVersion,
			Ecosystem:      strategy.Ecosystem,
			UpdateKind:     kind,
			SourceFile:     file.Path,
			Scope:          scopeOf(name),
		})
	}

	return changes
}

func captureLine(strategy EcosystemStrategy, marker byte, content string) (string, string, bool) {
	if strategy.ParseLine != nil {
		return strategy.ParseLine(content)
	}
	pattern := strategy.RemovedPattern
	if marker == '+' {
		pattern = strategy.AddedPattern
	}
	match := pattern.FindStringSubmatch(content)
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}

// extractFromTitle recovers a single triple from a Dependabot-style title
// when no file-level extraction succeeded.
func extractFromTitle(title string) []entities.DependencyChange {
	match := titleBumpPattern.FindStringSubmatch(title)
	if match == nil {
		return nil
	}
	return []entities.DependencyChange{{
		Name:           match[1],
		CurrentVersion: match[2],
		NewVersion:     match[3],
		Ecosystem:      entities.EcosystemUnknown,
		UpdateKind:     entities.UpdateKindVersion,
		Scope:          scopeOf(match[1]),
	}}
}

// detectBotAuthorship recognizes automated updates from the author name,
// the branch naming of the known bots (global plus per-ecosystem), or the
// commit-message conventions the ecosystems use.
func (e *ContextExtractor) detectBotAuthorship(meta entities.PullRequestMetadata) bool {
	if botAuthorPattern.MatchString(meta.Author) {
		return true
	}
	for _, prefix := range e.botBranchPrefixes() {
		if strings.HasPrefix(meta.BranchName, prefix) {
			return true
		}
	}
	return e.hasBotCommitConvention(meta.Commits)
}

func (e *ContextExtractor) botBranchPrefixes() []string {
	prefixes := append([]string(nil), botBranchPrefixes...)
	for _, strategy := range e.strategies {
		prefixes = append(prefixes, strategy.BranchPrefixes...)
	}
	return prefixes
}

// hasBotCommitConvention reports whether any commit message follows one of
// the per-ecosystem update conventions or the Dependabot bump phrasing.
func (e *ContextExtractor) hasBotCommitConvention(commits []entities.Commit) bool {
	for _, commit := range commits {
		if titleBumpPattern.MatchString(commit.Message) {
			return true
		}
		for _, strategy := range e.strategies {
			for _, prefix := range strategy.CommitPrefixes {
				if strings.HasPrefix(commit.Message, prefix) {
					return true
				}
			}
		}
	}
	return false
}

// detectGroupedUpdate reports whether this PR bundles multiple independent
// dependency changes: a group-style title or commit message, a
// monorepo-style "X and Y" title, or multiple unrelated manifests touched.
func detectGroupedUpdate(
	meta entities.PullRequestMetadata,
	dependencies []entities.DependencyChange,
) bool {
	if groupTitlePattern.MatchString(meta.Title) || strings.Contains(meta.BranchName, "group") {
		return true
	}
	for _, commit := range meta.Commits {
		if groupTitlePattern.MatchString(commit.Message) {
			return true
		}
	}
	if len(dependencies) < 2 {
		return false
	}
	if strings.Contains(strings.ToLower(meta.Title), " and ") {
		return true
	}

	manifests := map[string]struct{}{}
	for _, dep := range dependencies {
		manifests[dep.SourceFile] = struct{}{}
	}
	return len(manifests) > 1
}

func dominantEcosystem(dependencies []entities.DependencyChange) string {
	if len(dependencies) == 0 {
		return entities.EcosystemUnknown
	}
	first := dependencies[0].Ecosystem
	for _, dep := range dependencies[1:] {
		if dep.Ecosystem != first {
			return entities.EcosystemMixed
		}
	}
	return first
}

func extractSeverity(text string) entities.Severity {
	match := severityPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	word := match[1]
	if word == "" {
		word = match[2]
	}
	switch strings.ToLower(word) {
	case "critical":
		return entities.SeverityCritical
	case "high":
		return entities.SeverityHigh
	case "moderate", "medium":
		return entities.SeverityMedium
	default:
		return entities.SeverityLow
	}
}

func looksDependencyShaped(path string) bool {
	base := strings.ToLower(path[strings.LastIndex(path, "/")+1:])
	for _, hint := range []string{"lock", "deps", "requirements", "versions", "manifest"} {
		if strings.Contains(base, hint) {
			return true
		}
	}
	return false
}

func fallbackName(path string) string {
	base := path[strings.LastIndex(path, "/")+1:]
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

func scopeOf(name string) string {
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx > 0 {
			return name[:idx]
		}
	}
	return ""
}
