package services

import (
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// EcosystemStrategy declares how dependency triples are recovered for one
// ecosystem. Strategies are data consumed by a single generic evaluator in
// the extractor; adding an ecosystem means adding a table entry, not a
// branch.
type EcosystemStrategy struct {
	Ecosystem      string
	FileMarkers    []string // path suffix or substring matches
	BranchPrefixes []string
	CommitPrefixes []string

	// RemovedPattern and AddedPattern capture (name, version) from one
	// patch line with its -/+ marker already stripped.
	RemovedPattern *regexp.Regexp
	AddedPattern   *regexp.Regexp

	// ParseLine, when set, replaces the regex pair for formats that need
	// real parsing (terraform uses HCL fragments).
	ParseLine func(line string) (name, version string, ok bool)
}

// MatchesFile reports whether the strategy owns the given changed file.
func (s EcosystemStrategy) MatchesFile(path string) bool {
	base := path[strings.LastIndex(path, "/")+1:]
	for _, marker := range s.FileMarkers {
		if strings.HasSuffix(marker, "/") {
			if strings.Contains(path, marker) {
				return true
			}
			continue
		}
		if strings.HasPrefix(marker, "*.") {
			if strings.HasSuffix(base, marker[1:]) {
				return true
			}
			continue
		}
		if base == marker || strings.HasPrefix(base, marker) {
			return true
		}
	}
	return false
}

// builtinStrategies is the default strategy table, in match order.
var builtinStrategies = []EcosystemStrategy{
	{
		Ecosystem:      entities.EcosystemNpm,
		FileMarkers:    []string{"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml"},
		BranchPrefixes: []string{"dependabot/npm_and_yarn/", "renovate/npm-"},
		CommitPrefixes: []string{"chore(deps):", "build(deps):", "build(deps-dev):"},
		RemovedPattern: regexp.MustCompile(`"(@?[\w./-]+)":\s*"([~^=]?v?\d[\w.+-]*)"`),
		AddedPattern:   regexp.MustCompile(`"(@?[\w./-]+)":\s*"([~^=]?v?\d[\w.+-]*)"`),
	},
	{
		Ecosystem:      entities.EcosystemGoMod,
		FileMarkers:    []string{"go.mod", "go.sum"},
		BranchPrefixes: []string{"dependabot/go_modules/", "renovate/go-"},
		CommitPrefixes: []string{"chore(deps):", "build(deps):"},
		RemovedPattern: regexp.MustCompile(`^\s*([\w./-]+(?:/v\d+)?)\s+v([\w.+-]+)`),
		AddedPattern:   regexp.MustCompile(`^\s*([\w./-]+(?:/v\d+)?)\s+v([\w.+-]+)`),
	},
	{
		Ecosystem:      entities.EcosystemDocker,
		FileMarkers:    []string{"Dockerfile", "*.Dockerfile", "docker-compose.yml", "docker-compose.yaml"},
		BranchPrefixes: []string{"dependabot/docker/", "renovate/docker-"},
		CommitPrefixes: []string{"chore(deps):", "build(deps):"},
		RemovedPattern: regexp.MustCompile(`(?i)^(?:FROM|\s*image:)\s+([\w./-]+):([\w.@-]+)`),
		AddedPattern:   regexp.MustCompile(`(?i)^(?:FROM|\s*image:)\s+([\w./-]+):([\w.@-]+)`),
	},
	{
		Ecosystem:      entities.EcosystemGitHubActions,
		FileMarkers:    []string{".github/workflows/", "action.yml", "action.yaml"},
		BranchPrefixes: []string{"dependabot/github_actions/", "renovate/github-actions-"},
		CommitPrefixes: []string{"ci(deps):", "chore(deps):"},
		RemovedPattern: regexp.MustCompile(`uses:\s*([\w./-]+)@([\w.-]+)`),
		AddedPattern:   regexp.MustCompile(`uses:\s*([\w./-]+)@([\w.-]+)`),
	},
	{
		Ecosystem:      entities.EcosystemTerraform,
		FileMarkers:    []string{"*.tf", ".terraform.lock.hcl"},
		BranchPrefixes: []string{"dependabot/terraform/", "chore/upgrade-"},
		CommitPrefixes: []string{"chore(deps):"},
		ParseLine:      parseTerraformLine,
	},
	{
		Ecosystem:      entities.EcosystemPip,
		FileMarkers:    []string{"requirements.txt", "requirements-dev.txt", "Pipfile.lock"},
		BranchPrefixes: []string{"dependabot/pip/", "chore/upgrade-python"},
		CommitPrefixes: []string{"chore(deps):"},
		RemovedPattern: regexp.MustCompile(`^\s*([\w.-]+)\s*[=~!<>]=+\s*([\w.+-]+)`),
		AddedPattern:   regexp.MustCompile(`^\s*([\w.-]+)\s*[=~!<>]=+\s*([\w.+-]+)`),
	},
}

// terraform refs like "?ref=v1.2.3" in module sources.
var terraformRefPattern = regexp.MustCompile(`\?ref=v?([\w.-]+)`)

// parseTerraformLine extracts (name, version) from a single added/removed
// Terraform line. Proper attribute lines are parsed as an HCL fragment so
// quoting and expressions are handled like terraform would; module source
// refs fall back to the ?ref= convention.
func parseTerraformLine(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)

	if match := terraformRefPattern.FindStringSubmatch(trimmed); match != nil {
		return terraformSourceName(trimmed), match[1], true
	}

	if !strings.Contains(trimmed, "version") || !strings.Contains(trimmed, "=") {
		return "", "", false
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(trimmed), "patch-fragment.tf")
	if diags.HasErrors() || file.Body == nil {
		return "", "", false
	}

	attrs, attrDiags := file.Body.JustAttributes()
	if attrDiags.HasErrors() {
		return "", "", false
	}

	versionAttr, ok := attrs["version"]
	if !ok {
		return "", "", false
	}

	value, valueDiags := versionAttr.Expr.Value(&hcl.EvalContext{})
	if valueDiags.HasErrors() || value.Type() != cty.String {
		return "", "", false
	}

	// A bare version attribute carries no name; the extractor keys it by
	// source file instead.
	return "", strings.TrimLeft(value.AsString(), "~>=! "), true
}

func terraformSourceName(line string) string {
	match := regexp.MustCompile(`"([^"?]+)\?ref=`).FindStringSubmatch(line)
	if match == nil {
		return ""
	}
	source := match[1]
	return source[strings.LastIndex(source, "/")+1:]
}
