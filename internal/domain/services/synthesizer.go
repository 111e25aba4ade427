package services

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// defaultSummaryTemplate renders one human-readable line per dependency.
const defaultSummaryTemplate = `{{if .Emoji}}{{.Emoji}} {{end}}` +
	`{{if .From}}update {{.Name}} from {{.From}} to {{.To}}` +
	`{{else}}update {{.Name}} to {{.To}}{{end}}` +
	`{{if .Breaking}} (BREAKING){{end}}` +
	`{{if .Security}} [security{{if .Severity}}: {{.Severity}}{{end}}]{{end}}`

var categoryEmoji = map[entities.Category]string{
	entities.CategorySecurity: "\U0001F512", // lock
	entities.CategoryBreaking: "⚠️",
	entities.CategoryGrouped:  "\U0001F4E6", // package
	entities.CategoryRoutine:  "⬆️",
}

type summaryData struct {
	Emoji    string
	Name     string
	From     string
	To       string
	Breaking bool
	Security bool
	Severity entities.Severity
}

// Synthesizer renders the human summary and the structured changeset
// records. Template failures never abort the pipeline: rendering falls
// back to a minimal plain-text line and continues. Output is deterministic
// given identical inputs; the only time-dependent field is the explicit
// timestamp, and only when configured.
type Synthesizer struct {
	settings *entities.Settings
	now      func() time.Time
	tmpl     *template.Template
}

// NewSynthesizer creates a synthesizer with the default summary template.
func NewSynthesizer(settings *entities.Settings) *Synthesizer {
	tmpl, err := template.New("summary").Parse(defaultSummaryTemplate)
	if err != nil {
		// Fall back to plain text rendering; never fatal.
		logger.Warnf("Summary template failed to parse, using plain fallback: %v", err)
		tmpl = nil
	}
	return &Synthesizer{
		settings: settings,
		now:      time.Now,
		tmpl:     tmpl,
	}
}

// WithClock replaces the timestamp source. Intended for tests.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// BuildRecords renders the changeset record(s) for one decision, honoring
// the workspace splitting strategy: one combined record, or one record per
// affected package.
func (s *Synthesizer) BuildRecords(
	prCtx entities.PRContext,
	aggregate entities.AggregateImpact,
	categorization entities.CategorizationResult,
	analysis entities.WorkspaceAnalysis,
	decision entities.BumpDecision,
) []entities.ChangesetRecord {
	packages := analysis.AffectedPackages
	if len(packages) == 0 {
		packages = []string{s.settings.Repository.Name}
	}

	body := s.renderBody(prCtx, aggregate, categorization)
	metadata := s.buildMetadata(categorization, decision)

	if analysis.ChangesetStrategy == entities.StrategyPerPackage {
		records := make([]entities.ChangesetRecord, 0, len(packages))
		for _, pkg := range packages {
			records = append(records, entities.ChangesetRecord{
				Header:   map[string]entities.BumpType{pkg: decision.BumpType},
				Body:     body,
				Metadata: metadata,
			})
		}
		return records
	}

	header := make(map[string]entities.BumpType, len(packages))
	for _, pkg := range packages {
		header[pkg] = decision.BumpType
	}
	return []entities.ChangesetRecord{{Header: header, Body: body, Metadata: metadata}}
}

// CommentBody renders the audit trail posted back to the pull request:
// the summary plus the full reasoning chain and every overridden rule.
func (s *Synthesizer) CommentBody(
	prCtx entities.PRContext,
	aggregate entities.AggregateImpact,
	categorization entities.CategorizationResult,
	decision entities.BumpDecision,
) string {
	var sb strings.Builder

	sb.WriteString("## Changeset\n\n")
	sb.WriteString(fmt.Sprintf(
		"Bump type: **%s** (%s, confidence %s)\n\n",
		decision.BumpType, decision.PrimaryReason, decision.Confidence,
	))
	sb.WriteString(s.renderBody(prCtx, aggregate, categorization))

	sb.WriteString("\n### Reasoning\n\n")
	for _, step := range decision.ReasoningChain {
		sb.WriteString("- " + step + "\n")
	}
	if len(decision.OverriddenRules) > 0 {
		sb.WriteString("\n### Overridden rules\n\n")
		for _, rule := range decision.OverriddenRules {
			sb.WriteString("- " + rule + "\n")
		}
	}

	return sb.String()
}

// renderBody produces the free-text half of the record: a category
// headline followed by one summary line per dependency.
func (s *Synthesizer) renderBody(
	prCtx entities.PRContext,
	aggregate entities.AggregateImpact,
	categorization entities.CategorizationResult,
) string {
	var sb strings.Builder

	sb.WriteString(headline(prCtx, categorization))
	sb.WriteString("\n\n")

	for _, impact := range aggregate.Impacts {
		sb.WriteString("- " + s.summarize(impact, categorization.PrimaryCategory) + "\n")
	}

	return sb.String()
}

// summarize renders one dependency line, falling back to a minimal plain
// line when template execution fails.
func (s *Synthesizer) summarize(impact entities.SemverImpact, category entities.Category) string {
	dep := impact.Dependency

	data := summaryData{
		Name:     dep.Name,
		From:     dep.CurrentVersion,
		To:       dep.NewVersion,
		Breaking: impact.IsBreaking,
		Security: dep.IsSecurityUpdate,
		Severity: dep.SecuritySeverity,
	}
	if s.settings.Changeset.IncludeEmoji {
		data.Emoji = categoryEmoji[category]
	}

	if s.tmpl != nil {
		var sb strings.Builder
		if err := s.tmpl.Execute(&sb, data); err == nil {
			return sb.String()
		}
		logger.Warnf("Summary template failed for %q, using plain fallback", dep.Name)
	}

	return fmt.Sprintf("update %s from %s to %s", dep.Name, dep.CurrentVersion, dep.NewVersion)
}

func (s *Synthesizer) buildMetadata(
	categorization entities.CategorizationResult,
	decision entities.BumpDecision,
) map[string]string {
	metadata := map[string]string{
		"category":   string(categorization.PrimaryCategory),
		"confidence": string(decision.Confidence),
		"reason":     decision.PrimaryReason,
	}
	if s.settings.Changeset.IncludeTimestamp {
		metadata["generated-at"] = s.now().UTC().Format(time.RFC3339)
	}
	return metadata
}

func headline(prCtx entities.PRContext, categorization entities.CategorizationResult) string {
	count := len(prCtx.Dependencies)
	switch categorization.PrimaryCategory {
	case entities.CategorySecurity:
		return fmt.Sprintf("Security update covering %d dependency change(s).", count)
	case entities.CategoryBreaking:
		return fmt.Sprintf("Dependency update with breaking changes (%d change(s)).", count)
	case entities.CategoryGrouped:
		return fmt.Sprintf("Grouped update covering %d dependency change(s).", count)
	default:
		return fmt.Sprintf("Routine dependency maintenance (%d change(s)).", count)
	}
}
