package services

import (
	"fmt"
	"regexp"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

var (
	cvePattern         = regexp.MustCompile(`(?i)\bCVE-\d{4}-\d{4,}\b`)
	ghsaPattern        = regexp.MustCompile(`(?i)\bGHSA-[\w-]{4,}\b`)
	advisoryURLPattern = regexp.MustCompile(
		`https?://(?:github\.com/advisories|nvd\.nist\.gov|snyk\.io/vuln|osv\.dev)\S*`,
	)
)

// SecurityDetector scores security-vulnerability signals from the PR text
// and the extracted dependency flags. Like the breaking detector it is a
// read-only overlay over upstream data.
type SecurityDetector struct{}

// NewSecurityDetector creates a security detector.
func NewSecurityDetector() *SecurityDetector {
	return &SecurityDetector{}
}

// Detect inspects PR text and per-dependency security flags.
func (d *SecurityDetector) Detect(
	prCtx entities.PRContext,
	aggregate entities.AggregateImpact,
) entities.DetectionResult {
	result := entities.DetectionResult{
		Severity:          entities.SeverityLow,
		Confidence:        entities.ConfidenceHigh,
		RecommendedAction: entities.ActionProceed,
	}

	text := prCtx.Title + "\n" + prCtx.Body

	for _, id := range cvePattern.FindAllString(text, -1) {
		result.HasIssue = true
		result.Indicators = append(result.Indicators, "references "+id)
	}
	for _, id := range ghsaPattern.FindAllString(text, -1) {
		result.HasIssue = true
		result.Indicators = append(result.Indicators, "references advisory "+id)
	}
	if url := advisoryURLPattern.FindString(text); url != "" {
		result.HasIssue = true
		result.Indicators = append(result.Indicators, "links security advisory "+url)
	}

	for _, impact := range aggregate.Impacts {
		dep := impact.Dependency
		if !dep.IsSecurityUpdate {
			continue
		}
		result.HasIssue = true
		result.Severity = entities.MaxSeverity(result.Severity, dep.SecuritySeverity)
		result.Indicators = append(result.Indicators, fmt.Sprintf(
			"%s is flagged as a security update (severity %s)", dep.Name, dep.SecuritySeverity,
		))
	}

	if prCtx.IsSecurityUpdate && !result.HasIssue {
		result.HasIssue = true
		result.Indicators = append(result.Indicators, "security wording found in PR text")
	}

	if severity := extractSeverity(text); severity != "" {
		result.Severity = entities.MaxSeverity(result.Severity, severity)
	}

	if result.HasIssue && result.Severity == entities.SeverityLow && prCtx.IsSecurityUpdate {
		// A security update with no stated severity is assumed moderate.
		result.Severity = entities.SeverityMedium
		result.Confidence = entities.ConfidenceMedium
	}

	result.RecommendedAction = actionForSeverity(result.HasIssue, result.Severity)
	return result
}
