package services

import (
	"fmt"

	"github.com/rios0rios0/changesetter/internal/domain/entities"
)

// Rule names recorded in the decision audit trail.
const (
	RuleSecurityTakesPrecedence    = "securityTakesPrecedence"
	RuleBreakingChangesAlwaysMajor = "breakingChangesAlwaysMajor"
)

// BumpEngine deterministically merges the aggregate impact, the
// categorization and the detector signals into one final bump decision.
// Every rule that changes the default is logged to OverriddenRules and the
// reasoning chain: the chain is mandatory output, it becomes the audit
// trail on the PR comment.
type BumpEngine struct {
	settings *entities.Settings
}

// NewBumpEngine creates a bump engine governed by the given rule settings.
func NewBumpEngine(settings *entities.Settings) *BumpEngine {
	return &BumpEngine{settings: settings}
}

// Decide produces the single source of truth consumed by the synthesizer.
func (e *BumpEngine) Decide(
	aggregate entities.AggregateImpact,
	categorization entities.CategorizationResult,
	breaking, security entities.DetectionResult,
) entities.BumpDecision {
	decision := entities.BumpDecision{
		BumpType:   aggregate.RecommendedChangesetType,
		Confidence: categorization.Confidence,
	}
	decision.ReasoningChain = append(decision.ReasoningChain, fmt.Sprintf(
		"default bump %s from aggregate impact %s",
		decision.BumpType, aggregate.OverallImpact,
	))

	e.applySecurityPrecedence(&decision, security)
	e.applyBreakingMajor(&decision, aggregate, breaking)

	decision.PrimaryReason = primaryReason(categorization, decision.BumpType)
	decision.ReasoningChain = append(decision.ReasoningChain,
		"final decision: "+string(decision.BumpType))

	return decision
}

// applySecurityPrecedence forces at least a minor bump for high or
// critical security findings, regardless of the version delta.
func (e *BumpEngine) applySecurityPrecedence(
	decision *entities.BumpDecision,
	security entities.DetectionResult,
) {
	if !e.settings.Rules.SecurityTakesPrecedence || !security.HasIssue {
		return
	}
	if security.Severity.Rank() < entities.SeverityHigh.Rank() {
		return
	}
	if decision.BumpType.Rank() >= entities.BumpMinor.Rank() {
		return
	}

	decision.BumpType = entities.BumpMinor
	decision.OverriddenRules = append(decision.OverriddenRules, RuleSecurityTakesPrecedence)
	decision.ReasoningChain = append(decision.ReasoningChain, fmt.Sprintf(
		"%s: %s severity security finding raised bump to minor",
		RuleSecurityTakesPrecedence, security.Severity,
	))
}

// applyBreakingMajor forces major for any breaking-change indicator,
// unless the rule is explicitly disabled.
func (e *BumpEngine) applyBreakingMajor(
	decision *entities.BumpDecision,
	aggregate entities.AggregateImpact,
	breaking entities.DetectionResult,
) {
	if !e.settings.Rules.BreakingChangesAlwaysMajor {
		return
	}
	if !aggregate.HasBreakingChanges && !breaking.HasIssue {
		return
	}
	if decision.BumpType == entities.BumpMajor {
		return
	}

	decision.BumpType = entities.BumpMajor
	decision.OverriddenRules = append(decision.OverriddenRules, RuleBreakingChangesAlwaysMajor)
	decision.ReasoningChain = append(decision.ReasoningChain,
		RuleBreakingChangesAlwaysMajor+": breaking-change indicator raised bump to major")
}

func primaryReason(categorization entities.CategorizationResult, bump entities.BumpType) string {
	switch categorization.PrimaryCategory {
	case entities.CategorySecurity:
		return "security update"
	case entities.CategoryBreaking:
		return "breaking change"
	case entities.CategoryGrouped:
		return "grouped dependency update"
	default:
		return fmt.Sprintf("routine dependency maintenance (%s)", bump)
	}
}
