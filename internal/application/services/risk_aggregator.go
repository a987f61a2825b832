package services

import (
	"github.com/clinaid/medassist/internal/domain/entities"
)

// RiskAggregator derives the overall risk classification from extracted
// findings and safety flags using fixed precedence rules. The precedence
// is total: every finding-set combination maps to exactly one bucket.
type RiskAggregator struct{}

// NewRiskAggregator creates a new aggregator.
func NewRiskAggregator() *RiskAggregator {
	return &RiskAggregator{}
}

// Aggregate applies the precedence, highest wins:
// any safety flag or any MAJOR/HIGH finding -> CRITICAL;
// else more than two MODERATE -> HIGH;
// else at least one MODERATE -> MODERATE;
// else LOW.
func (a *RiskAggregator) Aggregate(findings *entities.FindingSet, flags []entities.SafetyFlag) entities.RiskAssessment {
	top := findings.CountBySeverity(entities.SeverityMajor) + findings.CountByLikelihood(entities.LikelihoodHigh)
	moderate := findings.CountBySeverity(entities.SeverityModerate) + findings.CountByLikelihood(entities.LikelihoodMedium)

	assessment := entities.RiskAssessment{
		ConfidenceLevel: confidenceFor(findings),
	}

	switch {
	case len(flags) > 0 || top > 0:
		assessment.RiskLevel = entities.RiskLevelCritical
		assessment.UrgencyLevel = entities.UrgencyEmergency
		assessment.RequiresImmediateAttention = true
	case moderate > 2:
		assessment.RiskLevel = entities.RiskLevelHigh
		assessment.UrgencyLevel = entities.UrgencyUrgent
	case moderate >= 1:
		assessment.RiskLevel = entities.RiskLevelModerate
		assessment.UrgencyLevel = entities.UrgencyRoutine
	default:
		assessment.RiskLevel = entities.RiskLevelLow
		assessment.UrgencyLevel = entities.UrgencyRoutine
	}

	// A deterministic safety flag is trustworthy on its own even when
	// extraction came back empty.
	if len(flags) > 0 && assessment.ConfidenceLevel == entities.ConfidenceLow {
		assessment.ConfidenceLevel = entities.ConfidenceHigh
	}

	return assessment
}

// confidenceFor grades how much structure extraction recovered: nothing
// extracted means a low-confidence answer, a rich finding set a high one.
func confidenceFor(findings *entities.FindingSet) entities.ConfidenceLevel {
	switch {
	case findings.Empty():
		return entities.ConfidenceLow
	case findings.Total() >= 5:
		return entities.ConfidenceHigh
	default:
		return entities.ConfidenceMedium
	}
}
