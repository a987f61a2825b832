package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinaid/medassist/internal/domain/entities"
)

func findingsWith(major, moderate, minor int) *entities.FindingSet {
	findings := &entities.FindingSet{}
	for i := 0; i < major; i++ {
		findings.Interactions = append(findings.Interactions, entities.Interaction{Severity: entities.SeverityMajor})
	}
	for i := 0; i < moderate; i++ {
		findings.Interactions = append(findings.Interactions, entities.Interaction{Severity: entities.SeverityModerate})
	}
	for i := 0; i < minor; i++ {
		findings.Interactions = append(findings.Interactions, entities.Interaction{Severity: entities.SeverityMinor})
	}
	return findings
}

func TestAggregate_Precedence(t *testing.T) {
	agg := NewRiskAggregator()

	tests := []struct {
		name     string
		findings *entities.FindingSet
		flags    []entities.SafetyFlag
		want     entities.RiskLevel
		urgency  entities.UrgencyLevel
	}{
		{"empty is low", &entities.FindingSet{}, nil, entities.RiskLevelLow, entities.UrgencyRoutine},
		{"minor only is low", findingsWith(0, 0, 3), nil, entities.RiskLevelLow, entities.UrgencyRoutine},
		{"one moderate", findingsWith(0, 1, 0), nil, entities.RiskLevelModerate, entities.UrgencyRoutine},
		{"two moderate", findingsWith(0, 2, 0), nil, entities.RiskLevelModerate, entities.UrgencyRoutine},
		{"three moderate", findingsWith(0, 3, 0), nil, entities.RiskLevelHigh, entities.UrgencyUrgent},
		{"one major beats moderates", findingsWith(1, 3, 0), nil, entities.RiskLevelCritical, entities.UrgencyEmergency},
		{"flag alone is critical", &entities.FindingSet{}, []entities.SafetyFlag{{TriggeredBy: entities.TriggerDangerousCombination}}, entities.RiskLevelCritical, entities.UrgencyEmergency},
		{"flag beats everything", findingsWith(0, 1, 2), []entities.SafetyFlag{{TriggeredBy: entities.TriggerInputKeyword}}, entities.RiskLevelCritical, entities.UrgencyEmergency},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := agg.Aggregate(tc.findings, tc.flags)
			assert.Equal(t, tc.want, got.RiskLevel)
			assert.Equal(t, tc.urgency, got.UrgencyLevel)
			assert.Equal(t, got.RiskLevel == entities.RiskLevelCritical, got.RequiresImmediateAttention)
		})
	}
}

// Walks every combination of 0-3 major, moderate and minor interactions
// and checks the level against the precedence rules directly.
func TestAggregate_SeverityCountGrid(t *testing.T) {
	agg := NewRiskAggregator()

	for major := 0; major <= 3; major++ {
		for moderate := 0; moderate <= 3; moderate++ {
			for minor := 0; minor <= 3; minor++ {
				got := agg.Aggregate(findingsWith(major, moderate, minor), nil)

				var want entities.RiskLevel
				switch {
				case major > 0:
					want = entities.RiskLevelCritical
				case moderate > 2:
					want = entities.RiskLevelHigh
				case moderate >= 1:
					want = entities.RiskLevelModerate
				default:
					want = entities.RiskLevelLow
				}

				assert.Equalf(t, want, got.RiskLevel,
					"major=%d moderate=%d minor=%d", major, moderate, minor)
			}
		}
	}
}

func TestAggregate_HighLikelihoodDiagnosisIsCritical(t *testing.T) {
	agg := NewRiskAggregator()
	findings := &entities.FindingSet{
		Diagnoses: []entities.DiagnosisOption{{Label: "ACS", Likelihood: entities.LikelihoodHigh}},
	}

	got := agg.Aggregate(findings, nil)

	assert.Equal(t, entities.RiskLevelCritical, got.RiskLevel)
	assert.True(t, got.RequiresImmediateAttention)
}

func TestAggregate_MediumLikelihoodCountsAsModerate(t *testing.T) {
	agg := NewRiskAggregator()
	findings := &entities.FindingSet{
		Diagnoses: []entities.DiagnosisOption{
			{Likelihood: entities.LikelihoodMedium},
			{Likelihood: entities.LikelihoodMedium},
		},
		Interactions: []entities.Interaction{{Severity: entities.SeverityModerate}},
	}

	got := agg.Aggregate(findings, nil)

	// 2 medium diagnoses + 1 moderate interaction crosses the >2 bar.
	assert.Equal(t, entities.RiskLevelHigh, got.RiskLevel)
}

func TestAggregate_Confidence(t *testing.T) {
	agg := NewRiskAggregator()

	assert.Equal(t, entities.ConfidenceLow, agg.Aggregate(&entities.FindingSet{}, nil).ConfidenceLevel)
	assert.Equal(t, entities.ConfidenceMedium, agg.Aggregate(findingsWith(0, 1, 0), nil).ConfidenceLevel)
	assert.Equal(t, entities.ConfidenceHigh, agg.Aggregate(findingsWith(0, 0, 5), nil).ConfidenceLevel)
}

func TestAggregate_FlagBumpsEmptySetConfidence(t *testing.T) {
	agg := NewRiskAggregator()
	flags := []entities.SafetyFlag{{TriggeredBy: entities.TriggerDangerousCombination}}

	got := agg.Aggregate(&entities.FindingSet{}, flags)

	assert.Equal(t, entities.ConfidenceHigh, got.ConfidenceLevel)
}
