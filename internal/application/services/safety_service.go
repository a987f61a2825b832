package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// CombinationRule names one known dangerous drug pair. The rule set is
// configuration data, not a clinical knowledge base; no rules are inferred
// beyond those enumerated in the config file.
type CombinationRule struct {
	DrugA  string `json:"drug_a"`
	DrugB  string `json:"drug_b"`
	Reason string `json:"reason"`
}

// DrugSafetyRules is the deterministic medication rule set loaded once at
// startup.
type DrugSafetyRules struct {
	HighRiskSubstances    []string          `json:"high_risk_substances"`
	DangerousCombinations []CombinationRule `json:"dangerous_combinations"`
}

// LoadDrugSafetyRules reads the rule file.
func LoadDrugSafetyRules(path string) (*DrugSafetyRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read drug safety rules: %w", err)
	}
	var rules DrugSafetyRules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse drug safety rules: %w", err)
	}
	return &rules, nil
}

// SafetyService runs the two deterministic checks that do not depend on
// model output: emergency-keyword matching over the input, and known
// dangerous-combination matching over medication lists. Both are pure
// string operations over read-only configuration and cannot fail.
type SafetyService struct {
	keywords     []string
	highRisk     []string
	combinations []CombinationRule
}

// NewSafetyService builds the service from configured keywords and rules.
// All terms are lower-cased once here.
func NewSafetyService(emergencyKeywords []string, rules *DrugSafetyRules) *SafetyService {
	svc := &SafetyService{}
	for _, k := range emergencyKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			svc.keywords = append(svc.keywords, k)
		}
	}
	if rules != nil {
		for _, s := range rules.HighRiskSubstances {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				svc.highRisk = append(svc.highRisk, s)
			}
		}
		for _, c := range rules.DangerousCombinations {
			svc.combinations = append(svc.combinations, CombinationRule{
				DrugA:  strings.ToLower(strings.TrimSpace(c.DrugA)),
				DrugB:  strings.ToLower(strings.TrimSpace(c.DrugB)),
				Reason: c.Reason,
			})
		}
	}
	return svc
}

// CheckEmergency matches the configured keywords against the input by
// lower-cased substring containment. A match short-circuits the pipeline
// before any provider call.
func (s *SafetyService) CheckEmergency(text string) *entities.SafetyFlag {
	lowered := strings.ToLower(text)
	for _, keyword := range s.keywords {
		if strings.Contains(lowered, keyword) {
			return &entities.SafetyFlag{
				TriggeredBy: entities.TriggerInputKeyword,
				Detail:      fmt.Sprintf("input contains emergency keyword %q", keyword),
			}
		}
	}
	return nil
}

// CheckMedications matches high-risk substance membership and pairwise
// combination rules against the lower-cased medication names. Any hit
// forces the aggregator's severity floor to CRITICAL regardless of what
// extraction found.
func (s *SafetyService) CheckMedications(medications []string) []entities.SafetyFlag {
	if len(medications) == 0 {
		return nil
	}

	lowered := make([]string, len(medications))
	for i, m := range medications {
		lowered[i] = strings.ToLower(m)
	}

	var flags []entities.SafetyFlag

	for _, substance := range s.highRisk {
		if containsSubstance(lowered, substance) {
			flags = append(flags, entities.SafetyFlag{
				TriggeredBy: entities.TriggerDangerousCombination,
				Detail:      fmt.Sprintf("medication list contains high-risk substance %q", substance),
			})
		}
	}

	for _, rule := range s.combinations {
		if containsSubstance(lowered, rule.DrugA) && containsSubstance(lowered, rule.DrugB) {
			detail := fmt.Sprintf("known dangerous combination: %s + %s", rule.DrugA, rule.DrugB)
			if rule.Reason != "" {
				detail += " (" + rule.Reason + ")"
			}
			flags = append(flags, entities.SafetyFlag{
				TriggeredBy: entities.TriggerDangerousCombination,
				Detail:      detail,
			})
		}
	}

	return flags
}

// containsSubstance matches by substring so dose suffixes like
// "warfarin 5mg" still hit.
func containsSubstance(medications []string, substance string) bool {
	for _, m := range medications {
		if strings.Contains(m, substance) {
			return true
		}
	}
	return false
}
