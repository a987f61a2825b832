package evaluation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// LoadGoldenCases reads and parses a golden case set from a JSON file.
func LoadGoldenCases(path string) ([]GoldenCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden cases file: %w", err)
	}

	var cases []GoldenCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse golden cases: %w", err)
	}

	return cases, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

var validRiskLevels = map[entities.RiskLevel]bool{
	entities.RiskLevelLow:      true,
	entities.RiskLevelModerate: true,
	entities.RiskLevelHigh:     true,
	entities.RiskLevelCritical: true,
}

var validTriggers = map[entities.SafetyTrigger]bool{
	entities.TriggerInputKeyword:         true,
	entities.TriggerDangerousCombination: true,
}

// ValidateGoldenCases checks that all golden cases have required fields and valid values.
func ValidateGoldenCases(cases []GoldenCase) error {
	seen := make(map[string]struct{}, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case at index %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("case at index %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		if c.Text == "" {
			return fmt.Errorf("case %q: missing text", c.ID)
		}
		if !c.Kind.IsValid() {
			return fmt.Errorf("case %q: invalid kind %q", c.ID, c.Kind)
		}
		if !validRiskLevels[c.ExpectedRisk] {
			return fmt.Errorf("case %q: invalid expected risk %q", c.ID, c.ExpectedRisk)
		}
		for _, flag := range c.ExpectedFlags {
			if !validTriggers[flag] {
				return fmt.Errorf("case %q: unknown safety trigger %q", c.ID, flag)
			}
		}
		if !validDifficulties[c.Difficulty] {
			return fmt.Errorf("case %q: invalid difficulty %q (must be easy/medium/hard)", c.ID, c.Difficulty)
		}
	}

	return nil
}
