package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clinaid/medassist/internal/application/services"
	"github.com/clinaid/medassist/internal/evaluation"
	"github.com/clinaid/medassist/pkg/config"
)

// Replays the golden clinical cases through the deterministic safety
// pipeline and fails the process when the regression gate is violated.
// No provider calls are made; model output is canned in the case file.
func main() {
	casesPath := flag.String("cases", "config/golden_cases.json", "path to the golden case file")
	minPassRate := flag.Float64("min-pass-rate", 0.9, "minimum fraction of cases that must pass")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rules, err := services.LoadDrugSafetyRules(cfg.Safety.RulesPath)
	if err != nil {
		log.Fatalf("Failed to load drug safety rules: %v", err)
	}
	safety := services.NewSafetyService(cfg.Safety.EmergencyKeywordList(), rules)

	cases, err := evaluation.LoadGoldenCases(*casesPath)
	if err != nil {
		log.Fatalf("Failed to load golden cases: %v", err)
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		log.Fatalf("Invalid golden cases: %v", err)
	}

	runner := evaluation.NewRunner(safety)
	summary := runner.Run(cases)

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinPassRate:   *minPassRate,
		MinFlagRecall: 1.0,
	})
	if violations := guardrails.Violations(summary); len(violations) > 0 {
		for _, v := range violations {
			log.Printf("Regression gate: %s", v)
		}
		os.Exit(1)
	}
}
