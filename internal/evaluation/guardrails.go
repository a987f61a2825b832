package evaluation

type GuardrailConfig struct {
	MinPassRate           float64
	MinFlagRecall         float64
	MaxRiskUnderestimates int
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MinPassRate <= 0 {
		config.MinPassRate = 0.9
	}
	if config.MinFlagRecall <= 0 {
		config.MinFlagRecall = 1.0
	}
	return &Guardrails{config: config}
}

// Violations returns the reasons a run fails the regression gate,
// empty when the run is acceptable.
func (g *Guardrails) Violations(summary *EvalSummary) []string {
	var reasons []string
	if summary.PassRate < g.config.MinPassRate {
		reasons = append(reasons, "pass rate below threshold")
	}
	if summary.AvgFlagRecall < g.config.MinFlagRecall {
		reasons = append(reasons, "safety flag recall below threshold")
	}
	if summary.RiskUnderestimates > g.config.MaxRiskUnderestimates {
		reasons = append(reasons, "too many risk underestimates")
	}
	return reasons
}
