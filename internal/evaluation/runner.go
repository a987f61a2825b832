package evaluation

import (
	"time"

	"github.com/clinaid/medassist/internal/application/services"
	"github.com/clinaid/medassist/internal/domain/entities"
)

// Runner replays golden cases through the deterministic part of the
// analysis pipeline: safety checks on the input, extraction of the canned
// model response, and risk aggregation over both.
type Runner struct {
	safety     *services.SafetyService
	extractor  *services.ResponseExtractor
	aggregator *services.RiskAggregator
}

func NewRunner(safety *services.SafetyService) *Runner {
	return &Runner{
		safety:     safety,
		extractor:  services.NewResponseExtractor(),
		aggregator: services.NewRiskAggregator(),
	}
}

func (r *Runner) Run(cases []GoldenCase) *EvalSummary {
	summary := &EvalSummary{
		TotalCases: len(cases),
		ByKind:     make(map[entities.RequestKind]*KindSummary),
	}

	for _, gc := range cases {
		result := r.evaluate(gc)
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary
}

func (r *Runner) evaluate(gc GoldenCase) CaseResult {
	start := time.Now()

	var flags []entities.SafetyFlag
	if flag := r.safety.CheckEmergency(gc.Text); flag != nil {
		flags = append(flags, *flag)
	}
	flags = append(flags, r.safety.CheckMedications(gc.Medications)...)

	findings := r.extractor.Extract(gc.ModelResponse, gc.Kind)
	assessment := r.aggregator.Aggregate(findings, flags)

	gotTriggers := make([]entities.SafetyTrigger, 0, len(flags))
	for _, f := range flags {
		gotTriggers = append(gotTriggers, f.TriggeredBy)
	}

	recall := FlagRecall(gc.ExpectedFlags, gotTriggers)
	precision := FlagPrecision(gc.ExpectedFlags, gotTriggers)

	passed := assessment.RiskLevel == gc.ExpectedRisk && recall == 1.0
	if gc.ExpectedUrgency != "" && assessment.UrgencyLevel != gc.ExpectedUrgency {
		passed = false
	}

	return CaseResult{
		CaseID:             gc.ID,
		Kind:               gc.Kind,
		Passed:             passed,
		GotRisk:            assessment.RiskLevel,
		GotUrgency:         assessment.UrgencyLevel,
		GotFlags:           gotTriggers,
		UnderestimatedRisk: RiskBelow(assessment.RiskLevel, gc.ExpectedRisk),
		FlagRecall:         recall,
		FlagPrecision:      precision,
		Latency:            time.Since(start),
	}
}

func (r *Runner) updateSummary(s *EvalSummary, res CaseResult) {
	s.AvgFlagRecall += res.FlagRecall
	s.AvgFlagPrecision += res.FlagPrecision
	s.AvgLatency += res.Latency
	if res.Passed {
		s.Passed++
	} else {
		s.Failures = append(s.Failures, res)
	}
	if res.UnderestimatedRisk {
		s.RiskUnderestimates++
	}

	if _, ok := s.ByKind[res.Kind]; !ok {
		s.ByKind[res.Kind] = &KindSummary{}
	}
	ks := s.ByKind[res.Kind]
	ks.Count++
	if res.Passed {
		ks.Passed++
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalCases > 0 {
		n := float64(s.TotalCases)
		s.PassRate = float64(s.Passed) / n
		s.AvgFlagRecall /= n
		s.AvgFlagPrecision /= n
		s.AvgLatency /= time.Duration(s.TotalCases)
	}

	for _, ks := range s.ByKind {
		if ks.Count > 0 {
			ks.PassRate = float64(ks.Passed) / float64(ks.Count)
		}
	}
}
