package evaluation

import (
	"time"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// GoldenCase is a labeled clinical scenario with the risk outcome the
// deterministic pipeline must produce. ModelResponse is a canned provider
// reply replayed through the extractor, so runs never touch a live provider.
type GoldenCase struct {
	ID              string                   `json:"id"`
	Kind            entities.RequestKind     `json:"kind"`
	Text            string                   `json:"text"`
	Medications     []string                 `json:"medications"`
	ModelResponse   string                   `json:"model_response"`
	ExpectedRisk    entities.RiskLevel       `json:"expected_risk"`
	ExpectedUrgency entities.UrgencyLevel    `json:"expected_urgency"`
	ExpectedFlags   []entities.SafetyTrigger `json:"expected_flags"`
	Difficulty      string                   `json:"difficulty"` // easy, medium, hard
}

// CaseResult holds the outcome for a single golden case.
type CaseResult struct {
	CaseID             string
	Kind               entities.RequestKind
	Passed             bool
	GotRisk            entities.RiskLevel
	GotUrgency         entities.UrgencyLevel
	GotFlags           []entities.SafetyTrigger
	UnderestimatedRisk bool
	FlagRecall         float64
	FlagPrecision      float64
	Latency            time.Duration
}

// EvalSummary holds aggregate outcomes across all golden cases.
type EvalSummary struct {
	TotalCases         int
	Passed             int
	PassRate           float64
	RiskUnderestimates int // cases scored below their expected risk level
	AvgFlagRecall      float64
	AvgFlagPrecision   float64
	AvgLatency         time.Duration
	ByKind             map[entities.RequestKind]*KindSummary
	Failures           []CaseResult
}

// KindSummary holds outcomes grouped by request kind.
type KindSummary struct {
	Count    int
	Passed   int
	PassRate float64
}

var riskOrder = map[entities.RiskLevel]int{
	entities.RiskLevelLow:      0,
	entities.RiskLevelModerate: 1,
	entities.RiskLevelHigh:     2,
	entities.RiskLevelCritical: 3,
}

// RiskBelow reports whether got ranks strictly below want.
func RiskBelow(got, want entities.RiskLevel) bool {
	return riskOrder[got] < riskOrder[want]
}
