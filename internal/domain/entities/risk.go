package entities

// RiskLevel summarizes the overall severity of a result.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelModerate RiskLevel = "MODERATE"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// UrgencyLevel summarizes the time-sensitivity of a result.
type UrgencyLevel string

const (
	UrgencyRoutine   UrgencyLevel = "ROUTINE"
	UrgencyUrgent    UrgencyLevel = "URGENT"
	UrgencyEmergency UrgencyLevel = "EMERGENCY"
)

// ConfidenceLevel summarizes how trustworthy the structured result is.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "LOW"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceHigh   ConfidenceLevel = "HIGH"
)

// RiskAssessment is derived fresh on every pipeline run from the current
// finding set and safety flags. It is never partially updated.
type RiskAssessment struct {
	RiskLevel                  RiskLevel       `json:"risk_level"`
	UrgencyLevel               UrgencyLevel    `json:"urgency_level"`
	ConfidenceLevel            ConfidenceLevel `json:"confidence_level"`
	RequiresImmediateAttention bool            `json:"requires_immediate_attention"`
}

// SafetyTrigger identifies which deterministic check produced a flag.
type SafetyTrigger string

const (
	TriggerInputKeyword         SafetyTrigger = "INPUT_KEYWORD"
	TriggerDangerousCombination SafetyTrigger = "KNOWN_DANGEROUS_COMBINATION"
)

// SafetyFlag is a deterministic, non-model-derived signal produced before
// any provider call. Its presence forces the risk level to CRITICAL
// regardless of model output.
type SafetyFlag struct {
	TriggeredBy SafetyTrigger `json:"triggered_by"`
	Detail      string        `json:"detail"`
}
