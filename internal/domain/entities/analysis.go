package entities

import "time"

// AnalysisResult is the final structured output of one pipeline run. It is
// returned to the caller, which hands it to the persistence collaborator.
type AnalysisResult struct {
	ID             string      `json:"id" db:"id"`
	ConversationID string      `json:"conversation_id,omitempty" db:"conversation_id"`
	RequestKind    RequestKind `json:"request_kind" db:"request_kind"`

	Answer      string         `json:"answer"`
	Findings    FindingSet     `json:"findings"`
	SafetyFlags []SafetyFlag   `json:"safety_flags,omitempty"`
	Risk        RiskAssessment `json:"risk"`

	Disclaimer      string   `json:"disclaimer"`
	FollowUpPrompts []string `json:"follow_up_prompts,omitempty"`

	// Provenance of the generation call. Empty provider means no model was
	// consulted (emergency short-circuit or total provider failure).
	Provider      string `json:"provider,omitempty" db:"provider"`
	Model         string `json:"model,omitempty" db:"model"`
	TokenEstimate int    `json:"token_estimate,omitempty" db:"token_estimate"`
	ElapsedMS     int64  `json:"elapsed_ms,omitempty" db:"elapsed_ms"`
	Degraded      bool   `json:"degraded,omitempty" db:"degraded"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
