package entities

import "time"

// CompiledPrompt is the fully composed instruction for one generation call
// plus the provider parameters it must be sent with. Created once per
// pipeline run, never mutated, discarded after the call.
type CompiledPrompt struct {
	Text            string
	Temperature     float64
	MaxOutputTokens int
	SafetyThreshold string
}

// ProviderResponse is the raw text returned by a backend plus provenance.
// Read-only once received.
type ProviderResponse struct {
	Text          string
	Provider      string
	Model         string
	Elapsed       time.Duration
	TokenEstimate int
}
