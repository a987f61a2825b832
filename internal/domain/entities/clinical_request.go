package entities

import (
	"strings"

	apperrors "github.com/clinaid/medassist/pkg/errors"
)

// RequestKind identifies which clinical task a request asks for.
type RequestKind string

const (
	RequestKindChat         RequestKind = "chat"
	RequestKindDrugList     RequestKind = "drug_interaction"
	RequestKindSymptomSet   RequestKind = "differential"
	RequestKindScenario     RequestKind = "treatment"
)

// IsValid checks if the kind is one of the defined constants.
func (k RequestKind) IsValid() bool {
	switch k {
	case RequestKindChat, RequestKindDrugList, RequestKindSymptomSet, RequestKindScenario:
		return true
	}
	return false
}

// maxRequestTextLen bounds the free-text core field.
const maxRequestTextLen = 8000

// PatientProfile carries optional demographics attached to a request.
type PatientProfile struct {
	AgeYears int     `json:"age_years,omitempty"`
	Gender   string  `json:"gender,omitempty"`
	WeightKg float64 `json:"weight_kg,omitempty"`
}

// ClinicalRequest is the immutable input bundle for one pipeline run.
// The caller owns it and passes it by value into the pipeline.
type ClinicalRequest struct {
	Kind           RequestKind     `json:"kind"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Text           string          `json:"text"`
	Patient        *PatientProfile `json:"patient,omitempty"`

	Urgency   string `json:"urgency,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Setting   string `json:"setting,omitempty"`

	Medications   []string `json:"medications,omitempty"`
	Symptoms      []string `json:"symptoms,omitempty"`
	LabResults    []string `json:"lab_results,omitempty"`
	Comorbidities []string `json:"comorbidities,omitempty"`
}

// Validate checks the request invariants and normalizes list fields in
// place: entries are trimmed, deduplicated and empty entries dropped.
func (r *ClinicalRequest) Validate() error {
	if !r.Kind.IsValid() {
		return apperrors.NewValidationError("unknown request kind: " + string(r.Kind))
	}

	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return apperrors.NewValidationError("request text is required")
	}
	if len([]rune(r.Text)) > maxRequestTextLen {
		return apperrors.NewValidationError("request text exceeds maximum length")
	}

	r.Medications = normalizeList(r.Medications)
	r.Symptoms = normalizeList(r.Symptoms)
	r.LabResults = normalizeList(r.LabResults)
	r.Comorbidities = normalizeList(r.Comorbidities)

	if r.Kind == RequestKindDrugList && len(r.Medications) == 0 {
		return apperrors.NewValidationError("drug interaction requests require at least one medication")
	}

	return nil
}

// normalizeList trims entries, drops empties and removes case-insensitive
// duplicates while preserving first-seen order.
func normalizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
