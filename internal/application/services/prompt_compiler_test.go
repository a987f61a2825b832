package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinaid/medassist/internal/domain/entities"
)

func drugRequest() entities.ClinicalRequest {
	return entities.ClinicalRequest{
		Kind:        entities.RequestKindDrugList,
		Text:        "Check interactions for this regimen",
		Medications: []string{"warfarin", "amlodipine"},
		Urgency:     "routine",
	}
}

func TestCompile_Deterministic(t *testing.T) {
	compiler := NewPromptCompiler(6)
	history := []*entities.Message{
		{Role: entities.RoleUser, Content: "Hello"},
		{Role: entities.RoleAssistant, Content: "How can I help?"},
	}

	first := compiler.Compile(drugRequest(), history)
	second := compiler.Compile(drugRequest(), history)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Temperature, second.Temperature)
	assert.Equal(t, first.MaxOutputTokens, second.MaxOutputTokens)
}

func TestCompile_FieldOrderIsStable(t *testing.T) {
	compiler := NewPromptCompiler(6)
	req := entities.ClinicalRequest{
		Kind:          entities.RequestKindSymptomSet,
		Text:          "Progressive dyspnea over two weeks",
		Urgency:       "urgent",
		Specialty:     "cardiology",
		Setting:       "outpatient",
		Symptoms:      []string{"dyspnea", "orthopnea"},
		LabResults:    []string{"BNP 900"},
		Comorbidities: []string{"hypertension"},
	}

	text := compiler.Compile(req, nil).Text

	urgencyIdx := strings.Index(text, "Urgency:")
	specialtyIdx := strings.Index(text, "Specialty:")
	symptomsIdx := strings.Index(text, "Symptoms:")
	labsIdx := strings.Index(text, "Lab results:")

	assert.Greater(t, specialtyIdx, urgencyIdx)
	assert.Greater(t, symptomsIdx, specialtyIdx)
	assert.Greater(t, labsIdx, symptomsIdx)
}

func TestCompile_HistoryWindow(t *testing.T) {
	compiler := NewPromptCompiler(2)
	history := []*entities.Message{
		{Role: entities.RoleUser, Content: "turn one"},
		{Role: entities.RoleAssistant, Content: "turn two"},
		{Role: entities.RoleUser, Content: "turn three"},
	}

	text := compiler.Compile(drugRequest(), history).Text

	assert.NotContains(t, text, "turn one")
	assert.Contains(t, text, "Assistant: turn two")
	assert.Contains(t, text, "Clinician: turn three")

	// Window order is oldest first.
	assert.Greater(t, strings.Index(text, "turn three"), strings.Index(text, "turn two"))
}

func TestCompile_EmptyHistoryOmitsExcerpt(t *testing.T) {
	compiler := NewPromptCompiler(6)
	text := compiler.Compile(drugRequest(), nil).Text
	assert.NotContains(t, text, "Conversation so far")
}

func TestCompile_OutputContractPerKind(t *testing.T) {
	compiler := NewPromptCompiler(6)

	tests := []struct {
		kind    entities.RequestKind
		headers []string
	}{
		{entities.RequestKindDrugList, []string{headerMajorInteractions, headerModerateInteractions, headerMinorInteractions, headerMonitoring}},
		{entities.RequestKindSymptomSet, []string{headerDifferential, headerRedFlags, headerNextSteps}},
		{entities.RequestKindScenario, []string{headerTreatmentOptions, headerMonitoring, headerRedFlags}},
		{entities.RequestKindChat, []string{headerAssessment, headerNextSteps, headerRedFlags}},
	}

	for _, tc := range tests {
		req := drugRequest()
		req.Kind = tc.kind
		text := compiler.Compile(req, nil).Text
		for _, header := range tc.headers {
			assert.Contains(t, text, header, "kind %s missing header %s", tc.kind, header)
		}
	}
}

func TestCompile_TemperaturePerKind(t *testing.T) {
	compiler := NewPromptCompiler(6)

	chat := drugRequest()
	chat.Kind = entities.RequestKindChat
	assert.Equal(t, 0.6, compiler.Compile(chat, nil).Temperature)

	assert.Equal(t, 0.3, compiler.Compile(drugRequest(), nil).Temperature)
}

func TestCompile_StartsWithRolePreamble(t *testing.T) {
	compiler := NewPromptCompiler(6)
	text := compiler.Compile(drugRequest(), nil).Text
	assert.True(t, strings.HasPrefix(text, rolePreamble))
}
