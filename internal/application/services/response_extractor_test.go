package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinaid/medassist/internal/domain/entities"
)

func TestExtract_SingleInteractionAmongProse(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "MAJOR INTERACTIONS\nDrugX + DrugY\n\nThese two agents should never be co-administered without specialist review, " +
		"and patients already taking them should be counselled at the next visit."

	findings := extractor.Extract(text, entities.RequestKindDrugList)

	assert.Len(t, findings.Interactions, 1)
	assert.Equal(t, "DrugX", findings.Interactions[0].DrugA)
	assert.Equal(t, "DrugY", findings.Interactions[0].DrugB)
	assert.Equal(t, entities.SeverityMajor, findings.Interactions[0].Severity)
	assert.Equal(t, 1, findings.Total())
}

func TestExtract_EmptyInput(t *testing.T) {
	extractor := NewResponseExtractor()
	findings := extractor.Extract("", entities.RequestKindDrugList)
	assert.True(t, findings.Empty())
}

func TestExtract_NoRecognizedHeaders(t *testing.T) {
	extractor := NewResponseExtractor()
	findings := extractor.Extract("The patient should rest and hydrate.\nFollow up in one week.", entities.RequestKindChat)
	assert.True(t, findings.Empty())
}

func TestExtract_HeadersAreCaseInsensitiveAndDecorated(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "## Major Interactions:\n- warfarin + aspirin\n**moderate interactions**\n* omeprazole + clopidogrel"

	findings := extractor.Extract(text, entities.RequestKindDrugList)

	assert.Len(t, findings.Interactions, 2)
	assert.Equal(t, entities.SeverityMajor, findings.Interactions[0].Severity)
	assert.Equal(t, entities.SeverityModerate, findings.Interactions[1].Severity)
}

func TestExtract_DelimiterlessInteractionDropped(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "MAJOR INTERACTIONS\n- significant bleeding risk overall\n- warfarin + aspirin"

	findings := extractor.Extract(text, entities.RequestKindDrugList)

	assert.Len(t, findings.Interactions, 1)
	assert.Equal(t, "warfarin", findings.Interactions[0].DrugA)
}

func TestExtract_InteractionTrailingDescriptionStripped(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "MAJOR INTERACTIONS\n- warfarin + aspirin: increased bleeding risk\n- lithium + lisinopril -- reduced clearance"

	findings := extractor.Extract(text, entities.RequestKindDrugList)

	assert.Len(t, findings.Interactions, 2)
	assert.Equal(t, "aspirin", findings.Interactions[0].DrugB)
	assert.Equal(t, "lisinopril", findings.Interactions[1].DrugB)
}

func TestExtract_DiagnosisLikelihoodFromRank(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "DIFFERENTIAL DIAGNOSES (ranked by likelihood)\n1. Heart failure\n2. COPD exacerbation\n3. Pneumonia\n4. Pulmonary embolism"

	findings := extractor.Extract(text, entities.RequestKindSymptomSet)

	assert.Len(t, findings.Diagnoses, 4)
	assert.Equal(t, entities.LikelihoodHigh, findings.Diagnoses[0].Likelihood)
	assert.Equal(t, entities.LikelihoodMedium, findings.Diagnoses[1].Likelihood)
	assert.Equal(t, entities.LikelihoodMedium, findings.Diagnoses[2].Likelihood)
	assert.Equal(t, entities.LikelihoodLow, findings.Diagnoses[3].Likelihood)
}

func TestExtract_DiagnosisExplicitTagWinsOverRank(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "DIFFERENTIAL DIAGNOSES (ranked by likelihood)\n1. Anxiety (likelihood: low)\n2. Acute coronary syndrome (likelihood: high) -- troponin elevated; typical chest pain"

	findings := extractor.Extract(text, entities.RequestKindSymptomSet)

	assert.Len(t, findings.Diagnoses, 2)
	assert.Equal(t, entities.LikelihoodLow, findings.Diagnoses[0].Likelihood)
	assert.Equal(t, entities.LikelihoodHigh, findings.Diagnoses[1].Likelihood)
	assert.Equal(t, "Acute coronary syndrome", findings.Diagnoses[1].Label)
	assert.Equal(t, []string{"troponin elevated", "typical chest pain"}, findings.Diagnoses[1].SupportingFeatures)
}

func TestExtract_RecommendationEvidenceTag(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "RECOMMENDED NEXT STEPS\n- Start ACE inhibitor [evidence: grade A]\n- Repeat labs in one week"

	findings := extractor.Extract(text, entities.RequestKindSymptomSet)

	assert.Len(t, findings.Recommendations, 2)
	assert.Equal(t, "grade A", findings.Recommendations[0].EvidenceLevel)
	assert.Equal(t, "Start ACE inhibitor", findings.Recommendations[0].Text)
	assert.Empty(t, findings.Recommendations[1].EvidenceLevel)
}

func TestExtract_NonFindingLinesSkipped(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "MINOR INTERACTIONS\n- none identified\nMONITORING\n- N/A\nRED FLAGS\n- syncope"

	findings := extractor.Extract(text, entities.RequestKindDrugList)

	assert.Empty(t, findings.Interactions)
	assert.Empty(t, findings.Monitoring)
	assert.Equal(t, []string{"syncope"}, findings.RedFlags)
}

func TestExtract_LinesBeforeAnyHeaderIgnored(t *testing.T) {
	extractor := NewResponseExtractor()
	text := "Here is my assessment of the regimen.\nMONITORING\n- INR weekly"

	findings := extractor.Extract(text, entities.RequestKindDrugList)

	assert.Equal(t, []string{"INR weekly"}, findings.Monitoring)
	assert.Equal(t, 1, findings.Total())
}
