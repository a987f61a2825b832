package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clinaid/medassist/internal/domain/entities"
)

func TestLoadGoldenCases_ValidFile(t *testing.T) {
	content := `[
		{"id": "c1", "kind": "drug_interaction", "text": "check these drugs", "medications": ["warfarin", "aspirin"], "model_response": "", "expected_risk": "CRITICAL", "expected_flags": ["KNOWN_DANGEROUS_COMBINATION"], "difficulty": "easy"},
		{"id": "c2", "kind": "chat", "text": "mild seasonal allergies", "model_response": "", "expected_risk": "LOW", "difficulty": "easy"}
	]`
	path := writeTempFile(t, content)

	cases, err := LoadGoldenCases(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].ID != "c1" {
		t.Errorf("expected id c1, got %s", cases[0].ID)
	}
	if cases[0].Kind != entities.RequestKindDrugList {
		t.Errorf("expected kind drug_interaction, got %s", cases[0].Kind)
	}
	if len(cases[0].ExpectedFlags) != 1 || cases[0].ExpectedFlags[0] != entities.TriggerDangerousCombination {
		t.Errorf("expected dangerous combination flag, got %v", cases[0].ExpectedFlags)
	}
	if cases[1].ExpectedRisk != entities.RiskLevelLow {
		t.Errorf("expected risk LOW, got %s", cases[1].ExpectedRisk)
	}
}

func TestLoadGoldenCases_InvalidFile(t *testing.T) {
	_, err := LoadGoldenCases("/nonexistent/path.json")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadGoldenCases_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `not valid json`)
	_, err := LoadGoldenCases(path)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadGoldenCases_EmptyArray(t *testing.T) {
	path := writeTempFile(t, `[]`)
	cases, err := LoadGoldenCases(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 0 {
		t.Errorf("expected 0 cases, got %d", len(cases))
	}
}

func TestValidateGoldenCases_MissingID(t *testing.T) {
	cases := []GoldenCase{
		{ID: "", Kind: entities.RequestKindChat, Text: "test", ExpectedRisk: entities.RiskLevelLow, Difficulty: "easy"},
	}
	if err := ValidateGoldenCases(cases); err == nil {
		t.Error("expected validation error for missing ID")
	}
}

func TestValidateGoldenCases_MissingText(t *testing.T) {
	cases := []GoldenCase{
		{ID: "c1", Kind: entities.RequestKindChat, Text: "", ExpectedRisk: entities.RiskLevelLow, Difficulty: "easy"},
	}
	if err := ValidateGoldenCases(cases); err == nil {
		t.Error("expected validation error for missing text")
	}
}

func TestValidateGoldenCases_InvalidKind(t *testing.T) {
	cases := []GoldenCase{
		{ID: "c1", Kind: entities.RequestKind("bad"), Text: "test", ExpectedRisk: entities.RiskLevelLow, Difficulty: "easy"},
	}
	if err := ValidateGoldenCases(cases); err == nil {
		t.Error("expected validation error for invalid kind")
	}
}

func TestValidateGoldenCases_InvalidRisk(t *testing.T) {
	cases := []GoldenCase{
		{ID: "c1", Kind: entities.RequestKindChat, Text: "test", ExpectedRisk: entities.RiskLevel("SEVERE"), Difficulty: "easy"},
	}
	if err := ValidateGoldenCases(cases); err == nil {
		t.Error("expected validation error for invalid risk level")
	}
}

func TestValidateGoldenCases_UnknownTrigger(t *testing.T) {
	cases := []GoldenCase{
		{
			ID:            "c1",
			Kind:          entities.RequestKindChat,
			Text:          "test",
			ExpectedRisk:  entities.RiskLevelLow,
			ExpectedFlags: []entities.SafetyTrigger{"MYSTERY_TRIGGER"},
			Difficulty:    "easy",
		},
	}
	if err := ValidateGoldenCases(cases); err == nil {
		t.Error("expected validation error for unknown trigger")
	}
}

func TestValidateGoldenCases_InvalidDifficulty(t *testing.T) {
	cases := []GoldenCase{
		{ID: "c1", Kind: entities.RequestKindChat, Text: "test", ExpectedRisk: entities.RiskLevelLow, Difficulty: "impossible"},
	}
	if err := ValidateGoldenCases(cases); err == nil {
		t.Error("expected validation error for invalid difficulty")
	}
}

func TestValidateGoldenCases_DuplicateIDs(t *testing.T) {
	cases := []GoldenCase{
		{ID: "c1", Kind: entities.RequestKindChat, Text: "one", ExpectedRisk: entities.RiskLevelLow, Difficulty: "easy"},
		{ID: "c1", Kind: entities.RequestKindChat, Text: "two", ExpectedRisk: entities.RiskLevelLow, Difficulty: "easy"},
	}
	if err := ValidateGoldenCases(cases); err == nil {
		t.Error("expected validation error for duplicate IDs")
	}
}

func TestValidateGoldenCases_Valid(t *testing.T) {
	cases := []GoldenCase{
		{ID: "c1", Kind: entities.RequestKindDrugList, Text: "check", Medications: []string{"warfarin", "aspirin"}, ExpectedRisk: entities.RiskLevelCritical, ExpectedFlags: []entities.SafetyTrigger{entities.TriggerDangerousCombination}, Difficulty: "easy"},
		{ID: "c2", Kind: entities.RequestKindSymptomSet, Text: "fatigue and weight gain", ExpectedRisk: entities.RiskLevelModerate, Difficulty: "medium"},
	}
	if err := ValidateGoldenCases(cases); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
