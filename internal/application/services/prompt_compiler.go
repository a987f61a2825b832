package services

import (
	"fmt"
	"strings"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// rolePreamble is attached verbatim to every prompt.
const rolePreamble = `You are a clinical decision-support assistant for licensed healthcare professionals.
Your output is advisory reference material, never a definitive diagnosis, prescription or treatment order.
Be factual and concise. If the input is insufficient for a safe answer, say so explicitly.
Always recommend escalation to emergency services for potentially life-threatening presentations.
Respond using ONLY the sections requested at the end of this prompt, in the exact order given.`

// PromptCompiler converts a typed clinical request plus bounded
// conversation history into a single deterministic prompt string. It is a
// pure function of its inputs: identical (request, history) pairs compile
// to byte-identical prompts.
type PromptCompiler struct {
	historyWindow int
}

// NewPromptCompiler creates a compiler with the given history window. The
// window bounds how many of the most recent turns are excerpted.
func NewPromptCompiler(historyWindow int) *PromptCompiler {
	if historyWindow <= 0 {
		historyWindow = 6
	}
	return &PromptCompiler{historyWindow: historyWindow}
}

// Compile builds the prompt for one pipeline run.
func (c *PromptCompiler) Compile(req entities.ClinicalRequest, history []*entities.Message) *entities.CompiledPrompt {
	var b strings.Builder

	b.WriteString(rolePreamble)
	b.WriteString("\n\n")

	c.writeHistory(&b, history)
	c.writeRequest(&b, req)
	c.writeOutputContract(&b, req.Kind)

	return &entities.CompiledPrompt{
		Text:            b.String(),
		Temperature:     temperatureFor(req.Kind),
		MaxOutputTokens: 1024,
		SafetyThreshold: "BLOCK_ONLY_HIGH",
	}
}

// writeHistory excerpts the most recent turns, oldest first. Truncation to
// the window is the only non-identity transform in the compiler and it is
// deterministic.
func (c *PromptCompiler) writeHistory(b *strings.Builder, history []*entities.Message) {
	if len(history) == 0 {
		return
	}
	if len(history) > c.historyWindow {
		history = history[len(history)-c.historyWindow:]
	}

	b.WriteString("Conversation so far (most recent turns, oldest first):\n")
	for _, msg := range history {
		switch msg.Role {
		case entities.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("Clinician: ")
		}
		b.WriteString(strings.TrimSpace(msg.Content))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// writeRequest renders the structured fields in a stable order so that
// identical requests produce identical prompts.
func (c *PromptCompiler) writeRequest(b *strings.Builder, req entities.ClinicalRequest) {
	b.WriteString("Clinical input:\n")
	b.WriteString(strings.TrimSpace(req.Text))
	b.WriteString("\n")

	if p := req.Patient; p != nil {
		b.WriteString("Patient: ")
		parts := make([]string, 0, 3)
		if p.AgeYears > 0 {
			parts = append(parts, fmt.Sprintf("age %d", p.AgeYears))
		}
		if p.Gender != "" {
			parts = append(parts, "gender "+p.Gender)
		}
		if p.WeightKg > 0 {
			parts = append(parts, fmt.Sprintf("weight %.1f kg", p.WeightKg))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}

	writeField(b, "Urgency", req.Urgency)
	writeField(b, "Specialty", req.Specialty)
	writeField(b, "Care setting", req.Setting)
	writeList(b, "Current medications", req.Medications)
	writeList(b, "Symptoms", req.Symptoms)
	writeList(b, "Lab results", req.LabResults)
	writeList(b, "Comorbidities", req.Comorbidities)
	b.WriteString("\n")
}

// writeOutputContract names the exact section headers the model must use.
// The extractor keys off these headers; this contract is what makes
// free-text extraction tractable.
func (c *PromptCompiler) writeOutputContract(b *strings.Builder, kind entities.RequestKind) {
	b.WriteString("Structure your answer using exactly these section headers, one per line, in this order:\n")
	for _, header := range contractHeaders(kind) {
		b.WriteString(header)
		b.WriteString("\n")
	}
	b.WriteString("Under each header list one item per line prefixed with \"- \".\n")
	if kind == entities.RequestKindDrugList {
		b.WriteString("Write each interaction as \"DrugA + DrugB\". Omit nothing from the requested sections; write \"- none identified\" where a section is empty.\n")
	} else {
		b.WriteString("For diagnoses append \"(likelihood: high|medium|low)\" and supporting features after \" -- \" separated by \"; \".\n")
	}
}

func contractHeaders(kind entities.RequestKind) []string {
	switch kind {
	case entities.RequestKindDrugList:
		return []string{headerMajorInteractions, headerModerateInteractions, headerMinorInteractions, headerMonitoring}
	case entities.RequestKindSymptomSet:
		return []string{headerDifferential, headerRedFlags, headerNextSteps}
	case entities.RequestKindScenario:
		return []string{headerTreatmentOptions, headerMonitoring, headerRedFlags}
	default:
		return []string{headerAssessment, headerNextSteps, headerRedFlags}
	}
}

func temperatureFor(kind entities.RequestKind) float64 {
	if kind == entities.RequestKindChat {
		return 0.6
	}
	return 0.3
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(strings.Join(items, ", "))
	b.WriteString("\n")
}
