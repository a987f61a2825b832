package services

import (
	"regexp"
	"strings"

	"github.com/clinaid/medassist/internal/domain/entities"
)

// Section headers of the output contract. The compiler instructs the model
// to emit these and the extractor keys off them.
const (
	headerMajorInteractions    = "MAJOR INTERACTIONS"
	headerModerateInteractions = "MODERATE INTERACTIONS"
	headerMinorInteractions    = "MINOR INTERACTIONS"
	headerDifferential         = "DIFFERENTIAL DIAGNOSES (ranked by likelihood)"
	headerTreatmentOptions     = "TREATMENT OPTIONS"
	headerNextSteps            = "RECOMMENDED NEXT STEPS"
	headerRedFlags             = "RED FLAGS"
	headerMonitoring           = "MONITORING"
	headerAssessment           = "ASSESSMENT"
)

type section int

const (
	sectionNone section = iota
	sectionMajor
	sectionModerate
	sectionMinor
	sectionDiagnoses
	sectionRecommendations
	sectionRedFlags
	sectionMonitoring
	sectionAssessment
)

// sectionPrefixes maps upper-cased header prefixes to sections. Matching
// is by prefix so that decorations after the header (counts, colons) do
// not break recognition. Longer prefixes are checked first.
var sectionPrefixes = []struct {
	prefix string
	sec    section
}{
	{"MODERATE INTERACTIONS", sectionModerate},
	{"MAJOR INTERACTIONS", sectionMajor},
	{"MINOR INTERACTIONS", sectionMinor},
	{"DIFFERENTIAL DIAGNOSES", sectionDiagnoses},
	{"TREATMENT OPTIONS", sectionRecommendations},
	{"RECOMMENDED NEXT STEPS", sectionRecommendations},
	{"RED FLAGS", sectionRedFlags},
	{"MONITORING", sectionMonitoring},
	{"ASSESSMENT", sectionAssessment},
}

var (
	bulletPrefix   = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	likelihoodTag  = regexp.MustCompile(`(?i)\(\s*likelihood:\s*(high|medium|low)\s*\)`)
	evidenceTag    = regexp.MustCompile(`(?i)\[\s*evidence:\s*([^\]]+)\]`)
	headerTrimSet  = "#*: \t"
	nonFindingText = map[string]struct{}{
		"none identified": {}, "none": {}, "n/a": {}, "not applicable": {},
	}
)

// ResponseExtractor parses the provider's free-text answer into typed
// findings. It is a tolerant line scanner over a section state machine:
// missing or reordered sections degrade to empty lists, lines outside any
// recognized section are ignored, and no input ever causes an error.
type ResponseExtractor struct{}

// NewResponseExtractor creates a new extractor.
func NewResponseExtractor() *ResponseExtractor {
	return &ResponseExtractor{}
}

// Extract scans the text top to bottom and returns a well-formed, possibly
// all-empty finding set. It never fails: partial structure is preferred
// over raising because the upstream text is not guaranteed well-formed.
func (e *ResponseExtractor) Extract(text string, kind entities.RequestKind) *entities.FindingSet {
	findings := &entities.FindingSet{}
	current := sectionNone
	diagnosisRank := 0

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if sec, ok := matchHeader(line); ok {
			current = sec
			continue
		}

		item := bulletPrefix.ReplaceAllString(line, "")
		item = strings.TrimSpace(item)
		if item == "" || isNonFinding(item) {
			continue
		}

		switch current {
		case sectionMajor:
			appendInteraction(findings, item, entities.SeverityMajor)
		case sectionModerate:
			appendInteraction(findings, item, entities.SeverityModerate)
		case sectionMinor:
			appendInteraction(findings, item, entities.SeverityMinor)
		case sectionDiagnoses:
			diagnosisRank++
			findings.Diagnoses = append(findings.Diagnoses, parseDiagnosis(item, diagnosisRank))
		case sectionRecommendations, sectionAssessment:
			findings.Recommendations = append(findings.Recommendations, parseRecommendation(item))
		case sectionRedFlags:
			findings.RedFlags = append(findings.RedFlags, item)
		case sectionMonitoring:
			findings.Monitoring = append(findings.Monitoring, item)
		}
	}

	return findings
}

// matchHeader reports whether the line is a known section header,
// case-insensitively and tolerant of markdown decoration.
func matchHeader(line string) (section, bool) {
	candidate := strings.ToUpper(strings.Trim(line, headerTrimSet))
	for _, entry := range sectionPrefixes {
		if strings.HasPrefix(candidate, entry.prefix) {
			return entry.sec, true
		}
	}
	return sectionNone, false
}

// appendInteraction parses an "A + B" line. A line with no recognizable
// delimiter is dropped silently.
func appendInteraction(findings *entities.FindingSet, item string, severity entities.Severity) {
	// Trailing description after ":" or "--" is informational only.
	if idx := strings.Index(item, ":"); idx > 0 {
		item = item[:idx]
	}
	if idx := strings.Index(item, "--"); idx > 0 {
		item = item[:idx]
	}

	parts := strings.SplitN(item, "+", 2)
	if len(parts) != 2 {
		return
	}
	drugA := strings.TrimSpace(parts[0])
	drugB := strings.TrimSpace(parts[1])
	if drugA == "" || drugB == "" {
		return
	}

	findings.Interactions = append(findings.Interactions, entities.Interaction{
		DrugA:    drugA,
		DrugB:    drugB,
		Severity: severity,
	})
}

// parseDiagnosis reads an explicit likelihood tag when present, otherwise
// derives likelihood from rank: first HIGH, second and third MEDIUM, rest
// LOW.
func parseDiagnosis(item string, rank int) entities.DiagnosisOption {
	likelihood := likelihoodFromRank(rank)
	if m := likelihoodTag.FindStringSubmatch(item); m != nil {
		likelihood = entities.Likelihood(strings.ToUpper(m[1]))
		item = strings.TrimSpace(likelihoodTag.ReplaceAllString(item, ""))
	}

	label := item
	var features []string
	if idx := strings.Index(item, "--"); idx >= 0 {
		label = strings.TrimSpace(item[:idx])
		for _, f := range strings.Split(item[idx+2:], ";") {
			if f = strings.TrimSpace(f); f != "" {
				features = append(features, f)
			}
		}
	}
	if label == "" {
		label = item
	}

	return entities.DiagnosisOption{
		Label:              label,
		Likelihood:         likelihood,
		SupportingFeatures: features,
	}
}

func parseRecommendation(item string) entities.RecommendationOption {
	rec := entities.RecommendationOption{Text: item}
	if m := evidenceTag.FindStringSubmatch(item); m != nil {
		rec.EvidenceLevel = strings.TrimSpace(m[1])
		rec.Text = strings.TrimSpace(evidenceTag.ReplaceAllString(item, ""))
	}
	return rec
}

func likelihoodFromRank(rank int) entities.Likelihood {
	switch {
	case rank <= 1:
		return entities.LikelihoodHigh
	case rank <= 3:
		return entities.LikelihoodMedium
	default:
		return entities.LikelihoodLow
	}
}

func isNonFinding(item string) bool {
	_, ok := nonFindingText[strings.ToLower(strings.TrimSuffix(item, "."))]
	return ok
}
