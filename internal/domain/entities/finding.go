package entities

// Severity classifies a drug interaction finding. Buckets are disjoint:
// every interaction belongs to exactly one.
type Severity string

const (
	SeverityMajor    Severity = "MAJOR"
	SeverityModerate Severity = "MODERATE"
	SeverityMinor    Severity = "MINOR"
)

// Likelihood classifies a differential diagnosis option.
type Likelihood string

const (
	LikelihoodHigh   Likelihood = "HIGH"
	LikelihoodMedium Likelihood = "MEDIUM"
	LikelihoodLow    Likelihood = "LOW"
)

// Interaction is one drug pair recovered from model output.
type Interaction struct {
	DrugA    string   `json:"drug_a"`
	DrugB    string   `json:"drug_b"`
	Severity Severity `json:"severity"`
}

// DiagnosisOption is one ranked differential diagnosis.
type DiagnosisOption struct {
	Label              string     `json:"label"`
	Likelihood         Likelihood `json:"likelihood"`
	SupportingFeatures []string   `json:"supporting_features,omitempty"`
}

// RecommendationOption is one treatment or next-step recommendation.
type RecommendationOption struct {
	Text          string `json:"text"`
	EvidenceLevel string `json:"evidence_level,omitempty"`
}

// FindingSet holds everything the extractor recovered from one provider
// response. A missing or unparseable section degrades to an empty slice,
// never to an error.
type FindingSet struct {
	Interactions    []Interaction          `json:"interactions,omitempty"`
	Diagnoses       []DiagnosisOption      `json:"diagnoses,omitempty"`
	Recommendations []RecommendationOption `json:"recommendations,omitempty"`
	RedFlags        []string               `json:"red_flags,omitempty"`
	Monitoring      []string               `json:"monitoring,omitempty"`
}

// Empty reports whether no findings of any category were extracted.
func (f *FindingSet) Empty() bool {
	return len(f.Interactions) == 0 &&
		len(f.Diagnoses) == 0 &&
		len(f.Recommendations) == 0 &&
		len(f.RedFlags) == 0 &&
		len(f.Monitoring) == 0
}

// Total returns the number of findings across all categories.
func (f *FindingSet) Total() int {
	return len(f.Interactions) + len(f.Diagnoses) + len(f.Recommendations) +
		len(f.RedFlags) + len(f.Monitoring)
}

// CountBySeverity returns how many interactions fall into the given bucket.
func (f *FindingSet) CountBySeverity(s Severity) int {
	n := 0
	for _, i := range f.Interactions {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// CountByLikelihood returns how many diagnoses fall into the given bucket.
func (f *FindingSet) CountByLikelihood(l Likelihood) int {
	n := 0
	for _, d := range f.Diagnoses {
		if d.Likelihood == l {
			n++
		}
	}
	return n
}
