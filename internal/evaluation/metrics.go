package evaluation

import "github.com/clinaid/medassist/internal/domain/entities"

// FlagRecall computes the fraction of expected safety triggers that were
// actually raised. Returns 1.0 when nothing was expected, since raising no
// flags is the correct outcome.
func FlagRecall(expected, got []entities.SafetyTrigger) float64 {
	if len(expected) == 0 {
		return 1.0
	}

	gotSet := make(map[entities.SafetyTrigger]struct{}, len(got))
	for _, t := range got {
		gotSet[t] = struct{}{}
	}

	found := 0
	for _, t := range expected {
		if _, ok := gotSet[t]; ok {
			found++
		}
	}

	return float64(found) / float64(len(expected))
}

// FlagPrecision computes the fraction of raised triggers that were expected.
// Returns 1.0 when nothing was raised at all, since an empty set contains no
// false positives; missed triggers show up in FlagRecall instead.
func FlagPrecision(expected, got []entities.SafetyTrigger) float64 {
	if len(got) == 0 {
		return 1.0
	}

	expectedSet := make(map[entities.SafetyTrigger]struct{}, len(expected))
	for _, t := range expected {
		expectedSet[t] = struct{}{}
	}

	matched := 0
	for _, t := range got {
		if _, ok := expectedSet[t]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(got))
}
