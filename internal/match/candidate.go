package match

import (
	"sort"

	"object-mapper/internal/analyze"
)

// Candidate represents a potential source member for a target member.
type Candidate struct {
	Source *analyze.MemberInfo
	Target *analyze.MemberInfo

	// Scoring components
	NameScore  float64                 // Normalized Levenshtein similarity (0-1)
	TypeCompat TypeCompatibilityResult // Type compatibility result

	// Combined score for ranking (higher is better)
	CombinedScore float64
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every readable source member against the target
// member. Returns candidates sorted by combined score (descending).
func RankCandidates(target *analyze.MemberInfo, sources []*analyze.MemberInfo, naming Naming, conv Converter) CandidateList {
	var candidates CandidateList

	targetKeys := NameKeys(target.Name, naming)

	for _, source := range sources {
		if !source.Readable {
			continue
		}

		var nameScore float64

		for _, sk := range NameKeys(source.Name, naming) {
			for _, tk := range targetKeys {
				nameScore = max(nameScore, LevenshteinNormalized(sk, tk))
			}
		}

		typeCompat := ScoreTypeCompatibility(source.Type, target.Type, conv)

		candidates = append(candidates, Candidate{
			Source:        source,
			Target:        target,
			NameScore:     nameScore,
			TypeCompat:    typeCompat,
			CombinedScore: calculateCombinedScore(nameScore, typeCompat.Compatibility),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// calculateCombinedScore computes a combined score from name similarity and type compatibility.
// Weights:
//   - Name similarity: 60% (0.0-0.6)
//   - Type compatibility: 40% (0.0-0.4)
func calculateCombinedScore(nameScore float64, typeCompat TypeCompatibility) float64 {
	const (
		nameWeight = 0.6
		typeWeight = 0.4
	)

	var typeScore float64

	switch typeCompat {
	case TypeIdentical:
		typeScore = 1.0
	case TypeAssignable:
		typeScore = 0.9
	case TypeConvertible:
		typeScore = 0.7
	case TypeNeedsMapping:
		typeScore = 0.4
	case TypeIncompatible:
		typeScore = 0.0
	}

	return nameScore*nameWeight + typeScore*typeWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by combined score descending, then by source member name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Source.Name < c[j].Source.Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns candidates with combined score above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.CombinedScore >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Names returns the source member names of the candidates.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Source.Name
	}

	return names
}

// SuggestionThreshold is the minimum combined score for a candidate to be
// offered as a suggestion for an unmapped member.
const SuggestionThreshold = 0.55
