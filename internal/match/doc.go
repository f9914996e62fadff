// Package match provides name normalization, Levenshtein distance calculation,
// type compatibility scoring and candidate ranking for member matching.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for matching
//   - Matcher.Find: finds the source member chain for a target member
//   - ScoreTypeCompatibility: scores type compatibility of reflected types
//   - RankCandidates: ranks potential source members for suggestions
package match
