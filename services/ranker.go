package services

import (
	"sort"
	"strings"
)

// FuzzyThreshold is the minimum acceptable top score before fallback
// queries are attempted.
const FuzzyThreshold = 0.5

// MaxFallbackQueries bounds how many relaxed queries one search request may
// send upstream.
const MaxFallbackQueries = 2

// RankedCandidate pairs an external candidate with its match score against
// the query and its computed health assessment.
type RankedCandidate struct {
	ExternalCandidate
	FuzzyScore  float64 `json:"fuzzy_score"`
	HealthScore int     `json:"health_score"`
	Category    string  `json:"health_category"`
}

// RankCandidates scores each candidate against the normalized query tokens
// and returns them sorted by score descending. The sort is stable, so ties
// keep the upstream source order.
func RankCandidates(queryTokens []string, candidates []ExternalCandidate) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedCandidate{
			ExternalCandidate: c,
			FuzzyScore:        fuzzyScore(queryTokens, c.Description),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FuzzyScore > ranked[j].FuzzyScore
	})
	return ranked
}

// TopScore returns the score of the first ranked candidate, 0 when empty.
func TopScore(ranked []RankedCandidate) float64 {
	if len(ranked) == 0 {
		return 0
	}
	return ranked[0].FuzzyScore
}

// fuzzyScore measures how well a candidate description covers the query
// tokens. Coverage is weighted by token length, then discounted when the
// description carries many unmatched extra tokens, so a concise exact match
// beats a long compound product name. Result is clamped to [0,1].
func fuzzyScore(queryTokens []string, description string) float64 {
	descTokens := descriptionTokens(description)
	if len(queryTokens) == 0 || len(descTokens) == 0 {
		return 0
	}

	totalWeight := 0
	matchedWeight := 0
	matchedDesc := make(map[int]bool, len(descTokens))

	for _, qt := range queryTokens {
		totalWeight += len(qt)
		for i, dt := range descTokens {
			if matchedDesc[i] {
				continue
			}
			if tokensMatch(qt, dt) {
				matchedWeight += len(qt)
				matchedDesc[i] = true
				break
			}
		}
	}
	if totalWeight == 0 {
		return 0
	}

	coverage := float64(matchedWeight) / float64(totalWeight)

	extra := len(descTokens) - len(matchedDesc)
	penalty := 1.0 - 0.05*float64(extra)
	if penalty < 0.6 {
		penalty = 0.6
	}

	score := coverage * penalty
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// tokensMatch accepts exact equality, or substring containment when the
// shorter token is long enough to not be noise ("chick" in "chicken").
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	shorter := a
	if len(b) < len(a) {
		shorter = b
	}
	if len(shorter) < 4 {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func descriptionTokens(description string) []string {
	fields := strings.Fields(strings.ToLower(description))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]%")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// FallbackQueries builds relaxed variants of a multi-token query by omitting
// exactly one token at a time, left to right. Single-token queries have no
// fallbacks.
func FallbackQueries(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	for i := range tokens {
		rest := make([]string, 0, len(tokens)-1)
		rest = append(rest, tokens[:i]...)
		rest = append(rest, tokens[i+1:]...)
		out = append(out, strings.Join(rest, " "))
	}
	return out
}

// DedupeByExternalID removes later duplicates of the same external id,
// preserving first occurrence. Running it on its own output is a no-op.
func DedupeByExternalID(ranked []RankedCandidate) []RankedCandidate {
	seen := make(map[string]bool, len(ranked))
	out := make([]RankedCandidate, 0, len(ranked))
	for _, c := range ranked {
		if seen[c.ExternalID] {
			continue
		}
		seen[c.ExternalID] = true
		out = append(out, c)
	}
	return out
}

// FilterImported drops candidates whose external id is already present in
// the local catalog, preserving order.
func FilterImported(ranked []RankedCandidate, imported map[string]bool) []RankedCandidate {
	out := make([]RankedCandidate, 0, len(ranked))
	for _, c := range ranked {
		if imported[c.ExternalID] {
			continue
		}
		out = append(out, c)
	}
	return out
}
