package match

import "sort"

// Candidate is a known member name scored against an unknown one.
type Candidate struct {
	Name  string
	Score float64 // Similarity, 0 to 1
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// DefaultMinScore is the minimum similarity for a name to be suggested.
const DefaultMinScore = 0.5

// RankNames scores every known name against target, best first.
func RankNames(target string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, Candidate{
			Name:  name,
			Score: Similarity(target, name),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to n known names similar enough to target.
func Suggest(target string, names []string, n int) []string {
	var result []string

	for _, c := range RankNames(target, names).AboveThreshold(DefaultMinScore).Top(n) {
		result = append(result, c.Name)
	}

	return result
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}
