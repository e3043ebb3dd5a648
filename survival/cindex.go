package survival

import "math"

// ConcordanceIndex computes the C-index of the risk scores against a risk
// set: over all pairs (i, j) where sample i's event was observed and j is
// in i's risk set, the fraction where risk[i] > risk[j]. Ties in risk score
// count as discordant. The metric depends only on the ordering of the
// scores, so any monotone rescaling of risk leaves it unchanged.
//
// Returns NaN when no pair is orderable.
func ConcordanceIndex(risk []float64, s *Set) float64 {
	var orderable, correct float64
	for i := range risk {
		if s.O[i] != 1 {
			continue
		}
		for j := range risk {
			if s.A.At(i, j) != 1 {
				continue
			}
			orderable++
			if risk[i] > risk[j] {
				correct++
			}
		}
	}
	if orderable == 0 {
		return math.NaN()
	}
	return correct / orderable
}
