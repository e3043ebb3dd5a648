package analysis

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cooperlab/survivalnet/stats"
)

// kruskalMinGroups and kruskalMaxGroups bound the cluster counts the
// copy-number test is evaluated for. Other counts skip the feature rather
// than fail; widening this range needs validation against the continuous
// test's behavior on many small groups.
const (
	kruskalMinGroups = 2
	kruskalMaxGroups = 5
)

// ClusterAssociations tests every typed feature of raw for association
// with the sample cluster labels and returns the symbols with p < tau:
// mutation features first in ascending feature order, then copy-number
// features in ascending feature order.
//
// Mutation features get a chi-square test on the 2xK table of 0/1 counts
// per cluster with expectations from the marginals (one extra degree of
// freedom removed). Copy-number features get a Kruskal-Wallis test across
// the per-cluster value groups. Degenerate tables are not special-cased:
// an all-zero marginal drives the expected counts through a zero division
// and the NaN p-value fails the p < tau comparison.
func ClusterAssociations(raw *mat.Dense, symbols []string, labels []int, tau float64) []string {
	k := 0
	for _, l := range labels {
		if l > k {
			k = l
		}
	}

	var significant []string
	for f, symbol := range symbols {
		if ClassifySymbol(symbol) != Mutation {
			continue
		}
		if _, p := mutationTest(raw, f, labels, k); p < tau {
			significant = append(significant, symbol)
		}
	}
	for f, symbol := range symbols {
		if ClassifySymbol(symbol) != CopyNumber {
			continue
		}
		if k < kruskalMinGroups || k > kruskalMaxGroups {
			continue
		}
		groups := make([][]float64, k)
		for i, l := range labels {
			groups[l-1] = append(groups[l-1], raw.At(i, f))
		}
		if _, p := stats.KruskalWallis(groups...); p < tau {
			significant = append(significant, symbol)
		}
	}
	return significant
}

// mutationTest builds the 2xK contingency table of value-0 and value-1
// counts per cluster for feature f and runs the chi-square test against
// marginal expectations.
func mutationTest(raw *mat.Dense, f int, labels []int, k int) (stat, p float64) {
	observed := make([]float64, 2*k)
	for i, l := range labels {
		switch raw.At(i, f) {
		case 0:
			observed[l-1]++
		case 1:
			observed[k+l-1]++
		}
	}

	colSums := make([]float64, k) // per cluster
	rowSums := make([]float64, 2) // per value
	var total float64
	for r := 0; r < 2; r++ {
		for c := 0; c < k; c++ {
			v := observed[r*k+c]
			rowSums[r] += v
			colSums[c] += v
			total += v
		}
	}
	expected := make([]float64, 2*k)
	for r := 0; r < 2; r++ {
		for c := 0; c < k; c++ {
			expected[r*k+c] = rowSums[r] * colSums[c] / total
		}
	}
	return stats.ChiSquare(observed, expected, 1)
}
