// Package stats implements the hypothesis tests used by the cluster
// association pipeline.
package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare performs a chi-square goodness-of-fit test of the observed
// counts against the expected counts. The two slices are flattened views of
// the same table and must have equal length. ddof reduces the degrees of
// freedom below len(observed)-1.
//
// Degenerate expected counts are not special-cased: a zero expected count
// with a matching zero observed count yields a NaN statistic, and a NaN
// statistic yields a NaN p-value. Callers comparing p < tau then see the
// comparison fail, which is the desired outcome for vacuous tables.
func ChiSquare(observed, expected []float64, ddof int) (stat, p float64) {
	if len(observed) != len(expected) {
		return nan, nan
	}
	for i := range observed {
		d := observed[i] - expected[i]
		stat += d * d / expected[i]
	}
	df := len(observed) - 1 - ddof
	if df <= 0 {
		return stat, nan
	}
	return stat, chiSquaredSurvival(stat, float64(df))
}

func chiSquaredSurvival(x, df float64) float64 {
	if x != x {
		return nan
	}
	dist := distuv.ChiSquared{K: df}
	return dist.Survival(x)
}
