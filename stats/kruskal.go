package stats

import (
	"math"
	"sort"
)

var nan = math.NaN()

// KruskalWallis performs a Kruskal-Wallis rank-sum test across the given
// groups. It accepts any number of groups with at least one value each; the
// H statistic is tie-corrected and compared against a chi-squared
// distribution with len(groups)-1 degrees of freedom.
//
// When every value is identical the tie correction drives the statistic to
// 0/0 and both returns are NaN, which downstream significance checks treat
// as not significant.
func KruskalWallis(groups ...[]float64) (h, p float64) {
	if len(groups) < 2 {
		return nan, nan
	}

	var n int
	for _, g := range groups {
		if len(g) == 0 {
			return nan, nan
		}
		n += len(g)
	}

	// Rank all observations jointly, assigning midranks to ties.
	type obs struct {
		value float64
		group int
	}
	all := make([]obs, 0, n)
	for gi, g := range groups {
		for _, v := range g {
			all = append(all, obs{value: v, group: gi})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].value < all[j].value })

	ranks := make([]float64, n)
	var tieSum float64 // sum of t^3 - t over tie runs
	for i := 0; i < n; {
		j := i
		for j < n && all[j].value == all[i].value {
			j++
		}
		mid := float64(i+j+1) / 2 // average of 1-based ranks i+1..j
		for k := i; k < j; k++ {
			ranks[k] = mid
		}
		t := float64(j - i)
		tieSum += t*t*t - t
		i = j
	}

	rankSums := make([]float64, len(groups))
	sizes := make([]float64, len(groups))
	for i, o := range all {
		rankSums[o.group] += ranks[i]
		sizes[o.group]++
	}

	fn := float64(n)
	for gi := range groups {
		h += rankSums[gi] * rankSums[gi] / sizes[gi]
	}
	h = 12/(fn*(fn+1))*h - 3*(fn+1)

	// Tie correction. All-tied data makes the divisor zero and H becomes NaN.
	h /= 1 - tieSum/(fn*fn*fn-fn)

	return h, chiSquaredSurvival(h, float64(len(groups)-1))
}
