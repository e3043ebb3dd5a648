// Package survival holds the survival-data model: censored cohorts,
// at-risk comparison matrices, the concordance index, and the training
// loop that fits a risk network to a cohort.
package survival

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Cohort is a set of samples with time-to-event labels. X rows are
// samples, T holds event or censoring times, and O flags observed events
// (1 = death observed, 0 = censored).
type Cohort struct {
	X *mat.Dense
	T []float64
	O []int
}

// NewCohort validates that the three arrays describe the same samples.
func NewCohort(X *mat.Dense, T []float64, O []int) (*Cohort, error) {
	n, _ := X.Dims()
	if len(T) != n || len(O) != n {
		return nil, errors.Errorf("cohort dimensions disagree: %d samples, %d times, %d event flags", n, len(T), len(O))
	}
	return &Cohort{X: X, T: T, O: O}, nil
}

// Len returns the number of samples.
func (c *Cohort) Len() int {
	return len(c.T)
}

// Shuffle returns a copy of the cohort with rows permuted by the given
// random source. The source is the only randomness involved, so equal
// seeds give equal permutations.
func (c *Cohort) Shuffle(rng *rand.Rand) *Cohort {
	perm := rng.Perm(c.Len())
	_, p := c.X.Dims()
	X := mat.NewDense(c.Len(), p, nil)
	T := make([]float64, c.Len())
	O := make([]int, c.Len())
	for dst, src := range perm {
		X.SetRow(dst, c.X.RawRowView(src))
		T[dst] = c.T[src]
		O[dst] = c.O[src]
	}
	return &Cohort{X: X, T: T, O: O}
}

// Slice returns the sub-cohort of rows [lo, hi). The feature matrix is
// copied so the slice owns its data.
func (c *Cohort) Slice(lo, hi int) *Cohort {
	n := hi - lo
	_, p := c.X.Dims()
	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		X.SetRow(i, c.X.RawRowView(lo+i))
	}
	T := append([]float64{}, c.T[lo:hi]...)
	O := append([]int{}, c.O[lo:hi]...)
	return &Cohort{X: X, T: T, O: O}
}

// Split partitions a shuffled cohort the way the experiment driver does:
// the first frac of samples for testing, the next frac for validation, and
// the remainder for training. frac must leave at least one training
// sample.
func (c *Cohort) Split(frac float64) (train, val, test *Cohort, err error) {
	fold := int(frac * float64(c.Len()))
	if fold <= 0 || 2*fold >= c.Len() {
		return nil, nil, nil, errors.Errorf("fold of %d samples from fraction %v cannot split %d samples", fold, frac, c.Len())
	}
	return c.Slice(2*fold, c.Len()), c.Slice(fold, 2*fold), c.Slice(0, fold), nil
}

// Set is a cohort together with its at-risk comparison matrix.
type Set struct {
	X *mat.Dense
	T []float64
	O []int
	A *mat.Dense
}

// BuildRiskSet computes the at-risk matrix for a cohort: A[i][j] = 1 iff
// T[j] > T[i], so row i lists the samples that outlived sample i. The
// inequality is strict; tied times are excluded in both directions. No
// reordering happens here, so any shuffling must be done beforehand.
func BuildRiskSet(X *mat.Dense, T []float64, O []int) (*Set, error) {
	n, _ := X.Dims()
	if len(T) != n || len(O) != n {
		return nil, errors.Errorf("risk set dimensions disagree: %d samples, %d times, %d event flags", n, len(T), len(O))
	}
	A := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if T[j] > T[i] {
				A.Set(i, j, 1)
			}
		}
	}
	return &Set{X: X, T: T, O: O, A: A}, nil
}

// AtRisk builds the risk set for the cohort.
func (c *Cohort) AtRisk() (*Set, error) {
	return BuildRiskSet(c.X, c.T, c.O)
}
