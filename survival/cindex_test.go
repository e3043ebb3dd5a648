package survival

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func cindexFixture(t *testing.T) *Set {
	t.Helper()
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	T := []float64{1, 2, 3, 4}
	O := []int{1, 1, 1, 0}
	s, err := BuildRiskSet(X, T, O)
	require.NoError(t, err)
	return s
}

func TestConcordanceIndexPerfectOrdering(t *testing.T) {
	s := cindexFixture(t)

	// Earlier events get higher risk: every orderable pair is concordant.
	require.Equal(t, 1.0, ConcordanceIndex([]float64{4, 3, 2, 1}, s))
	// Reversed scores order every pair wrong.
	require.Equal(t, 0.0, ConcordanceIndex([]float64{1, 2, 3, 4}, s))
}

func TestConcordanceIndexMonotoneInvariance(t *testing.T) {
	s := cindexFixture(t)
	risk := []float64{2.5, -1, 0.25, 7}

	base := ConcordanceIndex(risk, s)
	scaled := make([]float64, len(risk))
	for i, r := range risk {
		scaled[i] = math.Exp(3*r) + 100
	}
	require.Equal(t, base, ConcordanceIndex(scaled, s))
}

func TestConcordanceIndexTiedScoresAreDiscordant(t *testing.T) {
	s := cindexFixture(t)
	require.Equal(t, 0.0, ConcordanceIndex([]float64{1, 1, 1, 1}, s))
}

func TestConcordanceIndexNoOrderablePairs(t *testing.T) {
	X := mat.NewDense(2, 1, nil)
	s, err := BuildRiskSet(X, []float64{5, 5}, []int{1, 1})
	require.NoError(t, err)
	require.True(t, math.IsNaN(ConcordanceIndex([]float64{1, 2}, s)))
}
