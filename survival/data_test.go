package survival

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBuildRiskSetStrictOrdering(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})
	T := []float64{3, 1, 4, 1} // tie between samples 1 and 3
	O := []int{1, 1, 0, 1}

	s, err := BuildRiskSet(X, T, O)
	require.NoError(t, err)

	n := len(T)
	for i := 0; i < n; i++ {
		require.Equal(t, 0.0, s.A.At(i, i), "diagonal must be zero")
		for j := 0; j < n; j++ {
			want := 0.0
			if T[j] > T[i] {
				want = 1
			}
			require.Equal(t, want, s.A.At(i, j), "A[%d][%d]", i, j)
			if T[i] != T[j] {
				require.Equal(t, 0.0, s.A.At(i, j)*s.A.At(j, i), "A must be antisymmetric for distinct times")
			}
		}
	}
	// Tied times are excluded in both directions.
	require.Equal(t, 0.0, s.A.At(1, 3))
	require.Equal(t, 0.0, s.A.At(3, 1))
}

func TestBuildRiskSetDimensionMismatch(t *testing.T) {
	X := mat.NewDense(3, 2, nil)

	_, err := BuildRiskSet(X, []float64{1, 2}, []int{1, 0, 1})
	require.Error(t, err)

	_, err = BuildRiskSet(X, []float64{1, 2, 3}, []int{1, 0})
	require.Error(t, err)

	_, err = NewCohort(X, []float64{1, 2, 3}, []int{1})
	require.Error(t, err)
}

func TestShuffleIsSeededAndKeepsRowsPaired(t *testing.T) {
	n, p := 20, 3
	X := mat.NewDense(n, p, nil)
	T := make([]float64, n)
	O := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, float64(i*10+j))
		}
		T[i] = float64(i)
		O[i] = i % 2
	}
	cohort, err := NewCohort(X, T, O)
	require.NoError(t, err)

	a := cohort.Shuffle(rand.New(rand.NewSource(7)))
	b := cohort.Shuffle(rand.New(rand.NewSource(7)))
	require.Equal(t, a.T, b.T, "same seed must give the same permutation")
	require.True(t, mat.Equal(a.X, b.X))

	// Every row must travel with its time and flag.
	for i := 0; i < n; i++ {
		src := int(a.T[i])
		require.Equal(t, float64(src*10), a.X.At(i, 0))
		require.Equal(t, src%2, a.O[i])
	}
}

func TestSplitPartitions(t *testing.T) {
	n := 50
	X := mat.NewDense(n, 1, nil)
	T := make([]float64, n)
	O := make([]int, n)
	for i := range T {
		X.Set(i, 0, float64(i))
		T[i] = float64(i)
		O[i] = 1
	}
	cohort, err := NewCohort(X, T, O)
	require.NoError(t, err)

	train, val, test, err := cohort.Split(0.2)
	require.NoError(t, err)
	require.Equal(t, 10, test.Len())
	require.Equal(t, 10, val.Len())
	require.Equal(t, 30, train.Len())

	// Partitions are disjoint: every original sample appears exactly once.
	seen := make(map[float64]int)
	for _, part := range []*Cohort{train, val, test} {
		for _, v := range part.T {
			seen[v]++
		}
	}
	require.Len(t, seen, n)
	for _, count := range seen {
		require.Equal(t, 1, count)
	}

	_, _, _, err = cohort.Split(0.5)
	require.Error(t, err, "fold must leave training samples")
}
