package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// riskClusterFixture builds 100 samples in two groups of 50 and 500
// features. Features 0..29 carry strong group-dependent gradients and get
// selected for clustering; feature 400 is a mutation and 401 a CNV, both
// perfectly split between the groups.
func riskClusterFixture() (gradients, raw *mat.Dense, symbols []string) {
	const n, p = 100, 500
	gradients = mat.NewDense(n, p, nil)
	raw = mat.NewDense(n, p, nil)
	symbols = make([]string, p)
	for f := 0; f < p; f++ {
		symbols[f] = fmt.Sprintf("F%d", f)
	}
	symbols[400] = "GENE400_Mut"
	symbols[401] = "GENE401_CNV"

	for s := 0; s < n; s++ {
		group2 := s >= 50
		for f := 0; f < 30; f++ {
			base := 2.0
			if f%2 == 1 {
				base = -2.0
			}
			if group2 {
				base /= 4 // same sign, smaller magnitude: groups separate after z-scoring
			}
			gradients.Set(s, f, base)
		}
		if group2 {
			raw.Set(s, 400, 1)
			raw.Set(s, 401, float64(s)+1000)
		} else {
			raw.Set(s, 401, float64(s))
		}
	}
	return gradients, raw, symbols
}

func TestRiskClusterSelectsTopFeatures(t *testing.T) {
	gradients, raw, symbols := riskClusterFixture()

	spec, labels, err := RiskCluster(gradients, raw, symbols, 30, 0.05)
	require.NoError(t, err)

	// Exactly 30 feature rows and 100 sample columns participate in the
	// clustered heatmap.
	rows, cols := spec.Heatmap.Dims()
	require.Equal(t, 30, rows)
	require.Equal(t, 100, cols)
	require.Len(t, spec.SampleOrder, 100)
	require.Len(t, spec.FeatureOrder, 30)
	require.Len(t, labels, 100)
}

func TestRiskClusterLabelsSplitGroups(t *testing.T) {
	gradients, raw, symbols := riskClusterFixture()

	_, labels, err := RiskCluster(gradients, raw, symbols, 30, 0.05)
	require.NoError(t, err)

	require.Equal(t, 1, labels[0], "labels are numbered from the first sample")
	for s := 1; s < 50; s++ {
		require.Equal(t, labels[0], labels[s])
	}
	for s := 50; s < 100; s++ {
		require.Equal(t, labels[50], labels[s])
	}
	require.NotEqual(t, labels[0], labels[50])
}

func TestRiskClusterScansAllFeaturesForAssociations(t *testing.T) {
	gradients, raw, symbols := riskClusterFixture()

	spec, _, err := RiskCluster(gradients, raw, symbols, 30, 0.05)
	require.NoError(t, err)

	// Features 400 and 401 are far outside the top 30 used for clustering
	// but the association scan sees the full matrix.
	require.Equal(t, []string{"GENE400_Mut"}, spec.Mutations.Symbols)
	require.Equal(t, []string{"GENE401_CNV"}, spec.CNVs.Symbols)

	mr, mc := spec.Mutations.Values.Dims()
	require.Equal(t, 1, mr)
	require.Equal(t, 100, mc)

	// Track columns follow the sample leaf order.
	for c, s := range spec.SampleOrder {
		require.Equal(t, raw.At(s, 400), spec.Mutations.Values.At(0, c))
	}
}

func TestRiskClusterIsDeterministic(t *testing.T) {
	gradients, raw, symbols := riskClusterFixture()

	specA, labelsA, err := RiskCluster(gradients, raw, symbols, 30, 0.05)
	require.NoError(t, err)
	specB, labelsB, err := RiskCluster(gradients, raw, symbols, 30, 0.05)
	require.NoError(t, err)

	require.Equal(t, labelsA, labelsB)
	require.Equal(t, specA.SampleOrder, specB.SampleOrder)
	require.Equal(t, specA.FeatureOrder, specB.FeatureOrder)
	require.Equal(t, specA.Mutations.Symbols, specB.Mutations.Symbols)
	require.Equal(t, specA.CNVs.Symbols, specB.CNVs.Symbols)
	require.True(t, mat.Equal(specA.Heatmap, specB.Heatmap))
}

func TestRiskClusterValidatesShapes(t *testing.T) {
	gradients := mat.NewDense(10, 5, nil)
	raw := mat.NewDense(9, 5, nil)
	symbols := []string{"a", "b", "c", "d", "e"}

	_, _, err := RiskCluster(gradients, raw, symbols, 3, 0.05)
	require.Error(t, err)

	raw = mat.NewDense(10, 4, nil)
	_, _, err = RiskCluster(gradients, raw, symbols, 3, 0.05)
	require.Error(t, err)

	raw = mat.NewDense(10, 5, nil)
	_, _, err = RiskCluster(gradients, raw, symbols, 0, 0.05)
	require.Error(t, err)
}

func TestRiskClusterClampsFeatureCount(t *testing.T) {
	gradients := mat.NewDense(6, 3, []float64{
		1, 2, 3,
		1.1, 2.2, 3.1,
		0.9, 1.8, 2.9,
		-1, -2, -3,
		-1.1, -2.2, -3.1,
		-0.9, -1.8, -2.9,
	})
	raw := mat.NewDense(6, 3, nil)
	symbols := []string{"a", "b", "c"}

	spec, labels, err := RiskCluster(gradients, raw, symbols, 50, 0.05)
	require.NoError(t, err)
	rows, _ := spec.Heatmap.Dims()
	require.Equal(t, 3, rows)
	require.Len(t, labels, 6)
}
