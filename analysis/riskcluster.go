package analysis

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/cooperlab/survivalnet/clustering"
)

// cutFraction is where the sample and feature trees are cut to produce
// flat clusters, as a fraction of the largest merge height.
const cutFraction = 0.7

// Track pairs significant feature symbols with their raw values, ordered
// for rendering: one row per symbol, one column per sample in dendrogram
// leaf order.
type Track struct {
	Symbols []string
	Values  *mat.Dense
}

// RenderSpec is everything an external renderer needs to draw the
// clustered heatmap: the doubly reordered matrix, the two leaf orders and
// trees, and the significant mutation and copy-number annotation tracks.
type RenderSpec struct {
	// Heatmap holds the z-scored gradient submatrix, rows = features and
	// columns = samples, both in dendrogram leaf order.
	Heatmap      *mat.Dense
	SampleOrder  []int
	FeatureOrder []int
	SampleTree   *clustering.Dendrogram
	FeatureTree  *clustering.Dendrogram
	Mutations    Track
	CNVs         Track
}

// RiskCluster clusters samples and features by their risk gradients and
// tests the sample clusters for genomic associations.
//
// The top n features by absolute mean gradient are z-scored and clustered
// (samples and features separately) under correlation distance with
// average linkage; sample labels come from cutting the sample tree at
// cutFraction of its height. Association testing always sees the full raw
// matrix and symbol list regardless of n. Returns the render spec and the
// per-sample cluster labels.
func RiskCluster(gradients, raw *mat.Dense, symbols []string, n int, tau float64) (*RenderSpec, []int, error) {
	ns, p := gradients.Dims()
	if rn, rp := raw.Dims(); rn != ns || rp != len(symbols) {
		return nil, nil, errors.Errorf("raw matrix is %dx%d against %d gradient samples and %d symbols", rn, rp, ns, len(symbols))
	}
	if ns < 2 {
		return nil, nil, errors.Errorf("clustering requires at least 2 samples, have %d", ns)
	}
	if n <= 0 {
		return nil, nil, errors.Errorf("feature count must be positive, got %d", n)
	}
	if n > p {
		n = p
	}

	selected := topGradientFeatures(gradients, n)
	normalized := zscoreColumns(gradients, selected)

	// Cluster samples over the selected features.
	sampleVecs := make([][]float64, ns)
	for i := range sampleVecs {
		sampleVecs[i] = normalized.RawRowView(i)
	}
	sampleTree, err := clustering.AverageLinkage(clustering.DistanceMatrix(sampleVecs, clustering.CorrelationDistance))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "clustering samples")
	}
	labels := sampleTree.Cut(cutFraction * sampleTree.MaxHeight())

	// Cluster the selected features over the samples; used only for the
	// visual row ordering, never for labels.
	featureVecs := make([][]float64, n)
	for f := 0; f < n; f++ {
		col := make([]float64, ns)
		mat.Col(col, f, normalized)
		featureVecs[f] = col
	}
	featureTree, err := clustering.AverageLinkage(clustering.DistanceMatrix(featureVecs, clustering.CorrelationDistance))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "clustering features")
	}

	significant := ClusterAssociations(raw, symbols, labels, tau)

	spec := &RenderSpec{
		SampleOrder:  sampleTree.LeafOrder(),
		FeatureOrder: featureTree.LeafOrder(),
		SampleTree:   sampleTree,
		FeatureTree:  featureTree,
	}
	spec.Heatmap = mat.NewDense(n, ns, nil)
	for f, srcF := range spec.FeatureOrder {
		for s, srcS := range spec.SampleOrder {
			spec.Heatmap.Set(f, s, normalized.At(srcS, srcF))
		}
	}
	spec.Mutations = buildTrack(raw, symbols, significant, Mutation, spec.SampleOrder)
	spec.CNVs = buildTrack(raw, symbols, significant, CopyNumber, spec.SampleOrder)

	return spec, labels, nil
}

// topGradientFeatures ranks feature columns by the absolute value of their
// mean gradient, descending, and returns the first n indices. The sort is
// stable so tied magnitudes keep their original column order.
func topGradientFeatures(gradients *mat.Dense, n int) []int {
	ns, p := gradients.Dims()
	score := make([]float64, p)
	for f := 0; f < p; f++ {
		var sum float64
		for s := 0; s < ns; s++ {
			sum += gradients.At(s, f)
		}
		score[f] = math.Abs(sum / float64(ns))
	}
	order := make([]int, p)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return score[order[i]] > score[order[j]] })
	return order[:n]
}

// zscoreColumns extracts the selected columns and normalizes each to zero
// mean and unit (population) variance across samples. A constant column
// has zero variance and becomes NaN, which is left to propagate the way
// the distance computations expect.
func zscoreColumns(gradients *mat.Dense, selected []int) *mat.Dense {
	ns, _ := gradients.Dims()
	out := mat.NewDense(ns, len(selected), nil)
	col := make([]float64, ns)
	for dst, src := range selected {
		mat.Col(col, src, gradients)
		var mean float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(ns)
		var variance float64
		for _, v := range col {
			variance += (v - mean) * (v - mean)
		}
		std := math.Sqrt(variance / float64(ns))
		for s, v := range col {
			out.Set(s, dst, (v-mean)/std)
		}
	}
	return out
}

// buildTrack extracts the raw values of the significant symbols of one
// feature type, rows in ascending feature order and columns in sample
// leaf order.
func buildTrack(raw *mat.Dense, symbols, significant []string, t FeatureType, sampleOrder []int) Track {
	sig := make(map[string]bool, len(significant))
	for _, s := range significant {
		if ClassifySymbol(s) == t {
			sig[s] = true
		}
	}
	var indices []int
	var names []string
	for f, s := range symbols {
		if sig[s] {
			indices = append(indices, f)
			names = append(names, s)
		}
	}
	track := Track{Symbols: names}
	if len(indices) == 0 {
		return track
	}
	track.Values = mat.NewDense(len(indices), len(sampleOrder), nil)
	for r, f := range indices {
		for c, s := range sampleOrder {
			track.Values.Set(r, c, raw.At(s, f))
		}
	}
	return track
}
