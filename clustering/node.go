package clustering

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Node represents a data point.
// An implementation of Node must implement the following functions.
type Node interface {
	// Values returns the feature values of the caller.
	Values() []float64
	// ID returns the ID of a node.
	ID() uint64
}

// nodes represent a set of data points.
type nodes []Node

// Len returns the # of data points in the set.
func (ns nodes) Len() int {
	return len(ns)
}

// Values is needed for using the "github.com/biogo/cluster/kmeans" library.
func (ns nodes) Values(i int) []float64 {
	return ns[i].Values()
}

// Metric computes the distance between two feature vectors.
type Metric func(a, b []float64) float64

// Euclidean computes the euclidean distance between two vectors.
// Vectors of mismatched dimension have no meaningful distance and get NaN.
func Euclidean(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CorrelationDistance computes 1 minus the Pearson correlation of two
// vectors. Constant vectors have undefined correlation and produce NaN,
// which is left to propagate.
func CorrelationDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.NaN()
	}
	return 1 - stat.Correlation(a, b, nil)
}

// DistanceMatrix computes the full pairwise distance matrix between the
// rows of vecs under the given metric. The result is symmetric with a zero
// diagonal.
func DistanceMatrix(vecs [][]float64, metric Metric) [][]float64 {
	d := make([][]float64, len(vecs))
	for i := range d {
		d[i] = make([]float64, len(vecs))
	}
	for i := range vecs {
		for j := i + 1; j < len(vecs); j++ {
			v := metric(vecs[i], vecs[j])
			d[i][j] = v
			d[j][i] = v
		}
	}
	return d
}
