package clustering

import (
	"math"
	"reflect"
	"testing"
)

// testDist is a 4-point distance matrix with two tight pairs: {0,1} at
// distance 1 and {2,3} at distance 2, with everything else farther apart.
func testDist() [][]float64 {
	return [][]float64{
		{0, 1, 5, 6},
		{1, 0, 4, 7},
		{5, 4, 0, 2},
		{6, 7, 2, 0},
	}
}

func TestAverageLinkageMergeOrder(t *testing.T) {
	dend, err := AverageLinkage(testDist())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	want := []Merge{
		{Left: 0, Right: 1, Distance: 1, Size: 2},
		{Left: 2, Right: 3, Distance: 2, Size: 2},
		{Left: 4, Right: 5, Distance: 5.5, Size: 4},
	}
	if !reflect.DeepEqual(dend.Merges(), want) {
		t.Errorf("unexpected merges: got %v, want %v", dend.Merges(), want)
	}
	if dend.MaxHeight() != 5.5 {
		t.Errorf("expected max height 5.5, got %v", dend.MaxHeight())
	}
}

func TestDendrogramLeafOrder(t *testing.T) {
	dend, err := AverageLinkage(testDist())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := dend.LeafOrder(); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Errorf("unexpected leaf order: %v", got)
	}
}

func TestDendrogramCut(t *testing.T) {
	dend, err := AverageLinkage(testDist())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got := dend.Cut(0.7 * dend.MaxHeight()); !reflect.DeepEqual(got, []int{1, 1, 2, 2}) {
		t.Errorf("expected two clusters, got %v", got)
	}
	if got := dend.Cut(0.5); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("expected singletons, got %v", got)
	}
	if got := dend.Cut(10); !reflect.DeepEqual(got, []int{1, 1, 1, 1}) {
		t.Errorf("expected one cluster, got %v", got)
	}
}

func TestAverageLinkageDeterminism(t *testing.T) {
	a, err := AverageLinkage(testDist())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	b, err := AverageLinkage(testDist())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !reflect.DeepEqual(a.Merges(), b.Merges()) {
		t.Errorf("merge lists differ between identical runs")
	}
	if !reflect.DeepEqual(a.Cut(3), b.Cut(3)) {
		t.Errorf("cut labels differ between identical runs")
	}
}

func TestAverageLinkageNotSquare(t *testing.T) {
	_, err := AverageLinkage([][]float64{{0, 1}, {1}})
	if err == nil {
		t.Errorf("expected an error for a ragged distance matrix")
	}
}

func TestCorrelationDistance(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{2, 4, 6, 8}
	if d := CorrelationDistance(a, b); math.Abs(d) > 1e-12 {
		t.Errorf("expected zero distance for perfectly correlated vectors, got %v", d)
	}
	c := []float64{4, 3, 2, 1}
	if d := CorrelationDistance(a, c); math.Abs(d-2) > 1e-12 {
		t.Errorf("expected distance 2 for anti-correlated vectors, got %v", d)
	}
	constant := []float64{1, 1, 1, 1}
	if d := CorrelationDistance(a, constant); !math.IsNaN(d) {
		t.Errorf("expected NaN for a constant vector, got %v", d)
	}
}
