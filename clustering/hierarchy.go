package clustering

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Merge records one agglomeration step. Left and Right identify the merged
// clusters: ids 0..n-1 are the original observations, and the merge at step
// i creates cluster id n+i. Size is the number of observations in the new
// cluster.
type Merge struct {
	Left     int
	Right    int
	Distance float64
	Size     int
}

// Dendrogram is the result of a hierarchical clustering of n observations:
// an ordered list of n-1 merges.
type Dendrogram struct {
	n      int
	merges []Merge
}

// Merges returns the agglomeration steps in order.
func (d *Dendrogram) Merges() []Merge {
	return d.merges
}

// Len returns the number of observations clustered.
func (d *Dendrogram) Len() int {
	return d.n
}

// MaxHeight returns the largest merge distance in the tree, or 0 for trees
// with fewer than two observations.
func (d *Dendrogram) MaxHeight() float64 {
	var max float64
	for _, m := range d.merges {
		if m.Distance > max {
			max = m.Distance
		}
	}
	return max
}

// LeafOrder returns the observation indices in dendrogram order: the root's
// left subtree is walked before the right, recursively. This is the order
// used to lay out heatmap rows and columns.
func (d *Dendrogram) LeafOrder() []int {
	if d.n == 0 {
		return nil
	}
	if d.n == 1 {
		return []int{0}
	}
	order := make([]int, 0, d.n)
	var walk func(id int)
	walk = func(id int) {
		if id < d.n {
			order = append(order, id)
			return
		}
		m := d.merges[id-d.n]
		walk(m.Left)
		walk(m.Right)
	}
	walk(d.n + len(d.merges) - 1)
	return order
}

// Cut assigns a flat cluster label in 1..K to every observation by cutting
// the tree at the given distance: merges at or below the threshold join
// their clusters. Labels are numbered by the first observation index in
// each cluster, so repeated cuts of the same tree are identical.
func (d *Dendrogram) Cut(threshold float64) []int {
	parent := make([]int, d.n)
	for i := range parent {
		parent[i] = i
	}
	var find func(i int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	// members[id] tracks the observations in each live cluster id.
	members := make(map[int][]int, 2*d.n)
	for i := 0; i < d.n; i++ {
		members[i] = []int{i}
	}
	for step, m := range d.merges {
		id := d.n + step
		members[id] = append(append([]int{}, members[m.Left]...), members[m.Right]...)
		if m.Distance <= threshold {
			a, b := find(members[m.Left][0]), find(members[m.Right][0])
			parent[b] = a
		}
	}

	labels := make([]int, d.n)
	next := 0
	roots := make(map[int]int, d.n)
	for i := 0; i < d.n; i++ {
		r := find(i)
		if _, ok := roots[r]; !ok {
			next++
			roots[r] = next
		}
		labels[i] = roots[r]
	}
	return labels
}

// AverageLinkage performs agglomerative clustering of the square distance
// matrix dist using the UPGMA rule: the distance between two clusters is
// the mean pairwise distance between their members. Ties in the minimum
// distance are broken toward the lowest cluster ids, keeping the merge
// order deterministic.
func AverageLinkage(dist [][]float64) (*Dendrogram, error) {
	n := len(dist)
	for _, row := range dist {
		if len(row) != n {
			return nil, errors.Errorf("distance matrix is not square: %d columns in a %d-row matrix", len(row), n)
		}
	}
	if n == 0 {
		return &Dendrogram{}, nil
	}

	// Working distances between live clusters, keyed by cluster id.
	d := make(map[int]map[int]float64, 2*n)
	for i := 0; i < n; i++ {
		d[i] = make(map[int]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				d[i][j] = dist[i][j]
			}
		}
	}
	size := make(map[int]int, 2*n)
	for i := 0; i < n; i++ {
		size[i] = 1
	}

	dend := &Dendrogram{n: n, merges: make([]Merge, 0, n-1)}
	for step := 0; step < n-1; step++ {
		best := math.Inf(1)
		bi, bj := -1, -1
		for i, row := range d {
			for j, v := range row {
				if j <= i {
					continue
				}
				if v < best || (v == best && (i < bi || (i == bi && j < bj))) {
					best, bi, bj = v, i, j
				}
			}
		}
		if bi < 0 {
			// Remaining distances are all NaN; merge the two lowest ids so
			// the tree still completes. NaN heights propagate to Cut.
			live := make([]int, 0, len(d))
			for i := range d {
				live = append(live, i)
			}
			sort.Ints(live)
			bi, bj = live[0], live[1]
			best = math.NaN()
		}

		id := n + step
		merged := size[bi] + size[bj]
		d[id] = make(map[int]float64, len(d))
		for k := range d {
			if k == bi || k == bj || k == id {
				continue
			}
			v := (float64(size[bi])*d[bi][k] + float64(size[bj])*d[bj][k]) / float64(merged)
			d[id][k] = v
			d[k][id] = v
		}
		for k := range d {
			delete(d[k], bi)
			delete(d[k], bj)
		}
		delete(d, bi)
		delete(d, bj)
		size[id] = merged

		dend.merges = append(dend.merges, Merge{Left: bi, Right: bj, Distance: best, Size: merged})
	}
	return dend, nil
}
