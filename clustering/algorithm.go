package clustering

import (
	"log"

	"github.com/biogo/cluster/kmeans"
	"github.com/pkg/errors"
)

// Algorithm is an interface for different types of clustering algorithms.
type Algorithm interface {
	Train(data []Node) []*Cluster
}

// KMeans implements Algorithm using the standard k-means clustering algorithm.
// K: # of clusters to be found
type KMeans struct {
	K int
}

// NewKMeans returns a pointer to a new KMeans struct.
func NewKMeans(k int) (*KMeans, error) {
	if k <= 0 {
		return nil, errors.Errorf("k must be larger than 0 to instantiate a KMeans struct")
	}
	return &KMeans{
		K: k,
	}, nil
}

// Train is KMeans' implementation for Algorithm.
func (km *KMeans) Train(data []Node) []*Cluster {
	trainer, err := kmeans.New(nodes(data))
	if err != nil {
		log.Printf("error instantiating kmeans object: %s", err.Error())
		return nil
	}
	trainer.Seed(km.K)
	trainer.Cluster()

	N := float64(len(data))
	var clusters []*Cluster

	for _, c := range trainer.Centers() {
		if len(c.Members()) == 0 {
			continue
		}
		members := make([]*BasicNode, len(c.Members()))
		for m, index := range c.Members() {
			members[m] = &BasicNode{
				FeatVec:  data[index].Values(),
				UniqueID: data[index].ID(),
			}
		}
		centroid := &BasicNode{
			FeatVec: c.V(),
		}
		cluster := &Cluster{
			Centroid: centroid,
			Members:  members,
			Weight:   float64(len(members)) / N,
			ID:       uint64(len(clusters)),
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// Hierarchical implements Algorithm using average-linkage agglomerative
// clustering. The tree is cut at CutFraction of its maximum merge height to
// produce flat clusters.
type Hierarchical struct {
	Metric      Metric
	CutFraction float64
}

// NewHierarchical returns a Hierarchical algorithm with the given metric
// and cut fraction. The fraction must lie in (0, 1].
func NewHierarchical(metric Metric, cutFraction float64) (*Hierarchical, error) {
	if cutFraction <= 0 || cutFraction > 1 {
		return nil, errors.Errorf("cut fraction %v outside (0, 1]", cutFraction)
	}
	return &Hierarchical{Metric: metric, CutFraction: cutFraction}, nil
}

// Train is Hierarchical's implementation for Algorithm.
func (h *Hierarchical) Train(data []Node) []*Cluster {
	vecs := make([][]float64, len(data))
	for i, n := range data {
		vecs[i] = n.Values()
	}
	dend, err := AverageLinkage(DistanceMatrix(vecs, h.Metric))
	if err != nil {
		log.Printf("error building linkage: %s", err.Error())
		return nil
	}
	labels := dend.Cut(h.CutFraction * dend.MaxHeight())

	groups := make(map[int][]*BasicNode)
	for i, l := range labels {
		groups[l] = append(groups[l], &BasicNode{
			FeatVec:  data[i].Values(),
			UniqueID: data[i].ID(),
		})
	}

	N := float64(len(data))
	clusters := make([]*Cluster, 0, len(groups))
	for l := 1; l <= len(groups); l++ {
		members := groups[l]
		clusters = append(clusters, &Cluster{
			Centroid: centroidOf(members),
			Members:  members,
			Weight:   float64(len(members)) / N,
			ID:       uint64(l - 1),
		})
	}
	return clusters
}
