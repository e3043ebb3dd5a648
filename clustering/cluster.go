package clustering

import (
	"sort"
)

// Cluster represents a group of Nodes.
// Centroid is the mean position of the cluster.
// Members are the Nodes that belong to this cluster.
type Cluster struct {
	Members  []*BasicNode `json:"members"`
	Centroid *BasicNode   `json:"centroid"`
	Weight   float64      `json:"weight"`
	ID       uint64       `json:"id"`
}

// BasicNode is a struct that wraps a feature vector, which is represented as a slice of float64.
type BasicNode struct {
	UniqueID uint64    `json:"uniqueID,omitempty"`
	FeatVec  []float64 `json:"featVec,omitempty"`
}

// Values implements Node.
func (c *BasicNode) Values() []float64 {
	return c.FeatVec
}

// ID implements Node.
func (c *BasicNode) ID() uint64 {
	return c.UniqueID
}

// centroidDistance orders the members of a cluster by distance to the centroid.
type centroidDistance struct {
	centroid Node
	members  []Node
}

func (cd centroidDistance) Len() int { return len(cd.members) }
func (cd centroidDistance) Swap(i, j int) {
	cd.members[j], cd.members[i] = cd.members[i], cd.members[j]
}
func (cd centroidDistance) Less(i, j int) bool {
	return Euclidean(cd.centroid.Values(), cd.members[i].Values()) <
		Euclidean(cd.centroid.Values(), cd.members[j].Values())
}

// FindClosestMembers returns the n members closest to the centroid of the cluster.
func (c *Cluster) FindClosestMembers(n int) []Node {
	if n <= 0 {
		return nil
	}
	var members []Node
	for _, m := range c.Members {
		members = append(members, m)
	}
	cd := centroidDistance{centroid: c.Centroid, members: members}
	sort.Sort(cd)

	if n > len(cd.members) {
		return cd.members
	}
	return cd.members[:n]
}

// centroidOf computes the mean feature vector of the given members.
func centroidOf(members []*BasicNode) *BasicNode {
	if len(members) == 0 {
		return &BasicNode{}
	}
	mean := make([]float64, len(members[0].FeatVec))
	for _, m := range members {
		for i, v := range m.FeatVec {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(members))
	}
	return &BasicNode{FeatVec: mean}
}
