// Package tuner selects hyperparameters for the survival trainer. The
// search itself is a black box behind the Tuner interface; callers supply
// a cost function and receive a tuned parameter vector.
package tuner

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Params is one point in the hyperparameter space. NonlinSelector follows
// the driver convention: values above 0.5 select ReLU, otherwise tanh.
type Params struct {
	NLayers        int
	NHidden        int
	Dropout        float64
	NonlinSelector float64
	Lambda1        float64
	Lambda2        float64
}

// CostFunc scores a hyperparameter point; lower is better. NaN scores are
// treated as failures and ignored.
type CostFunc func(Params) float64

// Tuner searches the hyperparameter space against a cost function.
type Tuner interface {
	Tune(cost CostFunc) (Params, float64, error)
}

// Bounds delimits the search space.
type Bounds struct {
	MinLayers, MaxLayers int
	MinHidden, MaxHidden int
	MaxDropout           float64
	MaxLambda1           float64
	MaxLambda2           float64
}

// DefaultBounds covers the ranges the experiments search over.
func DefaultBounds() Bounds {
	return Bounds{
		MinLayers:  1,
		MaxLayers:  5,
		MinHidden:  10,
		MaxHidden:  500,
		MaxDropout: 0.9,
		MaxLambda1: 0.1,
		MaxLambda2: 0.1,
	}
}

// RandomSearch is a seeded uniform random search: Evals points are drawn
// from Bounds and the cheapest one wins. It is deliberately simple; the
// trainer only depends on the Tuner contract, so a better optimizer can be
// swapped in without touching the training code.
type RandomSearch struct {
	Rand   *rand.Rand
	Evals  int
	Bounds Bounds
}

// Tune implements Tuner.
func (rs *RandomSearch) Tune(cost CostFunc) (Params, float64, error) {
	if rs.Rand == nil {
		return Params{}, 0, errors.Errorf("random search requires a random source")
	}
	if rs.Evals <= 0 {
		return Params{}, 0, errors.Errorf("random search requires a positive evaluation budget")
	}

	best := Params{}
	bestCost := math.Inf(1)
	found := false
	for i := 0; i < rs.Evals; i++ {
		p := rs.sample()
		c := cost(p)
		if c != c {
			continue
		}
		if c < bestCost {
			best, bestCost = p, c
			found = true
		}
	}
	if !found {
		return Params{}, 0, errors.Errorf("all %d evaluations failed", rs.Evals)
	}
	return best, bestCost, nil
}

func (rs *RandomSearch) sample() Params {
	b := rs.Bounds
	return Params{
		NLayers:        b.MinLayers + rs.Rand.Intn(b.MaxLayers-b.MinLayers+1),
		NHidden:        b.MinHidden + rs.Rand.Intn(b.MaxHidden-b.MinHidden+1),
		Dropout:        rs.Rand.Float64() * b.MaxDropout,
		NonlinSelector: rs.Rand.Float64(),
		Lambda1:        rs.Rand.Float64() * b.MaxLambda1,
		Lambda2:        rs.Rand.Float64() * b.MaxLambda2,
	}
}
