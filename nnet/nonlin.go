// Package nnet implements the feed-forward risk model trained against
// censored survival data: forward evaluation, the Cox partial-likelihood
// objective over at-risk comparison matrices, backpropagation with dropout
// and L1/L2 penalties, layer-wise denoising-autoencoder pretraining, and
// model persistence.
package nnet

import "math"

// Nonlinearity selects the activation applied at every hidden layer.
type Nonlinearity int

const (
	// Tanh is the hyperbolic tangent activation.
	Tanh Nonlinearity = iota
	// ReLU is the rectified linear activation.
	ReLU
	// Sigmoid is the logistic activation.
	Sigmoid
)

// Apply evaluates the activation at x.
func (n Nonlinearity) Apply(x float64) float64 {
	switch n {
	case ReLU:
		if x > 0 {
			return x
		}
		return 0
	case Sigmoid:
		return 1 / (1 + math.Exp(-x))
	default:
		return math.Tanh(x)
	}
}

// Deriv evaluates the activation's derivative given the activation output a.
// All three activations admit this form, which lets backpropagation reuse
// stored activations instead of pre-activation values.
func (n Nonlinearity) Deriv(a float64) float64 {
	switch n {
	case ReLU:
		if a > 0 {
			return 1
		}
		return 0
	case Sigmoid:
		return a * (1 - a)
	default:
		return 1 - a*a
	}
}

func (n Nonlinearity) String() string {
	switch n {
	case ReLU:
		return "relu"
	case Sigmoid:
		return "sigmoid"
	default:
		return "tanh"
	}
}
