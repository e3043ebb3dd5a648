package nnet

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Layer is one fully connected hidden layer. W is out x in, row-major per
// output unit.
type Layer struct {
	W      [][]float64
	B      []float64
	Nonlin Nonlinearity
}

// Network is a feed-forward survival risk model: a stack of hidden layers
// followed by a single linear output unit whose value is the predicted risk
// score (the Cox linear predictor).
type Network struct {
	NIn    int
	Hidden []*Layer
	Out    []float64
}

// New creates a network with nLayers hidden layers of width nHidden over
// nIn input features. Weights are initialized uniformly on the Glorot
// interval using the supplied random source; the output unit starts at
// zero so the initial risk surface is flat.
func New(rng *rand.Rand, nIn, nLayers, nHidden int, nonlin Nonlinearity) (*Network, error) {
	if nIn <= 0 || nLayers <= 0 || nHidden <= 0 {
		return nil, errors.Errorf("invalid architecture: nIn=%d nLayers=%d nHidden=%d", nIn, nLayers, nHidden)
	}

	net := &Network{NIn: nIn}
	fanIn := nIn
	for l := 0; l < nLayers; l++ {
		limit := math.Sqrt(6 / float64(fanIn+nHidden))
		layer := &Layer{
			W:      make([][]float64, nHidden),
			B:      make([]float64, nHidden),
			Nonlin: nonlin,
		}
		for i := range layer.W {
			row := make([]float64, fanIn)
			for j := range row {
				row[j] = (2*rng.Float64() - 1) * limit
			}
			layer.W[i] = row
		}
		net.Hidden = append(net.Hidden, layer)
		fanIn = nHidden
	}
	net.Out = make([]float64, fanIn)
	return net, nil
}

// forward evaluates the network on one sample, returning the activation of
// every hidden layer. masks, when non-nil, holds an inverted-dropout mask
// per layer that is applied to the activations.
func (net *Network) forward(x []float64, masks [][]float64) [][]float64 {
	acts := make([][]float64, len(net.Hidden))
	in := x
	for l, layer := range net.Hidden {
		a := make([]float64, len(layer.W))
		for i, row := range layer.W {
			s := layer.B[i]
			for j, w := range row {
				s += w * in[j]
			}
			a[i] = layer.Nonlin.Apply(s)
		}
		if masks != nil {
			for i := range a {
				a[i] *= masks[l][i]
			}
		}
		acts[l] = a
		in = a
	}
	return acts
}

// risk computes the linear output unit over the last hidden activation.
func (net *Network) risk(acts [][]float64) float64 {
	last := acts[len(acts)-1]
	var s float64
	for i, w := range net.Out {
		s += w * last[i]
	}
	return s
}

// Risks evaluates the risk score of every row of X. Rows must have NIn
// columns.
func (net *Network) Risks(X mat.Matrix) ([]float64, error) {
	n, p := X.Dims()
	if p != net.NIn {
		return nil, errors.Errorf("input has %d features, network expects %d", p, net.NIn)
	}
	risks := make([]float64, n)
	x := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := range x {
			x[j] = X.At(i, j)
		}
		risks[i] = net.risk(net.forward(x, nil))
	}
	return risks, nil
}

// NumParams returns the total number of trainable parameters.
func (net *Network) NumParams() int {
	n := len(net.Out)
	for _, layer := range net.Hidden {
		for _, row := range layer.W {
			n += len(row)
		}
		n += len(layer.B)
	}
	return n
}

// Params returns a flattened copy of all parameters: per hidden layer the
// weight rows then the biases, followed by the output weights. SetParams
// accepts the same layout.
func (net *Network) Params() []float64 {
	params := make([]float64, 0, net.NumParams())
	for _, layer := range net.Hidden {
		for _, row := range layer.W {
			params = append(params, row...)
		}
		params = append(params, layer.B...)
	}
	return append(params, net.Out...)
}

// SetParams overwrites all parameters from the flattened layout produced by
// Params.
func (net *Network) SetParams(params []float64) error {
	if len(params) != net.NumParams() {
		return errors.Errorf("parameter vector has %d values, network has %d", len(params), net.NumParams())
	}
	k := 0
	for _, layer := range net.Hidden {
		for _, row := range layer.W {
			k += copy(row, params[k:])
		}
		k += copy(layer.B, params[k:])
	}
	copy(net.Out, params[k:])
	return nil
}

// Clone returns a deep copy of the network.
func (net *Network) Clone() *Network {
	dup := &Network{NIn: net.NIn, Out: append([]float64{}, net.Out...)}
	for _, layer := range net.Hidden {
		l := &Layer{
			W:      make([][]float64, len(layer.W)),
			B:      append([]float64{}, layer.B...),
			Nonlin: layer.Nonlin,
		}
		for i, row := range layer.W {
			l.W[i] = append([]float64{}, row...)
		}
		dup.Hidden = append(dup.Hidden, l)
	}
	return dup
}
