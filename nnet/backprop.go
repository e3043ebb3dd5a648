package nnet

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CostGrad computes the regularized Cox loss of the network on a full batch
// and its gradient in the flattened parameter layout of Params.
//
// When dropout > 0 a fresh inverted-dropout mask is drawn per sample and
// hidden unit from rng; evaluation paths pass dropout = 0.
func (net *Network) CostGrad(X mat.Matrix, A mat.Matrix, observed []int, reg Regularization, dropout float64, rng *rand.Rand) (float64, []float64, error) {
	n, p := X.Dims()
	if p != net.NIn {
		return 0, nil, errors.Errorf("input has %d features, network expects %d", p, net.NIn)
	}
	if len(observed) != n {
		return 0, nil, errors.Errorf("observed vector has %d entries for %d samples", len(observed), n)
	}
	if ar, ac := A.Dims(); ar != n || ac != n {
		return 0, nil, errors.Errorf("at-risk matrix is %dx%d for %d samples", ar, ac, n)
	}

	L := len(net.Hidden)
	keep := 1 - dropout

	// Per-sample forward pass, keeping raw activations and dropout masks.
	raw := make([][][]float64, n)     // raw[l] activations before masking
	dropped := make([][][]float64, n) // activations after masking
	masks := make([][][]float64, n)
	risks := make([]float64, n)

	x := make([]float64, p)
	for s := 0; s < n; s++ {
		raw[s] = make([][]float64, L)
		dropped[s] = make([][]float64, L)
		masks[s] = make([][]float64, L)
		for j := range x {
			x[j] = X.At(s, j)
		}
		in := x
		for l, layer := range net.Hidden {
			a := make([]float64, len(layer.W))
			for i, row := range layer.W {
				sum := layer.B[i]
				for j, w := range row {
					sum += w * in[j]
				}
				a[i] = layer.Nonlin.Apply(sum)
			}
			m := make([]float64, len(a))
			d := make([]float64, len(a))
			for i := range a {
				m[i] = 1.0
				if dropout > 0 && rng != nil {
					if rng.Float64() < dropout {
						m[i] = 0
					} else {
						m[i] = 1 / keep
					}
				}
				d[i] = a[i] * m[i]
			}
			raw[s][l] = a
			masks[s][l] = m
			dropped[s][l] = d
			in = d
		}
		var r float64
		for i, w := range net.Out {
			r += w * in[i]
		}
		risks[s] = r
	}

	cost, dRisk := CoxLoss(risks, A, observed)
	cost += reg.penalty(net)

	// Backward pass, accumulating gradients over the batch.
	gradW := make([][][]float64, L)
	gradB := make([][]float64, L)
	for l, layer := range net.Hidden {
		gradW[l] = make([][]float64, len(layer.W))
		for i, row := range layer.W {
			gradW[l][i] = make([]float64, len(row))
		}
		gradB[l] = make([]float64, len(layer.B))
	}
	gradOut := make([]float64, len(net.Out))

	for s := 0; s < n; s++ {
		if dRisk[s] == 0 {
			continue
		}
		last := dropped[s][L-1]
		delta := make([]float64, len(net.Out))
		for i, w := range net.Out {
			gradOut[i] += dRisk[s] * last[i]
			delta[i] = dRisk[s] * w
		}
		for l := L - 1; l >= 0; l-- {
			layer := net.Hidden[l]
			var in []float64
			if l == 0 {
				for j := range x {
					x[j] = X.At(s, j)
				}
				in = x
			} else {
				in = dropped[s][l-1]
			}
			prev := make([]float64, len(in))
			for i := range layer.W {
				dPre := delta[i] * masks[s][l][i] * layer.Nonlin.Deriv(raw[s][l][i])
				if dPre == 0 {
					continue
				}
				gradB[l][i] += dPre
				row := layer.W[i]
				grow := gradW[l][i]
				for j, v := range in {
					grow[j] += dPre * v
					prev[j] += dPre * row[j]
				}
			}
			delta = prev
		}
	}

	// Flatten in the Params layout and fold in the penalty gradients.
	grad := make([]float64, 0, net.NumParams())
	for l, layer := range net.Hidden {
		for i, row := range layer.W {
			for j := range row {
				grad = append(grad, gradW[l][i][j]+reg.addGradient(row[j]))
			}
		}
		grad = append(grad, gradB[l]...)
	}
	for i, w := range net.Out {
		grad = append(grad, gradOut[i]+reg.addGradient(w))
	}
	return cost, grad, nil
}

// InputGradients computes d(risk)/d(feature) for every sample in X: the
// sensitivity of the predicted risk score to each raw input. Rows are
// samples and columns are features, matching the layout the clustering
// analysis consumes.
func (net *Network) InputGradients(X mat.Matrix) (*mat.Dense, error) {
	n, p := X.Dims()
	if p != net.NIn {
		return nil, errors.Errorf("input has %d features, network expects %d", p, net.NIn)
	}

	G := mat.NewDense(n, p, nil)
	x := make([]float64, p)
	for s := 0; s < n; s++ {
		for j := range x {
			x[j] = X.At(s, j)
		}
		acts := net.forward(x, nil)

		delta := append([]float64{}, net.Out...)
		for l := len(net.Hidden) - 1; l >= 0; l-- {
			layer := net.Hidden[l]
			width := net.NIn
			if l > 0 {
				width = len(net.Hidden[l-1].W)
			}
			prev := make([]float64, width)
			for i, row := range layer.W {
				dPre := delta[i] * layer.Nonlin.Deriv(acts[l][i])
				if dPre == 0 {
					continue
				}
				for j, w := range row {
					prev[j] += dPre * w
				}
			}
			delta = prev
		}
		G.SetRow(s, delta)
	}
	return G, nil
}
