package nnet

import (
	"log"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PretrainConfig controls layer-wise denoising-autoencoder pretraining.
// BatchSize <= 0 uses the whole pretraining set as a single batch.
type PretrainConfig struct {
	LearningRate    float64
	Epochs          int
	BatchSize       int
	CorruptionLevel float64
}

// Pretrain initializes the hidden layers one at a time as denoising
// autoencoders over the unlabeled pretraining set: each layer reconstructs
// its (corrupted) input through a tied-weight linear decoder, then feeds
// its clean activations to the next layer. The output unit is untouched.
func (net *Network) Pretrain(X mat.Matrix, cfg PretrainConfig, rng *rand.Rand, verbose bool) error {
	n, p := X.Dims()
	if p != net.NIn {
		return errors.Errorf("pretraining input has %d features, network expects %d", p, net.NIn)
	}
	if cfg.Epochs <= 0 || cfg.LearningRate <= 0 {
		return errors.Errorf("pretraining requires positive epochs and learning rate")
	}

	// Current layer input, updated after each layer is trained.
	H := make([][]float64, n)
	for i := range H {
		row := make([]float64, p)
		for j := range row {
			row[j] = X.At(i, j)
		}
		H[i] = row
	}

	batch := cfg.BatchSize
	if batch <= 0 || batch > n {
		batch = n
	}

	for l, layer := range net.Hidden {
		visBias := make([]float64, len(H[0]))
		for epoch := 0; epoch < cfg.Epochs; epoch++ {
			var epochCost float64
			for start := 0; start < n; start += batch {
				end := start + batch
				if end > n {
					end = n
				}
				epochCost += daStep(layer, visBias, H[start:end], cfg, rng)
			}
			if verbose && (epoch+1)%100 == 0 {
				log.Printf("pretrain layer %d epoch %d cost %.6f", l, epoch+1, epochCost/float64(n))
			}
		}

		// Clean activations become the next layer's input.
		next := make([][]float64, n)
		for i, row := range H {
			a := make([]float64, len(layer.W))
			for u, wrow := range layer.W {
				s := layer.B[u]
				for j, w := range wrow {
					s += w * row[j]
				}
				a[u] = layer.Nonlin.Apply(s)
			}
			next[i] = a
		}
		H = next
	}
	return nil
}

// daStep runs one denoising-autoencoder gradient step on a batch and
// returns the summed reconstruction cost. The decoder is linear with tied
// weights and its own visible bias.
func daStep(layer *Layer, visBias []float64, batch [][]float64, cfg PretrainConfig, rng *rand.Rand) float64 {
	nHid := len(layer.W)
	nVis := len(visBias)

	gradW := make([][]float64, nHid)
	for i := range gradW {
		gradW[i] = make([]float64, nVis)
	}
	gradB := make([]float64, nHid)
	gradVis := make([]float64, nVis)

	var cost float64
	corrupted := make([]float64, nVis)
	hidden := make([]float64, nHid)
	recon := make([]float64, nVis)
	dRecon := make([]float64, nVis)
	dHidden := make([]float64, nHid)

	for _, x := range batch {
		for j, v := range x {
			corrupted[j] = v
			if cfg.CorruptionLevel > 0 && rng.Float64() < cfg.CorruptionLevel {
				corrupted[j] = 0
			}
		}
		for i, row := range layer.W {
			s := layer.B[i]
			for j, w := range row {
				s += w * corrupted[j]
			}
			hidden[i] = layer.Nonlin.Apply(s)
		}
		for j := range recon {
			s := visBias[j]
			for i, row := range layer.W {
				s += row[j] * hidden[i]
			}
			recon[j] = s
			dRecon[j] = s - x[j]
			cost += 0.5 * dRecon[j] * dRecon[j]
		}
		for i, row := range layer.W {
			var s float64
			for j, d := range dRecon {
				s += row[j] * d
			}
			dHidden[i] = s * layer.Nonlin.Deriv(hidden[i])
		}
		for i, row := range layer.W {
			for j := range row {
				gradW[i][j] += dHidden[i]*corrupted[j] + hidden[i]*dRecon[j]
			}
			gradB[i] += dHidden[i]
		}
		for j, d := range dRecon {
			gradVis[j] += d
		}
	}

	scale := cfg.LearningRate / float64(len(batch))
	for i, row := range layer.W {
		for j := range row {
			row[j] -= scale * gradW[i][j]
		}
		layer.B[i] -= scale * gradB[i]
	}
	for j := range visBias {
		visBias[j] -= scale * gradVis[j]
	}
	return cost
}
