package nnet

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// snapshot is the gob image of a trained network. float64 values survive
// gob encoding bit-for-bit, so Save followed by Load reproduces the model
// exactly.
type snapshot struct {
	NIn     int
	Nonlins []Nonlinearity
	Weights [][][]float64
	Biases  [][]float64
	Out     []float64
}

// Save writes the model parameters to a gob file.
func (net *Network) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating model file %s", filename)
	}
	defer f.Close()

	snap := snapshot{NIn: net.NIn, Out: net.Out}
	for _, layer := range net.Hidden {
		snap.Nonlins = append(snap.Nonlins, layer.Nonlin)
		snap.Weights = append(snap.Weights, layer.W)
		snap.Biases = append(snap.Biases, layer.B)
	}
	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return errors.Wrapf(err, "encoding model to %s", filename)
	}
	return nil
}

// Load reads a model written by Save.
func Load(filename string) (*Network, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening model file %s", filename)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, errors.Wrapf(err, "decoding model from %s", filename)
	}
	if len(snap.Weights) == 0 || len(snap.Weights) != len(snap.Biases) || len(snap.Weights) != len(snap.Nonlins) {
		return nil, errors.Errorf("model file %s is malformed", filename)
	}

	net := &Network{NIn: snap.NIn, Out: snap.Out}
	for l := range snap.Weights {
		net.Hidden = append(net.Hidden, &Layer{
			W:      snap.Weights[l],
			B:      snap.Biases[l],
			Nonlin: snap.Nonlins[l],
		})
	}
	return net, nil
}
