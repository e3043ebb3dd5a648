package survival

import (
	"log"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/cooperlab/survivalnet/nnet"
)

// FinetuneConfig controls supervised training.
type FinetuneConfig struct {
	LearningRate float64
	Epochs       int
}

// Trainer fits a risk network to a training risk set and tracks metrics on
// the validation and test risk sets per epoch.
//
// Pretrain, when non-nil, runs denoising-autoencoder pretraining on the
// unlabeled pretraining matrix before fine-tuning; a nil Pretrain skips
// that phase entirely. Optimizer defaults to line-search gradient descent
// at the fine-tune learning rate.
type Trainer struct {
	NLayers int
	NHidden int
	Dropout float64
	Lambda1 float64
	Lambda2 float64
	Nonlin  nnet.Nonlinearity

	Optimizer nnet.Optimizer
	Pretrain  *nnet.PretrainConfig
	Finetune  FinetuneConfig

	EarlyStop bool
	Patience  int
	Verbose   bool
}

// History holds one metric series per epoch.
type History struct {
	Costs    []float64
	CIndices []float64
}

// Result is the outcome of a training run.
type Result struct {
	Train History
	Val   History
	Test  History
	Model *nnet.Network
	// Epochs is the number of epochs actually run; early stopping can make
	// it smaller than the configured budget.
	Epochs int
}

// Train runs optional pretraining followed by fine-tuning. pretrainSet may
// be nil when Pretrain is nil. val and test may be nil; early stopping
// requires val. All randomness (weight init, dropout masks, corruption)
// comes from rng.
func (tr *Trainer) Train(rng *rand.Rand, pretrainSet *mat.Dense, train, val, test *Set) (*Result, error) {
	if train == nil {
		return nil, errors.Errorf("training set is required")
	}
	if tr.Finetune.Epochs <= 0 {
		return nil, errors.Errorf("fine-tuning requires a positive epoch budget")
	}
	if tr.EarlyStop && val == nil {
		return nil, errors.Errorf("early stopping requires a validation set")
	}

	_, p := train.X.Dims()
	net, err := nnet.New(rng, p, tr.NLayers, tr.NHidden, tr.Nonlin)
	if err != nil {
		return nil, err
	}

	if tr.Pretrain != nil {
		if pretrainSet == nil {
			return nil, errors.Errorf("pretraining configured without a pretraining set")
		}
		if err := net.Pretrain(pretrainSet, *tr.Pretrain, rng, tr.Verbose); err != nil {
			return nil, errors.Wrapf(err, "pretraining")
		}
	}

	reg := nnet.Regularization{L1: tr.Lambda1, L2: tr.Lambda2}
	opt := tr.Optimizer
	if opt == nil {
		opt = nnet.NewGDLS(tr.Finetune.LearningRate)
	}

	// Line searches evaluate candidates on a scratch copy so the live
	// network is only touched by accepted steps.
	scratch := net.Clone()
	eval := func(params []float64) float64 {
		if err := scratch.SetParams(params); err != nil {
			return math.Inf(1)
		}
		c, err := scratch.Cost(train.X, train.A, train.O, reg)
		if err != nil {
			return math.Inf(1)
		}
		return c
	}

	res := &Result{Model: net}
	patience := tr.Patience
	if patience <= 0 {
		patience = 10
	}
	bestVal := math.Inf(-1)
	var bestParams []float64
	var stalled int

	for epoch := 0; epoch < tr.Finetune.Epochs; epoch++ {
		_, grad, err := net.CostGrad(train.X, train.A, train.O, reg, tr.Dropout, rng)
		if err != nil {
			return nil, errors.Wrapf(err, "epoch %d", epoch)
		}
		if err := net.SetParams(opt.Step(net.Params(), grad, eval)); err != nil {
			return nil, errors.Wrapf(err, "epoch %d", epoch)
		}
		res.Epochs = epoch + 1

		trainCost, trainCI, err := tr.observe(net, train, reg, &res.Train)
		if err != nil {
			return nil, err
		}
		var valCI float64
		if val != nil {
			if _, valCI, err = tr.observe(net, val, reg, &res.Val); err != nil {
				return nil, err
			}
		}
		if test != nil {
			if _, _, err = tr.observe(net, test, reg, &res.Test); err != nil {
				return nil, err
			}
		}

		if tr.Verbose {
			log.Printf("epoch %d: train cost %.6f train c-index %.4f", epoch+1, trainCost, trainCI)
		}

		if tr.EarlyStop {
			if valCI > bestVal {
				bestVal = valCI
				bestParams = net.Params()
				stalled = 0
			} else {
				stalled++
				if stalled >= patience {
					if tr.Verbose {
						log.Printf("early stop at epoch %d: validation c-index stalled at %.4f", epoch+1, bestVal)
					}
					if bestParams != nil {
						if err := net.SetParams(bestParams); err != nil {
							return nil, err
						}
					}
					break
				}
			}
		}
	}
	return res, nil
}

// observe records the cost and concordance index of the network on a risk
// set.
func (tr *Trainer) observe(net *nnet.Network, s *Set, reg nnet.Regularization, h *History) (cost, ci float64, err error) {
	cost, err = net.Cost(s.X, s.A, s.O, reg)
	if err != nil {
		return 0, 0, err
	}
	risks, err := net.Risks(s.X)
	if err != nil {
		return 0, 0, err
	}
	ci = ConcordanceIndex(risks, s)
	h.Costs = append(h.Costs, cost)
	h.CIndices = append(h.CIndices, ci)
	return cost, ci, nil
}
