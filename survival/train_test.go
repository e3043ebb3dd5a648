package survival

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cooperlab/survivalnet/nnet"
)

// syntheticSets builds a small cohort where feature 0 drives the hazard:
// larger values mean earlier events.
func syntheticSets(t *testing.T, n int) (train, val, test *Set) {
	t.Helper()
	X := mat.NewDense(n, 3, nil)
	T := make([]float64, n)
	O := make([]int, n)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		x := rng.Float64()
		X.Set(i, 0, x)
		X.Set(i, 1, rng.Float64())
		X.Set(i, 2, rng.Float64())
		T[i] = 10 - 9*x + 0.1*rng.Float64()
		O[i] = 1
		if rng.Float64() < 0.2 {
			O[i] = 0
		}
	}
	cohort, err := NewCohort(X, T, O)
	require.NoError(t, err)
	trainC, valC, testC, err := cohort.Split(0.2)
	require.NoError(t, err)
	train, err = trainC.AtRisk()
	require.NoError(t, err)
	val, err = valC.AtRisk()
	require.NoError(t, err)
	test, err = testC.AtRisk()
	require.NoError(t, err)
	return train, val, test
}

func TestTrainerReducesCost(t *testing.T) {
	train, val, test := syntheticSets(t, 60)

	trainer := Trainer{
		NLayers:  1,
		NHidden:  8,
		Nonlin:   nnet.Tanh,
		Finetune: FinetuneConfig{LearningRate: 0.05, Epochs: 30},
	}
	res, err := trainer.Train(rand.New(rand.NewSource(0)), nil, train, val, test)
	require.NoError(t, err)
	require.Equal(t, 30, res.Epochs)
	require.Len(t, res.Train.Costs, 30)
	require.Len(t, res.Train.CIndices, 30)
	require.Len(t, res.Val.CIndices, 30)
	require.Len(t, res.Test.CIndices, 30)

	// The default line-search optimizer never accepts a step that raises
	// the training objective.
	for i := 1; i < len(res.Train.Costs); i++ {
		require.LessOrEqual(t, res.Train.Costs[i], res.Train.Costs[i-1]+1e-12)
	}
	for _, ci := range res.Train.CIndices {
		require.True(t, ci >= 0 && ci <= 1)
	}
}

func TestTrainerLearnsSignal(t *testing.T) {
	train, val, test := syntheticSets(t, 80)

	trainer := Trainer{
		NLayers:  1,
		NHidden:  16,
		Nonlin:   nnet.Tanh,
		Finetune: FinetuneConfig{LearningRate: 0.1, Epochs: 60},
	}
	res, err := trainer.Train(rand.New(rand.NewSource(3)), nil, train, val, test)
	require.NoError(t, err)

	last := res.Train.CIndices[len(res.Train.CIndices)-1]
	require.Greater(t, last, 0.6, "training c-index should beat chance on a strong signal")
}

func TestTrainerEarlyStopNeedsValidation(t *testing.T) {
	train, _, _ := syntheticSets(t, 60)
	trainer := Trainer{
		NLayers:   1,
		NHidden:   4,
		Nonlin:    nnet.Tanh,
		Finetune:  FinetuneConfig{LearningRate: 0.05, Epochs: 5},
		EarlyStop: true,
	}
	_, err := trainer.Train(rand.New(rand.NewSource(0)), nil, train, nil, nil)
	require.Error(t, err)
}

func TestTrainerEarlyStopHaltsWithinBudget(t *testing.T) {
	train, val, _ := syntheticSets(t, 60)
	trainer := Trainer{
		NLayers:   1,
		NHidden:   4,
		Nonlin:    nnet.Tanh,
		Finetune:  FinetuneConfig{LearningRate: 0.05, Epochs: 200},
		EarlyStop: true,
		Patience:  3,
	}
	res, err := trainer.Train(rand.New(rand.NewSource(0)), nil, train, val, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, res.Epochs, 200)
	require.Len(t, res.Train.Costs, res.Epochs)
}

func TestTrainerWithPretraining(t *testing.T) {
	train, val, test := syntheticSets(t, 60)

	trainer := Trainer{
		NLayers: 1,
		NHidden: 6,
		Nonlin:  nnet.Tanh,
		Pretrain: &nnet.PretrainConfig{
			LearningRate:    0.01,
			Epochs:          20,
			CorruptionLevel: 0.3,
		},
		Finetune: FinetuneConfig{LearningRate: 0.05, Epochs: 10},
	}
	res, err := trainer.Train(rand.New(rand.NewSource(1)), train.X, train, val, test)
	require.NoError(t, err)
	require.Len(t, res.Train.Costs, 10)

	// Pretraining without a pretraining set is a configuration error.
	_, err = trainer.Train(rand.New(rand.NewSource(1)), nil, train, val, test)
	require.Error(t, err)
}

func TestTrainerIsDeterministic(t *testing.T) {
	train, val, test := syntheticSets(t, 60)
	trainer := Trainer{
		NLayers:  2,
		NHidden:  5,
		Dropout:  0.5,
		Nonlin:   nnet.ReLU,
		Finetune: FinetuneConfig{LearningRate: 0.05, Epochs: 15},
	}
	a, err := trainer.Train(rand.New(rand.NewSource(9)), nil, train, val, test)
	require.NoError(t, err)
	b, err := trainer.Train(rand.New(rand.NewSource(9)), nil, train, val, test)
	require.NoError(t, err)
	require.Equal(t, a.Train.Costs, b.Train.Costs)
	require.Equal(t, a.Model.Params(), b.Model.Params())
}
