package main

import (
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/alexflint/go-arg"
	"gonum.org/v1/gonum/stat"

	"github.com/cooperlab/survivalnet/matfile"
	"github.com/cooperlab/survivalnet/nnet"
	"github.com/cooperlab/survivalnet/survival"
	"github.com/cooperlab/survivalnet/tuner"
)

func fail(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	args := struct {
		Input    string `arg:"required" help:"delimited dataset: features..., time, censoring flag"`
		Output   string `help:"directory for models and results"`
		Shuffles int    `help:"number of random train/val/test assignments"`
		Epochs   int    `help:"fine-tuning epochs per shuffle"`

		Layers  int
		Hidden  int
		Dropout float64
		Lambda1 float64
		Lambda2 float64
		Relu    bool    `help:"use ReLU activations instead of tanh"`
		LR      float64 `help:"fine-tuning learning rate"`

		Tune      bool `help:"search hyperparameters per shuffle before training"`
		TuneEvals int  `help:"evaluation budget for the hyperparameter search"`

		Pretrain        bool `help:"run denoising-autoencoder pretraining"`
		PretrainEpochs  int
		PretrainLR      float64
		CorruptionLevel float64

		EarlyStop bool
		Verbose   bool
	}{
		Output:          "results",
		Shuffles:        20,
		Epochs:          40,
		Layers:          1,
		Hidden:          100,
		Dropout:         0.5,
		LR:              0.0001,
		TuneEvals:       30,
		PretrainEpochs:  1000,
		PretrainLR:      0.01,
		CorruptionLevel: 0.3,
	}
	arg.MustParse(&args)

	X, T, O, err := matfile.ReadTableFile(args.Input)
	fail(err)
	cohort, err := survival.NewCohort(X, T, O)
	fail(err)
	log.Printf("loaded %d samples from %s", cohort.Len(), args.Input)

	fail(os.MkdirAll(args.Output, 0755))

	var cindices []float64
	for i := 0; i < args.Shuffles; i++ {
		// One random source per shuffle, seeded with the shuffle index, so
		// every run reproduces the same permutations and splits.
		rng := rand.New(rand.NewSource(int64(i)))
		shuffled := cohort.Shuffle(rng)

		trainC, valC, testC, err := shuffled.Split(0.2)
		fail(err)
		trainSet, err := trainC.AtRisk()
		fail(err)
		valSet, err := valC.AtRisk()
		fail(err)
		testSet, err := testC.AtRisk()
		fail(err)

		trainer := survival.Trainer{
			NLayers:   args.Layers,
			NHidden:   args.Hidden,
			Dropout:   args.Dropout,
			Lambda1:   args.Lambda1,
			Lambda2:   args.Lambda2,
			Nonlin:    nonlin(args.Relu),
			Finetune:  survival.FinetuneConfig{LearningRate: args.LR, Epochs: args.Epochs},
			EarlyStop: args.EarlyStop,
			Verbose:   args.Verbose,
		}
		if args.Pretrain {
			trainer.Pretrain = &nnet.PretrainConfig{
				LearningRate:    args.PretrainLR,
				Epochs:          args.PretrainEpochs,
				CorruptionLevel: args.CorruptionLevel,
			}
		}

		if args.Tune {
			log.Printf("shuffle %d: hyperparameter search (%d evaluations)", i, args.TuneEvals)
			search := &tuner.RandomSearch{Rand: rng, Evals: args.TuneEvals, Bounds: tuner.DefaultBounds()}
			params, cost, err := search.Tune(tuneCost(rng, trainer, trainSet, valSet))
			fail(err)
			log.Printf("shuffle %d: tuned %+v (validation cost %.4f)", i, params, cost)
			trainer.NLayers = params.NLayers
			trainer.NHidden = params.NHidden
			trainer.Dropout = params.Dropout
			trainer.Lambda1 = params.Lambda1
			trainer.Lambda2 = params.Lambda2
			trainer.Nonlin = nonlin(params.NonlinSelector > 0.5)
		}

		res, err := trainer.Train(rng, shuffled.X, trainSet, valSet, testSet)
		fail(err)

		testCI := res.Test.CIndices[len(res.Test.CIndices)-1]
		cindices = append(cindices, testCI)
		log.Printf("shuffle %d: nl%d-hs%d-dor%v_nonlin%s test c-index %.4f (running mean %.4f)",
			i, trainer.NLayers, trainer.NHidden, trainer.Dropout, trainer.Nonlin,
			testCI, stat.Mean(cindices, nil))

		fail(res.Model.Save(filepath.Join(args.Output, "final_model")))
	}

	log.Printf("c-index over %d shuffles: mean %.4f std %.4f",
		len(cindices), stat.Mean(cindices, nil), stat.StdDev(cindices, nil))

	out := matfile.New()
	out.SetVector("c_index", cindices)
	fail(matfile.Save(filepath.Join(args.Output, "c_index_list.mat"), out))
}

func nonlin(relu bool) nnet.Nonlinearity {
	if relu {
		return nnet.ReLU
	}
	return nnet.Tanh
}

// tuneCost scores a hyperparameter point by training briefly and returning
// the negated validation c-index, so lower is better for the search.
func tuneCost(rng *rand.Rand, base survival.Trainer, trainSet, valSet *survival.Set) tuner.CostFunc {
	return func(p tuner.Params) float64 {
		t := base
		t.NLayers = p.NLayers
		t.NHidden = p.NHidden
		t.Dropout = p.Dropout
		t.Lambda1 = p.Lambda1
		t.Lambda2 = p.Lambda2
		t.Nonlin = nonlin(p.NonlinSelector > 0.5)
		t.Pretrain = nil
		t.Verbose = false
		t.EarlyStop = false
		if t.Finetune.Epochs > 10 {
			t.Finetune.Epochs = 10
		}
		res, err := t.Train(rng, nil, trainSet, valSet, nil)
		if err != nil {
			return math.NaN()
		}
		return -res.Val.CIndices[len(res.Val.CIndices)-1]
	}
}
