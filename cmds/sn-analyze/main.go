package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/alexflint/go-arg"

	"github.com/cooperlab/survivalnet/analysis"
	"github.com/cooperlab/survivalnet/matfile"
	"github.com/cooperlab/survivalnet/nnet"
	"github.com/cooperlab/survivalnet/render"
)

func fail(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	args := struct {
		Data   string  `arg:"required" help:"dataset file with X, X_raw and Symbols arrays"`
		Model  string  `arg:"required" help:"trained model file"`
		Output string  `help:"directory for the figure and cluster labels"`
		TopN   int     `help:"features used for clustering, ranked by |mean gradient|"`
		Tau    float64 `help:"significance threshold for cluster associations"`
	}{
		Output: "results",
		TopN:   30,
		Tau:    0.05,
	}
	arg.MustParse(&args)

	data, err := matfile.Load(args.Data)
	fail(err)
	normalized, err := data.Matrix("X")
	fail(err)
	raw, err := data.Matrix("X_raw")
	fail(err)
	symbols, err := data.StringList("Symbols")
	fail(err)

	model, err := nnet.Load(args.Model)
	fail(err)
	log.Printf("loaded model from %s", args.Model)

	gradients, err := model.InputGradients(normalized)
	fail(err)

	spec, labels, err := analysis.RiskCluster(gradients, raw, symbols, args.TopN, args.Tau)
	fail(err)
	log.Printf("clustered %d samples into %d groups; %d significant mutations, %d significant CNVs",
		len(labels), maxLabel(labels), len(spec.Mutations.Symbols), len(spec.CNVs.Symbols))

	fail(os.MkdirAll(args.Output, 0755))
	fail(render.Save(spec, filepath.Join(args.Output, "heatmap.png"), render.DefaultConfig()))

	out := matfile.New()
	asFloats := make([]float64, len(labels))
	for i, l := range labels {
		asFloats[i] = float64(l)
	}
	out.SetVector("labels", asFloats)
	out.SetStrings("significant_mutations", spec.Mutations.Symbols)
	out.SetStrings("significant_cnvs", spec.CNVs.Symbols)
	fail(matfile.Save(filepath.Join(args.Output, "cluster_labels.mat"), out))
}

func maxLabel(labels []int) int {
	var k int
	for _, l := range labels {
		if l > k {
			k = l
		}
	}
	return k
}
