package nnet

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CoxLoss computes the negative mean log partial likelihood of the risk
// scores against the at-risk comparison matrix A, together with its
// gradient with respect to each risk score.
//
// For every observed sample i the likelihood term compares risk[i] against
// the scores of the samples in i's risk set (the rows j with A[i][j] = 1,
// plus i itself in the denominator). Censored samples contribute no term of
// their own but appear in the denominators of earlier events. The log-sum
// is max-shifted before exponentiation; any constant shift cancels in the
// partial likelihood.
func CoxLoss(risk []float64, A mat.Matrix, observed []int) (cost float64, dRisk []float64) {
	n := len(risk)
	dRisk = make([]float64, n)
	members := make([]int, 0, n)

	var events int
	for i := 0; i < n; i++ {
		if observed[i] != 1 {
			continue
		}
		events++

		members = members[:0]
		members = append(members, i)
		max := risk[i]
		for j := 0; j < n; j++ {
			if A.At(i, j) == 1 {
				members = append(members, j)
				if risk[j] > max {
					max = risk[j]
				}
			}
		}

		var sum float64
		for _, j := range members {
			sum += math.Exp(risk[j] - max)
		}
		logSum := max + math.Log(sum)

		cost += logSum - risk[i]
		for _, j := range members {
			dRisk[j] += math.Exp(risk[j]-max) / sum
		}
		dRisk[i]--
	}

	if events == 0 {
		return 0, dRisk
	}
	cost /= float64(events)
	for i := range dRisk {
		dRisk[i] /= float64(events)
	}
	return cost, dRisk
}

// Cost evaluates the regularized Cox loss without computing gradients or
// applying dropout. Line searches and per-epoch reporting use this path.
func (net *Network) Cost(X mat.Matrix, A mat.Matrix, observed []int, reg Regularization) (float64, error) {
	risks, err := net.Risks(X)
	if err != nil {
		return 0, err
	}
	cost, _ := CoxLoss(risks, A, observed)
	return cost + reg.penalty(net), nil
}

// Regularization holds the L1 and L2 penalty strengths applied to hidden
// and output weights. Biases are not penalized.
type Regularization struct {
	L1 float64
	L2 float64
}

// penalty returns the regularization cost of the current weights.
func (r Regularization) penalty(net *Network) float64 {
	if r.L1 == 0 && r.L2 == 0 {
		return 0
	}
	var l1, l2 float64
	for _, layer := range net.Hidden {
		for _, row := range layer.W {
			for _, w := range row {
				l1 += math.Abs(w)
				l2 += w * w
			}
		}
	}
	for _, w := range net.Out {
		l1 += math.Abs(w)
		l2 += w * w
	}
	return r.L1*l1 + r.L2*l2
}

// addGradient accumulates the penalty gradient for weight w.
func (r Regularization) addGradient(w float64) float64 {
	var g float64
	if r.L1 != 0 {
		switch {
		case w > 0:
			g += r.L1
		case w < 0:
			g -= r.L1
		}
	}
	if r.L2 != 0 {
		g += 2 * r.L2 * w
	}
	return g
}
