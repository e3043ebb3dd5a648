package nnet

// Optimizer advances a flattened parameter vector against its gradient.
// eval scores a candidate parameter vector with the training objective;
// optimizers that do not need it may ignore it.
type Optimizer interface {
	Step(params, grad []float64, eval func([]float64) float64) []float64
}

// SGD is plain full-batch gradient descent with a fixed learning rate.
type SGD struct {
	LR float64
}

// Step implements Optimizer.
func (s *SGD) Step(params, grad []float64, _ func([]float64) float64) []float64 {
	next := make([]float64, len(params))
	for i, p := range params {
		next[i] = p - s.LR*grad[i]
	}
	return next
}

// GDLS is gradient descent with a backtracking line search: the step size
// shrinks until the objective decreases, and grows again after an
// accepting step. When no shrink produces a decrease the parameters are
// left unchanged for this step.
type GDLS struct {
	LR       float64
	Shrink   float64
	Grow     float64
	MaxTries int

	step float64
}

// NewGDLS returns a line-search optimizer starting from the given rate.
func NewGDLS(lr float64) *GDLS {
	return &GDLS{LR: lr, Shrink: 0.5, Grow: 1.1, MaxTries: 20}
}

// Step implements Optimizer.
func (g *GDLS) Step(params, grad []float64, eval func([]float64) float64) []float64 {
	if g.step == 0 {
		g.step = g.LR
	}
	base := eval(params)

	step := g.step
	candidate := make([]float64, len(params))
	for try := 0; try < g.MaxTries; try++ {
		for i, p := range params {
			candidate[i] = p - step*grad[i]
		}
		if eval(candidate) < base {
			g.step = step * g.Grow
			return candidate
		}
		step *= g.Shrink
	}
	g.step = g.LR
	return params
}
