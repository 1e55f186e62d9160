package model

import (
	"math"

	"github.com/xh3b4sd/tracer"
	"gonum.org/v1/gonum/floats"
)

// TrainAdaBoost runs SAMME-style multiclass AdaBoost over the fixed training
// set (X, y) with labels in [0, numLabels). Each iteration trains one weak
// classifier under the current instance-weight distribution, derives a
// confidence weight from its weighted error rate, upweights the instances it
// got wrong, and appends the pair to the ensemble. Training stops when the
// iteration budget is spent or a weak classifier reaches zero weighted error.
// The budget is exact: barring an error-free first round, the ensemble holds
// exactly maxIterations members.
//
// If training stops after exactly one iteration, the lone classifier is
// returned with weight exactly 1.0: it is the whole model, and for an
// error-free first learner the computed weight would be infinite.
//
// A weighted error rate of 0 on a later iteration, or of 1 on any iteration,
// leaves no finite confidence weight and fails with a domain error instead of
// letting Inf/NaN leak into the weights. Negative finite confidence weights
// (weak learner worse than chance) are valid results and are kept.
//
// Errors from trainWeak propagate; no partial ensemble is returned.
//
// The loop is sequential on purpose: each iteration's weak learner depends on
// the weights produced by the previous one. trainWeak may parallelize
// internally.
func TrainAdaBoost(X [][]float64, y []int, numLabels, maxIterations int, trainWeak TrainWeakClassifierFunc) (*WeightedEnsemble, error) {
	if err := verifyTrainingInputs(X, y, numLabels, maxIterations, trainWeak); err != nil {
		return nil, tracer.Mask(err)
	}

	n := len(X)
	instanceWeights := make([]float64, n)
	for i := range instanceWeights {
		instanceWeights[i] = 1.0 / float64(n)
	}

	ens := &WeightedEnsemble{numLabels: numLabels}
	isFail := make([]bool, n)

	for iteration := 1; ; iteration++ {
		weak, err := trainWeak(instanceWeights)
		if err != nil {
			return nil, tracer.Mask(err)
		}

		var errorRate float64
		for i := range X {
			isFail[i] = weak.Classify(X[i]) != y[i]
			if isFail[i] {
				errorRate += instanceWeights[i]
			}
		}

		if errorRate == 0 {
			if iteration == 1 {
				ens.members = append(ens.members, ensembleMember{classifier: weak, weight: 1.0})
				return ens, nil
			}
			return nil, tracer.Maskf(domainError, "weighted error rate is 0 at iteration %d", iteration)
		}

		// SAMME confidence weight. The ln(K-1) term generalizes binary
		// AdaBoost to K classes; for K=2 it vanishes.
		classifierWeight := math.Log((1-errorRate)/errorRate) + math.Log(float64(numLabels-1))
		if math.IsInf(classifierWeight, 0) || math.IsNaN(classifierWeight) {
			return nil, tracer.Maskf(domainError, "weighted error rate %v at iteration %d yields no finite confidence weight", errorRate, iteration)
		}

		boost := math.Exp(classifierWeight)
		for i := range instanceWeights {
			if isFail[i] {
				instanceWeights[i] *= boost
			}
		}
		sum := floats.Sum(instanceWeights)
		if sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
			return nil, tracer.Maskf(domainError, "instance weights sum to %v at iteration %d, cannot renormalize", sum, iteration)
		}
		floats.Scale(1/sum, instanceWeights)

		ens.members = append(ens.members, ensembleMember{classifier: weak, weight: classifierWeight})

		if iteration >= maxIterations {
			break
		}
	}

	if len(ens.members) == 1 {
		ens.members[0].weight = 1.0
	}
	return ens, nil
}

func verifyTrainingInputs(X [][]float64, y []int, numLabels, maxIterations int, trainWeak TrainWeakClassifierFunc) error {
	if len(X) == 0 {
		return tracer.Maskf(invalidArgumentError, "empty training set")
	}
	if len(y) != len(X) {
		return tracer.Maskf(invalidArgumentError, "X and y length mismatch: %d != %d", len(X), len(y))
	}
	if numLabels < 2 {
		return tracer.Maskf(invalidArgumentError, "numLabels must be at least 2, got %d", numLabels)
	}
	if maxIterations < 1 {
		return tracer.Maskf(invalidArgumentError, "maxIterations must be at least 1, got %d", maxIterations)
	}
	if trainWeak == nil {
		return tracer.Maskf(invalidArgumentError, "trainWeak must not be nil")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return tracer.Maskf(invalidArgumentError, "inconsistent number of features in X rows: row %d has %d, want %d", i, len(X[i]), p)
		}
	}
	for i, lab := range y {
		if lab < 0 || lab >= numLabels {
			return tracer.Maskf(invalidArgumentError, "label %d at index %d outside [0, %d)", lab, i, numLabels)
		}
	}
	return nil
}

// AdaBoostClassifier boosts a weak learner into a weighted multiclass
// ensemble, exposed through the same Fit/Predict surface as the other models
// in this package.
type AdaBoostClassifier struct {
	// Hyperparameters / options
	MaxIterations int
	NumLabels     int // 0 => inferred from y as max label + 1
	WeakLearner   WeakLearnerFactory

	// internals
	ensemble *WeightedEnsemble
}

// WeakLearnerFactory binds a training set and produces the per-iteration
// training function the boosting loop calls.
type WeakLearnerFactory func(X [][]float64, y []int, numLabels int) TrainWeakClassifierFunc

// AdaBoostOption functional config for AdaBoostClassifier
type AdaBoostOption func(*AdaBoostClassifier)

func WithMaxIterations(m int) AdaBoostOption {
	return func(ab *AdaBoostClassifier) { ab.MaxIterations = m }
}
func WithNumLabels(k int) AdaBoostOption {
	return func(ab *AdaBoostClassifier) { ab.NumLabels = k }
}
func WithWeakLearner(f WeakLearnerFactory) AdaBoostOption {
	return func(ab *AdaBoostClassifier) { ab.WeakLearner = f }
}

// NewAdaBoostClassifier returns a classifier with sensible defaults: 50
// boosting rounds over decision stumps.
func NewAdaBoostClassifier(opts ...AdaBoostOption) *AdaBoostClassifier {
	ab := &AdaBoostClassifier{
		MaxIterations: 50,
		NumLabels:     0,
		WeakLearner:   NewDecisionStumpTrainer,
	}
	for _, o := range opts {
		o(ab)
	}
	return ab
}

// Fit trains the boosted ensemble on X (n x p) and y (n labels as ints).
func (ab *AdaBoostClassifier) Fit(X [][]float64, y []int) error {
	numLabels := ab.NumLabels
	if numLabels == 0 {
		for _, lab := range y {
			if lab+1 > numLabels {
				numLabels = lab + 1
			}
		}
	}

	ens, err := TrainAdaBoost(X, y, numLabels, ab.MaxIterations, ab.WeakLearner(X, y, numLabels))
	if err != nil {
		return tracer.Mask(err)
	}

	ab.ensemble = ens
	return nil
}

// Predict returns predicted labels for rows in X. Before a successful Fit
// there is no ensemble to score with and every label is 0.
func (ab *AdaBoostClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	if ab.ensemble == nil {
		return out
	}
	for i := range X {
		out[i] = ab.ensemble.Classify(X[i])
	}
	return out
}

// Ensemble returns the trained ensemble, or nil before Fit.
func (ab *AdaBoostClassifier) Ensemble() *WeightedEnsemble {
	return ab.ensemble
}
