package model

import (
	"github.com/xh3b4sd/tracer"
	"gonum.org/v1/gonum/floats"
)

// ensembleMember pairs a trained weak classifier with its confidence weight.
type ensembleMember struct {
	classifier WeakClassifier
	weight     float64
}

// WeightedEnsemble is an ordered sequence of weak classifiers with confidence
// weights, built append-only in training order. It is immutable once training
// returns, so any number of goroutines may score it concurrently without
// locking. Summation is commutative, so member order never affects scores.
type WeightedEnsemble struct {
	numLabels int
	members   []ensembleMember
}

// NewWeightedEnsemble assembles an ensemble from parallel classifier and
// weight lists, e.g. when restoring from an external storage layer.
func NewWeightedEnsemble(numLabels int, classifiers []WeakClassifier, weights []float64) (*WeightedEnsemble, error) {
	if numLabels < 2 {
		return nil, tracer.Maskf(invalidArgumentError, "numLabels must be at least 2, got %d", numLabels)
	}
	if len(classifiers) != len(weights) {
		return nil, tracer.Maskf(invalidArgumentError, "classifier and weight length mismatch: %d != %d", len(classifiers), len(weights))
	}

	ens := &WeightedEnsemble{numLabels: numLabels}
	for i := range classifiers {
		if classifiers[i] == nil {
			return nil, tracer.Maskf(invalidArgumentError, "classifier %d is nil", i)
		}
		ens.members = append(ens.members, ensembleMember{classifier: classifiers[i], weight: weights[i]})
	}
	return ens, nil
}

// NumLabels returns the label count K the ensemble scores over.
func (e *WeightedEnsemble) NumLabels() int { return e.numLabels }

// Len returns the number of ensemble members.
func (e *WeightedEnsemble) Len() int { return len(e.members) }

// Member returns the i-th weak classifier and its confidence weight in
// training order.
func (e *WeightedEnsemble) Member(i int) (WeakClassifier, float64) {
	m := e.members[i]
	return m.classifier, m.weight
}

// ScoreVector computes the length-K score vector for one sample: the sum of
// every member's ScoreVector scaled by its confidence weight. Pure function,
// deterministic given the ensemble and the input.
func (e *WeightedEnsemble) ScoreVector(x []float64) []float64 {
	scores := make([]float64, e.numLabels)
	for _, m := range e.members {
		floats.AddScaled(scores, m.weight, m.classifier.ScoreVector(x))
	}
	return scores
}

// Classify returns the arg-max label of ScoreVector. Ties break to the
// lowest label index.
func (e *WeightedEnsemble) Classify(x []float64) int {
	return floats.MaxIdx(e.ScoreVector(x))
}

// Predict returns predicted labels for rows in X.
func (e *WeightedEnsemble) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = e.Classify(X[i])
	}
	return out
}
