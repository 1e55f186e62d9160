package model

import (
	"bytes"
	"encoding/gob"
	"math"
	"sort"
	"sync"

	"github.com/xh3b4sd/tracer"
	"gonum.org/v1/gonum/floats"
)

// DecisionStump is a depth-1 threshold classifier: x[Feature] <= Threshold
// predicts LeftLabel, anything else predicts RightLabel. It is the classic
// weak learner for boosting: barely better than chance on its own, cheap to
// train under a weight distribution.
type DecisionStump struct {
	Feature    int
	Threshold  float64
	LeftLabel  int
	RightLabel int
	NumLabels  int
}

// Classify returns the predicted label for one sample.
func (s *DecisionStump) Classify(x []float64) int {
	if x[s.Feature] <= s.Threshold {
		return s.LeftLabel
	}
	return s.RightLabel
}

// ScoreVector is one-hot on the predicted label.
func (s *DecisionStump) ScoreVector(x []float64) []float64 {
	v := make([]float64, s.NumLabels)
	v[s.Classify(x)] = 1
	return v
}

// Kind implements PersistableWeakClassifier.
func (s *DecisionStump) Kind() string { return "decisionStump" }

// stumpState mirrors DecisionStump for gob encoding. Encoding the stump
// directly would make gob call MarshalBinary back on itself forever.
type stumpState DecisionStump

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (s *DecisionStump) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode((*stumpState)(s)); err != nil {
		return nil, tracer.Mask(err)
	}
	return buf.Bytes(), nil
}

func init() {
	RegisterWeakClassifier("decisionStump", func(data []byte) (WeakClassifier, error) {
		var s stumpState
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
			return nil, tracer.Mask(err)
		}
		return (*DecisionStump)(&s), nil
	})
}

// stumpCandidate holds the best split found for one feature.
type stumpCandidate struct {
	errorRate  float64
	threshold  float64
	leftLabel  int
	rightLabel int
	ok         bool
}

// NewDecisionStumpTrainer binds a training set with labels in [0, numLabels)
// and returns the per-iteration training function the boosting loop calls.
// The per-feature sample order is sorted once up front and reused every
// round, so a boosting run pays the sort cost only once.
func NewDecisionStumpTrainer(X [][]float64, y []int, numLabels int) TrainWeakClassifierFunc {
	n := len(X)
	p := 0
	if n > 0 {
		p = len(X[0])
	}

	order := make([][]int, p)
	for f := 0; f < p; f++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		f := f
		sort.Slice(idx, func(a, b int) bool { return X[idx[a]][f] < X[idx[b]][f] })
		order[f] = idx
	}

	return func(instanceWeights []float64) (WeakClassifier, error) {
		if len(instanceWeights) != n {
			return nil, tracer.Maskf(invalidArgumentError, "instance weight length mismatch: %d != %d", len(instanceWeights), n)
		}

		total := floats.Sum(instanceWeights)
		dist := make([]float64, numLabels)
		for i, w := range instanceWeights {
			dist[y[i]] += w
		}
		majority := weightedArgmax(dist)

		// Constant fallback: everything on the left of an infinite
		// threshold. Also the winner when all features are constant.
		best := stumpCandidate{
			errorRate:  total - dist[majority],
			threshold:  math.Inf(1),
			leftLabel:  majority,
			rightLabel: majority,
			ok:         true,
		}
		bestFeature := 0

		// Search every feature's thresholds concurrently; results land in a
		// slice indexed by feature so selection stays deterministic.
		candidates := make([]stumpCandidate, p)
		var wg sync.WaitGroup
		for f := 0; f < p; f++ {
			wg.Add(1)
			go func(f int) {
				defer wg.Done()
				candidates[f] = bestStumpForFeature(X, y, instanceWeights, order[f], f, numLabels, total)
			}(f)
		}
		wg.Wait()

		for f := 0; f < p; f++ {
			if candidates[f].ok && candidates[f].errorRate < best.errorRate {
				best = candidates[f]
				bestFeature = f
			}
		}

		return &DecisionStump{
			Feature:    bestFeature,
			Threshold:  best.threshold,
			LeftLabel:  best.leftLabel,
			RightLabel: best.rightLabel,
			NumLabels:  numLabels,
		}, nil
	}
}

// bestStumpForFeature sweeps the presorted sample order for one feature,
// maintaining weighted label distributions on both sides of the split.
func bestStumpForFeature(X [][]float64, y []int, weights []float64, order []int, f, numLabels int, total float64) stumpCandidate {
	result := stumpCandidate{}

	leftDist := make([]float64, numLabels)
	rightDist := make([]float64, numLabels)
	for i, w := range weights {
		rightDist[y[i]] += w
	}

	for s := 0; s < len(order)-1; s++ {
		i := order[s]
		leftDist[y[i]] += weights[i]
		rightDist[y[i]] -= weights[i]

		// Thresholds only exist between distinct values.
		if X[i][f] == X[order[s+1]][f] {
			continue
		}

		leftLabel := weightedArgmax(leftDist)
		rightLabel := weightedArgmax(rightDist)
		errorRate := total - leftDist[leftLabel] - rightDist[rightLabel]
		if !result.ok || errorRate < result.errorRate {
			result = stumpCandidate{
				errorRate:  errorRate,
				threshold:  (X[i][f] + X[order[s+1]][f]) / 2,
				leftLabel:  leftLabel,
				rightLabel: rightLabel,
				ok:         true,
			}
		}
	}
	return result
}

// weightedArgmax returns the index of the largest entry, ties to the lowest
// index.
func weightedArgmax(dist []float64) int {
	best := 0
	for i := 1; i < len(dist); i++ {
		if dist[i] > dist[best] {
			best = i
		}
	}
	return best
}
