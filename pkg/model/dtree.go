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

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeClassifier is a CART-style classifier trained on weighted
// instances, so it can serve as a boosted weak learner: every impurity
// computation and every leaf distribution uses the instance weights instead
// of raw counts.
type DecisionTreeClassifier struct {
	// Hyperparameters / options
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"
	MinImpurityDecrease float64 // minimal impurity decrease to accept a split

	// internals
	root      *treeNode
	numLabels int
}

// treeNode holds a node in the tree. Fields are exported so gob can persist
// the tree inside an ensemble blob.
type treeNode struct {
	IsLeaf    bool
	Feature   int
	Threshold float64 // x <= Threshold => left
	Left      *treeNode
	Right     *treeNode

	// leaf data
	Probas []float64 // weighted label distribution, length numLabels
	Pred   int       // weighted-majority label
}

// Option functional config
type Option func(*DecisionTreeClassifier)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.Criterion = c } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}

// NewDecisionTreeClassifier returns a classifier with sensible defaults.
// Boosting wants shallow trees; pass WithMaxDepth to cap growth.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		MaxDepth:            0,
		MinSamplesSplit:     2,
		MinSamplesLeaf:      1,
		Criterion:           "gini",
		MinImpurityDecrease: 0.0,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// NewDecisionTreeTrainer binds a training set and returns a boosting-ready
// training function: each call grows a fresh tree under the instance-weight
// distribution of that iteration.
func NewDecisionTreeTrainer(X [][]float64, y []int, numLabels int, opts ...Option) TrainWeakClassifierFunc {
	return func(instanceWeights []float64) (WeakClassifier, error) {
		t := NewDecisionTreeClassifier(opts...)
		if err := t.Fit(X, y, numLabels, instanceWeights); err != nil {
			return nil, tracer.Mask(err)
		}
		return t, nil
	}
}

// ---------------------------
// Public API: Fit / Classify / ScoreVector / Predict
// ---------------------------

// Fit trains the decision tree on X (n x p) and y (n labels in [0, numLabels))
// under the given instance weights. A nil instanceWeights means uniform.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []int, numLabels int, instanceWeights []float64) error {
	if len(X) == 0 {
		return tracer.Maskf(invalidArgumentError, "empty training set")
	}
	n := len(X)
	if len(y) != n {
		return tracer.Maskf(invalidArgumentError, "X and y length mismatch: %d != %d", n, len(y))
	}
	if numLabels < 2 {
		return tracer.Maskf(invalidArgumentError, "numLabels must be at least 2, got %d", numLabels)
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return tracer.Maskf(invalidArgumentError, "inconsistent number of features in X rows: row %d has %d, want %d", i, len(X[i]), p)
		}
	}
	if instanceWeights == nil {
		instanceWeights = make([]float64, n)
		for i := range instanceWeights {
			instanceWeights[i] = 1.0 / float64(n)
		}
	}
	if len(instanceWeights) != n {
		return tracer.Maskf(invalidArgumentError, "instance weight length mismatch: %d != %d", len(instanceWeights), n)
	}
	for i, lab := range y {
		if lab < 0 || lab >= numLabels {
			return tracer.Maskf(invalidArgumentError, "label %d at index %d outside [0, %d)", lab, i, numLabels)
		}
	}

	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = i
	}

	impurityFunc := weightedGini
	if t.Criterion == "entropy" {
		impurityFunc = weightedEntropy
	}

	t.numLabels = numLabels
	t.root = t.buildNode(X, y, instanceWeights, idx, 0, p, impurityFunc)
	return nil
}

// Classify returns the weighted-majority label of the leaf x lands in.
func (t *DecisionTreeClassifier) Classify(x []float64) int {
	return t.leaf(x).Pred
}

// ScoreVector returns the leaf's weighted label distribution, a margin
// vector over the numLabels labels.
func (t *DecisionTreeClassifier) ScoreVector(x []float64) []float64 {
	leaf := t.leaf(x)
	out := make([]float64, len(leaf.Probas))
	copy(out, leaf.Probas)
	return out
}

// Predict returns predicted labels for rows in X.
func (t *DecisionTreeClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = t.Classify(X[i])
	}
	return out
}

func (t *DecisionTreeClassifier) leaf(x []float64) *treeNode {
	node := t.root
	for !node.IsLeaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

// treeSplit holds the results of a single feature's best split search.
type treeSplit struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
	ok        bool
}

func (t *DecisionTreeClassifier) buildNode(X [][]float64, y []int, w []float64, idx []int, depth, p int, impurity func([]float64, float64) float64) *treeNode {
	dist := make([]float64, t.numLabels)
	for _, ii := range idx {
		dist[y[ii]] += w[ii]
	}
	nodeWeight := floats.Sum(dist)

	leaf := func() *treeNode {
		probas := make([]float64, t.numLabels)
		if nodeWeight > 0 {
			copy(probas, dist)
			floats.Scale(1/nodeWeight, probas)
		}
		return &treeNode{IsLeaf: true, Probas: probas, Pred: weightedArgmax(dist)}
	}

	if isPureDist(dist) || (t.MinSamplesSplit > 0 && len(idx) < t.MinSamplesSplit) || nodeWeight == 0 {
		return leaf()
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return leaf()
	}

	parentImpurity := impurity(dist, nodeWeight)

	// Search every feature concurrently; results land in a slice indexed by
	// feature so selection stays deterministic.
	splits := make([]treeSplit, p)
	var wg sync.WaitGroup
	for f := 0; f < p; f++ {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			splits[f] = t.findBestSplitForFeature(X, y, w, idx, f, parentImpurity, nodeWeight, impurity)
		}(f)
	}
	wg.Wait()

	best := treeSplit{}
	for f := 0; f < p; f++ {
		if splits[f].ok && (!best.ok || splits[f].gain > best.gain) {
			best = splits[f]
		}
	}

	if !best.ok || best.gain <= t.MinImpurityDecrease {
		return leaf()
	}

	node := &treeNode{Feature: best.feature, Threshold: best.threshold}
	node.Left = t.buildNode(X, y, w, best.leftIdx, depth+1, p, impurity)
	node.Right = t.buildNode(X, y, w, best.rightIdx, depth+1, p, impurity)
	return node
}

// findBestSplitForFeature scans the node's samples sorted by one feature and
// keeps the threshold with the largest weighted impurity decrease.
func (t *DecisionTreeClassifier) findBestSplitForFeature(X [][]float64, y []int, w []float64, idx []int, f int, parentImpurity, nodeWeight float64, impurity func([]float64, float64) float64) treeSplit {
	result := treeSplit{feature: f}

	sorted := append([]int(nil), idx...)
	sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

	leftDist := make([]float64, t.numLabels)
	rightDist := make([]float64, t.numLabels)
	var leftWeight float64
	for _, ii := range sorted {
		rightDist[y[ii]] += w[ii]
	}

	for s := 0; s < len(sorted)-1; s++ {
		ii := sorted[s]
		leftDist[y[ii]] += w[ii]
		rightDist[y[ii]] -= w[ii]
		leftWeight += w[ii]

		if X[ii][f] == X[sorted[s+1]][f] {
			continue
		}
		if s+1 < t.MinSamplesLeaf || len(sorted)-s-1 < t.MinSamplesLeaf {
			continue
		}

		rightWeight := nodeWeight - leftWeight
		weighted := (leftWeight/nodeWeight)*impurity(leftDist, leftWeight) + (rightWeight/nodeWeight)*impurity(rightDist, rightWeight)
		gain := parentImpurity - weighted
		if !result.ok || gain > result.gain {
			result.gain = gain
			result.threshold = (X[ii][f] + X[sorted[s+1]][f]) / 2
			result.leftIdx = append([]int(nil), sorted[:s+1]...)
			result.rightIdx = append([]int(nil), sorted[s+1:]...)
			result.ok = true
		}
	}
	return result
}

// ---------------------------
// Utilities: impurity & misc
// ---------------------------

func weightedGini(dist []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	res := 0.0
	for _, d := range dist {
		p := d / total
		res += p * (1 - p)
	}
	return res
}

func weightedEntropy(dist []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	res := 0.0
	for _, d := range dist {
		if d == 0 {
			continue
		}
		p := d / total
		res -= p * math.Log2(p)
	}
	return res
}

func isPureDist(dist []float64) bool {
	nonZero := 0
	for _, d := range dist {
		if d > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// ---------------------------
// Persistence
// ---------------------------

// treeState mirrors the tree for gob encoding.
type treeState struct {
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	Criterion           string
	MinImpurityDecrease float64
	NumLabels           int
	Root                *treeNode
}

// Kind implements PersistableWeakClassifier.
func (t *DecisionTreeClassifier) Kind() string { return "decisionTree" }

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (t *DecisionTreeClassifier) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	state := treeState{
		MaxDepth:            t.MaxDepth,
		MinSamplesSplit:     t.MinSamplesSplit,
		MinSamplesLeaf:      t.MinSamplesLeaf,
		Criterion:           t.Criterion,
		MinImpurityDecrease: t.MinImpurityDecrease,
		NumLabels:           t.numLabels,
		Root:                t.root,
	}
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, tracer.Mask(err)
	}
	return buf.Bytes(), nil
}

func init() {
	RegisterWeakClassifier("decisionTree", func(data []byte) (WeakClassifier, error) {
		var state treeState
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
			return nil, tracer.Mask(err)
		}
		t := &DecisionTreeClassifier{
			MaxDepth:            state.MaxDepth,
			MinSamplesSplit:     state.MinSamplesSplit,
			MinSamplesLeaf:      state.MinSamplesLeaf,
			Criterion:           state.Criterion,
			MinImpurityDecrease: state.MinImpurityDecrease,
			numLabels:           state.NumLabels,
			root:                state.Root,
		}
		return t, nil
	})
}
