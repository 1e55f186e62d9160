package model

import (
	"math"
	"testing"
)

// threeClassGrid is a 2-D dataset split by x0 first, then by x1 on the right
// half: depth 2 fits it exactly.
func threeClassGrid() ([][]float64, []int) {
	var X [][]float64
	var y []int
	for i := 0; i < 3; i++ {
		X = append(X, []float64{0, 0}, []float64{0, 1}, []float64{1, 0}, []float64{1, 1})
		y = append(y, 0, 0, 1, 2)
	}
	return X, y
}

func TestDecisionTree_FitsGridAtDepthTwo(t *testing.T) {
	X, y := threeClassGrid()

	tree := NewDecisionTreeClassifier(WithMaxDepth(2))
	if err := tree.Fit(X, y, 3, nil); err != nil {
		t.Fatalf("fitting tree: %v", err)
	}

	pred := tree.Predict(X)
	for i := range y {
		if pred[i] != y[i] {
			t.Fatalf("Predict(%v) = %d, want %d", X[i], pred[i], y[i])
		}
	}
}

func TestDecisionTree_DepthOneCannotFitGrid(t *testing.T) {
	X, y := threeClassGrid()

	tree := NewDecisionTreeClassifier(WithMaxDepth(1))
	if err := tree.Fit(X, y, 3, nil); err != nil {
		t.Fatalf("fitting tree: %v", err)
	}
	if acc := Accuracy(y, tree.Predict(X)); acc >= 1.0 {
		t.Fatalf("a depth-1 tree should not fit three classes perfectly, accuracy %v", acc)
	}
}

func TestDecisionTree_ScoreVectorIsLeafDistribution(t *testing.T) {
	X, y := threeClassGrid()

	tree := NewDecisionTreeClassifier(WithMaxDepth(2), WithCriterion("entropy"))
	if err := tree.Fit(X, y, 3, nil); err != nil {
		t.Fatalf("fitting tree: %v", err)
	}

	for i := range X {
		scores := tree.ScoreVector(X[i])
		if len(scores) != 3 {
			t.Fatalf("score vector length %d, want 3", len(scores))
		}
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("leaf distribution sums to %v, want 1", sum)
		}
		if weightedArgmax(scores) != y[i] {
			t.Fatalf("leaf distribution argmax %d, want %d", weightedArgmax(scores), y[i])
		}
	}
}

func TestDecisionTree_LeafFollowsInstanceWeights(t *testing.T) {
	// Constant features force a single leaf, so the prediction is the
	// weighted majority.
	X := [][]float64{{1}, {1}}
	y := []int{0, 1}

	tree := NewDecisionTreeClassifier()
	if err := tree.Fit(X, y, 2, []float64{0.9, 0.1}); err != nil {
		t.Fatalf("fitting tree: %v", err)
	}
	if got := tree.Classify([]float64{1}); got != 0 {
		t.Fatalf("Classify = %d, want heavy label 0", got)
	}

	if err := tree.Fit(X, y, 2, []float64{0.1, 0.9}); err != nil {
		t.Fatalf("fitting tree: %v", err)
	}
	if got := tree.Classify([]float64{1}); got != 1 {
		t.Fatalf("Classify = %d, want heavy label 1", got)
	}
}

func TestDecisionTree_InvalidInputs(t *testing.T) {
	X, y := threeClassGrid()
	tree := NewDecisionTreeClassifier()

	if err := tree.Fit(nil, nil, 3, nil); !IsInvalidArgument(err) {
		t.Fatalf("empty X should be invalid, got %v", err)
	}
	if err := tree.Fit(X, y[:2], 3, nil); !IsInvalidArgument(err) {
		t.Fatalf("length mismatch should be invalid, got %v", err)
	}
	if err := tree.Fit(X, y, 2, nil); !IsInvalidArgument(err) {
		t.Fatalf("label outside [0, numLabels) should be invalid, got %v", err)
	}
	if err := tree.Fit(X, y, 3, []float64{1}); !IsInvalidArgument(err) {
		t.Fatalf("weight length mismatch should be invalid, got %v", err)
	}
}

func TestDecisionTreeTrainer_ProducesWeakClassifier(t *testing.T) {
	X, y := threeClassGrid()

	train := NewDecisionTreeTrainer(X, y, 3, WithMaxDepth(2))
	weights := make([]float64, len(X))
	for i := range weights {
		weights[i] = 1.0 / float64(len(X))
	}

	weak, err := train(weights)
	if err != nil {
		t.Fatalf("training tree: %v", err)
	}
	for i := range X {
		if got := weak.Classify(X[i]); got != y[i] {
			t.Fatalf("Classify(%v) = %d, want %d", X[i], got, y[i])
		}
	}
}
