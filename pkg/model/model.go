package model

// Model is a generic supervised classification interface.
type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
}

// WeakClassifier is the capability a boosted ensemble requires from its
// members. Classify is all the trainer needs; ScoreVector is the stricter
// capability the ensemble scorer sums over. For classifiers that only know a
// single predicted label, ScoreVector is a one-hot vector on that label.
type WeakClassifier interface {
	// Classify returns the predicted label in [0, numLabels) for one sample.
	Classify(x []float64) int
	// ScoreVector returns a per-label score vector of length numLabels.
	ScoreVector(x []float64) []float64
}

// TrainWeakClassifierFunc trains one weak classifier under the given
// instance-weight distribution. The weights are non-negative and sum to 1;
// they are owned by the trainer and must not be retained or mutated.
//
// Implementations are typically produced by binding a training set once, e.g.
// NewDecisionStumpTrainer or NewDecisionTreeTrainer, so the boosting loop only
// passes the part that changes between iterations.
type TrainWeakClassifierFunc func(instanceWeights []float64) (WeakClassifier, error)
