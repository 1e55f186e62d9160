package loader

import "math/rand"

// TrainTestSplit splits X, y into train and test sets by ratio.
func TrainTestSplit(X [][]float64, y []int, testRatio float64) (XTrain, XTest [][]float64, yTrain, yTest []int) {
	n := len(X)
	indices := rand.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i := 0; i < n; i++ {
		if i < nTest {
			XTest = append(XTest, X[indices[i]])
			yTest = append(yTest, y[indices[i]])
		} else {
			XTrain = append(XTrain, X[indices[i]])
			yTrain = append(yTrain, y[indices[i]])
		}
	}
	return
}

// ShuffleData shuffles X and y in unison.
func ShuffleData(X [][]float64, y []int) ([][]float64, []int) {
	n := len(X)
	indices := rand.Perm(n)
	XShuf := make([][]float64, n)
	yShuf := make([]int, n)
	for i, idx := range indices {
		XShuf[i] = X[idx]
		yShuf[i] = y[idx]
	}
	return XShuf, yShuf
}

// StratifiedKFold yields k folds of sample indices with each class spread
// evenly across folds, which keeps per-fold label distributions usable for
// multiclass evaluation.
func StratifiedKFold(y []int, k int) [][]int {
	byClass := map[int][]int{}
	for i, lab := range y {
		byClass[lab] = append(byClass[lab], i)
	}

	folds := make([][]int, k)
	next := 0
	for _, idx := range byClass {
		rand.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for _, ii := range idx {
			folds[next%k] = append(folds[next%k], ii)
			next++
		}
	}
	return folds
}
