package model

// Accuracy returns the fraction of matching labels.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// WeightedErrorRate is the boosting error measure: the total instance weight
// on misclassified samples. With uniform weights it equals 1 - Accuracy.
func WeightedErrorRate(yTrue, yPred []int, weights []float64) float64 {
	e := 0.0
	for i := range yTrue {
		if yTrue[i] != yPred[i] {
			e += weights[i]
		}
	}
	return e
}

// ConfusionMatrix returns a numLabels x numLabels matrix where entry [t][p]
// counts samples of true label t predicted as p.
func ConfusionMatrix(yTrue, yPred []int, numLabels int) [][]int {
	m := make([][]int, numLabels)
	for i := range m {
		m[i] = make([]int, numLabels)
	}
	for i := range yTrue {
		m[yTrue[i]][yPred[i]]++
	}
	return m
}

// PrecisionRecallF1 computes binary classification metrics for labels 0/1,
// treating 1 as the positive class.
func PrecisionRecallF1(yTrue, yPred []int) (prec, rec, f1 float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		if yPred[i] == 1 && yTrue[i] == 1 {
			tp++
		}
		if yPred[i] == 1 && yTrue[i] == 0 {
			fp++
		}
		if yPred[i] == 0 && yTrue[i] == 1 {
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}
