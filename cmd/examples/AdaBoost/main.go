package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/jyuhuan/factorie/pkg/data"
	"github.com/jyuhuan/factorie/pkg/loader"
	"github.com/jyuhuan/factorie/pkg/model"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// generateClassificationData creates a synthetic dataset with Gaussian blobs.
func generateClassificationData(nSamples, nFeatures, nClasses int, seed uint64) ([][]float64, []int) {
	src := rand.NewSource(seed)
	uniform := distuv.Uniform{Min: -5, Max: 5, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	// Random centers for each class
	centers := make([][]float64, nClasses)
	for i := 0; i < nClasses; i++ {
		centers[i] = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			centers[i][j] = uniform.Rand()
		}
	}

	// Assign points to classes with Gaussian noise around the center
	X := make([][]float64, nSamples)
	y := make([]int, nSamples)
	classDist := rand.New(src)
	for i := 0; i < nSamples; i++ {
		class := classDist.Intn(nClasses)
		X[i] = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			X[i][j] = centers[class][j] + noise.Rand()
		}
		y[i] = class
	}

	return X, y
}

func main() {
	var (
		csvPath    = flag.String("csv", "", "optional CSV file with an integer label column instead of synthetic data")
		labelCol   = flag.Int("label-col", 0, "label column index for -csv")
		iterations = flag.Int("iterations", 50, "boosting rounds")
	)
	flag.Parse()

	var X [][]float64
	var y []int
	if *csvPath != "" {
		var err error
		X, y, err = data.LoadCSV(*csvPath, *labelCol)
		if err != nil {
			log.Fatalf("loading %s: %v", *csvPath, err)
		}
	} else {
		X, y = generateClassificationData(5000, 4, 3, 42)
	}

	numLabels := 0
	for _, lab := range y {
		if lab+1 > numLabels {
			numLabels = lab + 1
		}
	}

	XTrain, XTest, yTrain, yTest := loader.TrainTestSplit(X, y, 0.25)
	fmt.Printf("training on %d samples, testing on %d, %d classes\n", len(XTrain), len(XTest), numLabels)

	// Boosted decision stumps
	stumps := model.NewAdaBoostClassifier(model.WithMaxIterations(*iterations))
	if err := stumps.Fit(XTrain, yTrain); err != nil {
		log.Fatalf("training boosted stumps: %v", err)
	}
	fmt.Printf("boosted stumps:  %d rounds, test accuracy %.4f\n",
		stumps.Ensemble().Len(), model.Accuracy(yTest, stumps.Predict(XTest)))

	// Boosted shallow trees
	trees := model.NewAdaBoostClassifier(
		model.WithMaxIterations(*iterations),
		model.WithWeakLearner(func(X [][]float64, y []int, numLabels int) model.TrainWeakClassifierFunc {
			return model.NewDecisionTreeTrainer(X, y, numLabels, model.WithMaxDepth(3))
		}),
	)
	if err := trees.Fit(XTrain, yTrain); err != nil {
		log.Fatalf("training boosted trees: %v", err)
	}
	yPred := trees.Predict(XTest)
	fmt.Printf("boosted trees:   %d rounds, test accuracy %.4f\n",
		trees.Ensemble().Len(), model.Accuracy(yTest, yPred))

	fmt.Println("confusion matrix (boosted trees):")
	for _, row := range model.ConfusionMatrix(yTest, yPred, numLabels) {
		fmt.Println(row)
	}
}
