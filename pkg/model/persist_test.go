package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func trainedStumpEnsemble(t *testing.T) (*WeightedEnsemble, [][]float64) {
	t.Helper()

	X := [][]float64{{0, 5}, {1, 4}, {2, 3}, {3, 2}, {4, 1}, {5, 0}}
	y := []int{0, 0, 1, 1, 2, 2}

	ens, err := TrainAdaBoost(X, y, 3, 15, NewDecisionStumpTrainer(X, y, 3))
	require.NoError(t, err)
	return ens, X
}

func TestWeightedEnsemble_BinaryRoundTrip(t *testing.T) {
	ens, X := trainedStumpEnsemble(t)

	byt, err := ens.MarshalBinary()
	require.NoError(t, err)

	restored := &WeightedEnsemble{}
	require.NoError(t, restored.UnmarshalBinary(byt))

	require.Equal(t, ens.NumLabels(), restored.NumLabels())
	require.Equal(t, ens.Len(), restored.Len())
	for i := 0; i < ens.Len(); i++ {
		_, w := ens.Member(i)
		_, rw := restored.Member(i)
		require.Equal(t, w, rw, "member %d weight", i)
	}
	for _, x := range X {
		require.Equal(t, ens.ScoreVector(x), restored.ScoreVector(x), "scores for %v", x)
	}
}

func TestWeightedEnsemble_FileRoundTripWithTrees(t *testing.T) {
	X, y := threeClassGrid()
	ens, err := TrainAdaBoost(X, y, 3, 5, NewDecisionTreeTrainer(X, y, 3, WithMaxDepth(2)))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ensemble.bin")
	require.NoError(t, ens.SaveFile(path))

	restored, err := LoadEnsembleFile(path)
	require.NoError(t, err)
	require.Equal(t, ens.Predict(X), restored.Predict(X))
}

func TestWeightedEnsemble_UnpersistableMember(t *testing.T) {
	// fixedScoreClassifier implements WeakClassifier but not the
	// persistence surface.
	ens, err := NewWeightedEnsemble(2, []WeakClassifier{&fixedScoreClassifier{scores: []float64{1, 0}}}, []float64{1})
	require.NoError(t, err)

	_, err = ens.MarshalBinary()
	require.Error(t, err)
	require.True(t, IsNotRegistered(err), "want not registered, got %v", err)
}

func TestWeightedEnsemble_UnknownKind(t *testing.T) {
	ens, err := NewWeightedEnsemble(2, []WeakClassifier{&fakeKindClassifier{}}, []float64{1})
	require.NoError(t, err)
	byt, err := ens.MarshalBinary()
	require.NoError(t, err)

	restored := &WeightedEnsemble{}
	err = restored.UnmarshalBinary(byt)
	require.Error(t, err)
	require.True(t, IsNotRegistered(err), "want not registered, got %v", err)
}

// fakeKindClassifier is persistable but claims a kind with no decoder.
type fakeKindClassifier struct{}

func (f *fakeKindClassifier) Classify(x []float64) int          { return 0 }
func (f *fakeKindClassifier) ScoreVector(x []float64) []float64 { return []float64{1, 0} }
func (f *fakeKindClassifier) Kind() string                      { return "unregisteredKind" }
func (f *fakeKindClassifier) MarshalBinary() ([]byte, error)    { return []byte{0x1}, nil }
