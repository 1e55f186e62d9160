package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing csv fixture: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "1.5,2.5,0\n3.0,4.0,1\n5.5,6.5,2\n")

	X, y, err := LoadCSV(path, 2)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(X) != 3 || len(y) != 3 {
		t.Fatalf("loaded %d rows / %d labels, want 3 / 3", len(X), len(y))
	}

	wantX := [][]float64{{1.5, 2.5}, {3.0, 4.0}, {5.5, 6.5}}
	wantY := []int{0, 1, 2}
	for i := range wantX {
		if y[i] != wantY[i] {
			t.Fatalf("label[%d] = %d, want %d", i, y[i], wantY[i])
		}
		for j := range wantX[i] {
			if X[i][j] != wantX[i][j] {
				t.Fatalf("X[%d][%d] = %v, want %v", i, j, X[i][j], wantX[i][j])
			}
		}
	}
}

func TestLoadCSV_LabelColumnFirst(t *testing.T) {
	path := writeTempCSV(t, "1,0.5,0.25\n0,1.5,1.25\n")

	X, y, err := LoadCSV(path, 0)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if y[0] != 1 || y[1] != 0 {
		t.Fatalf("labels = %v, want [1 0]", y)
	}
	if X[0][0] != 0.5 || X[0][1] != 0.25 {
		t.Fatalf("X[0] = %v, want [0.5 0.25]", X[0])
	}
}

func TestLoadCSV_SkipsMalformedRows(t *testing.T) {
	// A non-numeric feature and a non-integer label should both be
	// skipped without failing the whole load.
	path := writeTempCSV(t, "1.0,2.0,0\nnot-a-number,2.0,1\n3.0,4.0,oops\n5.0,6.0,1\n")

	X, y, err := LoadCSV(path, 2)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(X) != 2 {
		t.Fatalf("loaded %d rows, want the 2 well-formed ones", len(X))
	}
	if y[0] != 0 || y[1] != 1 {
		t.Fatalf("labels = %v, want [0 1]", y)
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), 0)
	if err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestStreamCSV_EarlyStop(t *testing.T) {
	path := writeTempCSV(t, "1,0\n2,0\n3,1\n4,1\n")

	out := make(chan Sample)
	done, err := StreamCSV(path, 1, out)
	if err != nil {
		t.Fatalf("StreamCSV: %v", err)
	}

	first, ok := <-out
	if !ok {
		t.Fatal("stream closed before first sample")
	}
	if first.Label != 0 || first.X[0] != 1 {
		t.Fatalf("first sample = %+v, want X=[1] label=0", first)
	}
	close(done)

	// The producer stops; draining must terminate.
	for range out {
	}
}
