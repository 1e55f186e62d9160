package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xh3b4sd/tracer"
)

// Sample represents a single labeled data point.
type Sample struct {
	X     []float64
	Label int
}

// StreamCSV streams CSV rows as Samples through a channel. The labelCol is
// the index of the integer class label; every other column is parsed as a
// float feature. Malformed records are skipped. Close the returned done chan
// to stop early.
func StreamCSV(path string, labelCol int, out chan<- Sample) (done chan struct{}, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, tracer.Mask(err)
	}

	reader := csv.NewReader(bufio.NewReader(file))
	reader.ReuseRecord = true
	done = make(chan struct{})

	go func() {
		defer file.Close()
		defer close(out)
		for {
			select {
			case <-done:
				return
			default:
				rec, err := reader.Read()
				if err == io.EOF {
					return
				}
				if err != nil {
					fmt.Printf("skipping record due to read error: %v\n", err)
					continue
				}

				if labelCol < 0 || labelCol >= len(rec) {
					fmt.Printf("skipping record: label column %d out of bounds\n", labelCol)
					continue
				}

				x := make([]float64, 0, len(rec)-1)
				var label int
				validRecord := true

				for i, s := range rec {
					if i == labelCol {
						v, err := strconv.Atoi(s)
						if err != nil {
							validRecord = false
							break
						}
						label = v
						continue
					}
					v, err := strconv.ParseFloat(s, 64)
					if err != nil {
						validRecord = false
						break
					}
					x = append(x, v)
				}
				if validRecord {
					out <- Sample{X: x, Label: label}
				}
			}
		}
	}()
	return done, nil
}

// LoadCSV collects a whole CSV file into feature rows and labels, the shape
// the boosting trainer consumes.
func LoadCSV(path string, labelCol int) (X [][]float64, y []int, err error) {
	out := make(chan Sample, 64)
	done, err := StreamCSV(path, labelCol, out)
	if err != nil {
		return nil, nil, tracer.Mask(err)
	}
	defer close(done)

	for s := range out {
		X = append(X, s.X)
		y = append(y, s.Label)
	}
	return X, y, nil
}
