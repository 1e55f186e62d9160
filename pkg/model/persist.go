package model

import (
	"bytes"
	"encoding"
	"encoding/gob"
	"os"
	"sync"

	"github.com/xh3b4sd/tracer"
)

// PersistableWeakClassifier is implemented by weak classifiers that can be
// stored inside an ensemble blob. Kind names the decoder registered via
// RegisterWeakClassifier.
type PersistableWeakClassifier interface {
	WeakClassifier
	encoding.BinaryMarshaler
	Kind() string
}

var (
	decoderMu sync.RWMutex
	decoders  = map[string]func([]byte) (WeakClassifier, error){}
)

// RegisterWeakClassifier installs a decoder for the given kind string. The
// shipped weak learners register themselves; external implementations must
// register before an ensemble referencing them can be restored.
func RegisterWeakClassifier(kind string, decode func([]byte) (WeakClassifier, error)) {
	decoderMu.Lock()
	defer decoderMu.Unlock()
	decoders[kind] = decode
}

// ensembleBlob is the storage shape: the label count plus parallel lists of
// per-type classifier blobs and confidence weights, in training order.
type ensembleBlob struct {
	NumLabels    int
	Kinds        []string
	WeakLearners [][]byte
	Weights      []float64
}

// MarshalBinary implements encoding.BinaryMarshaler. Every member must
// implement PersistableWeakClassifier.
func (e *WeightedEnsemble) MarshalBinary() ([]byte, error) {
	blob := ensembleBlob{NumLabels: e.numLabels}
	for i, m := range e.members {
		p, ok := m.classifier.(PersistableWeakClassifier)
		if !ok {
			return nil, tracer.Maskf(notRegisteredError, "ensemble member %d (%T) is not persistable", i, m.classifier)
		}
		byt, err := p.MarshalBinary()
		if err != nil {
			return nil, tracer.Mask(err)
		}
		blob.Kinds = append(blob.Kinds, p.Kind())
		blob.WeakLearners = append(blob.WeakLearners, byt)
		blob.Weights = append(blob.Weights, m.weight)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		return nil, tracer.Mask(err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Every kind in the
// blob must have a registered decoder.
func (e *WeightedEnsemble) UnmarshalBinary(data []byte) error {
	var blob ensembleBlob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&blob); err != nil {
		return tracer.Mask(err)
	}
	if len(blob.WeakLearners) != len(blob.Weights) || len(blob.Kinds) != len(blob.Weights) {
		return tracer.Maskf(invalidArgumentError, "ensemble blob has mismatched lists: %d kinds, %d learners, %d weights", len(blob.Kinds), len(blob.WeakLearners), len(blob.Weights))
	}

	members := make([]ensembleMember, 0, len(blob.Weights))
	for i, kind := range blob.Kinds {
		decoderMu.RLock()
		decode, ok := decoders[kind]
		decoderMu.RUnlock()
		if !ok {
			return tracer.Maskf(notRegisteredError, "no decoder registered for weak classifier kind %q", kind)
		}
		c, err := decode(blob.WeakLearners[i])
		if err != nil {
			return tracer.Mask(err)
		}
		members = append(members, ensembleMember{classifier: c, weight: blob.Weights[i]})
	}

	e.numLabels = blob.NumLabels
	e.members = members
	return nil
}

// SaveFile writes the ensemble blob to path.
func (e *WeightedEnsemble) SaveFile(path string) error {
	byt, err := e.MarshalBinary()
	if err != nil {
		return tracer.Mask(err)
	}
	if err := os.WriteFile(path, byt, 0o644); err != nil {
		return tracer.Mask(err)
	}
	return nil
}

// LoadEnsembleFile restores an ensemble previously written by SaveFile.
func LoadEnsembleFile(path string) (*WeightedEnsemble, error) {
	byt, err := os.ReadFile(path)
	if err != nil {
		return nil, tracer.Mask(err)
	}
	ens := &WeightedEnsemble{}
	if err := ens.UnmarshalBinary(byt); err != nil {
		return nil, tracer.Mask(err)
	}
	return ens, nil
}
