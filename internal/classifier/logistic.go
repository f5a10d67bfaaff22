// Package classifier trains a logistic-regression text classifier over
// embedding vectors. Multi-class inputs are handled one-vs-rest with one
// binary model per label.
package classifier

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"
)

const (
	learningRate   = 0.01
	regularization = 0
)

// Model is a trained one-vs-rest logistic classifier. classes holds the
// distinct labels in ascending order, models the per-class binary learners.
type Model struct {
	classes []int
	models  []*linear.Logistic
}

// Split partitions (X, y) into train and test sets with a deterministic
// shuffle. testFraction of the examples (rounded down, at least one when
// possible) go to the test set.
func Split(x [][]float64, y []int, testFraction float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	n := len(x)
	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split, not security

	nTest := int(float64(n) * testFraction)
	if nTest == 0 && n > 1 {
		nTest = 1
	}

	for i, j := range perm {
		if i < nTest {
			testX = append(testX, x[j])
			testY = append(testY, y[j])
		} else {
			trainX = append(trainX, x[j])
			trainY = append(trainY, y[j])
		}
	}
	return trainX, trainY, testX, testY
}

// Fit trains a classifier on (X, y) with batch gradient ascent.
func Fit(x [][]float64, y []int, maxIterations int) (*Model, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("no training examples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("feature/label length mismatch: %d vs %d", len(x), len(y))
	}

	classes := distinctLabels(y)
	if len(classes) < 2 {
		return nil, fmt.Errorf("need at least 2 distinct labels, got %d", len(classes))
	}

	m := &Model{classes: classes}
	for _, class := range classes {
		binary := make([]float64, len(y))
		for i, label := range y {
			if label == class {
				binary[i] = 1
			}
		}
		lg := linear.NewLogistic(base.BatchGA, learningRate, regularization, maxIterations, x, binary)
		lg.Output = io.Discard
		if err := lg.Learn(); err != nil {
			return nil, fmt.Errorf("learn class %d: %w", class, err)
		}
		m.models = append(m.models, lg)
	}
	return m, nil
}

// Predict returns the label whose binary model scores highest for x.
func (m *Model) Predict(x []float64) (int, error) {
	best := m.classes[0]
	bestScore := -1.0
	for i, lg := range m.models {
		p, err := lg.Predict(x)
		if err != nil {
			return 0, fmt.Errorf("predict class %d: %w", m.classes[i], err)
		}
		if len(p) > 0 && p[0] > bestScore {
			bestScore = p[0]
			best = m.classes[i]
		}
	}
	return best, nil
}

// Accuracy is the fraction of examples in (X, y) the model labels correctly.
// An empty test set yields 0.
func (m *Model) Accuracy(x [][]float64, y []int) (float64, error) {
	if len(x) == 0 {
		return 0, nil
	}
	correct := 0
	for i := range x {
		pred, err := m.Predict(x[i])
		if err != nil {
			return 0, err
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x)), nil
}

// Classes returns the distinct labels the model was trained on.
func (m *Model) Classes() []int {
	out := make([]int, len(m.classes))
	copy(out, m.classes)
	return out
}

// Save persists the per-class model weights plus a manifest into dir and
// returns the manifest path.
func (m *Model) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}

	manifest := struct {
		Classes []int             `json:"classes"`
		Files   map[string]string `json:"files"`
	}{
		Classes: m.classes,
		Files:   make(map[string]string, len(m.classes)),
	}

	for i, lg := range m.models {
		name := fmt.Sprintf("logistic_%d.json", m.classes[i])
		if err := lg.PersistToFile(filepath.Join(dir, name)); err != nil {
			return "", fmt.Errorf("persist class %d: %w", m.classes[i], err)
		}
		manifest.Files[fmt.Sprintf("%d", m.classes[i])] = name
	}

	path := filepath.Join(dir, "manifest.json")
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

func distinctLabels(y []int) []int {
	seen := make(map[int]struct{}, len(y))
	var out []int
	for _, label := range y {
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	sort.Ints(out)
	return out
}
