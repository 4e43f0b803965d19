package classifier

import (
	"fmt"
	"math"
	"sort"

	"github.com/Skufu/SymptomTriage/internal/symptoms"
)

// Classifier maps a feature vector to one of a closed set of labels fixed at
// training time.
type Classifier interface {
	Predict(vec symptoms.FeatureVector) (string, error)
	Labels() []string
	Features() int
}

const AlgorithmMultinomialNB = "multinomial-naive-bayes"

// DefaultAlpha is the additive (Laplace) smoothing applied to feature counts.
const DefaultAlpha = 1.0

// NaiveBayes is a multinomial naive Bayes model over binary symptom vectors.
// Labels are kept in sorted order; on equal scores the earlier label wins.
type NaiveBayes struct {
	labels         []string
	classLogPrior  []float64
	featureLogProb [][]float64 // [label][feature]
	features       int
	alpha          float64
}

// fitNaiveBayes estimates priors and smoothed per-feature log probabilities.
func fitNaiveBayes(vectors []symptoms.FeatureVector, targets []string, features int, alpha float64) (*NaiveBayes, error) {
	if len(vectors) != len(targets) {
		return nil, fmt.Errorf("fit: %d vectors but %d labels", len(vectors), len(targets))
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("fit: no training data")
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("fit: smoothing alpha must be positive, got %v", alpha)
	}

	labelSet := make(map[string]struct{})
	for _, y := range targets {
		labelSet[y] = struct{}{}
	}
	labels := make([]string, 0, len(labelSet))
	for y := range labelSet {
		labels = append(labels, y)
	}
	sort.Strings(labels)

	pos := make(map[string]int, len(labels))
	for i, y := range labels {
		pos[y] = i
	}

	classCount := make([]float64, len(labels))
	featureCount := make([][]float64, len(labels))
	for i := range featureCount {
		featureCount[i] = make([]float64, features)
	}

	for n, vec := range vectors {
		if len(vec) != features {
			return nil, fmt.Errorf("fit: vector %d has width %d, want %d", n, len(vec), features)
		}
		c := pos[targets[n]]
		classCount[c]++
		for j, x := range vec {
			featureCount[c][j] += float64(x)
		}
	}

	total := float64(len(vectors))
	m := &NaiveBayes{
		labels:         labels,
		classLogPrior:  make([]float64, len(labels)),
		featureLogProb: make([][]float64, len(labels)),
		features:       features,
		alpha:          alpha,
	}
	for c := range labels {
		m.classLogPrior[c] = math.Log(classCount[c] / total)

		var sum float64
		for _, n := range featureCount[c] {
			sum += n
		}
		denom := math.Log(sum + alpha*float64(features))

		m.featureLogProb[c] = make([]float64, features)
		for j, n := range featureCount[c] {
			m.featureLogProb[c][j] = math.Log(n+alpha) - denom
		}
	}
	return m, nil
}

// Predict returns the label with the highest joint log likelihood.
func (m *NaiveBayes) Predict(vec symptoms.FeatureVector) (string, error) {
	if len(vec) != m.features {
		return "", fmt.Errorf("feature vector has width %d, model expects %d", len(vec), m.features)
	}

	best := 0
	bestScore := math.Inf(-1)
	for c := range m.labels {
		score := m.classLogPrior[c]
		for j, x := range vec {
			if x != 0 {
				score += float64(x) * m.featureLogProb[c][j]
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return m.labels[best], nil
}

// Labels returns a copy of the label set in sorted order.
func (m *NaiveBayes) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

func (m *NaiveBayes) Features() int {
	return m.features
}

// validate checks the internal shape after decoding.
func (m *NaiveBayes) validate() error {
	if len(m.labels) == 0 {
		return fmt.Errorf("no labels")
	}
	if m.features <= 0 {
		return fmt.Errorf("no features")
	}
	if len(m.classLogPrior) != len(m.labels) || len(m.featureLogProb) != len(m.labels) {
		return fmt.Errorf("parameter count does not match %d labels", len(m.labels))
	}
	for c, row := range m.featureLogProb {
		if len(row) != m.features {
			return fmt.Errorf("label %q has %d feature weights, want %d", m.labels[c], len(row), m.features)
		}
	}
	seen := make(map[string]struct{}, len(m.labels))
	for _, y := range m.labels {
		if y == "" {
			return fmt.Errorf("blank label")
		}
		if _, dup := seen[y]; dup {
			return fmt.Errorf("duplicate label %q", y)
		}
		seen[y] = struct{}{}
	}
	return nil
}
