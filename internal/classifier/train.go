package classifier

import (
	"fmt"
	"strings"

	"github.com/Skufu/SymptomTriage/internal/symptoms"
)

// Example is one labelled training case.
type Example struct {
	Symptoms []string `json:"symptoms" yaml:"symptoms"`
	Disease  string   `json:"disease" yaml:"disease"`
}

// DemoExamples is the small hand-written set the demo service ships with.
// Callers pass their own set to Train to replace it.
func DemoExamples() []Example {
	return []Example{
		{Symptoms: []string{"fever", "severe body pain", "sore throat"}, Disease: "Bacterial Infection"},
		{Symptoms: []string{"headache", "fatigue", "nausea"}, Disease: "migraine"},
		{Symptoms: []string{"rash", "high fever", "joint pain", "muscle pain"}, Disease: "dengue"},
		{Symptoms: []string{"sneezing", "cough", "runny nose"}, Disease: "cold"},
		{Symptoms: []string{"chest pain", "shortness of breath", "fatigue"}, Disease: "Heart disease"},
		{Symptoms: []string{"abdominal pain", "diarrhea", "nausea"}, Disease: "food poisoning"},
		{Symptoms: []string{"fever"}, Disease: "Viral Infection"},
		{Symptoms: []string{"cough"}, Disease: "Respiratory Infection"},
		{Symptoms: []string{"headache"}, Disease: "Tension Headache"},
	}
}

// TrainOptions tunes the fit. The zero value uses DefaultAlpha.
type TrainOptions struct {
	Alpha float64
}

// Train builds the vocabulary from every symptom in examples, encodes each
// example against it and fits the classifier.
func Train(examples []Example, opts TrainOptions) (*symptoms.Vocabulary, *NaiveBayes, error) {
	if len(examples) == 0 {
		return nil, nil, fmt.Errorf("train: no examples")
	}
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}

	sets := make([][]string, len(examples))
	targets := make([]string, len(examples))
	for i, ex := range examples {
		if strings.TrimSpace(ex.Disease) == "" {
			return nil, nil, fmt.Errorf("train: example %d has no disease label", i)
		}
		sets[i] = ex.Symptoms
		targets[i] = ex.Disease
	}

	vocab, err := symptoms.BuildVocabulary(sets)
	if err != nil {
		return nil, nil, fmt.Errorf("train: %w", err)
	}

	vectors := make([]symptoms.FeatureVector, len(examples))
	for i, set := range sets {
		vectors[i] = vocab.Encode(set)
	}

	model, err := fitNaiveBayes(vectors, targets, vocab.Len(), alpha)
	if err != nil {
		return nil, nil, fmt.Errorf("train: %w", err)
	}
	return vocab, model, nil
}
