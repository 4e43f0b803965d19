package triage

import (
	"fmt"

	"github.com/Skufu/SymptomTriage/internal/advice"
	"github.com/Skufu/SymptomTriage/internal/apperrors"
	"github.com/Skufu/SymptomTriage/internal/classifier"
	"github.com/Skufu/SymptomTriage/internal/symptoms"
)

// Prediction is the successful outcome of a triage request.
type Prediction struct {
	Disease string `json:"disease"`
	Advice  string `json:"advice"`

	// Fallback is true when Advice is the generic fallback text.
	Fallback bool `json:"-"`
	// Unrecognized lists input symptoms that are not in the vocabulary.
	Unrecognized []string `json:"-"`
}

type Options struct {
	// StrictAdvice turns a label without an advice entry into a startup error.
	StrictAdvice bool
	// MaxSymptoms caps the tokens accepted per request; 0 means no cap.
	MaxSymptoms int
}

// Service holds the loaded vocabulary, classifier and advice table. It is
// immutable after NewService and safe for concurrent use.
type Service struct {
	vocab       *symptoms.Vocabulary
	model       classifier.Classifier
	table       advice.Table
	coverage    advice.Coverage
	maxSymptoms int
}

// NewService validates the artifacts against each other and records which
// labels will fall back to the generic advice.
func NewService(vocab *symptoms.Vocabulary, model classifier.Classifier, table advice.Table, opts Options) (*Service, error) {
	if vocab == nil || vocab.Len() == 0 {
		return nil, apperrors.Configuration("vocabulary", "not loaded", symptoms.ErrEmptyVocabulary)
	}
	if model == nil {
		return nil, apperrors.Configuration("classifier", "not loaded", nil)
	}
	if model.Features() != vocab.Len() {
		return nil, apperrors.Configuration("classifier",
			fmt.Sprintf("expects %d features, vocabulary has %d", model.Features(), vocab.Len()), nil)
	}
	if table.Len() == 0 {
		return nil, apperrors.Configuration("advice", "table is empty", nil)
	}

	coverage := table.Check(model.Labels())
	if opts.StrictAdvice {
		if err := coverage.Err(); err != nil {
			return nil, err
		}
	}

	return &Service{
		vocab:       vocab,
		model:       model,
		table:       table,
		coverage:    coverage,
		maxSymptoms: opts.MaxSymptoms,
	}, nil
}

// Load reads both artifacts from disk and builds a Service.
func Load(vocabPath, modelPath string, table advice.Table, opts Options) (*Service, error) {
	vocab, model, err := classifier.LoadArtifacts(vocabPath, modelPath)
	if err != nil {
		return nil, err
	}
	return NewService(vocab, model, table, opts)
}

// Predict encodes input, classifies it and resolves advice. Every failure,
// including a panic in the classifier, comes back as a *PredictionError.
func (s *Service) Predict(input []string) (p Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = Prediction{}
			err = apperrors.Internal(fmt.Errorf("panic: %v", r))
		}
	}()

	if s.maxSymptoms > 0 && len(input) > s.maxSymptoms {
		return Prediction{}, apperrors.BadInput(fmt.Sprintf("too many symptoms: %d (max %d)", len(input), s.maxSymptoms))
	}

	vec := s.vocab.Encode(input)
	label, err := s.model.Predict(vec)
	if err != nil {
		return Prediction{}, apperrors.Internal(err)
	}

	text, ok := s.table.Lookup(label)
	if !ok {
		text = advice.Fallback
	}

	return Prediction{
		Disease:      label,
		Advice:       text,
		Fallback:     !ok,
		Unrecognized: s.vocab.Unknown(input),
	}, nil
}

// Vocabulary returns the recognised symptoms in feature order.
func (s *Service) Vocabulary() []string {
	return s.vocab.Terms()
}

// LabelInfo describes one label the classifier can emit.
type LabelInfo struct {
	Disease   string `json:"disease"`
	HasAdvice bool   `json:"hasAdvice"`
}

// Labels lists every label with its advice coverage.
func (s *Service) Labels() []LabelInfo {
	labels := s.model.Labels()
	out := make([]LabelInfo, len(labels))
	for i, l := range labels {
		_, ok := s.table.Lookup(l)
		out[i] = LabelInfo{Disease: l, HasAdvice: ok}
	}
	return out
}

// Coverage returns the advice coverage computed at construction.
func (s *Service) Coverage() advice.Coverage {
	return s.coverage
}
