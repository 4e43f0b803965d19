package classifier

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Skufu/SymptomTriage/internal/apperrors"
	"github.com/Skufu/SymptomTriage/internal/symptoms"
)

const (
	artifactMagic   = "symptom-triage"
	artifactVersion = 1

	kindVocabulary = "vocabulary"
	kindClassifier = "classifier"

	VocabularyFile = "vocabulary.bin"
	ModelFile      = "model.bin"
)

type artifactHeader struct {
	Magic   string
	Version int
	Kind    string
}

type vocabularyPayload struct {
	Terms []string
}

type modelPayload struct {
	Algorithm             string
	VocabularySize        int
	VocabularyFingerprint string
	Labels                []string
	ClassLogPrior         []float64
	FeatureLogProb        [][]float64
	Alpha                 float64
}

// WriteVocabulary encodes vocab as a versioned blob.
func WriteVocabulary(w io.Writer, vocab *symptoms.Vocabulary) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(artifactHeader{Magic: artifactMagic, Version: artifactVersion, Kind: kindVocabulary}); err != nil {
		return fmt.Errorf("encode vocabulary header: %w", err)
	}
	if err := enc.Encode(vocabularyPayload{Terms: vocab.Terms()}); err != nil {
		return fmt.Errorf("encode vocabulary: %w", err)
	}
	return nil
}

// ReadVocabulary decodes a blob written by WriteVocabulary. Any problem is a
// ConfigurationError.
func ReadVocabulary(r io.Reader) (*symptoms.Vocabulary, error) {
	dec := gob.NewDecoder(r)
	if err := readHeader(dec, kindVocabulary); err != nil {
		return nil, err
	}
	var p vocabularyPayload
	if err := dec.Decode(&p); err != nil {
		return nil, apperrors.Configuration(kindVocabulary, "corrupt payload", err)
	}
	return symptoms.NewVocabulary(p.Terms)
}

// WriteModel encodes model together with the fingerprint of the vocabulary it
// was trained against.
func WriteModel(w io.Writer, model *NaiveBayes, vocab *symptoms.Vocabulary) error {
	if model.features != vocab.Len() {
		return fmt.Errorf("model width %d does not match vocabulary size %d", model.features, vocab.Len())
	}
	enc := gob.NewEncoder(w)
	if err := enc.Encode(artifactHeader{Magic: artifactMagic, Version: artifactVersion, Kind: kindClassifier}); err != nil {
		return fmt.Errorf("encode model header: %w", err)
	}
	p := modelPayload{
		Algorithm:             AlgorithmMultinomialNB,
		VocabularySize:        vocab.Len(),
		VocabularyFingerprint: vocab.Fingerprint(),
		Labels:                model.labels,
		ClassLogPrior:         model.classLogPrior,
		FeatureLogProb:        model.featureLogProb,
		Alpha:                 model.alpha,
	}
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// ReadModel decodes a blob written by WriteModel and checks it against vocab.
// A model trained on a different vocabulary is rejected.
func ReadModel(r io.Reader, vocab *symptoms.Vocabulary) (*NaiveBayes, error) {
	dec := gob.NewDecoder(r)
	if err := readHeader(dec, kindClassifier); err != nil {
		return nil, err
	}
	var p modelPayload
	if err := dec.Decode(&p); err != nil {
		return nil, apperrors.Configuration(kindClassifier, "corrupt payload", err)
	}
	if p.Algorithm != AlgorithmMultinomialNB {
		return nil, apperrors.Configuration(kindClassifier, fmt.Sprintf("unsupported algorithm %q", p.Algorithm), nil)
	}
	if p.VocabularySize != vocab.Len() || p.VocabularyFingerprint != vocab.Fingerprint() {
		return nil, apperrors.Configuration(kindClassifier,
			fmt.Sprintf("trained on a different vocabulary (size %d, loaded %d)", p.VocabularySize, vocab.Len()), nil)
	}

	m := &NaiveBayes{
		labels:         p.Labels,
		classLogPrior:  p.ClassLogPrior,
		featureLogProb: p.FeatureLogProb,
		features:       p.VocabularySize,
		alpha:          p.Alpha,
	}
	if err := m.validate(); err != nil {
		return nil, apperrors.Configuration(kindClassifier, "malformed parameters", err)
	}
	return m, nil
}

func readHeader(dec *gob.Decoder, kind string) error {
	var h artifactHeader
	if err := dec.Decode(&h); err != nil {
		return apperrors.Configuration(kind, "unreadable header", err)
	}
	if h.Magic != artifactMagic {
		return apperrors.Configuration(kind, "not a symptom-triage artifact", nil)
	}
	if h.Version != artifactVersion {
		return apperrors.Configuration(kind, fmt.Sprintf("unsupported format version %d", h.Version), nil)
	}
	if h.Kind != kind {
		return apperrors.Configuration(kind, fmt.Sprintf("artifact holds a %s", h.Kind), nil)
	}
	return nil
}

// SaveArtifacts writes both blobs into dir and returns their paths.
func SaveArtifacts(dir string, vocab *symptoms.Vocabulary, model *NaiveBayes) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create artifact dir: %w", err)
	}

	vocabPath := filepath.Join(dir, VocabularyFile)
	if err := writeFile(vocabPath, func(w io.Writer) error { return WriteVocabulary(w, vocab) }); err != nil {
		return "", "", err
	}
	modelPath := filepath.Join(dir, ModelFile)
	if err := writeFile(modelPath, func(w io.Writer) error { return WriteModel(w, model, vocab) }); err != nil {
		return "", "", err
	}
	return vocabPath, modelPath, nil
}

// LoadArtifacts reads the vocabulary blob and then the model blob.
func LoadArtifacts(vocabPath, modelPath string) (*symptoms.Vocabulary, *NaiveBayes, error) {
	vf, err := os.Open(vocabPath)
	if err != nil {
		return nil, nil, apperrors.Configuration(kindVocabulary, "cannot open "+vocabPath, err)
	}
	defer vf.Close()

	vocab, err := ReadVocabulary(vf)
	if err != nil {
		return nil, nil, err
	}

	mf, err := os.Open(modelPath)
	if err != nil {
		return nil, nil, apperrors.Configuration(kindClassifier, "cannot open "+modelPath, err)
	}
	defer mf.Close()

	model, err := ReadModel(mf, vocab)
	if err != nil {
		return nil, nil, err
	}
	return vocab, model, nil
}

// writeFile replaces path via a temp file in the same directory.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
