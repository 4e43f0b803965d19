package classifier

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Skufu/SymptomTriage/internal/apperrors"
	"github.com/Skufu/SymptomTriage/internal/symptoms"
)

func trainDemo(t *testing.T) (*symptoms.Vocabulary, *NaiveBayes) {
	t.Helper()
	vocab, model, err := Train(DemoExamples(), TrainOptions{})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	return vocab, model
}

func predict(t *testing.T, vocab *symptoms.Vocabulary, model Classifier, input ...string) string {
	t.Helper()
	label, err := model.Predict(vocab.Encode(input))
	if err != nil {
		t.Fatalf("predict %v: %v", input, err)
	}
	return label
}

func TestTrainReproducesTrainingLabels(t *testing.T) {
	vocab, model := trainDemo(t)
	for _, ex := range DemoExamples() {
		if got := predict(t, vocab, model, ex.Symptoms...); got != ex.Disease {
			t.Errorf("symptoms %v: expected %q, got %q", ex.Symptoms, ex.Disease, got)
		}
	}
}

func TestSingleSymptomScenarios(t *testing.T) {
	vocab, model := trainDemo(t)

	if got := predict(t, vocab, model, "fever"); got != "Viral Infection" {
		t.Fatalf("fever: expected Viral Infection, got %q", got)
	}
	if got := predict(t, vocab, model, "headache"); got != "Tension Headache" {
		t.Fatalf("headache: expected Tension Headache, got %q", got)
	}
	if got := predict(t, vocab, model, "cough"); got != "Respiratory Infection" {
		t.Fatalf("cough: expected Respiratory Infection, got %q", got)
	}
}

func TestZeroVectorPicksFirstLabelOnTie(t *testing.T) {
	vocab, model := trainDemo(t)
	// Demo priors are uniform, so only the tie-break decides.
	if got := predict(t, vocab, model); got != model.Labels()[0] {
		t.Fatalf("expected %q, got %q", model.Labels()[0], got)
	}
}

func TestLabelsAreSortedAndClosed(t *testing.T) {
	_, model := trainDemo(t)
	want := []string{
		"Bacterial Infection", "Heart disease", "Respiratory Infection", "Tension Headache",
		"Viral Infection", "cold", "dengue", "food poisoning", "migraine",
	}
	if !reflect.DeepEqual(model.Labels(), want) {
		t.Fatalf("expected %v, got %v", want, model.Labels())
	}
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	_, model := trainDemo(t)
	if _, err := model.Predict(symptoms.FeatureVector{1, 0}); err == nil {
		t.Fatal("expected error for mismatched vector width")
	}
}

func TestTrainRejectsBadInput(t *testing.T) {
	if _, _, err := Train(nil, TrainOptions{}); err == nil {
		t.Fatal("expected error for empty example set")
	}
	if _, _, err := Train([]Example{{Symptoms: []string{"fever"}}}, TrainOptions{}); err == nil {
		t.Fatal("expected error for missing label")
	}
	_, _, err := Train([]Example{{Symptoms: nil, Disease: "cold"}}, TrainOptions{})
	if !errors.Is(err, symptoms.ErrEmptyVocabulary) {
		t.Fatalf("expected empty vocabulary error, got %v", err)
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	vocab, model := trainDemo(t)
	dir := t.TempDir()

	vocabPath, modelPath, err := SaveArtifacts(dir, vocab, model)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	loadedVocab, loadedModel, err := LoadArtifacts(vocabPath, modelPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loadedVocab.Terms(), vocab.Terms()) {
		t.Fatalf("vocabulary changed across save/load")
	}
	for _, ex := range DemoExamples() {
		if got := predict(t, loadedVocab, loadedModel, ex.Symptoms...); got != ex.Disease {
			t.Errorf("loaded model: %v expected %q, got %q", ex.Symptoms, ex.Disease, got)
		}
	}
}

func TestReadModelRejectsForeignVocabulary(t *testing.T) {
	vocab, model := trainDemo(t)
	var buf bytes.Buffer
	if err := WriteModel(&buf, model, vocab); err != nil {
		t.Fatalf("write: %v", err)
	}

	terms := vocab.Terms()
	terms[0], terms[1] = terms[1], terms[0]
	swapped, err := symptoms.NewVocabulary(terms)
	if err != nil {
		t.Fatalf("vocabulary: %v", err)
	}

	_, err = ReadModel(&buf, swapped)
	var cfgErr *apperrors.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestReadArtifactRejectsWrongKindAndGarbage(t *testing.T) {
	vocab, _ := trainDemo(t)
	var buf bytes.Buffer
	if err := WriteVocabulary(&buf, vocab); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadModel(&buf, vocab); !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("expected configuration error for wrong kind, got %v", err)
	}

	if _, err := ReadVocabulary(bytes.NewReader([]byte("not gob at all"))); !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("expected configuration error for garbage, got %v", err)
	}
}

func TestLoadArtifactsMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := LoadArtifacts(filepath.Join(dir, VocabularyFile), filepath.Join(dir, ModelFile))
	if !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
}

func TestLoadExamplesFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"data.csv":  "Symptoms,Disease\n\"fever, cough\",Flu\nheadache,Tension Headache\n",
		"data.yaml": "- symptoms: [fever, cough]\n  disease: Flu\n- symptoms: [headache]\n  disease: Tension Headache\n",
		"data.json": `[{"symptoms":["fever"," cough "],"disease":"Flu"},{"symptoms":["headache"],"disease":"Tension Headache"}]`,
	}
	want := []Example{
		{Symptoms: []string{"fever", "cough"}, Disease: "Flu"},
		{Symptoms: []string{"headache"}, Disease: "Tension Headache"},
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := LoadExamples(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestLoadExamplesRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("fever"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadExamples(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
