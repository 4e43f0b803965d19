package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Skufu/SymptomTriage/internal/advice"
	"github.com/Skufu/SymptomTriage/internal/classifier"
	"github.com/Skufu/SymptomTriage/internal/triage"
)

func TestRunWritesLoadableArtifacts(t *testing.T) {
	dir := t.TempDir()
	if err := run(options{OutDir: dir, Alpha: classifier.DefaultAlpha}); err != nil {
		t.Fatalf("run: %v", err)
	}

	svc, err := triage.Load(
		filepath.Join(dir, classifier.VocabularyFile),
		filepath.Join(dir, classifier.ModelFile),
		advice.Default(),
		triage.Options{StrictAdvice: true},
	)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := svc.Predict([]string{"fever"})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got.Disease != "Viral Infection" {
		t.Fatalf("expected Viral Infection, got %q", got.Disease)
	}
}

func TestRunStrictAdviceFailsForUnknownLabels(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.yaml")
	content := "- symptoms: [itching, redness]\n  disease: Eczema\n- symptoms: [fever]\n  disease: Viral Infection\n"
	if err := os.WriteFile(data, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := run(options{DataPath: data, OutDir: dir, Strict: true}); err == nil {
		t.Fatal("expected strict mode to reject label without advice")
	}
	if err := run(options{DataPath: data, OutDir: filepath.Join(dir, "out")}); err != nil {
		t.Fatalf("lenient mode should succeed: %v", err)
	}
}

func TestRunSampleCSVMatchesDemoSet(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join("..", "..", "data", "symptom_illness_dataset.csv")
	if err := run(options{DataPath: data, OutDir: dir, Strict: true}); err != nil {
		t.Fatalf("run: %v", err)
	}

	fromCSV, _, err := classifier.LoadArtifacts(filepath.Join(dir, classifier.VocabularyFile), filepath.Join(dir, classifier.ModelFile))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	demo, _, err := classifier.Train(classifier.DemoExamples(), classifier.TrainOptions{})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if fromCSV.Fingerprint() != demo.Fingerprint() {
		t.Fatal("sample CSV should produce the demo vocabulary")
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	t.Setenv("TRAIN_DATA", "")
	t.Setenv("ARTIFACT_DIR", "")
	opts := parseFlags(nil)
	if opts.OutDir != "artifacts" || opts.DataPath != "" || opts.Alpha != classifier.DefaultAlpha {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}
