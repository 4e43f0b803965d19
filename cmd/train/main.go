package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Skufu/SymptomTriage/internal/advice"
	"github.com/Skufu/SymptomTriage/internal/classifier"
)

type options struct {
	DataPath string
	OutDir   string
	Alpha    float64
	Strict   bool
}

func main() {
	_ = godotenv.Load()

	opts := parseFlags(os.Args[1:])
	if err := run(opts); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}

func parseFlags(args []string) options {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var opts options
	fs.StringVar(&opts.DataPath, "data", os.Getenv("TRAIN_DATA"), "dataset file (.csv, .yaml, .json); empty uses the built-in demo set")
	fs.StringVar(&opts.OutDir, "out", getEnv("ARTIFACT_DIR", "artifacts"), "directory for vocabulary.bin and model.bin")
	fs.Float64Var(&opts.Alpha, "alpha", classifier.DefaultAlpha, "additive smoothing")
	fs.BoolVar(&opts.Strict, "strict-advice", false, "fail when a label has no advice entry")
	fs.Parse(args)
	return opts
}

func run(opts options) error {
	examples := classifier.DemoExamples()
	source := "built-in demo set"
	if opts.DataPath != "" {
		loaded, err := classifier.LoadExamples(opts.DataPath)
		if err != nil {
			return err
		}
		examples = loaded
		source = opts.DataPath
	}
	log.Printf("training on %d examples from %s", len(examples), source)

	vocab, model, err := classifier.Train(examples, classifier.TrainOptions{Alpha: opts.Alpha})
	if err != nil {
		return err
	}

	coverage := advice.Default().Check(model.Labels())
	for _, w := range coverage.Warnings() {
		log.Printf("warning: %s", w)
	}
	if opts.Strict {
		if err := coverage.Err(); err != nil {
			return err
		}
	}

	for _, ex := range examples {
		got, err := model.Predict(vocab.Encode(ex.Symptoms))
		if err != nil {
			return fmt.Errorf("self-check: %w", err)
		}
		if got != ex.Disease {
			log.Printf("self-check: %q predicts %q, labelled %q", ex.Symptoms, got, ex.Disease)
		}
	}

	vocabPath, modelPath, err := classifier.SaveArtifacts(opts.OutDir, vocab, model)
	if err != nil {
		return err
	}
	log.Printf("wrote %s (%d symptoms) and %s (%d labels)", vocabPath, vocab.Len(), modelPath, len(model.Labels()))
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
