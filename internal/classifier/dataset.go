package classifier

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadExamples reads a training set from path. The format follows the file
// extension:
//
//	.csv          header with "Symptoms" and "Disease" columns, symptoms comma separated
//	.yaml, .yml   list of {symptoms: [...], disease: ...}
//	.json         same shape as YAML
func LoadExamples(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var examples []Example
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		examples, err = parseCSV(f)
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&examples)
	case ".json":
		err = json.NewDecoder(f).Decode(&examples)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("dataset %s has no examples", path)
	}
	for i := range examples {
		examples[i].Symptoms = cleanSymptoms(examples[i].Symptoms)
		examples[i].Disease = strings.TrimSpace(examples[i].Disease)
	}
	return examples, nil
}

func parseCSV(r io.Reader) ([]Example, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	symptomCol, diseaseCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symptoms":
			symptomCol = i
		case "disease":
			diseaseCol = i
		}
	}
	if symptomCol < 0 || diseaseCol < 0 {
		return nil, fmt.Errorf("header must contain Symptoms and Disease columns, got %v", header)
	}

	var out []Example
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, Example{
			Symptoms: strings.Split(record[symptomCol], ","),
			Disease:  record[diseaseCol],
		})
	}
	return out, nil
}

// cleanSymptoms trims whitespace and drops empty entries. Case is kept, the
// encoder matches case-sensitively.
func cleanSymptoms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
