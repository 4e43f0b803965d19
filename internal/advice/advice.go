package advice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Skufu/SymptomTriage/internal/apperrors"
)

// Fallback is returned for any label without an entry.
const Fallback = "No specific advice available. Consult a doctor."

var defaultEntries = map[string]string{
	"Bacterial Infection":   "Antibiotics may be needed. Consult a doctor.",
	"Viral Infection":       "Rest and hydration. Use OTC fever reducers if needed.",
	"migraine":              "Avoid triggers, use pain relievers, and rest in a dark room.",
	"dengue":                "Emergency! Hydrate and seek immediate medical care.",
	"cold":                  "Rest, fluids, and OTC cold medicine.",
	"Heart disease":         "EMERGENCY! Call for medical help immediately.",
	"food poisoning":        "Hydrate and monitor. Seek help if severe.",
	"Respiratory Infection": "Consider cough syrup. See doctor if worsens.",
	"Tension Headache":      "Rest, hydration, and OTC pain relievers.",
}

// Table maps a disease label to advice text. Keys are matched exactly,
// including case. A Table is never modified after construction.
type Table struct {
	entries map[string]string
}

// Default returns the advice table shipped with the service.
func Default() Table {
	return New(defaultEntries)
}

// New copies entries into a Table.
func New(entries map[string]string) Table {
	t := Table{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Lookup returns the advice for label and whether an entry exists.
func (t Table) Lookup(label string) (string, bool) {
	text, ok := t.entries[label]
	return text, ok
}

// Resolve returns the advice for label, or Fallback when there is none.
func (t Table) Resolve(label string) string {
	if text, ok := t.entries[label]; ok {
		return text
	}
	return Fallback
}

func (t Table) Len() int {
	return len(t.entries)
}

// Coverage is the result of checking a label set against a table.
type Coverage struct {
	Missing []string // labels with no entry, sorted
	// NearMatches maps a missing label to table keys that differ only in case.
	NearMatches map[string][]string
}

func (c Coverage) Complete() bool {
	return len(c.Missing) == 0
}

// Check reports every label without an exact entry. It never guesses a
// canonical casing; it only points out keys that would match if case were
// ignored.
func (t Table) Check(labels []string) Coverage {
	cov := Coverage{NearMatches: map[string][]string{}}
	for _, label := range labels {
		if _, ok := t.entries[label]; ok {
			continue
		}
		cov.Missing = append(cov.Missing, label)
		for key := range t.entries {
			if strings.EqualFold(key, label) {
				cov.NearMatches[label] = append(cov.NearMatches[label], key)
			}
		}
		sort.Strings(cov.NearMatches[label])
	}
	sort.Strings(cov.Missing)
	return cov
}

// Err converts an incomplete coverage into a ConfigurationError.
func (c Coverage) Err() error {
	if c.Complete() {
		return nil
	}
	return apperrors.Configuration("advice", fmt.Sprintf("no entry for labels %s", c.describe()), nil)
}

// Warnings returns one log line per missing label.
func (c Coverage) Warnings() []string {
	out := make([]string, 0, len(c.Missing))
	for _, label := range c.Missing {
		line := fmt.Sprintf("advice table has no entry for label %q; fallback advice will be used", label)
		if near := c.NearMatches[label]; len(near) > 0 {
			line += fmt.Sprintf(" (case-insensitive match: %s)", strings.Join(quoteAll(near), ", "))
		}
		out = append(out, line)
	}
	return out
}

func (c Coverage) describe() string {
	return strings.Join(quoteAll(c.Missing), ", ")
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
