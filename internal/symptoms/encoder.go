package symptoms

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/Skufu/SymptomTriage/internal/apperrors"
)

var (
	ErrEmptyVocabulary  = errors.New("vocabulary is empty")
	ErrDuplicateSymptom = errors.New("vocabulary contains a duplicate symptom")
	ErrBlankSymptom     = errors.New("vocabulary contains a blank symptom")
)

// Vocabulary is the ordered, frozen list of symptoms recognised by a trained
// model. Position i of a FeatureVector refers to Vocabulary entry i.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// FeatureVector marks which vocabulary symptoms are present (1) or absent (0).
type FeatureVector []uint8

// NewVocabulary freezes terms in the given order. Matching is exact and
// case-sensitive, so "Fever" and "fever" are different symptoms.
func NewVocabulary(terms []string) (*Vocabulary, error) {
	if len(terms) == 0 {
		return nil, apperrors.Configuration("vocabulary", "cannot build encoder", ErrEmptyVocabulary)
	}

	v := &Vocabulary{
		terms: make([]string, len(terms)),
		index: make(map[string]int, len(terms)),
	}
	for i, term := range terms {
		if term == "" {
			return nil, apperrors.Configuration("vocabulary", fmt.Sprintf("entry %d", i), ErrBlankSymptom)
		}
		if _, dup := v.index[term]; dup {
			return nil, apperrors.Configuration("vocabulary", fmt.Sprintf("entry %q", term), ErrDuplicateSymptom)
		}
		v.terms[i] = term
		v.index[term] = i
	}
	return v, nil
}

// BuildVocabulary collects every symptom seen across sets, drops duplicates
// and sorts the result byte-wise. The sort fixes the feature vector layout
// independently of example order.
func BuildVocabulary(sets [][]string) (*Vocabulary, error) {
	seen := make(map[string]struct{})
	terms := []string{}
	for _, set := range sets {
		for _, s := range set {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			terms = append(terms, s)
		}
	}
	sort.Strings(terms)
	return NewVocabulary(terms)
}

// Len returns the feature vector width.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Terms returns a copy of the vocabulary in layout order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Contains reports whether symptom is a recognised vocabulary entry.
func (v *Vocabulary) Contains(symptom string) bool {
	_, ok := v.index[symptom]
	return ok
}

// Fingerprint is a SHA-256 over the length-prefixed terms in order. Two
// vocabularies share a fingerprint only if they are byte-identical.
func (v *Vocabulary) Fingerprint() string {
	h := sha256.New()
	for _, t := range v.terms {
		fmt.Fprintf(h, "%d:%s;", len(t), t)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Encode maps input onto a vector of width Len. Tokens outside the vocabulary
// are ignored without error; order and duplicates in input do not matter.
func (v *Vocabulary) Encode(input []string) FeatureVector {
	vec := make(FeatureVector, len(v.terms))
	for _, s := range input {
		if i, ok := v.index[s]; ok {
			vec[i] = 1
		}
	}
	return vec
}

// Unknown returns the input tokens that Encode would ignore, in input order
// without duplicates.
func (v *Vocabulary) Unknown(input []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range input {
		if _, ok := v.index[s]; ok {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Encode builds a vector for input against vocabulary. It fails with a
// ConfigurationError when vocabulary is empty.
func Encode(vocabulary []string, input []string) (FeatureVector, error) {
	v, err := NewVocabulary(vocabulary)
	if err != nil {
		return nil, err
	}
	return v.Encode(input), nil
}

// Count returns the number of present features.
func (f FeatureVector) Count() int {
	n := 0
	for _, x := range f {
		n += int(x)
	}
	return n
}
