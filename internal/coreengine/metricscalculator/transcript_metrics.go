// Package metricscalculator scores a hypothesis transcript against its
// reference with word and character error rates.
package metricscalculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ErrEmptyReference is returned when a non-empty hypothesis is scored
// against an empty reference. The rate is reported as 1.0.
var ErrEmptyReference = errors.New("reference is empty")

// every edit costs 1
var editCosts = levenshtein.DefaultOptionsWithSub

// EditCounts breaks an alignment down by operation.
type EditCounts struct {
	Substitutions int `json:"substitutions" yaml:"substitutions"`
	Insertions    int `json:"insertions" yaml:"insertions"`
	Deletions     int `json:"deletions" yaml:"deletions"`
	Matches       int `json:"matches" yaml:"matches"`
}

// Distance is the number of edits in the alignment.
func (c EditCounts) Distance() int {
	return c.Substitutions + c.Insertions + c.Deletions
}

// CalculateWER returns the word error rate of hypothesis against reference:
// word-level edit distance over the number of reference words.
func CalculateWER(reference, hypothesis string) (float64, error) {
	ref, hyp := encodeWords(strings.Fields(reference), strings.Fields(hypothesis))
	return rate(ref, hyp, "words")
}

// CalculateCER returns the character error rate of hypothesis against
// reference, counting runes.
func CalculateCER(reference, hypothesis string) (float64, error) {
	return rate([]rune(reference), []rune(hypothesis), "characters")
}

// WordEdits aligns the two transcripts word by word and counts each kind
// of edit.
func WordEdits(reference, hypothesis string) EditCounts {
	ref, hyp := encodeWords(strings.Fields(reference), strings.Fields(hypothesis))
	var c EditCounts
	for _, op := range levenshtein.EditScriptForStrings(ref, hyp, editCosts) {
		switch op {
		case levenshtein.Sub:
			c.Substitutions++
		case levenshtein.Ins:
			c.Insertions++
		case levenshtein.Del:
			c.Deletions++
		case levenshtein.Match:
			c.Matches++
		}
	}
	return c
}

func rate(ref, hyp []rune, what string) (float64, error) {
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0, nil
		}
		return 1, fmt.Errorf("%w: cannot normalize %d hypothesis %s", ErrEmptyReference, len(hyp), what)
	}
	d := levenshtein.DistanceForStrings(ref, hyp, editCosts)
	return float64(d) / float64(len(ref)), nil
}

// encodeWords maps every distinct word to its own rune so word sequences
// can be aligned with the rune-based distance functions.
func encodeWords(ref, hyp []string) ([]rune, []rune) {
	ids := make(map[string]rune, len(ref)+len(hyp))
	enc := func(words []string) []rune {
		out := make([]rune, len(words))
		for i, w := range words {
			id, ok := ids[w]
			if !ok {
				id = rune(len(ids) + 1)
				ids[w] = id
			}
			out[i] = id
		}
		return out
	}
	return enc(ref), enc(hyp)
}
