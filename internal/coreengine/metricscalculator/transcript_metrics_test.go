package metricscalculator

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateWER(t *testing.T) {
	cases := []struct {
		ref, hyp string
		want     float64
	}{
		{"the cat sat", "the cat sat", 0},
		{"the cat sat", "the bat sat", 1.0 / 3},
		{"the cat sat on the mat", "the cat on the mat", 1.0 / 6},
		{"a b", "a b c d", 1},
		{"  spaced   out ", "spaced out", 0},
		{"", "", 0},
	}
	for _, tc := range cases {
		got, err := CalculateWER(tc.ref, tc.hyp)
		if err != nil {
			t.Errorf("CalculateWER(%q, %q): %v", tc.ref, tc.hyp, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("CalculateWER(%q, %q) = %v, want %v", tc.ref, tc.hyp, got, tc.want)
		}
	}
}

func TestCalculateCER(t *testing.T) {
	got, err := CalculateCER("kitten", "sitting")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-3.0/6) > 1e-12 {
		t.Errorf("CER = %v, want 0.5", got)
	}
	got, err = CalculateCER("héllo", "hello")
	if err != nil || math.Abs(got-0.2) > 1e-12 {
		t.Errorf("CER over runes = %v, %v", got, err)
	}
}

func TestEmptyReference(t *testing.T) {
	got, err := CalculateWER("", "surprise words")
	if !errors.Is(err, ErrEmptyReference) || got != 1 {
		t.Errorf("WER = %v, %v", got, err)
	}
	got, err = CalculateCER("   ", "")
	if err != nil || got != 1 {
		t.Errorf("CER with blank hypothesis = %v, %v", got, err)
	}
}

func TestWordEdits(t *testing.T) {
	c := WordEdits("the cat sat on the mat", "a cat sat the mat today")
	if c.Substitutions != 1 || c.Deletions != 1 || c.Insertions != 1 || c.Matches != 4 {
		t.Fatalf("counts = %+v", c)
	}
	if c.Distance() != 3 {
		t.Fatalf("distance = %d", c.Distance())
	}
}
