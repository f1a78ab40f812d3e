// Package alphanum orders run identifiers so that embedded numbers compare
// by value: "run2" sorts before "run10".
package alphanum

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter compares keys segment by segment. Digit segments compare
// numerically, everything else compares case- and accent-insensitively.
// A Sorter is not safe for concurrent use; create one per goroutine.
type Sorter struct {
	col *collate.Collator
}

// NewSorter returns a Sorter using root-locale collation for text segments.
func NewSorter() *Sorter {
	return &Sorter{col: collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)}
}

// Compare returns a negative number when a sorts before b, a positive number
// when it sorts after, and zero only when a == b.
func (s *Sorter) Compare(a, b string) int {
	if a == "" || b == "" {
		switch {
		case a == b:
			return 0
		case a == "":
			return -1
		default:
			return 1
		}
	}

	as, bs := Segments(a), Segments(b)
	for i := 0; i < min(len(as), len(bs)); i++ {
		x, y := as[i], bs[i]
		var c int
		if isDigits(x) && isDigits(y) {
			c = compareNumeric(x, y)
		} else {
			c = s.col.CompareString(x, y)
		}
		if c != 0 {
			return c
		}
	}
	if c := cmp.Compare(len(as), len(bs)); c != 0 {
		return c
	}
	// Keys like "Run01" and "run1" are equal segment-wise; fall back to
	// bytes so that only identical keys compare equal.
	return strings.Compare(a, b)
}

// Sort returns a sorted copy of keys.
func (s *Sorter) Sort(keys []string) []string {
	out := slices.Clone(keys)
	slices.SortStableFunc(out, s.Compare)
	return out
}

// Compare is a convenience wrapper around a fresh Sorter.
func Compare(a, b string) int {
	return NewSorter().Compare(a, b)
}

// Sort returns keys in alphanumeric order without modifying the input.
func Sort(keys []string) []string {
	return NewSorter().Sort(keys)
}

// Segments splits s into maximal runs of decimal digits (any script) and
// non-digits, preserving order: "run10b" -> ["run", "10", "b"].
func Segments(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	digit := false
	for i, r := range s {
		d := unicode.IsDigit(r)
		if i == 0 {
			digit = d
			continue
		}
		if d != digit {
			out = append(out, s[start:i])
			start, digit = i, d
		}
	}
	return append(out, s[start:])
}

func isDigits(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && unicode.IsDigit(r)
}

// digitValue returns the value of a decimal digit rune. Decimal digits are
// encoded in contiguous runs from 0 to 9, so the value is the offset from
// the start of the run, modulo 10 for adjacent blocks.
func digitValue(r rune) byte {
	if r >= '0' && r <= '9' {
		return byte(r - '0')
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return byte((r - start) % 10)
}

// asciiDigits rewrites a digit run in ASCII without leading zeros.
func asciiDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		v := digitValue(r)
		if v == 0 && b.Len() == 0 {
			continue
		}
		b.WriteByte('0' + v)
	}
	return b.String()
}

// compareNumeric compares two digit runs by value without parsing, so
// arbitrarily long run numbers never overflow.
func compareNumeric(a, b string) int {
	a, b = asciiDigits(a), asciiDigits(b)
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
