// Package distribution derives per-run sample arrays from a normalized
// result set, ready for box plots and statistics.
package distribution

import (
	"fmt"
	"slices"

	"github.com/aclements/go-moremath/stats"

	"caption-eval-compare/backend/internal/coreengine/alphanum"
	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// Group is the sample array of one run. Index is the position in the
// alphanumeric run order and is what callers key colors on.
type Group struct {
	Name    string    `json:"name" yaml:"name"`
	Key     string    `json:"key" yaml:"key"`
	Index   int       `json:"index" yaml:"index"`
	Samples []float64 `json:"samples" yaml:"samples"`
	Summary *Summary  `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Summary holds the box-plot statistics of a group. StdDev is nil for
// fewer than two samples.
type Summary struct {
	N      int      `json:"n" yaml:"n"`
	Mean   float64  `json:"mean" yaml:"mean"`
	Median float64  `json:"median" yaml:"median"`
	StdDev *float64 `json:"stddev,omitempty" yaml:"stddev,omitempty"`
	Min    float64  `json:"min" yaml:"min"`
	Max    float64  `json:"max" yaml:"max"`
	Q1     float64  `json:"q1" yaml:"q1"`
	Q3     float64  `json:"q3" yaml:"q3"`
}

// Extract returns one group per record of the given job type, ordered by
// run identifier. No matching records yields an empty, non-nil slice.
func Extract(set *resultset.ResultSet, category resultset.JobType, opts Options) ([]Group, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", resultset.ErrMalformedInput, category)
	}
	if _, err := opts.Divisor(category); err != nil {
		return nil, err
	}

	matches := set.ByJobType(category)
	sorter := alphanum.NewSorter()
	slices.SortStableFunc(matches, func(a, b resultset.Result) int {
		if c := sorter.Compare(a.RunID, b.RunID); c != 0 {
			return c
		}
		return sorter.Compare(a.Key, b.Key)
	})

	groups := make([]Group, 0, len(matches))
	for i, r := range matches {
		samples, err := Samples(r.Record, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Key, err)
		}
		groups = append(groups, Group{
			Name:    r.RunID,
			Key:     r.Key,
			Index:   i,
			Samples: samples,
			Summary: Summarize(samples),
		})
	}
	return groups, nil
}

// Samples flattens one record into numbers in stored order, scaled to
// opts.Unit. Delay records yield every event's delay, test by test.
func Samples(rec resultset.ResultRecord, opts Options) ([]float64, error) {
	div, err := opts.Divisor(rec.JobType)
	if err != nil {
		return nil, err
	}

	var raw []float64
	switch p := rec.Payload.(type) {
	case *resultset.WERPayload:
		raw = p.Rates.Values()
	case *resultset.CorrectionPayload:
		s, ok := p.Series(opts.Metric())
		if !ok {
			return nil, fmt.Errorf("%w: corr_rate record %q has no %s values", resultset.ErrMalformedInput, rec.Job, opts.Metric())
		}
		raw = s.Values()
	case *resultset.DelayPayload:
		raw = []float64{}
		p.Delays.Each(func(_ string, events []resultset.DelayEvent) {
			for _, ev := range events {
				raw = append(raw, ev.DelayMs)
			}
		})
	default:
		return nil, fmt.Errorf("%w: unsupported payload %T", resultset.ErrMalformedInput, p)
	}

	if div != 1 {
		for i := range raw {
			raw[i] /= div
		}
	}
	return raw, nil
}

// Summarize computes box-plot statistics, or nil for an empty sample.
func Summarize(xs []float64) *Summary {
	if len(xs) == 0 {
		return nil
	}
	s := stats.Sample{Xs: slices.Clone(xs)}
	s.Sort()
	lo, hi := s.Bounds()
	sum := &Summary{
		N:      len(xs),
		Mean:   s.Mean(),
		Median: s.Quantile(0.5),
		Min:    lo,
		Max:    hi,
		Q1:     s.Quantile(0.25),
		Q3:     s.Quantile(0.75),
	}
	if len(xs) > 1 {
		sd := s.StdDev()
		sum.StdDev = &sd
	}
	return sum
}
