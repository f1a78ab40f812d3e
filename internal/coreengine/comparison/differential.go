// Package comparison compares runs against each other: pointwise
// differentials between two runs and one-way ANOVA across several.
package comparison

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"

	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// ErrSelection reports a selection of result keys the comparison cannot
// use: unknown keys or the wrong number of them.
var ErrSelection = errors.New("invalid selection")

// DifferentialResult holds a minus b for every aligned test or delay event.
type DifferentialResult struct {
	Title   string    `json:"title" yaml:"title"`
	YLabel  string    `json:"yLabel" yaml:"yLabel"`
	Samples []float64 `json:"samples" yaml:"samples"`
	Mean    *float64  `json:"mean,omitempty" yaml:"mean,omitempty"`
	TTest   *TTest    `json:"ttest,omitempty" yaml:"ttest,omitempty"`
}

// TTest is a two-sided one-sample t-test of the differences against zero.
type TTest struct {
	T   float64 `json:"t" yaml:"t"`
	DoF float64 `json:"dof" yaml:"dof"`
	P   float64 `json:"p" yaml:"p"`
}

// Differential aligns b against a and returns a - b, in a's order.
//
// Rates are aligned by test id; ids present on one side only are skipped.
// Delay events are aligned within a test by (word, truth_ms), taking the
// first matching event of b; unmatched events are skipped. An empty result
// is valid.
func Differential(a, b resultset.Result, opts distribution.Options) (DifferentialResult, error) {
	jt := a.Record.JobType
	if jt != b.Record.JobType {
		return DifferentialResult{}, &resultset.JobTypeMismatchError{A: jt, B: b.Record.JobType}
	}
	div, err := opts.Divisor(jt)
	if err != nil {
		return DifferentialResult{}, err
	}

	diffs, err := differences(a.Record, b.Record, opts)
	if err != nil {
		return DifferentialResult{}, err
	}
	for i := range diffs {
		diffs[i] /= div
	}

	res := DifferentialResult{
		Title:   fmt.Sprintf("%s vs %s %s Differential", a.Key, b.Key, opts.MetricLabel(jt)),
		YLabel:  opts.AxisLabel(jt, "Differential"),
		Samples: diffs,
	}
	if len(diffs) > 0 {
		m := stats.Sample{Xs: diffs}.Mean()
		res.Mean = &m
	}
	res.TTest = zeroMeanTTest(diffs)
	return res, nil
}

// CompareDifferential resolves exactly two keys and compares them.
func CompareDifferential(set *resultset.ResultSet, keys []string, opts distribution.Options) (DifferentialResult, error) {
	if len(keys) != 2 {
		return DifferentialResult{}, fmt.Errorf("%w: differential needs 2 results, got %d", ErrSelection, len(keys))
	}
	rs, err := set.Lookup(keys...)
	if err != nil {
		return DifferentialResult{}, fmt.Errorf("%w: %w", ErrSelection, err)
	}
	return Differential(rs[0], rs[1], opts)
}

func differences(a, b resultset.ResultRecord, opts distribution.Options) ([]float64, error) {
	out := []float64{}
	switch pa := a.Payload.(type) {
	case *resultset.WERPayload:
		pb, ok := b.Payload.(*resultset.WERPayload)
		if !ok {
			return nil, &resultset.JobTypeMismatchError{A: a.JobType, B: b.JobType}
		}
		return alignSeries(pa.Rates, pb.Rates), nil

	case *resultset.CorrectionPayload:
		pb, ok := b.Payload.(*resultset.CorrectionPayload)
		if !ok {
			return nil, &resultset.JobTypeMismatchError{A: a.JobType, B: b.JobType}
		}
		m := opts.Metric()
		sa, okA := pa.Series(m)
		sb, okB := pb.Series(m)
		if !okA || !okB {
			return nil, fmt.Errorf("%w: both records need %s values", resultset.ErrMalformedInput, m)
		}
		return alignSeries(sa, sb), nil

	case *resultset.DelayPayload:
		pb, ok := b.Payload.(*resultset.DelayPayload)
		if !ok {
			return nil, &resultset.JobTypeMismatchError{A: a.JobType, B: b.JobType}
		}
		pa.Delays.Each(func(testID string, events []resultset.DelayEvent) {
			other, ok := pb.Delays.Get(testID)
			if !ok {
				return
			}
			for _, ev := range events {
				if match, ok := firstMatch(other, ev); ok {
					out = append(out, ev.DelayMs-match.DelayMs)
				}
			}
		})
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unsupported payload %T", resultset.ErrMalformedInput, pa)
	}
}

func alignSeries(a, b *resultset.Series) []float64 {
	out := []float64{}
	for _, id := range a.TestIDs() {
		va, _ := a.Get(id)
		if vb, ok := b.Get(id); ok {
			out = append(out, va-vb)
		}
	}
	return out
}

// firstMatch finds the first event with the same word and ground-truth
// time. Later duplicates are never considered.
func firstMatch(events []resultset.DelayEvent, ev resultset.DelayEvent) (resultset.DelayEvent, bool) {
	for _, e := range events {
		if e.Word == ev.Word && e.TruthMs == ev.TruthMs {
			return e, true
		}
	}
	return resultset.DelayEvent{}, false
}

func zeroMeanTTest(diffs []float64) *TTest {
	if len(diffs) < 2 {
		return nil
	}
	r, err := stats.OneSampleTTest(stats.Sample{Xs: diffs}, 0, stats.LocationDiffers)
	if err != nil || math.IsNaN(r.P) || math.IsInf(r.T, 0) {
		return nil
	}
	return &TTest{T: r.T, DoF: r.DoF, P: r.P}
}
