package comparison

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
)

var (
	ErrInsufficientGroups = errors.New("anova needs at least two groups")
	ErrEmptyGroup         = errors.New("anova group has no samples")
	ErrDegenerateAnova    = errors.New("anova is degenerate")
)

// AnovaResult is the outcome of a one-way ANOVA. FValue is +Inf (and
// PValue 0) when the groups differ but have no within-group variance.
type AnovaResult struct {
	FValue float64  `json:"fValue" yaml:"fValue"`
	PValue float64  `json:"pValue" yaml:"pValue"`
	Files  []string `json:"files,omitempty" yaml:"files,omitempty"`
}

// MarshalJSON writes an infinite F as the string "+Inf"; JSON numbers
// cannot hold it.
func (r AnovaResult) MarshalJSON() ([]byte, error) {
	var f any = r.FValue
	if math.IsInf(r.FValue, 1) {
		f = "+Inf"
	}
	return json.Marshal(struct {
		FValue any      `json:"fValue"`
		PValue float64  `json:"pValue"`
		Files  []string `json:"files,omitempty"`
	}{f, r.PValue, r.Files})
}

// Anova runs a one-way ANOVA over groups and returns the F statistic and
// its right-tail probability under F(k-1, N-k).
func Anova(groups [][]float64) (AnovaResult, error) {
	k := len(groups)
	if k < 2 {
		return AnovaResult{}, fmt.Errorf("%w: got %d", ErrInsufficientGroups, k)
	}

	var all []float64
	for i, g := range groups {
		if len(g) == 0 {
			return AnovaResult{}, fmt.Errorf("%w: group %d", ErrEmptyGroup, i)
		}
		all = append(all, g...)
	}
	totalN := len(all)

	dfBetween := k - 1
	dfWithin := totalN - k
	if dfWithin <= 0 {
		return AnovaResult{}, fmt.Errorf("%w: %d samples in %d groups leave no within-group degrees of freedom", ErrDegenerateAnova, totalN, k)
	}

	// Group and overall means use the same running mean, so identical
	// values give identical means.
	overallMean := stats.Sample{Xs: all}.Mean()
	var ssb, ssw float64
	sameMeans := true
	var firstMean float64
	for i, g := range groups {
		mean := stats.Sample{Xs: g}.Mean()
		if i == 0 {
			firstMean = mean
		} else if mean != firstMean {
			sameMeans = false
		}
		ssb += float64(len(g)) * (mean - overallMean) * (mean - overallMean)
		for _, v := range g {
			ssw += (v - mean) * (v - mean)
		}
	}

	msb := ssb / float64(dfBetween)
	msw := ssw / float64(dfWithin)
	if msw == 0 {
		if msb == 0 || sameMeans {
			return AnovaResult{}, fmt.Errorf("%w: every sample is identical", ErrDegenerateAnova)
		}
		return AnovaResult{FValue: math.Inf(1), PValue: 0}, nil
	}

	f := msb / msw
	dist := distuv.F{D1: float64(dfBetween), D2: float64(dfWithin)}
	return AnovaResult{FValue: f, PValue: dist.Survival(f)}, nil
}

// CompareAnova runs Anova over the samples of the selected results. All
// results must share the job type of the first one.
func CompareAnova(set *resultset.ResultSet, keys []string, opts distribution.Options) (AnovaResult, error) {
	if len(keys) < 2 {
		return AnovaResult{}, fmt.Errorf("%w: got %d", ErrInsufficientGroups, len(keys))
	}
	rs, err := set.Lookup(keys...)
	if err != nil {
		return AnovaResult{}, fmt.Errorf("%w: %w", ErrSelection, err)
	}

	jt := rs[0].Record.JobType
	groups := make([][]float64, 0, len(rs))
	for _, r := range rs {
		if r.Record.JobType != jt {
			return AnovaResult{}, &resultset.JobTypeMismatchError{A: jt, B: r.Record.JobType}
		}
		samples, err := distribution.Samples(r.Record, opts)
		if err != nil {
			return AnovaResult{}, fmt.Errorf("%s: %w", r.Key, err)
		}
		groups = append(groups, samples)
	}

	res, err := Anova(groups)
	if err != nil {
		return AnovaResult{}, err
	}
	res.Files = slices.Clone(keys)
	return res, nil
}
