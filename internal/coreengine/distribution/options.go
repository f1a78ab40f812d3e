package distribution

import (
	"errors"
	"fmt"

	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// ErrUnitMismatch reports a unit that does not apply to the metric.
var ErrUnitMismatch = errors.New("unit does not apply to metric")

// Unit selects how raw values are scaled before they leave the core.
type Unit string

const (
	// UnitNative keeps values as stored: milliseconds for delays, percent
	// for rates.
	UnitNative Unit = "native"
	// UnitSeconds converts delays from milliseconds to seconds.
	UnitSeconds Unit = "seconds"
	// UnitFraction converts percentages to fractions in [0, 1].
	UnitFraction Unit = "fraction"
)

// ParseUnit accepts the unit names and a few common spellings.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "", "native", "ms", "pct", "%":
		return UnitNative, nil
	case "seconds", "s", "sec":
		return UnitSeconds, nil
	case "fraction", "frac":
		return UnitFraction, nil
	}
	return "", fmt.Errorf("%w: unknown unit %q", ErrUnitMismatch, s)
}

// Options controls how samples are taken from a record.
type Options struct {
	Unit             Unit
	CorrectionMetric resultset.CorrectionMetric
}

// ParseOptions builds Options from their string forms.
func ParseOptions(unit, metric string) (Options, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return Options{}, err
	}
	m, err := resultset.ParseCorrectionMetric(metric)
	if err != nil {
		return Options{}, err
	}
	return Options{Unit: u, CorrectionMetric: m}, nil
}

func (o Options) unit() Unit {
	if o.Unit == "" {
		return UnitNative
	}
	return o.Unit
}

// Metric returns the selected correction metric, or the default.
func (o Options) Metric() resultset.CorrectionMetric {
	if o.CorrectionMetric == "" {
		return resultset.DefaultCorrectionMetric
	}
	return o.CorrectionMetric
}

// Divisor returns what raw values of job type t are divided by, or
// ErrUnitMismatch when the unit makes no sense for t.
func (o Options) Divisor(t resultset.JobType) (float64, error) {
	switch u := o.unit(); u {
	case UnitNative:
		return 1, nil
	case UnitSeconds:
		if t != resultset.JobTypeDelay {
			return 0, fmt.Errorf("%w: %s for %s", ErrUnitMismatch, u, t)
		}
		return 1000, nil
	case UnitFraction:
		if t == resultset.JobTypeDelay || (t == resultset.JobTypeCorrRate && !o.Metric().IsPercentage()) {
			return 0, fmt.Errorf("%w: %s for %s", ErrUnitMismatch, u, t)
		}
		return 100, nil
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrUnitMismatch, u)
	}
}

// MetricLabel names the metric of job type t as used in titles.
func (o Options) MetricLabel(t resultset.JobType) string {
	if t == resultset.JobTypeCorrRate {
		return o.Metric().Label()
	}
	return t.Label()
}

// AxisLabel describes values of job type t in this unit, with suffix
// appended to the quantity: "Time Differential (s)".
func (o Options) AxisLabel(t resultset.JobType, suffix string) string {
	join := func(s string) string {
		if suffix == "" {
			return s
		}
		return s + " " + suffix
	}
	switch {
	case t == resultset.JobTypeDelay && o.unit() == UnitSeconds:
		return join("Time") + " (s)"
	case t == resultset.JobTypeDelay:
		return join("Time") + " (ms)"
	case t == resultset.JobTypeCorrRate && !o.Metric().IsPercentage():
		return join("Rate") + " (per s)"
	case o.unit() == UnitFraction:
		return join("Fraction")
	default:
		return join("Percentage") + " (%)"
	}
}
