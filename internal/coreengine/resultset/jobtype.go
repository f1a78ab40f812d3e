package resultset

import "fmt"

// JobType identifies the metric family of a result record. It doubles as
// the category name a record is filed under.
type JobType string

const (
	JobTypeWER      JobType = "wer"
	JobTypeDelay    JobType = "delay"
	JobTypeCorrRate JobType = "corr_rate"
)

// JobTypes lists every supported job type in display order.
var JobTypes = []JobType{JobTypeWER, JobTypeDelay, JobTypeCorrRate}

// Valid reports whether t is a supported job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeWER, JobTypeDelay, JobTypeCorrRate:
		return true
	}
	return false
}

// Label is the upper-case metric name used in titles.
func (t JobType) Label() string {
	switch t {
	case JobTypeWER:
		return "WER"
	case JobTypeDelay:
		return "DELAY"
	case JobTypeCorrRate:
		return "CORRECTION RATE"
	}
	return string(t)
}

// ParseJobType validates s as a job type.
func ParseJobType(s string) (JobType, error) {
	t := JobType(s)
	if !t.Valid() {
		return "", malformed("unknown job type %q", s)
	}
	return t, nil
}

// CorrectionMetric selects which series of a corr_rate record is used.
type CorrectionMetric string

const (
	CharCorrectionPct    CorrectionMetric = "char_correction_pct"
	WordCorrectionPct    CorrectionMetric = "word_correction_pct"
	CharCorrectionPerSec CorrectionMetric = "char_correction_per_sec"
	WordCorrectionPerSec CorrectionMetric = "word_correction_per_sec"

	DefaultCorrectionMetric = CharCorrectionPct
)

// CorrectionMetrics lists the supported correction series.
var CorrectionMetrics = []CorrectionMetric{CharCorrectionPct, WordCorrectionPct, CharCorrectionPerSec, WordCorrectionPerSec}

// ParseCorrectionMetric validates s. An empty string selects the default.
func ParseCorrectionMetric(s string) (CorrectionMetric, error) {
	if s == "" {
		return DefaultCorrectionMetric, nil
	}
	for _, m := range CorrectionMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown correction metric %q", ErrMalformedInput, s)
}

// IsPercentage reports whether the metric is expressed in percent.
func (m CorrectionMetric) IsPercentage() bool {
	return m == CharCorrectionPct || m == WordCorrectionPct
}

// Label is the upper-case metric name used in titles.
func (m CorrectionMetric) Label() string {
	switch m {
	case CharCorrectionPct:
		return "CHAR CORRECTION RATE"
	case WordCorrectionPct:
		return "WORD CORRECTION RATE"
	case CharCorrectionPerSec:
		return "CHAR CORRECTIONS PER SECOND"
	case WordCorrectionPerSec:
		return "WORD CORRECTIONS PER SECOND"
	}
	return string(m)
}
