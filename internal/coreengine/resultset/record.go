package resultset

import (
	"bytes"
	"encoding/json"
)

// ResultRecord is one run's result file: the job that produced it and its
// metric payload. Payload.JobType() always equals JobType.
type ResultRecord struct {
	Job     string
	JobType JobType
	Payload Payload
}

// NewWERRecord builds a wer record from per-test percentages.
func NewWERRecord(job string, rates *Series) ResultRecord {
	return ResultRecord{Job: job, JobType: JobTypeWER, Payload: &WERPayload{Rates: rates}}
}

// NewDelayRecord builds a delay record.
func NewDelayRecord(job string, delays *DelaySeries) ResultRecord {
	return ResultRecord{Job: job, JobType: JobTypeDelay, Payload: &DelayPayload{Delays: delays}}
}

// NewCorrectionRecord builds a corr_rate record.
func NewCorrectionRecord(job string, series map[CorrectionMetric]*Series) ResultRecord {
	return ResultRecord{Job: job, JobType: JobTypeCorrRate, Payload: NewCorrectionPayload(series)}
}

type wireRecord struct {
	Job     string      `json:"job"`
	JobType *string     `json:"job_type"`
	Results wireResults `json:"results"`
}

type wireResults struct {
	WER                  *Series      `json:"wer,omitempty"`
	Delays               *DelaySeries `json:"delays,omitempty"`
	CharCorrectionPct    *Series      `json:"char_correction_pct,omitempty"`
	WordCorrectionPct    *Series      `json:"word_correction_pct,omitempty"`
	CharCorrectionPerSec *Series      `json:"char_correction_per_sec,omitempty"`
	WordCorrectionPerSec *Series      `json:"word_correction_per_sec,omitempty"`

	// Older result writers misspelled this key.
	LegacyCharCorrectionPerSec *Series `json:"char_correciton_per_sec,omitempty"`
}

// DecodeRecord parses one result file. Every failure wraps
// ErrMalformedInput.
func DecodeRecord(data []byte) (ResultRecord, error) {
	if !isObject(data) {
		return ResultRecord{}, malformed("result record is not an object")
	}
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return ResultRecord{}, malformed("result record: %v", err)
	}
	if w.JobType == nil {
		return ResultRecord{}, malformed("result record %q has no job_type", w.Job)
	}
	jobType, err := ParseJobType(*w.JobType)
	if err != nil {
		return ResultRecord{}, err
	}

	switch jobType {
	case JobTypeWER:
		if w.Results.WER == nil {
			return ResultRecord{}, malformed("wer record %q has no results.wer", w.Job)
		}
		return NewWERRecord(w.Job, w.Results.WER), nil
	case JobTypeDelay:
		if w.Results.Delays == nil {
			return ResultRecord{}, malformed("delay record %q has no results.delays", w.Job)
		}
		return NewDelayRecord(w.Job, w.Results.Delays), nil
	case JobTypeCorrRate:
		perSec := w.Results.CharCorrectionPerSec
		if perSec == nil {
			perSec = w.Results.LegacyCharCorrectionPerSec
		}
		p := NewCorrectionPayload(map[CorrectionMetric]*Series{
			CharCorrectionPct:    w.Results.CharCorrectionPct,
			WordCorrectionPct:    w.Results.WordCorrectionPct,
			CharCorrectionPerSec: perSec,
			WordCorrectionPerSec: w.Results.WordCorrectionPerSec,
		})
		if len(p.metrics) == 0 {
			return ResultRecord{}, malformed("corr_rate record %q has no correction series", w.Job)
		}
		return ResultRecord{Job: w.Job, JobType: JobTypeCorrRate, Payload: p}, nil
	}
	return ResultRecord{}, malformed("unknown job type %q", jobType)
}

func (r *ResultRecord) UnmarshalJSON(data []byte) error {
	rec, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalJSON writes the record back in the result-file layout.
func (r ResultRecord) MarshalJSON() ([]byte, error) {
	jobType := string(r.JobType)
	w := wireRecord{Job: r.Job, JobType: &jobType}
	switch p := r.Payload.(type) {
	case *WERPayload:
		w.Results.WER = p.Rates
	case *DelayPayload:
		w.Results.Delays = p.Delays
	case *CorrectionPayload:
		w.Results.CharCorrectionPct = p.metrics[CharCorrectionPct]
		w.Results.WordCorrectionPct = p.metrics[WordCorrectionPct]
		w.Results.CharCorrectionPerSec = p.metrics[CharCorrectionPerSec]
		w.Results.WordCorrectionPerSec = p.metrics[WordCorrectionPerSec]
	case nil:
	default:
		return nil, malformed("unsupported payload %T", p)
	}
	return json.Marshal(w)
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
