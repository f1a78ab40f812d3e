package resultset

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Payload is the metric content of a result record. The concrete types are
// *WERPayload, *CorrectionPayload and *DelayPayload; consumers switch on
// them exhaustively.
type Payload interface {
	JobType() JobType
	sealed()
}

// WERPayload holds per-test word error rates in percent.
type WERPayload struct {
	Rates *Series
}

func (*WERPayload) JobType() JobType { return JobTypeWER }
func (*WERPayload) sealed()          {}

// CorrectionPayload holds every correction series present in a corr_rate
// record.
type CorrectionPayload struct {
	metrics map[CorrectionMetric]*Series
}

func (*CorrectionPayload) JobType() JobType { return JobTypeCorrRate }
func (*CorrectionPayload) sealed()          {}

// NewCorrectionPayload builds a payload from the given series. Nil series
// are dropped.
func NewCorrectionPayload(series map[CorrectionMetric]*Series) *CorrectionPayload {
	p := &CorrectionPayload{metrics: make(map[CorrectionMetric]*Series, len(series))}
	for m, s := range series {
		if s != nil {
			p.metrics[m] = s
		}
	}
	return p
}

// Series returns the values for metric m.
func (p *CorrectionPayload) Series(m CorrectionMetric) (*Series, bool) {
	s, ok := p.metrics[m]
	return s, ok
}

// Metrics lists the metrics present, in CorrectionMetrics order.
func (p *CorrectionPayload) Metrics() []CorrectionMetric {
	var out []CorrectionMetric
	for _, m := range CorrectionMetrics {
		if _, ok := p.metrics[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// DelayPayload holds the caption delay events of every test.
type DelayPayload struct {
	Delays *DelaySeries
}

func (*DelayPayload) JobType() JobType { return JobTypeDelay }
func (*DelayPayload) sealed()          {}

// DelayEvent is one captioned word and its timing against ground truth.
type DelayEvent struct {
	Word      string  `json:"word"`
	CaptionMs float64 `json:"caption_ms"`
	TruthMs   float64 `json:"truth_ms"`
	DelayMs   float64 `json:"delay_ms"`
}

// Series is a test-id -> value mapping that remembers insertion order.
type Series struct {
	m *orderedmap.OrderedMap[string, float64]
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{m: orderedmap.New[string, float64]()}
}

// Set adds or replaces the value for a test id. Replacing keeps the
// original position.
func (s *Series) Set(testID string, v float64) {
	s.m.Set(testID, v)
}

// Get returns the value stored for testID.
func (s *Series) Get(testID string) (float64, bool) {
	if s == nil || s.m == nil {
		return 0, false
	}
	return s.m.Get(testID)
}

// Len returns the number of tests.
func (s *Series) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// TestIDs returns the test ids in stored order.
func (s *Series) TestIDs() []string {
	out := make([]string, 0, s.Len())
	s.each(func(id string, _ float64) { out = append(out, id) })
	return out
}

// Values returns the values in stored order.
func (s *Series) Values() []float64 {
	out := make([]float64, 0, s.Len())
	s.each(func(_ string, v float64) { out = append(out, v) })
	return out
}

func (s *Series) each(fn func(string, float64)) {
	if s == nil || s.m == nil {
		return
	}
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (s *Series) UnmarshalJSON(data []byte) error {
	s.m = orderedmap.New[string, float64]()
	return s.m.UnmarshalJSON(data)
}

func (s *Series) MarshalJSON() ([]byte, error) {
	if s == nil || s.m == nil {
		return []byte("{}"), nil
	}
	return s.m.MarshalJSON()
}

// DelaySeries is a test-id -> events mapping that remembers insertion order.
type DelaySeries struct {
	m *orderedmap.OrderedMap[string, []DelayEvent]
}

// NewDelaySeries returns an empty delay series.
func NewDelaySeries() *DelaySeries {
	return &DelaySeries{m: orderedmap.New[string, []DelayEvent]()}
}

// Set stores the events of one test.
func (s *DelaySeries) Set(testID string, events []DelayEvent) {
	s.m.Set(testID, events)
}

// Get returns the events of testID.
func (s *DelaySeries) Get(testID string) ([]DelayEvent, bool) {
	if s == nil || s.m == nil {
		return nil, false
	}
	return s.m.Get(testID)
}

// Len returns the number of tests.
func (s *DelaySeries) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Each calls fn for every test in stored order.
func (s *DelaySeries) Each(fn func(testID string, events []DelayEvent)) {
	if s == nil || s.m == nil {
		return
	}
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (s *DelaySeries) UnmarshalJSON(data []byte) error {
	s.m = orderedmap.New[string, []DelayEvent]()
	return s.m.UnmarshalJSON(data)
}

func (s *DelaySeries) MarshalJSON() ([]byte, error) {
	if s == nil || s.m == nil {
		return []byte("{}"), nil
	}
	return s.m.MarshalJSON()
}

var (
	_ json.Marshaler   = (*Series)(nil)
	_ json.Unmarshaler = (*Series)(nil)
	_ json.Marshaler   = (*DelaySeries)(nil)
	_ json.Unmarshaler = (*DelaySeries)(nil)
)
