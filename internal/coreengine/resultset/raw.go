package resultset

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CategoryBase collects result files that were not filed under a metric
// directory.
const CategoryBase = "base"

const errorKey = "error"

// RawResultSet is the category -> run -> record input as delivered by a
// result source. Categories and runs keep their input order.
type RawResultSet struct {
	categories *orderedmap.OrderedMap[string, *rawCategory]
}

type rawCategory struct {
	raw  json.RawMessage
	runs *orderedmap.OrderedMap[string, json.RawMessage]
}

// NewRawResultSet returns an empty set for sources that assemble results
// file by file.
func NewRawResultSet() *RawResultSet {
	return &RawResultSet{categories: orderedmap.New[string, *rawCategory]()}
}

// ParseRawResultSet decodes the JSON document served for one input
// directory. A top-level "error" entry is returned as *IngestionError and
// nothing else in the document is examined.
func ParseRawResultSet(data []byte) (*RawResultSet, error) {
	if !isObject(data) {
		return nil, malformed("result set is not a JSON object")
	}
	top := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, top); err != nil {
		return nil, malformed("result set: %v", err)
	}
	if msg, ok := top.Get(errorKey); ok {
		return nil, &IngestionError{Message: errorMessage(msg)}
	}

	raw := NewRawResultSet()
	for pair := top.Oldest(); pair != nil; pair = pair.Next() {
		raw.categories.Set(pair.Key, &rawCategory{raw: pair.Value})
	}
	return raw, nil
}

// AddCategory registers a category with no runs yet. Adding an existing
// category is a no-op.
func (r *RawResultSet) AddCategory(category string) {
	if r.categories == nil {
		r.categories = orderedmap.New[string, *rawCategory]()
	}
	if _, ok := r.categories.Get(category); ok {
		return
	}
	r.categories.Set(category, &rawCategory{runs: orderedmap.New[string, json.RawMessage]()})
}

// SetRun stores the record of one run under category. It fails with
// ErrMalformedInput, leaving the set unchanged, when category came from a
// parsed document and is not an object of runs.
func (r *RawResultSet) SetRun(category, runID string, record json.RawMessage) error {
	r.AddCategory(category)
	c, _ := r.categories.Get(category)
	if c.runs == nil {
		// Category came from a parsed document; keep its runs and add ours.
		runs, err := c.decodeRuns()
		if err != nil {
			return fmt.Errorf("category %q: %w", category, err)
		}
		c.runs, c.raw = runs, nil
	}
	c.runs.Set(runID, record)
	return nil
}

// Categories returns the category names in input order.
func (r *RawResultSet) Categories() []string {
	if r == nil || r.categories == nil {
		return nil
	}
	out := make([]string, 0, r.categories.Len())
	for pair := r.categories.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (c *rawCategory) decodeRuns() (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	if c.runs != nil {
		return c.runs, nil
	}
	if !isObject(c.raw) {
		return nil, malformed("not an object")
	}
	runs := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(c.raw, runs); err != nil {
		return nil, malformed("%v", err)
	}
	return runs, nil
}

func errorMessage(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(msg, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return strings.TrimSpace(string(msg))
}
