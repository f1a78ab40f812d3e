// Package resultset turns the category/run/record documents produced by
// evaluation runs into a flat, keyed collection of typed result records.
package resultset

import (
	"fmt"
	"slices"
)

// Result is one normalized entry: the record plus where it came from.
type Result struct {
	Key      string
	RunID    string
	Category string
	Record   ResultRecord
}

// ResultSet is the normalized collection. It is never modified after
// Normalize returns it, so it can be shared between goroutines.
type ResultSet struct {
	results []Result
	index   map[string]int
}

// ResultKey derives the collection key of a run filed under category.
func ResultKey(runID, category string) string {
	return runID + "_" + category
}

// Normalize flattens raw into a ResultSet keyed by ResultKey, in input
// order. Records filed under a metric category must carry that job type.
// Normalize does not modify raw and returns equal sets for equal input.
func Normalize(raw *RawResultSet) (*ResultSet, error) {
	if raw == nil {
		return nil, malformed("nil result set")
	}
	set := &ResultSet{index: make(map[string]int)}
	if raw.categories == nil {
		return set, nil
	}
	for cat := raw.categories.Oldest(); cat != nil; cat = cat.Next() {
		category := cat.Key
		runs, err := cat.Value.decodeRuns()
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
		for run := runs.Oldest(); run != nil; run = run.Next() {
			rec, err := DecodeRecord(run.Value)
			if err != nil {
				return nil, fmt.Errorf("category %q, run %q: %w", category, run.Key, err)
			}
			if filed := JobType(category); filed.Valid() && filed != rec.JobType {
				return nil, malformed("category %q, run %q: record has job_type %q", category, run.Key, rec.JobType)
			}
			key := ResultKey(run.Key, category)
			if _, dup := set.index[key]; dup {
				return nil, malformed("duplicate result key %q", key)
			}
			set.index[key] = len(set.results)
			set.results = append(set.results, Result{Key: key, RunID: run.Key, Category: category, Record: rec})
		}
	}
	return set, nil
}

// Len returns the number of results.
func (s *ResultSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.results)
}

// Keys returns every key in insertion order.
func (s *ResultSet) Keys() []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.All() {
		out = append(out, r.Key)
	}
	return out
}

// All returns a copy of the results in insertion order.
func (s *ResultSet) All() []Result {
	if s == nil {
		return nil
	}
	return slices.Clone(s.results)
}

// Get returns the result stored under key.
func (s *ResultSet) Get(key string) (Result, bool) {
	if s == nil {
		return Result{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return Result{}, false
	}
	return s.results[i], true
}

// Lookup resolves keys in the given order.
func (s *ResultSet) Lookup(keys ...string) ([]Result, error) {
	out := make([]Result, 0, len(keys))
	for _, k := range keys {
		r, ok := s.Get(k)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, k)
		}
		out = append(out, r)
	}
	return out, nil
}

// ByJobType returns the results of one job type in insertion order.
func (s *ResultSet) ByJobType(t JobType) []Result {
	var out []Result
	for _, r := range s.All() {
		if r.Record.JobType == t {
			out = append(out, r)
		}
	}
	return out
}
