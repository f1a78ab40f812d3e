// Package evaluationengine turns transcript manifests into WER result
// records that can be ingested next to externally produced runs.
package evaluationengine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"caption-eval-compare/backend/internal/coreengine/metricscalculator"
	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// Manifest lists the transcripts of one run. JSON manifests decode too.
type Manifest struct {
	Job   string         `yaml:"job" json:"job"`
	Tests []ManifestTest `yaml:"tests" json:"tests"`
}

// ManifestTest is one reference/hypothesis pair.
type ManifestTest struct {
	ID         string `yaml:"id" json:"id"`
	Reference  string `yaml:"reference" json:"reference"`
	Hypothesis string `yaml:"hypothesis" json:"hypothesis"`
}

// ScoreError reports a test that was left out of the record.
type ScoreError struct {
	TestID string
	Err    error
}

func (e ScoreError) Error() string {
	return fmt.Sprintf("test %q: %v", e.TestID, e.Err)
}

func (e ScoreError) Unwrap() error { return e.Err }

var (
	ErrMissingTestID   = errors.New("test id is empty")
	ErrDuplicateTestID = errors.New("test id is repeated")
)

// LoadManifest decodes a YAML or JSON manifest.
func LoadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("%w: manifest: %v", resultset.ErrMalformedInput, err)
	}
	if m.Job == "" {
		return Manifest{}, fmt.Errorf("%w: manifest has no job", resultset.ErrMalformedInput)
	}
	return m, nil
}

// LoadManifestFile opens and decodes the manifest at path.
func LoadManifestFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()
	return LoadManifest(f)
}

// ScoreManifest computes the WER of every test, as a percentage, in
// manifest order. Tests that cannot be scored are skipped and returned as
// ScoreErrors rather than counted as zero.
func ScoreManifest(m Manifest, log logrus.FieldLogger) (resultset.ResultRecord, []ScoreError) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("job", m.Job)
	log.Infof("scoring %d tests", len(m.Tests))

	rates := resultset.NewSeries()
	var failed []ScoreError
	for _, tc := range m.Tests {
		if tc.ID == "" {
			failed = append(failed, ScoreError{Err: ErrMissingTestID})
			continue
		}
		if _, seen := rates.Get(tc.ID); seen {
			failed = append(failed, ScoreError{TestID: tc.ID, Err: ErrDuplicateTestID})
			continue
		}

		wer, err := metricscalculator.CalculateWER(tc.Reference, tc.Hypothesis)
		if err != nil {
			log.WithField("test", tc.ID).Warnf("not scored: %v", err)
			failed = append(failed, ScoreError{TestID: tc.ID, Err: err})
			continue
		}
		edits := metricscalculator.WordEdits(tc.Reference, tc.Hypothesis)
		log.WithFields(logrus.Fields{
			"test": tc.ID,
			"wer":  wer,
			"sub":  edits.Substitutions,
			"ins":  edits.Insertions,
			"del":  edits.Deletions,
		}).Debug("scored")
		rates.Set(tc.ID, wer*100)
	}

	log.Infof("scored %d of %d tests", rates.Len(), len(m.Tests))
	return resultset.NewWERRecord(m.Job, rates), failed
}
