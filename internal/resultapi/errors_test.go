package resultapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"caption-eval-compare/backend/internal/coreengine/comparison"
	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/datastore"
	"caption-eval-compare/backend/internal/ingest"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{datastore.ErrNoSession, http.StatusConflict},
		{fmt.Errorf("loading: %w", ingest.ErrSource), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&resultset.JobTypeMismatchError{A: resultset.JobTypeWER, B: resultset.JobTypeDelay}, http.StatusUnprocessableEntity},
		{comparison.ErrDegenerateAnova, http.StatusUnprocessableEntity},
		{comparison.ErrEmptyGroup, http.StatusUnprocessableEntity},
		{comparison.ErrInsufficientGroups, http.StatusUnprocessableEntity},
		{&resultset.IngestionError{Message: "gone"}, http.StatusBadRequest},
		{fmt.Errorf("%w: %w", comparison.ErrSelection, resultset.ErrUnknownKey), http.StatusBadRequest},
		{distribution.ErrUnitMismatch, http.StatusBadRequest},
		{resultset.ErrMalformedInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	h := &Handler{Defaults: Defaults{DelayUnit: distribution.UnitSeconds, CorrectionMetric: resultset.WordCorrectionPct}}

	opts, err := h.options(resultset.JobTypeDelay, "", "")
	if err != nil || opts.Unit != distribution.UnitSeconds || opts.CorrectionMetric != resultset.WordCorrectionPct {
		t.Errorf("delay defaults = %+v, %v", opts, err)
	}
	opts, err = h.options(resultset.JobTypeWER, "", "")
	if err != nil || opts.Unit != distribution.UnitNative {
		t.Errorf("wer defaults = %+v, %v", opts, err)
	}
	opts, err = h.options(resultset.JobTypeDelay, "ms", "char_correction_pct")
	if err != nil || opts.Unit != distribution.UnitNative || opts.CorrectionMetric != resultset.CharCorrectionPct {
		t.Errorf("explicit = %+v, %v", opts, err)
	}
	if _, err := h.options(resultset.JobTypeWER, "parsecs", ""); !errors.Is(err, distribution.ErrUnitMismatch) {
		t.Errorf("bad unit err = %v", err)
	}
}
