package apigateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"caption-eval-compare/backend/internal/coreengine/comparison"
	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/datastore"
	"caption-eval-compare/backend/internal/ingest"
	"caption-eval-compare/backend/internal/resultapi"
)

const doc = `{
  "wer": {
    "run10": {"job": "run10", "job_type": "wer", "results": {"wer": {"t1": 10, "t2": 20}}},
    "run2": {"job": "run2", "job_type": "wer", "results": {"wer": {"t1": 4, "t2": 30}}},
    "run3": {"job": "run3", "job_type": "wer", "results": {"wer": {"t1": 40, "t2": 50}}}
  },
  "delay": {
    "d1": {"job": "d1", "job_type": "delay", "results": {"delays": {"t": [{"word": "a", "caption_ms": 1500, "truth_ms": 1000, "delay_ms": 500}]}}},
    "d2": {"job": "d2", "job_type": "delay", "results": {"delays": {"t": [{"word": "a", "caption_ms": 1250, "truth_ms": 1000, "delay_ms": 250}]}}}
  }
}`

type fixture struct {
	router *gin.Engine
	root   string
}

func newFixture(t *testing.T, token string) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "bundle.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	store := datastore.NewSessionStore()
	in := ingest.New(&ingest.DirSource{Root: root}, store, log)
	h := resultapi.NewHandler(in, store, resultapi.Defaults{
		DelayUnit:        distribution.UnitSeconds,
		CorrectionMetric: resultset.CharCorrectionPct,
	}, log)
	return fixture{router: SetupRouter(h, token, log), root: root}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	w := newFixture(t, "tok").do(t, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestNoSessionYet(t *testing.T) {
	f := newFixture(t, "")
	for _, path := range []string{"/api/session", "/api/results", "/api/distributions/wer"} {
		if w := f.do(t, http.MethodGet, path, ""); w.Code != http.StatusConflict {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}

func TestIngestAndAnalyze(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/ingest/bundle.json", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("ingest = %d %s", w.Code, w.Body)
	}
	info := decode[datastore.SessionInfo](t, w)
	if info.ResultCount != 5 || info.ID == "" {
		t.Fatalf("info = %+v", info)
	}

	w = f.do(t, http.MethodGet, "/api/results", "")
	entries := decode[[]resultapi.ResultEntry](t, w)
	if len(entries) != 5 || entries[0].Key != "run10_wer" || entries[3].JobType != resultset.JobTypeDelay {
		t.Fatalf("entries = %+v", entries)
	}

	w = f.do(t, http.MethodGet, "/api/distributions/wer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("distribution = %d %s", w.Code, w.Body)
	}
	dist := decode[resultapi.DistributionResponse](t, w)
	if len(dist.Groups) != 3 || dist.Groups[0].Name != "run2" || dist.Groups[2].Name != "run10" {
		t.Fatalf("groups = %+v", dist.Groups)
	}

	w = f.do(t, http.MethodGet, "/api/distributions/delay", "")
	dist = decode[resultapi.DistributionResponse](t, w)
	if dist.YLabel != "Time (s)" || dist.Groups[0].Samples[0] != 0.5 {
		t.Fatalf("delay default unit: %+v", dist)
	}
	w = f.do(t, http.MethodGet, "/api/distributions/delay?unit=ms", "")
	dist = decode[resultapi.DistributionResponse](t, w)
	if dist.Groups[0].Samples[0] != 500 {
		t.Fatalf("delay ms: %+v", dist)
	}

	w = f.do(t, http.MethodPost, "/api/compare/differential", `{"files": ["run10_wer", "run2_wer"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("differential = %d %s", w.Code, w.Body)
	}
	diff := decode[comparison.DifferentialResult](t, w)
	if len(diff.Samples) != 2 || diff.Samples[0] != 6 || diff.Samples[1] != -10 {
		t.Fatalf("diff = %+v", diff)
	}

	w = f.do(t, http.MethodPost, "/api/compare/anova", `{"files": ["run10_wer", "run2_wer", "run3_wer"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("anova = %d %s", w.Code, w.Body)
	}
	anova := decode[map[string]any](t, w)
	if _, ok := anova["fValue"].(float64); !ok {
		t.Fatalf("anova = %v", anova)
	}
}

func TestStatusMapping(t *testing.T) {
	f := newFixture(t, "")
	if w := f.do(t, http.MethodPost, "/api/ingest/bundle.json", ""); w.Code != http.StatusCreated {
		t.Fatalf("ingest = %d", w.Code)
	}
	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/ingest/missing", "", http.StatusBadRequest},
		{http.MethodPost, "/api/ingest", `[1]`, http.StatusBadRequest},
		{http.MethodPost, "/api/ingest", `{"error": "runner offline"}`, http.StatusBadRequest},
		{http.MethodGet, "/api/distributions/bogus", "", http.StatusBadRequest},
		{http.MethodGet, "/api/distributions/wer?unit=seconds", "", http.StatusBadRequest},
		{http.MethodPost, "/api/compare/differential", `{"files": ["run10_wer"]}`, http.StatusBadRequest},
		{http.MethodPost, "/api/compare/differential", `{"files": ["run10_wer", "nope"]}`, http.StatusBadRequest},
		{http.MethodPost, "/api/compare/differential", `{"files": ["run10_wer", "d1_delay"]}`, http.StatusUnprocessableEntity},
		{http.MethodPost, "/api/compare/anova", `{"files": ["run10_wer"]}`, http.StatusUnprocessableEntity},
		{http.MethodPost, "/api/compare/anova", `{"files": ["d1_delay", "d2_delay"]}`, http.StatusUnprocessableEntity},
		{http.MethodPost, "/api/compare/anova", `not json`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := f.do(t, tc.method, tc.path, tc.body)
		if w.Code != tc.want {
			t.Errorf("%s %s %s = %d, want %d (%s)", tc.method, tc.path, tc.body, w.Code, tc.want, w.Body)
		}
	}

	// Failed ingestions keep the loaded session.
	info := decode[datastore.SessionInfo](t, f.do(t, http.MethodGet, "/api/session", ""))
	if info.ResultCount != 5 {
		t.Errorf("session replaced by failed ingest: %+v", info)
	}
}

func TestUploadIngest(t *testing.T) {
	f := newFixture(t, "")
	w := f.do(t, http.MethodPost, "/api/ingest", doc)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d %s", w.Code, w.Body)
	}
	if info := decode[datastore.SessionInfo](t, w); info.Source != "upload" {
		t.Errorf("source = %q", info.Source)
	}
}

func TestAPITokenRequired(t *testing.T) {
	f := newFixture(t, "tok")
	if w := f.do(t, http.MethodGet, "/api/session", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("with token = %d", w.Code)
	}
}
