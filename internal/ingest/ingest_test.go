package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/sirupsen/logrus"

	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/datastore"
)

func werRecord(job string) string {
	return fmt.Sprintf(`{"job": %q, "job_type": "wer", "results": {"wer": {"t1": 1}}}`, job)
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDirSourceLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "run1", "wer", "b.json"), werRecord("b"))
	writeFile(t, filepath.Join(root, "run1", "wer", "a.json"), werRecord("a"))
	writeFile(t, filepath.Join(root, "run1", "wer", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, "run1", "extra.json"), werRecord("extra"))

	raw, err := (&DirSource{Root: root}).Load(context.Background(), "run1")
	if err != nil {
		t.Fatal(err)
	}
	if got := raw.Categories(); !slices.Equal(got, []string{"base", "wer"}) {
		t.Fatalf("categories = %v", got)
	}
	set, err := resultset.Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got := set.Keys(); !slices.Equal(got, []string{"extra_base", "a_wer", "b_wer"}) {
		t.Fatalf("keys = %v", got)
	}
}

func TestDirSourceFileInput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bundle.json"), `{"delay": {"r": {"job": "r", "job_type": "delay", "results": {"delays": {}}}}}`)
	set, err := Load(context.Background(), &DirSource{Root: root}, "bundle.json")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(set.Keys(), []string{"r_delay"}) {
		t.Fatalf("keys = %v", set.Keys())
	}
}

func TestDirSourceErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bad", "wer", "x.json"), "{not json")
	src := &DirSource{Root: root}

	if _, err := src.Load(context.Background(), "missing"); !errors.Is(err, resultset.ErrIngestion) {
		t.Errorf("missing err = %v", err)
	}
	for _, name := range []string{"", "..", "../etc", `a\b`} {
		if _, err := src.Load(context.Background(), name); !errors.Is(err, resultset.ErrMalformedInput) {
			t.Errorf("Load(%q) err = %v", name, err)
		}
	}
	if _, err := src.Load(context.Background(), "bad"); !errors.Is(err, resultset.ErrMalformedInput) {
		t.Errorf("bad json err = %v", err)
	}
}

type fakeObjects map[string]string

func (f fakeObjects) ListObjectKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (f fakeObjects) GetFileBytes(_ context.Context, name string) ([]byte, error) {
	v, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("no object %s", name)
	}
	return []byte(v), nil
}

func TestMinioSource(t *testing.T) {
	store := fakeObjects{
		"results/run1/wer/a.json":         werRecord("a"),
		"results/run1/corr_rate/c.json":   `{"job": "c", "job_type": "corr_rate", "results": {"char_correction_pct": {"t1": 3}}}`,
		"results/run1/top.json":           werRecord("top"),
		"results/run1/deep/nested/x.json": werRecord("x"),
		"results/single.json":             `{"wer": {}}`,
	}
	src := &MinioSource{Store: store, Prefix: "results"}

	set, err := Load(context.Background(), src, "run1")
	if err != nil {
		t.Fatal(err)
	}
	if got := set.Keys(); !slices.Equal(got, []string{"top_base", "c_corr_rate", "a_wer"}) {
		t.Fatalf("keys = %v", got)
	}

	if _, err := Load(context.Background(), src, "single"); err != nil {
		t.Fatalf("single file input: %v", err)
	}
	if _, err := src.Load(context.Background(), "nope"); !errors.Is(err, resultset.ErrIngestion) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inputs/run1":
			fmt.Fprintf(w, `{"base": {}, "wer": {"a.json": %s}}`, werRecord("a"))
		case "/inputs/down":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": "No such file or directory in public/inputs.", "message": "No such file or directory in public/inputs."}`)
		}
	}))
	defer srv.Close()
	src := &HTTPSource{BaseURL: srv.URL, Client: srv.Client()}

	set, err := Load(context.Background(), src, "run1")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(set.Keys(), []string{"a.json_wer"}) {
		t.Fatalf("keys = %v", set.Keys())
	}

	_, err = src.Load(context.Background(), "missing")
	var ie *resultset.IngestionError
	if !errors.As(err, &ie) || ie.Message != "No such file or directory in public/inputs." {
		t.Fatalf("missing err = %v", err)
	}
	if _, err := src.Load(context.Background(), "down"); !errors.Is(err, ErrSource) {
		t.Fatalf("down err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Load(ctx, "run1"); !errors.Is(err, ErrSource) {
		t.Fatalf("canceled err = %v", err)
	}
}

func TestIngesterKeepsSessionOnFailure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good", "wer", "a.json"), werRecord("a"))
	writeFile(t, filepath.Join(root, "mixed", "wer", "d.json"), `{"job": "d", "job_type": "delay", "results": {"delays": {}}}`)

	store := datastore.NewSessionStore()
	in := New(&DirSource{Root: root}, store, quiet())

	first, err := in.Ingest(context.Background(), "good")
	if err != nil {
		t.Fatal(err)
	}
	if first.Source != "dir:"+root+"/good" {
		t.Errorf("source = %q", first.Source)
	}
	for _, name := range []string{"mixed", "absent"} {
		if _, err := in.Ingest(context.Background(), name); err == nil {
			t.Fatalf("Ingest(%q) succeeded", name)
		}
	}
	cur, err := store.Current()
	if err != nil || cur != first {
		t.Fatalf("current = %v, %v", cur, err)
	}
}
