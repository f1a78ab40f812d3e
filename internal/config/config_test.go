package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || cfg.Ingest.Source != SourceDir || cfg.Ingest.Dir != "input" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Ingest.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Ingest.Timeout)
	}
	u, m := cfg.AnalysisDefaults()
	if u != distribution.UnitNative || m != resultset.CharCorrectionPct {
		t.Errorf("analysis defaults = %v %v", u, m)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	doc := `
server:
  port: 9000
ingest:
  source: http
  http_url: http://runner:3000
  timeout: 5s
analysis:
  correction_metric: word_correction_pct
  delay_unit: seconds
log:
  format: json
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAPEVAL_SERVER_API_TOKEN", "secret")
	t.Setenv("CAPEVAL_SERVER_PORT", "9100")

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 || cfg.Server.APIToken != "secret" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Ingest.Source != SourceHTTP || cfg.Ingest.HTTPURL != "http://runner:3000" || cfg.Ingest.Timeout != 5*time.Second {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	u, m := cfg.AnalysisDefaults()
	if u != distribution.UnitSeconds || m != resultset.WordCorrectionPct {
		t.Errorf("analysis = %v %v", u, m)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   Server{Port: 8080},
			Ingest:   Ingest{Source: SourceDir, Dir: "input"},
			Analysis: Analysis{DelayUnit: "ms"},
			Log:      Log{Level: "info", Format: "text"},
		}
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"source", func(c *Config) { c.Ingest.Source = "ftp" }},
		{"minio without bucket", func(c *Config) { c.Ingest.Source = SourceMinio; c.Minio.Endpoint = "m:9000" }},
		{"http without url", func(c *Config) { c.Ingest.Source = SourceHTTP }},
		{"metric", func(c *Config) { c.Analysis.CorrectionMetric = "bogus" }},
		{"delay unit", func(c *Config) { c.Analysis.DelayUnit = "fraction" }},
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
	}
	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}
