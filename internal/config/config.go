// Package config loads service settings from defaults, an optional YAML
// file and CAPEVAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
)

const EnvPrefix = "CAPEVAL"

// Ingestion source kinds.
const (
	SourceDir   = "dir"
	SourceMinio = "minio"
	SourceHTTP  = "http"
)

var ErrInvalid = errors.New("invalid configuration")

type Server struct {
	Port     int    `mapstructure:"port"`
	APIToken string `mapstructure:"api_token"`
}

type Ingest struct {
	Source  string        `mapstructure:"source"`
	Dir     string        `mapstructure:"dir"`
	HTTPURL string        `mapstructure:"http_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Minio struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Prefix          string `mapstructure:"prefix"`
}

// Analysis holds the defaults applied when a request leaves unit or
// metric unset.
type Analysis struct {
	CorrectionMetric string `mapstructure:"correction_metric"`
	DelayUnit        string `mapstructure:"delay_unit"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server   Server   `mapstructure:"server"`
	Ingest   Ingest   `mapstructure:"ingest"`
	Minio    Minio    `mapstructure:"minio"`
	Analysis Analysis `mapstructure:"analysis"`
	Log      Log      `mapstructure:"log"`
}

// New returns a viper instance with every key defaulted and environment
// overrides enabled. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.api_token", "")
	v.SetDefault("ingest.source", SourceDir)
	v.SetDefault("ingest.dir", "input")
	v.SetDefault("ingest.http_url", "")
	v.SetDefault("ingest.timeout", 30*time.Second)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.bucket", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.prefix", "")
	v.SetDefault("analysis.correction_metric", string(resultset.DefaultCorrectionMetric))
	v.SetDefault("analysis.delay_unit", string(distribution.UnitNative))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (or ./capeval.yaml when path is empty and the file
// exists) into v and returns the validated configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("capeval")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Ingest.Source {
	case SourceDir:
		if c.Ingest.Dir == "" {
			problems = append(problems, "ingest.dir is required for the dir source")
		}
	case SourceMinio:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			problems = append(problems, "minio.endpoint and minio.bucket are required for the minio source")
		}
	case SourceHTTP:
		if c.Ingest.HTTPURL == "" {
			problems = append(problems, "ingest.http_url is required for the http source")
		}
	default:
		problems = append(problems, fmt.Sprintf("ingest.source %q is not one of dir, minio, http", c.Ingest.Source))
	}
	if c.Ingest.Timeout < 0 {
		problems = append(problems, "ingest.timeout must not be negative")
	}
	if _, err := resultset.ParseCorrectionMetric(c.Analysis.CorrectionMetric); err != nil {
		problems = append(problems, "analysis.correction_metric: "+err.Error())
	}
	if u, err := distribution.ParseUnit(c.Analysis.DelayUnit); err != nil || u == distribution.UnitFraction {
		problems = append(problems, fmt.Sprintf("analysis.delay_unit %q is not a time unit", c.Analysis.DelayUnit))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level: "+err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// AnalysisDefaults resolves the configured analysis defaults.
func (c *Config) AnalysisDefaults() (distribution.Unit, resultset.CorrectionMetric) {
	u, _ := distribution.ParseUnit(c.Analysis.DelayUnit)
	m, _ := resultset.ParseCorrectionMetric(c.Analysis.CorrectionMetric)
	return u, m
}
