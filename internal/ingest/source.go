// Package ingest loads raw result sets from a directory tree, a MinIO
// bucket or a remote result server, and publishes them as sessions.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"caption-eval-compare/backend/internal/config"
	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/objectstore"
)

// ErrSource reports that a source could not be read at all, as opposed to
// returning content that failed to parse.
var ErrSource = errors.New("result source unavailable")

// Source loads the input called name.
type Source interface {
	Load(ctx context.Context, name string) (*resultset.RawResultSet, error)
	String() string
}

const resultExt = ".json"

// validName rejects names that could escape the source root.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid input name %q", resultset.ErrMalformedInput, name)
	}
	return nil
}

func runID(file string) string {
	return strings.TrimSuffix(path.Base(file), resultExt)
}

// FromConfig builds the source selected by cfg.Ingest.Source.
func FromConfig(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (Source, error) {
	switch cfg.Ingest.Source {
	case config.SourceDir:
		return &DirSource{Root: cfg.Ingest.Dir}, nil
	case config.SourceHTTP:
		return &HTTPSource{
			BaseURL: strings.TrimRight(cfg.Ingest.HTTPURL, "/"),
			Client:  &http.Client{Timeout: cfg.Ingest.Timeout},
		}, nil
	case config.SourceMinio:
		mc, err := objectstore.NewMinioClient(ctx, cfg.Minio, log)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSource, err)
		}
		return &MinioSource{Store: mc, Prefix: cfg.Minio.Prefix}, nil
	}
	return nil, fmt.Errorf("unknown ingest source %q", cfg.Ingest.Source)
}
