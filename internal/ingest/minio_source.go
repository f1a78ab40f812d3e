package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// ObjectReader is the part of the object store a MinioSource needs.
type ObjectReader interface {
	ListObjectKeys(ctx context.Context, prefix string) ([]string, error)
	GetFileBytes(ctx context.Context, objectName string) ([]byte, error)
}

// MinioSource reads inputs stored under Prefix in a bucket with the
// DirSource layout: Prefix/name.json is a whole result set, otherwise
// Prefix/name/<category>/<run>.json and Prefix/name/<run>.json.
type MinioSource struct {
	Store  ObjectReader
	Prefix string
}

func (s *MinioSource) String() string { return "minio:" + s.Prefix }

func (s *MinioSource) Load(ctx context.Context, name string) (*resultset.RawResultSet, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	base := path.Join(s.Prefix, name)

	keys, err := s.Store.ListObjectKeys(ctx, base+"/")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	if len(keys) == 0 {
		data, err := s.Store.GetFileBytes(ctx, base+resultExt)
		if err != nil {
			return nil, &resultset.IngestionError{Message: fmt.Sprintf("no such input: %s", name)}
		}
		return resultset.ParseRawResultSet(data)
	}

	raw := resultset.NewRawResultSet()
	raw.AddCategory(resultset.CategoryBase)
	for _, key := range keys {
		rel := strings.TrimPrefix(key, base+"/")
		if !strings.HasSuffix(rel, resultExt) {
			continue
		}
		category := resultset.CategoryBase
		parts := strings.Split(rel, "/")
		switch len(parts) {
		case 1:
		case 2:
			category = parts[0]
		default:
			continue
		}

		data, err := s.Store.GetFileBytes(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSource, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: %s is not valid JSON", resultset.ErrMalformedInput, key)
		}
		if err := raw.SetRun(category, runID(rel), data); err != nil {
			return nil, err
		}
	}
	return raw, nil
}
