package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// DirSource reads inputs below Root. An input that is a file is parsed as
// a whole result set. An input directory contributes one category per
// subdirectory, with one run per .json file in it; .json files directly in
// the input directory are filed under the base category.
type DirSource struct {
	Root string
}

func (s *DirSource) String() string { return "dir:" + s.Root }

func (s *DirSource) Load(ctx context.Context, name string) (*resultset.RawResultSet, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	p := filepath.Join(s.Root, name)
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &resultset.IngestionError{Message: fmt.Sprintf("no such file or directory: %s", name)}
		}
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSource, err)
		}
		return resultset.ParseRawResultSet(data)
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	raw := resultset.NewRawResultSet()
	raw.AddCategory(resultset.CategoryBase)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			if err := s.loadCategory(raw, filepath.Join(p, e.Name()), e.Name()); err != nil {
				return nil, err
			}
			continue
		}
		if !strings.HasSuffix(e.Name(), resultExt) {
			continue
		}
		if err := readRun(raw, resultset.CategoryBase, filepath.Join(p, e.Name())); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (s *DirSource) loadCategory(raw *resultset.RawResultSet, dir, category string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSource, err)
	}
	raw.AddCategory(category)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), resultExt) {
			continue
		}
		if err := readRun(raw, category, filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func readRun(raw *resultset.RawResultSet, category, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSource, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: %s is not valid JSON", resultset.ErrMalformedInput, filepath.Base(file))
	}
	return raw.SetRun(category, runID(file), data)
}
