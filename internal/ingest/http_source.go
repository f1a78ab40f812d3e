package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"caption-eval-compare/backend/internal/coreengine/resultset"
)

const maxBody = 64 << 20

// HTTPSource fetches GET BaseURL/inputs/<name> from a result server.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s *HTTPSource) String() string { return "http:" + s.BaseURL }

func (s *HTTPSource) Load(ctx context.Context, name string) (*resultset.RawResultSet, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/inputs/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrSource, err)
	}
	raw, err := resultset.ParseRawResultSet(body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The result server reports missing inputs as {"error": ...}.
		var ie *resultset.IngestionError
		if errors.As(err, &ie) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s returned %s", ErrSource, req.URL, resp.Status)
	}
	return raw, err
}
