// Package modelsdev implements ports.Source over a models.dev-style catalog:
//
//	{"<provider>": {"models": {"<model>": {"limit": {"context": 200000}}}}}
//
// Only limit.context is extracted. Models without a positive context limit
// and providers left with no models are dropped.
package modelsdev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corey/ctxwin/internal/ports"
	"github.com/tidwall/gjson"
)

// DefaultURL is the public models.dev catalog.
const DefaultURL = "https://models.dev/api.json"

// maxBody caps how much of the response is read.
const maxBody = 32 << 20

// ErrEmptyCatalog is returned when the catalog parses but yields no usable
// context window data.
var ErrEmptyCatalog = errors.New("catalog has no context window data")

// Source fetches the catalog from a URL.
type Source struct {
	url    string
	client *http.Client
}

var _ ports.Source = (*Source)(nil)

// NewSource creates a source for url. An empty url means DefaultURL.
func NewSource(url string) *Source {
	if url == "" {
		url = DefaultURL
	}
	return &Source{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the catalog URL.
func (s *Source) Name() string {
	return s.url
}

// Fetch downloads and parses the catalog.
func (s *Source) Fetch(ctx context.Context) (ports.ContextWindowMap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", s.url, err)
	}
	return Parse(body)
}

// Parse extracts provider -> model -> context limit from a catalog document.
func Parse(body []byte) (ports.ContextWindowMap, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parse catalog: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("parse catalog: top level is not an object")
	}

	out := make(ports.ContextWindowMap)
	root.ForEach(func(provider, entry gjson.Result) bool {
		models := entry.Get("models")
		if !models.IsObject() {
			return true
		}
		pm := make(ports.ProviderModelMap)
		models.ForEach(func(model, info gjson.Result) bool {
			ctxLimit := info.Get("limit.context")
			if ctxLimit.Type != gjson.Number {
				return true
			}
			if n := ctxLimit.Int(); n > 0 && float64(n) == ctxLimit.Float() {
				pm[model.String()] = int(n)
			}
			return true
		})
		if len(pm) > 0 {
			out[provider.String()] = pm
		}
		return true
	})

	if len(out) == 0 {
		return nil, ErrEmptyCatalog
	}
	return out, nil
}
