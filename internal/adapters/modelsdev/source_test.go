package modelsdev

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corey/ctxwin/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "anthropic": {
    "id": "anthropic",
    "models": {
      "claude-sonnet-4-5": {"id": "claude-sonnet-4-5", "limit": {"context": 200000, "output": 64000}},
      "claude-custom-test": {"limit": {"context": 999999}}
    }
  },
  "openai": {
    "models": {
      "gpt-4o": {"limit": {"context": 128000, "output": 16384}},
      "no-limit": {"name": "missing limit"},
      "zero": {"limit": {"context": 0}},
      "string": {"limit": {"context": "128000"}},
      "fraction": {"limit": {"context": 1.5}}
    }
  },
  "empty-provider": {"models": {}},
  "no-models": {"name": "nothing here"},
  "weird": "not an object"
}`

func TestParse_ExtractsContextLimits(t *testing.T) {
	got, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, ports.ContextWindowMap{
		"anthropic": {"claude-sonnet-4-5": 200000, "claude-custom-test": 999999},
		"openai":    {"gpt-4o": 128000},
	}, got)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `{"anthropic":`,
		"array":          `[]`,
		"no usable data": `{"openai": {"models": {"x": {}}}}`,
		"empty object":   `{}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Parse([]byte(doc))
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestParse_EmptyCatalogSentinel(t *testing.T) {
	_, err := Parse([]byte(`{}`))
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	src := NewSource(srv.URL)
	assert.Equal(t, srv.URL, src.Name())

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 999999, got["anthropic"]["claude-custom-test"])
}

func TestSource_FetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSource_FetchHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewSource(srv.URL).Fetch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSource_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewSource("").Name())
}
