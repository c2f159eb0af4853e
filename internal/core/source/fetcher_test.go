package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-parser/internal/infrastructure/config"
	"recipe-parser/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Fetch: config.FetchConfig{
			Timeout:      5 * time.Second,
			MaxSizeBytes: 1 << 20,
			UserAgent:    "recipe-parser/1.0",
		},
	}
}

func TestFetchOK(t *testing.T) {
	const body = "Chop the @onion{2} and heat the #pan.\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "recipe-parser/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(testConfig())
	got, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestFetchInvalidURL(t *testing.T) {
	f := NewFetcher(testConfig())

	for _, raw := range []string{"", "not a url", "ftp://example.com/recipe.cook", "file:///etc/passwd"} {
		_, err := f.Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, common.ErrInvalidURL, raw)
	}
}

func TestFetchNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, common.ErrFetchFailed)
}

func TestFetchNonTextContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0x00, 0x01})
	}))
	defer srv.Close()

	f := NewFetcher(testConfig())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, common.ErrFetchFailed)
}

func TestFetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Fetch.MaxSizeBytes = 16
	f := NewFetcher(cfg)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, common.ErrSourceTooLarge)
}
