package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestFetcher_Content_NoCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><main>Careers at Acme</main></body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{})
	text, err := f.Content(context.Background(), server.URL, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Careers at Acme")
}

func TestFetcher_Content_CachesResult(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("<html><body><main>Cached page</main></body></html>"))
	}))
	defer server.Close()

	_, rdb := newTestRedis(t)
	f := NewFetcher(FetcherConfig{Redis: rdb, CacheTTL: time.Hour})

	first, err := f.Content(context.Background(), server.URL, DefaultTextSelectors())
	require.NoError(t, err)

	second, err := f.Content(context.Background(), server.URL, DefaultTextSelectors())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits, "second fetch should come from cache")
}

func TestFetcher_Content_CacheExpires(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("<html><body><main>Expiring page</main></body></html>"))
	}))
	defer server.Close()

	mr, rdb := newTestRedis(t)
	f := NewFetcher(FetcherConfig{Redis: rdb, CacheTTL: time.Minute})

	_, err := f.Content(context.Background(), server.URL, DefaultTextSelectors())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = f.Content(context.Background(), server.URL, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestFetcher_Content_FetchErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{})
	_, err := f.Content(context.Background(), server.URL, DefaultTextSelectors())
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}
