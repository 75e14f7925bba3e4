package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"filmtrack/internal/config"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.entries[key]
	return b, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, body []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = body
	return nil
}

func newTestClient(t *testing.T, srv *httptest.Server, cache Cache) *Client {
	t.Helper()
	return NewClient(config.CatalogConfig{
		BaseURL:      srv.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p/",
		AccessToken:  "tok",
		Language:     "en-US",
		CacheTTL:     time.Hour,
	}, cache, zaptest.NewLogger(t))
}

func TestDiscoverBuildsQuery(t *testing.T) {
	var mu sync.Mutex
	var gotQuery, gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"page":2,"results":[{"id":550,"title":"Fight Club","poster_path":"/p.jpg"}],"total_pages":9,"total_results":170}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	res, err := c.Discover(context.Background(), DiscoverFilters{Page: 2, Genre: "18", Year: "1999"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/discover/movie", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "language=en-US&page=2&primary_release_year=1999&sort_by=popularity.desc&with_genres=18", gotQuery)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Fight Club", res.Results[0].Title)
	assert.Equal(t, 9, res.TotalPages)
}

func TestEndpoints(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	c := newTestClient(t, srv, nil)

	_, err := c.Popular(ctx, 0)
	require.NoError(t, err)
	_, err = c.NowPlaying(ctx, 1)
	require.NoError(t, err)
	_, err = c.Upcoming(ctx, 1)
	require.NoError(t, err)
	_, err = c.TopRated(ctx, 3)
	require.NoError(t, err)
	_, err = c.Search(ctx, "blade runner", 1)
	require.NoError(t, err)
	_, err = c.Details(ctx, 78)
	require.NoError(t, err)
	_, err = c.Credits(ctx, 78)
	require.NoError(t, err)
	_, err = c.Similar(ctx, 78, 2)
	require.NoError(t, err)
	_, err = c.Genres(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/movie/popular?language=en-US&page=1",
		"/movie/now_playing?language=en-US&page=1",
		"/movie/upcoming?language=en-US&page=1",
		"/movie/top_rated?language=en-US&page=3",
		"/search/movie?language=en-US&page=1&query=blade+runner",
		"/movie/78?language=en-US",
		"/movie/78/credits?",
		"/movie/78/similar?language=en-US&page=2",
		"/genre/movie/list?language=en-US",
	}, paths)
}

func TestNon200ReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, nil).Details(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "TMDB API error: 404")
}

func TestResponsesAreCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"genres":[{"id":18,"name":"Drama"}]}`))
	}))
	defer srv.Close()

	cache := newMemoryCache()
	c := newTestClient(t, srv, cache)

	for range 3 {
		res, err := c.Genres(context.Background())
		require.NoError(t, err)
		require.Len(t, res.Genres, 1)
		assert.Equal(t, "Drama", res.Genres[0].Name)
	}
	assert.EqualValues(t, 1, hits.Load())
	assert.Contains(t, cache.entries, "/genre/movie/list?language=en-US")
}

func TestImageURLs(t *testing.T) {
	c := NewClient(config.CatalogConfig{ImageBaseURL: "https://image.tmdb.org/t/p"}, nil, zaptest.NewLogger(t))
	p := "/abc.jpg"
	empty := ""

	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", c.ImageURL(&p, ""))
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/abc.jpg", c.ImageURL(&p, "w185"))
	assert.Equal(t, placeholderPoster, c.ImageURL(nil, ""))
	assert.Equal(t, placeholderPoster, c.ImageURL(&empty, ""))
	assert.Equal(t, "https://image.tmdb.org/t/p/w1280/abc.jpg", c.BackdropURL(&p, ""))
	assert.Equal(t, placeholderBackdrop, c.BackdropURL(nil, "w780"))
}

func TestRateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(config.CatalogConfig{BaseURL: srv.URL, RequestsPerSecond: 0.001, Burst: 1}, nil, zaptest.NewLogger(t))
	_, err := c.Popular(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Popular(ctx, 1)
	assert.Error(t, err)
}
