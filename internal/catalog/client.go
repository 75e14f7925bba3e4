// Package catalog is a read-only client for the TMDB v3 movie catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"filmtrack/internal/config"
)

const (
	placeholderPoster   = "/placeholder-movie.jpg"
	placeholderBackdrop = "/placeholder-backdrop.jpg"
)

// Cache stores raw response bodies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// APIError is returned for non-200 catalog responses.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API error: %s", e.Status)
}

// Client provides access to the TMDB API.
type Client struct {
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	cache        Cache
	cacheTTL     time.Duration
	baseURL      string
	imageBaseURL string
	accessToken  string
	language     string
	logger       *zap.Logger
}

// NewClient creates a TMDB client. cache may be nil.
func NewClient(cfg config.CatalogConfig, cache Cache, logger *zap.Logger) *Client {
	rps := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		rps = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		rateLimiter:  rate.NewLimiter(rps, burst),
		cache:        cache,
		cacheTTL:     cfg.CacheTTL,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
		accessToken:  cfg.AccessToken,
		language:     cfg.Language,
		logger:       logger.Named("catalog"),
	}
}

func pageOrDefault(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Discover lists movies matching filters, most popular first by default.
func (c *Client) Discover(ctx context.Context, f DiscoverFilters) (*MoviesResponse, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(pageOrDefault(f.Page)))
	if f.Genre != "" {
		params.Set("with_genres", f.Genre)
	}
	if f.Year != "" {
		params.Set("primary_release_year", f.Year)
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	params.Set("sort_by", sortBy)

	return getJSON[MoviesResponse](ctx, c, "/discover/movie", params, true)
}

func (c *Client) list(ctx context.Context, path string, page int) (*MoviesResponse, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(pageOrDefault(page)))
	return getJSON[MoviesResponse](ctx, c, path, params, true)
}

func (c *Client) Popular(ctx context.Context, page int) (*MoviesResponse, error) {
	return c.list(ctx, "/movie/popular", page)
}

func (c *Client) NowPlaying(ctx context.Context, page int) (*MoviesResponse, error) {
	return c.list(ctx, "/movie/now_playing", page)
}

func (c *Client) Upcoming(ctx context.Context, page int) (*MoviesResponse, error) {
	return c.list(ctx, "/movie/upcoming", page)
}

func (c *Client) TopRated(ctx context.Context, page int) (*MoviesResponse, error) {
	return c.list(ctx, "/movie/top_rated", page)
}

// Search finds movies by title.
func (c *Client) Search(ctx context.Context, query string, page int) (*MoviesResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(pageOrDefault(page)))
	return getJSON[MoviesResponse](ctx, c, "/search/movie", params, true)
}

func (c *Client) Details(ctx context.Context, movieID int) (*MovieDetails, error) {
	return getJSON[MovieDetails](ctx, c, fmt.Sprintf("/movie/%d", movieID), url.Values{}, true)
}

// Credits has no localized fields.
func (c *Client) Credits(ctx context.Context, movieID int) (*Credits, error) {
	return getJSON[Credits](ctx, c, fmt.Sprintf("/movie/%d/credits", movieID), url.Values{}, false)
}

func (c *Client) Similar(ctx context.Context, movieID, page int) (*MoviesResponse, error) {
	return c.list(ctx, fmt.Sprintf("/movie/%d/similar", movieID), page)
}

func (c *Client) Genres(ctx context.Context) (*GenresResponse, error) {
	return getJSON[GenresResponse](ctx, c, "/genre/movie/list", url.Values{}, true)
}

// ImageURL builds a poster URL, size defaults to w500.
func (c *Client) ImageURL(path *string, size string) string {
	if size == "" {
		size = "w500"
	}
	return c.imageURL(path, size, placeholderPoster)
}

// BackdropURL builds a backdrop URL, size defaults to w1280.
func (c *Client) BackdropURL(path *string, size string) string {
	if size == "" {
		size = "w1280"
	}
	return c.imageURL(path, size, placeholderBackdrop)
}

func (c *Client) imageURL(path *string, size, placeholder string) string {
	if path == nil || *path == "" {
		return placeholder
	}
	return c.imageBaseURL + "/" + size + *path
}

func getJSON[T any](ctx context.Context, c *Client, path string, params url.Values, localized bool) (*T, error) {
	var out T
	if err := c.get(ctx, path, params, localized, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, localized bool, out any) error {
	if localized && c.language != "" {
		params.Set("language", c.language)
	}
	key := path
	if len(params) > 0 {
		key += "?" + params.Encode()
	}

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return json.Unmarshal(body, out)
		}
	}

	body, err := c.fetch(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, pathAndQuery string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request %s: %w", pathAndQuery, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("catalog request",
		zap.String("path", pathAndQuery),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}
