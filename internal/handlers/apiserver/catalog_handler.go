package apiserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"filmtrack/internal/catalog"
)

// CatalogHandler 代理只读的 TMDB 影片目录接口。
type CatalogHandler struct {
	client *catalog.Client
	logger *zap.Logger
}

// NewCatalogHandler 创建一个新的 CatalogHandler 实例。
func NewCatalogHandler(client *catalog.Client, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{client: client, logger: logger.Named("catalog_handler")}
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// withImageURLs 为影片列表填充完整的海报和背景图地址。
func (h *CatalogHandler) withImageURLs(movies []catalog.Movie) {
	for i := range movies {
		h.setImageURLs(&movies[i])
	}
}

func (h *CatalogHandler) setImageURLs(m *catalog.Movie) {
	m.PosterURL = h.client.ImageURL(m.PosterPath, "")
	m.BackdropURL = h.client.BackdropURL(m.BackdropPath, "")
}

// writeCatalogResult 写出目录查询结果。上游 404 透传为 404，其它上游失败返回 502。
func writeCatalogResult[T any](h *CatalogHandler, w http.ResponseWriter, r *http.Request, res *T, err error) {
	if err == nil {
		writeJSONResponse(w, http.StatusOK, res)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	var apiErr *catalog.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		writeJSONError(w, "Movie not found", http.StatusNotFound)
		return
	}
	h.logger.Warn("catalog request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSONError(w, "Movie catalog is unavailable", http.StatusBadGateway)
}

// DiscoverHandler 处理 GET /api/catalog/discover?page=&genre=&year=&sortBy=
func (h *CatalogHandler) DiscoverHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.client.Discover(r.Context(), catalog.DiscoverFilters{
		Page:   queryInt(r, "page"),
		Genre:  q.Get("genre"),
		Year:   q.Get("year"),
		SortBy: q.Get("sortBy"),
	})
	if err == nil {
		h.withImageURLs(res.Results)
	}
	writeCatalogResult(h, w, r, res, err)
}

// listHandler 生成只带 page 参数的列表接口。
func (h *CatalogHandler) listHandler(fetch func(ctx context.Context, page int) (*catalog.MoviesResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fetch(r.Context(), queryInt(r, "page"))
		if err == nil {
			h.withImageURLs(res.Results)
		}
		writeCatalogResult(h, w, r, res, err)
	}
}

func (h *CatalogHandler) PopularHandler() http.HandlerFunc    { return h.listHandler(h.client.Popular) }
func (h *CatalogHandler) NowPlayingHandler() http.HandlerFunc { return h.listHandler(h.client.NowPlaying) }
func (h *CatalogHandler) UpcomingHandler() http.HandlerFunc   { return h.listHandler(h.client.Upcoming) }
func (h *CatalogHandler) TopRatedHandler() http.HandlerFunc   { return h.listHandler(h.client.TopRated) }

// SearchHandler 处理 GET /api/catalog/search?q=&page=
func (h *CatalogHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSONError(w, "Search query is required", http.StatusBadRequest)
		return
	}
	res, err := h.client.Search(r.Context(), query, queryInt(r, "page"))
	if err == nil {
		h.withImageURLs(res.Results)
	}
	writeCatalogResult(h, w, r, res, err)
}

func (h *CatalogHandler) GenresHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.client.Genres(r.Context())
	writeCatalogResult(h, w, r, res, err)
}

func (h *CatalogHandler) movieID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid movie ID")
		return 0, false
	}
	return int(id), true
}

// MovieDetailsHandler 处理 GET /api/catalog/movies/{id}
func (h *CatalogHandler) MovieDetailsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	res, err := h.client.Details(r.Context(), id)
	if err == nil {
		h.setImageURLs(&res.Movie)
	}
	writeCatalogResult(h, w, r, res, err)
}

func (h *CatalogHandler) MovieCreditsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	res, err := h.client.Credits(r.Context(), id)
	writeCatalogResult(h, w, r, res, err)
}

func (h *CatalogHandler) SimilarMoviesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	res, err := h.client.Similar(r.Context(), id, queryInt(r, "page"))
	if err == nil {
		h.withImageURLs(res.Results)
	}
	writeCatalogResult(h, w, r, res, err)
}
