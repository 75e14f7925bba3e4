package apiserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"filmtrack/internal/catalog"
	"filmtrack/internal/config"
	"filmtrack/internal/middleware"
	"filmtrack/internal/redis"
	"filmtrack/internal/services"
	"filmtrack/internal/storage"
	"filmtrack/internal/storage/storagetest"
	"filmtrack/internal/validation"
)

var testAuthCfg = config.AuthConfig{
	JWTSecretKey: "test-secret",
	JWTExpiry:    time.Hour,
	CookieName:   "filmtrack_session",
}

type apiEnv struct {
	t      *testing.T
	router http.Handler
	db     *gorm.DB
}

// newAPIEnv 组装与 cmd/apiserver 相同的依赖，数据库为内存 sqlite，TMDB 由 tmdb 模拟。
func newAPIEnv(t *testing.T, tmdb http.Handler) *apiEnv {
	t.Helper()

	log := zaptest.NewLogger(t)
	db := storagetest.NewDB(t)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	blacklist := redis.NewRedisTokenBlacklist(rdb)

	v := validation.New()
	userRepo := storage.NewGormUserRepository(db)
	filmRepo := storage.NewGormFilmRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)

	storageCfg := config.StorageConfig{Type: "local", LocalPath: t.TempDir(), BaseURL: "/uploads", MaxFileSizeMB: 1}
	files, err := storage.NewLocalStorageService(storageCfg)
	require.NoError(t, err)

	h := Handlers{
		Auth:       NewAuthHandler(services.NewAuthService(userRepo, blacklist, v, testAuthCfg, log), testAuthCfg, log),
		Film:       NewFilmHandler(services.NewFilmService(filmRepo, v, log), log),
		User:       NewUserHandler(services.NewUserService(userRepo, v, log), log),
		Friendship: NewFriendshipHandler(services.NewFriendshipService(userRepo, friendshipRepo, nil, 0, log), log),
		Upload:     NewUploadHandler(files, storageCfg, log),
		Health:     NewHealthHandler(db, "test", log),
	}
	if tmdb != nil {
		srv := httptest.NewServer(tmdb)
		t.Cleanup(srv.Close)
		client := catalog.NewClient(config.CatalogConfig{
			BaseURL: srv.URL, ImageBaseURL: "https://image.tmdb.org/t/p", AccessToken: "tok", Language: "en-US",
		}, nil, log)
		h.Catalog = NewCatalogHandler(client, log)
	}

	r := mux.NewRouter()
	RegisterRoutes(r, h, middleware.NewAuthenticator(testAuthCfg, blacklist, log))
	return &apiEnv{t: t, router: middleware.Recovery(log, true)(r), db: db}
}

func (e *apiEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type testUser struct {
	ID    uint
	Token string
}

func (e *apiEnv) signUp(name string) testUser {
	e.t.Helper()

	rec := e.do(http.MethodPost, "/api/auth/sign-up/email", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decodeData[services.Session](e.t, rec)
	return testUser{ID: session.User.ID, Token: session.Token}
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.True(t, body.Success, rec.Body.String())
	return body.Data
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.False(t, body.Success)
	return body.Message
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
