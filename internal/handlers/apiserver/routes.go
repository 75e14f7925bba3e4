package apiserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"filmtrack/internal/middleware"
)

// Handlers 汇总 API 服务器的全部处理器。Catalog 和 Upload 可以为 nil。
type Handlers struct {
	Auth       *AuthHandler
	Film       *FilmHandler
	User       *UserHandler
	Friendship *FriendshipHandler
	Catalog    *CatalogHandler
	Upload     *UploadHandler
	Health     *HealthHandler
}

// RegisterRoutes 在 r 上注册 /api 下的全部路由。
func RegisterRoutes(r *mux.Router, h Handlers, authn *middleware.Authenticator) {
	if h.Health != nil {
		r.HandleFunc("/healthz", h.Health.Healthz).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	required := func(fn http.HandlerFunc) http.Handler { return authn.RequireAuth(fn) }

	// 认证路由
	api.HandleFunc("/auth/sign-up/email", h.Auth.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/sign-in/email", h.Auth.SignIn).Methods(http.MethodPost)
	api.Handle("/auth/sign-out", required(h.Auth.SignOut)).Methods(http.MethodPost)
	api.Handle("/auth/get-session", authn.OptionalAuth(http.HandlerFunc(h.Auth.GetSession))).Methods(http.MethodGet)

	// 片单路由
	api.Handle("/films", required(h.Film.ListOwnFilmsHandler)).Methods(http.MethodGet)
	api.Handle("/films", required(h.Film.CreateFilmHandler)).Methods(http.MethodPost)
	api.Handle("/films/{id:[0-9]+}", required(h.Film.GetFilmHandler)).Methods(http.MethodGet)
	api.Handle("/films/{id:[0-9]+}", required(h.Film.UpdateFilmHandler)).Methods(http.MethodPut)
	api.Handle("/films/{id:[0-9]+}", required(h.Film.DeleteFilmHandler)).Methods(http.MethodDelete)

	// 用户路由
	api.HandleFunc("/users/{id:[0-9]+}", h.User.GetUserProfileHandler).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}", required(h.User.UpdateUserProfileHandler)).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}/films", h.Film.ListUserFilmsHandler).Methods(http.MethodGet)

	// 好友路由
	friends := api.PathPrefix("/friends").Subrouter()
	friends.Use(authn.RequireAuth)
	friends.HandleFunc("", h.Friendship.ListFriendsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/search", h.Friendship.SearchUsersHandler).Methods(http.MethodGet)
	friends.HandleFunc("/requests", h.Friendship.SendFriendRequestHandler).Methods(http.MethodPost)
	friends.HandleFunc("/requests/pending", h.Friendship.ListPendingRequestsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/requests/sent", h.Friendship.ListSentRequestsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/requests/{id:[0-9]+}/accept", h.Friendship.AcceptFriendRequestHandler).Methods(http.MethodPost)
	friends.HandleFunc("/requests/{id:[0-9]+}/reject", h.Friendship.RejectFriendRequestHandler).Methods(http.MethodPost)
	friends.HandleFunc("/status/{userId:[0-9]+}", h.Friendship.FriendshipStatusHandler).Methods(http.MethodGet)
	friends.HandleFunc("/{id:[0-9]+}", h.Friendship.RemoveFriendHandler).Methods(http.MethodDelete)

	// 影片目录路由 (公开)
	if h.Catalog != nil {
		c := api.PathPrefix("/catalog").Subrouter()
		c.HandleFunc("/discover", h.Catalog.DiscoverHandler).Methods(http.MethodGet)
		c.HandleFunc("/popular", h.Catalog.PopularHandler()).Methods(http.MethodGet)
		c.HandleFunc("/now-playing", h.Catalog.NowPlayingHandler()).Methods(http.MethodGet)
		c.HandleFunc("/upcoming", h.Catalog.UpcomingHandler()).Methods(http.MethodGet)
		c.HandleFunc("/top-rated", h.Catalog.TopRatedHandler()).Methods(http.MethodGet)
		c.HandleFunc("/search", h.Catalog.SearchHandler).Methods(http.MethodGet)
		c.HandleFunc("/genres", h.Catalog.GenresHandler).Methods(http.MethodGet)
		c.HandleFunc("/movies/{id:[0-9]+}", h.Catalog.MovieDetailsHandler).Methods(http.MethodGet)
		c.HandleFunc("/movies/{id:[0-9]+}/credits", h.Catalog.MovieCreditsHandler).Methods(http.MethodGet)
		c.HandleFunc("/movies/{id:[0-9]+}/similar", h.Catalog.SimilarMoviesHandler).Methods(http.MethodGet)
	}

	// 文件上传路由
	if h.Upload != nil {
		api.Handle("/uploads", required(h.Upload.UploadFileHandler)).Methods(http.MethodPost)
	}

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, "Not Found", http.StatusNotFound)
	})
}
