package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"filmtrack/internal/apptypes"
	"filmtrack/internal/auth"
	"filmtrack/internal/catalog"
	"filmtrack/internal/config"
	"filmtrack/internal/events"
	"filmtrack/internal/handlers/apiserver"
	appKafka "filmtrack/internal/kafka"
	"filmtrack/internal/logger"
	"filmtrack/internal/middleware"
	appRedis "filmtrack/internal/redis"
	"filmtrack/internal/services"
	"filmtrack/internal/storage"
	"filmtrack/internal/validation"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig(os.Getenv("FILMTRACK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法加载配置: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法创建日志: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With(zap.String("app", cfg.AppName), zap.String("version", cfg.AppVersion))

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// 2. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := storage.AutoMigrateTables(db); err != nil {
			log.Fatal("auto migration failed", zap.Error(err))
		}
		log.Info("database schema migrated")
	}

	// 3. 初始化 Redis (可选): Token 黑名单和 TMDB 响应缓存
	var (
		blacklist    auth.TokenBlacklist
		catalogCache catalog.Cache
		redisClient  *goredis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = appRedis.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		blacklist = appRedis.NewRedisTokenBlacklist(redisClient)
		catalogCache = appRedis.NewCatalogCache(redisClient)
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("redis disabled, sign-out will not revoke outstanding tokens")
	}

	// 4. 初始化 Kafka Producer (可选): 好友关系事件
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka, log)
		if err != nil {
			log.Fatal("failed to create kafka producer", zap.Error(err))
		}
		defer producer.Close()
		publisher = appKafka.NewFriendshipEventPublisher(producer, cfg.Kafka.FriendshipTopic)
		log.Info("kafka producer ready", zap.String("topic", cfg.Kafka.FriendshipTopic))
	}

	// 5. 初始化 Repositories
	userRepo := storage.NewGormUserRepository(db)
	filmRepo := storage.NewGormFilmRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)

	// 6. 初始化 Services
	v := validation.New()
	authService := services.NewAuthService(userRepo, blacklist, v, cfg.Auth, log)
	userService := services.NewUserService(userRepo, v, log)
	filmService := services.NewFilmService(filmRepo, v, log)
	friendshipService := services.NewFriendshipService(userRepo, friendshipRepo, publisher, cfg.Kafka.PublishTimeout, log)

	var storageService apptypes.StorageService
	switch cfg.Storage.Type {
	case "local":
		storageService, err = storage.NewLocalStorageService(cfg.Storage)
		if err != nil {
			log.Fatal("failed to initialize local storage", zap.Error(err))
		}
	default:
		log.Fatal("unsupported storage type", zap.String("type", cfg.Storage.Type))
	}

	// 7. 初始化 Handlers
	h := apiserver.Handlers{
		Auth:       apiserver.NewAuthHandler(authService, cfg.Auth, log),
		Film:       apiserver.NewFilmHandler(filmService, log),
		User:       apiserver.NewUserHandler(userService, log),
		Friendship: apiserver.NewFriendshipHandler(friendshipService, log),
		Upload:     apiserver.NewUploadHandler(storageService, cfg.Storage, log),
		Health:     apiserver.NewHealthHandler(db, cfg.AppVersion, log),
	}
	if cfg.Catalog.AccessToken != "" {
		h.Catalog = apiserver.NewCatalogHandler(catalog.NewClient(cfg.Catalog, catalogCache, log), log)
	} else {
		log.Warn("CATALOG.ACCESS_TOKEN not set, catalog routes disabled")
	}

	// 8. 设置 HTTP 路由
	r := mux.NewRouter()
	apiserver.RegisterRoutes(r, h, middleware.NewAuthenticator(cfg.Auth, blacklist, log))

	// 8.1 上传文件的静态访问
	staticPath := strings.TrimSuffix(cfg.Storage.BaseURL, "/") + "/"
	r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, uploadsHandler(cfg.Storage.LocalPath)))

	// 8.2 前端 SPA (可选)
	if cfg.APIServer.FrontendDist != "" {
		r.PathPrefix("/").Handler(spaHandler(cfg.APIServer.FrontendDist))
		log.Info("serving frontend", zap.String("dir", cfg.APIServer.FrontendDist))
	}

	// 9. 启动 HTTP 服务器并实现优雅关闭
	cors := cfg.APIServer.CORS
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cors.AllowedOrigins),
		handlers.AllowedMethods(cors.AllowedMethods),
		handlers.AllowedHeaders(cors.AllowedHeaders),
		handlers.ExposedHeaders(cors.ExposedHeaders),
		handlers.MaxAge(cors.MaxAge),
	}
	if cors.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}

	var handler http.Handler = r
	handler = middleware.Recovery(log, cfg.IsDevelopment())(handler)
	handler = middleware.RequestLogger(log)(handler)
	handler = handlers.CORS(corsOptions...)(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port),
		Handler:      handler,
		ReadTimeout:  cfg.APIServer.ReadTimeout,
		WriteTimeout: cfg.APIServer.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}

	go func() {
		log.Info("api server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down api server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("api server forced to shut down", zap.Error(err))
	}
	log.Info("api server stopped")
}
