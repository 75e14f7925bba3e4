package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"filmtrack/internal/auth"
	"filmtrack/internal/config"
	"filmtrack/internal/handlers/notifyserver"
	appKafka "filmtrack/internal/kafka"
	kafkahandlers "filmtrack/internal/kafka/handlers"
	"filmtrack/internal/logger"
	"filmtrack/internal/middleware"
	appRedis "filmtrack/internal/redis"
	"filmtrack/internal/websocket"
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
	log = log.With(zap.String("app", cfg.AppName+"-notify"), zap.String("version", cfg.AppVersion))

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if !cfg.Kafka.Enabled {
		log.Fatal("notify server requires KAFKA.ENABLED=true")
	}

	// 2. Token 黑名单 (可选)，与 API 服务器共用同一个 Redis
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisClient, err := appRedis.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		blacklist = appRedis.NewRedisTokenBlacklist(redisClient)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 初始化 WebSocket Hub
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	// 4. 启动 Kafka 消费者: 好友关系事件 -> 在线用户
	var wg sync.WaitGroup
	consumer := appKafka.NewConfluentKafkaConsumer(cfg.Kafka, log)
	logic := kafkahandlers.NewNotificationConsumerLogic(hub, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer consumer.Close()
		topics := []string{cfg.Kafka.FriendshipTopic}
		if err := consumer.Consume(ctx, topics, cfg.Kafka.ConsumerGroup, logic.HandleFriendshipEvent); err != nil {
			log.Error("kafka consumer stopped with error", zap.Error(err))
			// 没有事件来源时服务没有意义
			cancel()
		}
	}()

	// 5. 配置 HTTP 服务器路由
	wsHandler := notifyserver.NewWebSocketHandler(hub, middleware.NewAuthenticator(cfg.Auth, blacklist, log), cfg, log)
	r := mux.NewRouter()
	r.HandleFunc(cfg.NotifyServer.WebSocketPath, wsHandler.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"status":"ok"}}`))
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.NotifyServer.Host, cfg.NotifyServer.Port),
		Handler:        middleware.Recovery(log, cfg.IsDevelopment())(r),
		ReadTimeout:    cfg.NotifyServer.ReadTimeout,
		MaxHeaderBytes: cfg.NotifyServer.MaxHeaderBytes,
		ErrorLog:       zap.NewStdLog(log.Named("http")),
	}

	go func() {
		log.Info("notify server listening", zap.String("addr", srv.Addr), zap.String("path", cfg.NotifyServer.WebSocketPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("notify server failed", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("shutting down notify server")

	cancel()
	wg.Wait()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("notify server forced to shut down", zap.Error(err))
	}
	hub.Wait()
	log.Info("notify server stopped")
}
