package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "a_very_secret_key_that_should_be_changed"

// APIServerConfig 保存 API 服务器特有的配置。
type APIServerConfig struct {
	Host         string        `mapstructure:"HOST"`
	Port         string        `mapstructure:"PORT"`
	ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
	CORS         CORSConfig    `mapstructure:"CORS"`
	// FrontendDist 为空时不提供前端静态文件。
	FrontendDist string `mapstructure:"FRONTEND_DIST"`
}

// CORSConfig holds configuration for CORS.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `mapstructure:"ALLOWED_METHODS"`
	AllowedHeaders   []string `mapstructure:"ALLOWED_HEADERS"`
	ExposedHeaders   []string `mapstructure:"EXPOSED_HEADERS"`
	AllowCredentials bool     `mapstructure:"ALLOW_CREDENTIALS"`
	MaxAge           int      `mapstructure:"MAX_AGE"`
}

// NotifyServerConfig 保存通知 (WebSocket) 服务器的配置。
type NotifyServerConfig struct {
	Host           string        `mapstructure:"HOST"`
	Port           string        `mapstructure:"PORT"`
	WebSocketPath  string        `mapstructure:"WEBSOCKET_PATH"`
	ReadTimeout    time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"WRITE_TIMEOUT"`
	MaxHeaderBytes int           `mapstructure:"MAX_HEADER_BYTES"`
}

// RedisConfig holds configuration for Redis.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"ENABLED"`
	Addr     string `mapstructure:"ADDR"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// Config holds all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName      string             `mapstructure:"APP_NAME"`
	AppVersion   string             `mapstructure:"APP_VERSION"`
	AppEnv       string             `mapstructure:"APP_ENV"` // development | production
	LogLevel     string             `mapstructure:"LOG_LEVEL"`
	APIServer    APIServerConfig    `mapstructure:"API_SERVER"`
	NotifyServer NotifyServerConfig `mapstructure:"NOTIFY_SERVER"`
	Kafka        KafkaConfig        `mapstructure:"KAFKA"`
	Database     DatabaseConfig     `mapstructure:"DATABASE"`
	Storage      StorageConfig      `mapstructure:"STORAGE"`
	Auth         AuthConfig         `mapstructure:"AUTH"`
	Catalog      CatalogConfig      `mapstructure:"CATALOG"`
	WebSocket    WebSocketConfig    `mapstructure:"WEBSOCKET"`
	Redis        RedisConfig        `mapstructure:"REDIS"`
}

// IsDevelopment 报告当前是否运行在开发环境。
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Validate rejects configurations that must never reach production.
func (c Config) Validate() error {
	if c.AppEnv == "production" && c.Auth.JWTSecretKey == defaultJWTSecret {
		return errors.New("AUTH.JWT_SECRET_KEY must be changed in production")
	}
	if c.Auth.JWTSecretKey == "" {
		return errors.New("AUTH.JWT_SECRET_KEY is empty")
	}
	return nil
}

// KafkaConfig holds configuration for Kafka.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"ENABLED"`
	Brokers         []string      `mapstructure:"BROKERS"`
	ClientID        string        `mapstructure:"CLIENT_ID"`
	FriendshipTopic string        `mapstructure:"FRIENDSHIP_TOPIC"` // 好友关系事件
	ConsumerGroup   string        `mapstructure:"CONSUMER_GROUP"`   // NotifyServer 消费者组
	Protocol        string        `mapstructure:"PROTOCOL"`
	PublishTimeout  time.Duration `mapstructure:"PUBLISH_TIMEOUT"` // 单个事件等待投递结果的上限，也用作 message.timeout.ms
}

// DatabaseConfig holds configuration for the database.
type DatabaseConfig struct {
	Type         string `mapstructure:"TYPE"` // "postgres", "mysql", "sqlite"
	Host         string `mapstructure:"HOST"`
	Port         int    `mapstructure:"PORT"`
	User         string `mapstructure:"USER"`
	Password     string `mapstructure:"PASSWORD"`
	DBName       string `mapstructure:"DB_NAME"`
	SSLMode      string `mapstructure:"SSL_MODE"`
	Path         string `mapstructure:"PATH"` // sqlite 文件路径
	AutoMigrate  bool   `mapstructure:"AUTO_MIGRATE"`
	LogQueries   bool   `mapstructure:"LOG_QUERIES"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"MAX_IDLE_CONNS"`
}

// StorageConfig holds configuration for file storage.
type StorageConfig struct {
	Type          string `mapstructure:"TYPE"` // only "local" for now
	LocalPath     string `mapstructure:"LOCAL_PATH"`
	BaseURL       string `mapstructure:"BASE_URL"`
	MaxFileSizeMB int64  `mapstructure:"MAX_FILE_SIZE_MB"`
}

// AuthConfig holds configuration for session tokens.
type AuthConfig struct {
	JWTSecretKey string        `mapstructure:"JWT_SECRET_KEY"`
	JWTExpiry    time.Duration `mapstructure:"JWT_EXPIRY"`
	CookieName   string        `mapstructure:"COOKIE_NAME"`
	CookieSecure bool          `mapstructure:"COOKIE_SECURE"`
	CookieDomain string        `mapstructure:"COOKIE_DOMAIN"`
}

// CatalogConfig 保存 TMDB 电影目录客户端的配置。
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"BASE_URL"`
	ImageBaseURL      string        `mapstructure:"IMAGE_BASE_URL"`
	AccessToken       string        `mapstructure:"ACCESS_TOKEN"`
	Language          string        `mapstructure:"LANGUAGE"`
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL"`
	RequestsPerSecond float64       `mapstructure:"REQUESTS_PER_SECOND"`
	Burst             int           `mapstructure:"BURST"`
	Timeout           time.Duration `mapstructure:"TIMEOUT"`
}

// WebSocketConfig holds configuration for WebSocket connections.
type WebSocketConfig struct {
	WriteWaitSeconds    int `mapstructure:"WRITE_WAIT_SECONDS"`
	PongWaitSeconds     int `mapstructure:"PONG_WAIT_SECONDS"`
	PingPeriodSeconds   int `mapstructure:"PING_PERIOD_SECONDS"`
	MaxMessageSizeBytes int `mapstructure:"MAX_MESSAGE_SIZE_BYTES"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "filmtrack")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	// APIServer Defaults
	v.SetDefault("API_SERVER.HOST", "0.0.0.0")
	v.SetDefault("API_SERVER.PORT", "3001")
	v.SetDefault("API_SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("API_SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("API_SERVER.FRONTEND_DIST", "")
	v.SetDefault("API_SERVER.CORS.ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"})
	v.SetDefault("API_SERVER.CORS.EXPOSED_HEADERS", []string{"Content-Length"})
	v.SetDefault("API_SERVER.CORS.ALLOW_CREDENTIALS", true)
	v.SetDefault("API_SERVER.CORS.MAX_AGE", 300) // 5 minutes

	// NotifyServer Defaults
	v.SetDefault("NOTIFY_SERVER.HOST", "0.0.0.0")
	v.SetDefault("NOTIFY_SERVER.PORT", "3002")
	v.SetDefault("NOTIFY_SERVER.WEBSOCKET_PATH", "/ws")
	v.SetDefault("NOTIFY_SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("NOTIFY_SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("NOTIFY_SERVER.MAX_HEADER_BYTES", 1<<20) // 1 MB

	// Kafka Defaults
	v.SetDefault("KAFKA.ENABLED", false)
	v.SetDefault("KAFKA.BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA.CLIENT_ID", "filmtrack")
	v.SetDefault("KAFKA.FRIENDSHIP_TOPIC", "filmtrack-friendship-events")
	v.SetDefault("KAFKA.CONSUMER_GROUP", "filmtrack-notify-server")
	v.SetDefault("KAFKA.PROTOCOL", "plaintext")
	v.SetDefault("KAFKA.PUBLISH_TIMEOUT", 5*time.Second)

	// Database Defaults
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "password")
	v.SetDefault("DATABASE.DB_NAME", "filmtrack")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.PATH", "./filmtrack.db")
	v.SetDefault("DATABASE.AUTO_MIGRATE", true)
	v.SetDefault("DATABASE.LOG_QUERIES", false)
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 5)

	// Storage Defaults
	v.SetDefault("STORAGE.TYPE", "local")
	v.SetDefault("STORAGE.LOCAL_PATH", "./uploads")
	v.SetDefault("STORAGE.BASE_URL", "/uploads")
	v.SetDefault("STORAGE.MAX_FILE_SIZE_MB", 5)

	// Auth Defaults
	v.SetDefault("AUTH.JWT_SECRET_KEY", defaultJWTSecret)
	v.SetDefault("AUTH.JWT_EXPIRY", 7*24*time.Hour)
	v.SetDefault("AUTH.COOKIE_NAME", "filmtrack_session")
	v.SetDefault("AUTH.COOKIE_SECURE", false)
	v.SetDefault("AUTH.COOKIE_DOMAIN", "")

	// Catalog Defaults
	v.SetDefault("CATALOG.BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("CATALOG.IMAGE_BASE_URL", "https://image.tmdb.org/t/p")
	v.SetDefault("CATALOG.ACCESS_TOKEN", "")
	v.SetDefault("CATALOG.LANGUAGE", "en-US")
	v.SetDefault("CATALOG.CACHE_TTL", time.Hour)
	v.SetDefault("CATALOG.REQUESTS_PER_SECOND", 20.0)
	v.SetDefault("CATALOG.BURST", 10)
	v.SetDefault("CATALOG.TIMEOUT", 10*time.Second)

	// Redis Defaults
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)

	// WebSocket Defaults
	v.SetDefault("WEBSOCKET.WRITE_WAIT_SECONDS", 10)
	v.SetDefault("WEBSOCKET.PONG_WAIT_SECONDS", 60)
	v.SetDefault("WEBSOCKET.PING_PERIOD_SECONDS", 54) // (60 * 9) / 10
	v.SetDefault("WEBSOCKET.MAX_MESSAGE_SIZE_BYTES", 512)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	// 嵌套键使用下划线: API_SERVER_PORT -> API_SERVER.PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		// 没有配置文件时使用默认值
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
