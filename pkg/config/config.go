package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Rate limiter key scopes. Global matches the historical single-counter
// behaviour; actor scoping is available for per-moderator fairness.
const (
	RateLimitScopeGlobal = "global"
	RateLimitScopeActor  = "actor"
)

// Rate limiter window stores.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Platform  PlatformConfig
	Bans      BansConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig governs the platform-action window counter.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	Scope       string
	Store       string
}

// PlatformConfig configures the streaming platform moderation API client.
type PlatformConfig struct {
	BaseURL  string
	ClientID string
	Token    string
	Timeout  time.Duration
}

// BansConfig controls the ban mirror expiry sweep.
type BansConfig struct {
	SweepEnabled  bool
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RateLimit = RateLimitConfig{
		MaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		Window:      parseDuration(v.GetString("RATE_LIMIT_WINDOW"), time.Hour),
		Scope:       strings.ToLower(v.GetString("RATE_LIMIT_SCOPE")),
		Store:       strings.ToLower(v.GetString("RATE_LIMIT_STORE")),
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = 10
	}
	if cfg.RateLimit.Scope != RateLimitScopeActor {
		cfg.RateLimit.Scope = RateLimitScopeGlobal
	}
	if cfg.RateLimit.Store != RateLimitStoreRedis {
		cfg.RateLimit.Store = RateLimitStoreMemory
	}

	cfg.Platform = PlatformConfig{
		BaseURL:  v.GetString("PLATFORM_API_BASE_URL"),
		ClientID: v.GetString("PLATFORM_CLIENT_ID"),
		Token:    v.GetString("PLATFORM_APP_TOKEN"),
		Timeout:  parseDuration(v.GetString("PLATFORM_API_TIMEOUT"), 10*time.Second),
	}

	cfg.Bans = BansConfig{
		SweepEnabled:  v.GetBool("BAN_SWEEP_ENABLED"),
		SweepInterval: parseDuration(v.GetString("BAN_SWEEP_INTERVAL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "clipper")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "1h")
	v.SetDefault("RATE_LIMIT_SCOPE", RateLimitScopeGlobal)
	v.SetDefault("RATE_LIMIT_STORE", RateLimitStoreMemory)

	v.SetDefault("PLATFORM_API_BASE_URL", "https://api.twitch.tv/helix")
	v.SetDefault("PLATFORM_CLIENT_ID", "")
	v.SetDefault("PLATFORM_APP_TOKEN", "")
	v.SetDefault("PLATFORM_API_TIMEOUT", "10s")

	v.SetDefault("BAN_SWEEP_ENABLED", true)
	v.SetDefault("BAN_SWEEP_INTERVAL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
