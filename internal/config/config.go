package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort      string
	DatabaseURL     string
	CORSAllowOrigin string
	RequestTimeout  time.Duration

	AdminEmail         string
	FallbackAdminEmail string
	MaxMonitorsPerUser int

	TelegramBotToken    string
	TelegramAPIURL      string
	TelegramTimeout     time.Duration
	TelegramWebhookPath string
	PublicBaseURL       string

	RedisAddr     string
	AlertCacheTTL time.Duration

	KafkaBrokers string
	KafkaTopic   string

	AuthTokenSecret string
}

func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabaseURL:     requireEnv("DATABASE_URL"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "http://localhost:3000"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 15*time.Second),

		AdminEmail:         os.Getenv("ADMIN_GMAIL"),
		FallbackAdminEmail: os.Getenv("ADMIN_FALLBACK_EMAIL"),
		MaxMonitorsPerUser: getInt("MAX_MONITORS_PER_USER", 10),

		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIURL:      getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramTimeout:     getDuration("TELEGRAM_TIMEOUT", 10*time.Second),
		TelegramWebhookPath: getEnv("TELEGRAM_WEBHOOK_PATH", "/.netlify/functions/telegram-webhook"),
		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", os.Getenv("NETLIFY_URL")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		AlertCacheTTL: getDuration("ALERT_CACHE_TTL", 30*time.Second),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "monitor.changed"),

		AuthTokenSecret: os.Getenv("AUTH_TOKEN_SECRET"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}
