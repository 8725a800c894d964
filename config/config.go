package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AdminAPIKey       string `mapstructure:"ADMIN_API_KEY"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Conversation settings.
	SessionTTLHours   int `mapstructure:"SESSION_TTL_HOURS"`
	HistoryWindow     int `mapstructure:"HISTORY_WINDOW"`
	MaxTourOffers     int `mapstructure:"MAX_TOUR_OFFERS"`
	PartySizeLimit    int `mapstructure:"PARTY_SIZE_LIMIT"`
	WorkerConcurrency int `mapstructure:"WORKER_CONCURRENCY"`

	// Tourvisor vendor API.
	TourvisorBaseURL    string `mapstructure:"TOURVISOR_BASE_URL"`
	TourvisorAuthLogin  string `mapstructure:"TOURVISOR_AUTH_LOGIN"`
	TourvisorAuthPass   string `mapstructure:"TOURVISOR_AUTH_PASS"`
	TourvisorTimeout    int    `mapstructure:"TOURVISOR_TIMEOUT"`
	PollIntervalSec     int    `mapstructure:"POLL_INTERVAL_SEC"`
	MaxPollAttempts     int    `mapstructure:"MAX_POLL_ATTEMPTS"`
	PollMinWaitSec      int    `mapstructure:"POLL_MIN_WAIT_SEC"`
	CatalogRefreshHours int    `mapstructure:"CATALOG_REFRESH_HOURS"`

	// Gemini API for intent hints and FAQ answers.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("ADMIN_API_KEY", "")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("HISTORY_WINDOW", 20)
	viper.SetDefault("MAX_TOUR_OFFERS", 5)
	viper.SetDefault("PARTY_SIZE_LIMIT", 6)
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "voyago")
	viper.SetDefault("TOURVISOR_BASE_URL", "http://tourvisor.ru/xml")
	viper.SetDefault("TOURVISOR_AUTH_LOGIN", "")
	viper.SetDefault("TOURVISOR_AUTH_PASS", "")
	viper.SetDefault("TOURVISOR_TIMEOUT", 60)
	viper.SetDefault("POLL_INTERVAL_SEC", 2)
	viper.SetDefault("MAX_POLL_ATTEMPTS", 60)
	viper.SetDefault("POLL_MIN_WAIT_SEC", 25)
	viper.SetDefault("CATALOG_REFRESH_HOURS", 12)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
