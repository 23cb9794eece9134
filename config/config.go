package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendAzblob   = "azblob"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Store   StoreConfig
	Auth    AuthConfig
	App     AppConfig
}

type ServerConfig struct {
	Port               string
	FrontendURL        string
	ReadRatePerMinute  int
	WriteRatePerMinute int
}

type StorageConfig struct {
	Backend         string
	AzureConnString string
	AzureContainer  string
	DatabaseDSN     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
}

type StoreConfig struct {
	Timeout            time.Duration
	CacheSize          int
	CacheTTL           time.Duration
	TombstoneRetention time.Duration
	PurgeSchedule      string
}

type AuthConfig struct {
	SecretKey string
	APIKey    string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
			ReadRatePerMinute:  getEnvAsInt("READ_RATE_PER_MINUTE", 5),
			WriteRatePerMinute: getEnvAsInt("WRITE_RATE_PER_MINUTE", 3),
		},
		Storage: StorageConfig{
			Backend:         strings.ToLower(getEnv("STORAGE_BACKEND", BackendAzblob)),
			AzureConnString: getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),
			AzureContainer:  getEnv("AZURE_STORAGE_CONTAINER_NAME", "projects"),
			DatabaseDSN:     getEnv("DB_DSN", ""),
			RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getEnvAsInt("REDIS_DB", 0),
		},
		Store: StoreConfig{
			Timeout:            getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
			CacheSize:          getEnvAsInt("CACHE_SIZE", 256),
			CacheTTL:           getEnvAsDuration("CACHE_TTL", 30*time.Second),
			TombstoneRetention: getEnvAsDuration("TOMBSTONE_RETENTION", 30*24*time.Hour),
			PurgeSchedule:      getEnv("PURGE_SCHEDULE", "0 0 3 * * *"),
		},
		Auth: AuthConfig{
			SecretKey: getEnv("SECRET_KEY", ""),
			APIKey:    getEnv("API_KEY", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Storage.Backend {
	case BackendAzblob:
		if c.Storage.AzureConnString == "" {
			return fmt.Errorf("AZURE_STORAGE_CONNECTION_STRING is required for the azblob backend")
		}
		if c.Storage.AzureContainer == "" {
			return fmt.Errorf("AZURE_STORAGE_CONTAINER_NAME is required for the azblob backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseDSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND %q is not one of azblob, postgres, redis, memory", c.Storage.Backend)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.Store.TombstoneRetention <= 0 {
		return fmt.Errorf("TOMBSTONE_RETENTION must be positive")
	}
	if c.App.Environment == "production" && c.Auth.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required in production")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
