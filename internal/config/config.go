package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the gateway reads at startup.
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Query  QueryConfig
	Warmup WarmupConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	redis, err := loadRedisConfig()
	if err != nil {
		return nil, err
	}

	query := loadQueryConfig()

	warmup, err := loadWarmupConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Redis: redis, Query: query, Warmup: warmup}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":5000" or "127.0.0.1:5000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RedisConfig describes the session store connection and TTL policy.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

func loadRedisConfig() (RedisConfig, error) {
	db := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return RedisConfig{}, err
	} else if override != nil {
		db = *override
	}

	ttlSeconds := 3600
	if override, err := parseOptionalIntEnv("SESSION_TTL_SECONDS"); err != nil {
		return RedisConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return RedisConfig{}, fmt.Errorf("SESSION_TTL_SECONDS must be positive, got %d", *override)
		}
		ttlSeconds = *override
	}

	return RedisConfig{
		Addr:       getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password:   os.Getenv("REDIS_PASSWORD"),
		DB:         db,
		SessionTTL: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// QueryConfig describes how to invoke the external answer-generation process.
type QueryConfig struct {
	Python  string
	Script  string
	APIKey  string
	DataDir string
}

func loadQueryConfig() QueryConfig {
	return QueryConfig{
		Python:  getEnvOrDefault("PYTHON_BIN", "python"),
		Script:  getEnvOrDefault("QUERY_SCRIPT", "chat_query.py"),
		APIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		DataDir: strings.TrimSpace(os.Getenv("CHROMA_DIR")),
	}
}

// WarmupConfig controls the startup cache-warming pass.
type WarmupConfig struct {
	Enabled bool
	Timeout time.Duration
}

func loadWarmupConfig() (WarmupConfig, error) {
	enabled, err := parseBoolEnv("WARMUP_ENABLED", true)
	if err != nil {
		return WarmupConfig{}, err
	}

	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("WARMUP_TIMEOUT_SECONDS"); err != nil {
		return WarmupConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return WarmupConfig{}, fmt.Errorf("WARMUP_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return WarmupConfig{
		Enabled: enabled,
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
