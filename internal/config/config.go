package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string

	// настройки грида (есть дефолты, env нужен только для тюнинга)
	GridDebounce    time.Duration
	GridSaveTimeout time.Duration
	GridSessionTTL  time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		GridDebounce:    durationFromEnv("GRID_DEBOUNCE_MS", 1000*time.Millisecond),
		GridSaveTimeout: durationFromEnv("GRID_SAVE_TIMEOUT_MS", 15*time.Second),
		GridSessionTTL:  durationFromEnv("GRID_SESSION_TTL_MS", 30*time.Minute),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	return cfg
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		log.Printf("invalid %s=%q, using default %v", key, raw, def)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
