package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultAddr      = ":8080"
	defaultDSN       = "stickerboard.db"
	defaultBlobDir   = "./data/appdata"
	defaultJWTTTL    = "24h"
	defaultJWTSecret = "change-me-jwt-secret"
)

type Config struct {
	AppEnv    string
	Addr      string
	DSN       string
	BlobDir   string
	JWTSecret string
	JWTTTL    time.Duration
	// BaseURL prefixes generated sticker download links. Empty means
	// relative links, which is fine behind a reverse proxy.
	BaseURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Addr:      getEnv("ADDR", defaultAddr),
		DSN:       getEnv("DATABASE_URL", defaultDSN),
		BlobDir:   getEnv("BLOB_DIR", defaultBlobDir),
		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),
		BaseURL:   getEnv("BASE_URL", ""),
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", defaultJWTTTL))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	if cfg.AppEnv == "production" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
