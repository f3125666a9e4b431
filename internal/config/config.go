package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caslex/caslex/internal/render"
)

type Config struct {
	Port string

	// Auth
	CaslexAPIKey string

	// Browser rendering
	BrowserEnabled bool
	BrowserConfig  render.Config

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	ChunkMaxTokens     int
	ChunkOverlapTokens int
	TokenizerModel     string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		CaslexAPIKey: os.Getenv("CASLEX_API_KEY"),

		BrowserEnabled: envBool("BROWSER_ENABLED", false),
		BrowserConfig: render.Config{
			Headless:       envBool("BROWSER_HEADLESS", true),
			Timeout:        envDuration("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  envInt("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envInt("BROWSER_VIEWPORT_HEIGHT", 1080),
			UserAgent:      envOr("BROWSER_USER_AGENT", render.DefaultConfig().UserAgent),
			SlowMo:         envDuration("BROWSER_SLOW_MO", 0),
		},

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkMaxTokens:     envInt("CHUNK_MAX_TOKENS", 512),
		ChunkOverlapTokens: envInt("CHUNK_OVERLAP_TOKENS", 50),
		TokenizerModel:     envOr("TOKENIZER_MODEL", "heuristic"),
	}

	if cfg.BrowserConfig.Timeout <= 0 {
		cfg.BrowserConfig.Timeout = 30 * time.Second
	}
	if cfg.BrowserConfig.ViewportWidth <= 0 {
		cfg.BrowserConfig.ViewportWidth = 1920
	}
	if cfg.BrowserConfig.ViewportHeight <= 0 {
		cfg.BrowserConfig.ViewportHeight = 1080
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkMaxTokens <= 0 {
		cfg.ChunkMaxTokens = 512
	}
	if cfg.ChunkOverlapTokens < 0 {
		cfg.ChunkOverlapTokens = 50
	}

	return cfg
}

func (c Config) Validate() error {
	if c.CaslexAPIKey == "" {
		return fmt.Errorf("CASLEX_API_KEY is required")
	}
	if c.ChunkOverlapTokens >= c.ChunkMaxTokens {
		return fmt.Errorf("CHUNK_OVERLAP_TOKENS (%d) must be smaller than CHUNK_MAX_TOKENS (%d)",
			c.ChunkOverlapTokens, c.ChunkMaxTokens)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
