package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("Port = %q, want 8090", cfg.Port)
	}
	if cfg.BrowserEnabled {
		t.Error("browser should be disabled by default")
	}
	if cfg.BrowserConfig.Timeout != 30*time.Second {
		t.Errorf("browser timeout = %v, want 30s", cfg.BrowserConfig.Timeout)
	}
	if cfg.ChunkMaxTokens != 512 || cfg.ChunkOverlapTokens != 50 {
		t.Errorf("chunk defaults = %d/%d, want 512/50", cfg.ChunkMaxTokens, cfg.ChunkOverlapTokens)
	}
	if cfg.TokenizerModel != "heuristic" {
		t.Errorf("TokenizerModel = %q, want heuristic", cfg.TokenizerModel)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("MaxUploadBytes = %d, want 52428800", cfg.MaxUploadBytes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BROWSER_ENABLED", "true")
	t.Setenv("BROWSER_TIMEOUT", "5s")
	t.Setenv("CHUNK_MAX_TOKENS", "256")
	t.Setenv("TOKENIZER_MODEL", "word_estimate")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if !cfg.BrowserEnabled {
		t.Error("BROWSER_ENABLED=true not honored")
	}
	if cfg.BrowserConfig.Timeout != 5*time.Second {
		t.Errorf("browser timeout = %v, want 5s", cfg.BrowserConfig.Timeout)
	}
	if cfg.ChunkMaxTokens != 256 {
		t.Errorf("ChunkMaxTokens = %d, want 256", cfg.ChunkMaxTokens)
	}
	if cfg.TokenizerModel != "word_estimate" {
		t.Errorf("TokenizerModel = %q, want word_estimate", cfg.TokenizerModel)
	}
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("CHUNK_MAX_TOKENS", "not-a-number")
	t.Setenv("BROWSER_TIMEOUT", "soon")

	cfg := Load()
	if cfg.ChunkMaxTokens != 512 {
		t.Errorf("ChunkMaxTokens = %d, want default 512", cfg.ChunkMaxTokens)
	}
	if cfg.BrowserConfig.Timeout != 30*time.Second {
		t.Errorf("browser timeout = %v, want default 30s", cfg.BrowserConfig.Timeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.CaslexAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing API key")
	}

	cfg.CaslexAPIKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	cfg.ChunkOverlapTokens = cfg.ChunkMaxTokens
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for overlap >= max tokens")
	}
}
