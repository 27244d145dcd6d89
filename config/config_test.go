package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("VENDORLENS_SERVER_PORT")
		os.Unsetenv("VENDORLENS_SERVER_ENVIRONMENT")
		os.Unsetenv("VENDORLENS_SERVER_ALLOWED_ORIGINS")
		os.Unsetenv("VENDORLENS_MATCHING_SIMILARITY_THRESHOLD")
		os.Unsetenv("VENDORLENS_MATCHING_CASE_SENSITIVE")
		os.Unsetenv("VENDORLENS_MATCHING_MAX_CANDIDATES")
		os.Unsetenv("VENDORLENS_DATABASE_PATH")
		os.Unsetenv("VENDORLENS_OCR_LANGUAGE")
		os.Unsetenv("VENDORLENS_OCR_MAX_PAGES")
		os.Unsetenv("VENDORLENS_RATELIMIT_PER_IP_PER_MINUTE")
		os.Unsetenv("VENDORLENS_CACHE_TTL")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Matching.SimilarityThreshold != 0.8 {
			t.Errorf("Matching.SimilarityThreshold = %v, want 0.8", cfg.Matching.SimilarityThreshold)
		}
		if cfg.Matching.CaseSensitive {
			t.Errorf("Matching.CaseSensitive = true, want false")
		}
		if cfg.Matching.MaxCandidates != 10 {
			t.Errorf("Matching.MaxCandidates = %d, want 10", cfg.Matching.MaxCandidates)
		}
		if cfg.Database.Path != "vendorlens.db" {
			t.Errorf("Database.Path = %s, want vendorlens.db", cfg.Database.Path)
		}
		if cfg.OCR.Language != "eng+fra" {
			t.Errorf("OCR.Language = %s, want eng+fra", cfg.OCR.Language)
		}
		if cfg.OCR.MaxPages != 5 {
			t.Errorf("OCR.MaxPages = %d, want 5", cfg.OCR.MaxPages)
		}
		if cfg.RateLimit.PerIPPerMinute != 120 {
			t.Errorf("RateLimit.PerIPPerMinute = %d, want 120", cfg.RateLimit.PerIPPerMinute)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("VENDORLENS_SERVER_PORT", "9090")
		os.Setenv("VENDORLENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("VENDORLENS_MATCHING_SIMILARITY_THRESHOLD", "0.9")
		os.Setenv("VENDORLENS_DATABASE_PATH", "/var/lib/vendorlens/catalog.db")
		os.Setenv("VENDORLENS_OCR_LANGUAGE", "eng")
		os.Setenv("VENDORLENS_CACHE_TTL", "1h")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Matching.SimilarityThreshold != 0.9 {
			t.Errorf("Matching.SimilarityThreshold = %v, want 0.9", cfg.Matching.SimilarityThreshold)
		}
		if cfg.Database.Path != "/var/lib/vendorlens/catalog.db" {
			t.Errorf("Database.Path = %s, want /var/lib/vendorlens/catalog.db", cfg.Database.Path)
		}
		if cfg.OCR.Language != "eng" {
			t.Errorf("OCR.Language = %s, want eng", cfg.OCR.Language)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
	})

	t.Run("fails validation for out-of-range threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("VENDORLENS_MATCHING_SIMILARITY_THRESHOLD", "1.5")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for threshold > 1")
		}
	})

	t.Run("fails validation for non-positive max candidates", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("VENDORLENS_MATCHING_MAX_CANDIDATES", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for max candidates = 0")
		}
	})

}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Matching: MatchingConfig{SimilarityThreshold: 0.8, MaxCandidates: 10},
			Database: DatabaseConfig{Path: "vendorlens.db"},
			OCR:      OCRConfig{MaxPages: 5},
		}
	}

	t.Run("accepts a complete config", func(t *testing.T) {
		if err := validate(base()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("rejects missing port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for missing port")
		}
	})

	t.Run("rejects zero threshold", func(t *testing.T) {
		cfg := base()
		cfg.Matching.SimilarityThreshold = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero threshold")
		}
	})

	t.Run("rejects empty database path", func(t *testing.T) {
		cfg := base()
		cfg.Database.Path = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty database path")
		}
	})

	t.Run("rejects negative max pages", func(t *testing.T) {
		cfg := base()
		cfg.OCR.MaxPages = -1
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for negative max pages")
		}
	})
}
