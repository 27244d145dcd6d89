package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Matching  MatchingConfig
	Parser    ParserConfig
	Database  DatabaseConfig
	OCR       OCRConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MatchingConfig holds the business matcher settings
type MatchingConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	CaseSensitive       bool    `mapstructure:"case_sensitive"`
	IgnorePunctuation   bool    `mapstructure:"ignore_punctuation"`
	IgnoreWhitespace    bool    `mapstructure:"ignore_whitespace"`
	MaxCandidates       int     `mapstructure:"max_candidates"`
	EnableDebugLogging  bool    `mapstructure:"enable_debug_logging"`
}

// ParserConfig holds field extraction settings
type ParserConfig struct {
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// DatabaseConfig holds the catalog database location
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// OCRConfig holds OCR engine configuration
type OCRConfig struct {
	Language string `mapstructure:"language"`
	MaxPages int    `mapstructure:"max_pages"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIPPerMinute int `mapstructure:"per_ip_per_minute"`
	Burst          int `mapstructure:"burst"`
}

// CacheConfig holds extraction cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/vendorlens/")

	v.SetEnvPrefix("VENDORLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Matching defaults mirror the matcher's own fallbacks
	v.SetDefault("matching.similarity_threshold", 0.8)
	v.SetDefault("matching.case_sensitive", false)
	v.SetDefault("matching.ignore_punctuation", true)
	v.SetDefault("matching.ignore_whitespace", true)
	v.SetDefault("matching.max_candidates", 10)
	v.SetDefault("matching.enable_debug_logging", false)

	// Parser defaults
	v.SetDefault("parser.enable_debug_logging", false)

	// Database defaults
	v.SetDefault("database.path", "vendorlens.db")

	// OCR defaults
	v.SetDefault("ocr.language", "eng+fra")
	v.SetDefault("ocr.max_pages", 5)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip_per_minute", 120)
	v.SetDefault("ratelimit.burst", 20)

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Matching.SimilarityThreshold <= 0 || config.Matching.SimilarityThreshold > 1 {
		return fmt.Errorf("matching similarity threshold must be in (0, 1], got: %v", config.Matching.SimilarityThreshold)
	}

	if config.Matching.MaxCandidates <= 0 {
		return fmt.Errorf("matching max candidates must be positive, got: %d", config.Matching.MaxCandidates)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required (set VENDORLENS_DATABASE_PATH)")
	}

	if config.OCR.MaxPages < 0 {
		return fmt.Errorf("ocr max pages must not be negative, got: %d", config.OCR.MaxPages)
	}

	return nil
}
