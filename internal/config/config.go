package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	OCR    OCRConfig
	LLM    LLMConfig
	Fetch  FetchConfig
	S3     S3Config
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// OCRConfig holds Tesseract settings.
type OCRConfig struct {
	Languages []string `mapstructure:"languages"`
}

// LLMProviderConfig holds settings for a single completion provider.
type LLMProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Retry policy applied by the extraction service around model calls.
	// Zero disables retries; the provider clients themselves never retry.
	MaxRetries int `mapstructure:"max_retries"`

	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, falling back to the
// legacy flat fields.
func (l *LLMConfig) PrimaryConfig() *LLMProviderConfig {
	if l.Primary.Provider != "" {
		return &l.Primary
	}
	return &LLMProviderConfig{
		Provider:     l.Provider,
		APIKey:       l.APIKey,
		DefaultModel: l.DefaultModel,
		TimeoutSecs:  l.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (l *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// FetchConfig holds document download settings.
type FetchConfig struct {
	TimeoutSecs   int   `mapstructure:"timeout_secs"`
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// S3Config holds AWS S3 settings for s3:// document references.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the BILLEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// OCR defaults
	v.SetDefault("ocr.languages", "eng")

	// LLM defaults (legacy flat)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.default_model", "gpt-4o-mini")
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("llm.max_retries", 0)

	// LLM primary defaults
	v.SetDefault("llm.primary.provider", "")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.default_model", "")
	v.SetDefault("llm.primary.timeout_secs", 120)

	// LLM secondary defaults (unset provider disables fallback)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.default_model", "")
	v.SetDefault("llm.secondary.timeout_secs", 120)

	// Fetch defaults
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_file_size_mb", 20)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "BILLEX_SERVER_PORT",
		"server.read_timeout":         "BILLEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "BILLEX_SERVER_WRITE_TIMEOUT",
		"server.environment":          "BILLEX_SERVER_ENVIRONMENT",
		"ocr.languages":               "BILLEX_OCR_LANGUAGES",
		"llm.provider":                "BILLEX_LLM_PROVIDER",
		"llm.api_key":                 "BILLEX_LLM_API_KEY",
		"llm.default_model":           "BILLEX_LLM_DEFAULT_MODEL",
		"llm.timeout_secs":            "BILLEX_LLM_TIMEOUT_SECS",
		"llm.max_retries":             "BILLEX_LLM_MAX_RETRIES",
		"llm.primary.provider":        "BILLEX_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":         "BILLEX_LLM_PRIMARY_API_KEY",
		"llm.primary.default_model":   "BILLEX_LLM_PRIMARY_DEFAULT_MODEL",
		"llm.primary.timeout_secs":    "BILLEX_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":      "BILLEX_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":       "BILLEX_LLM_SECONDARY_API_KEY",
		"llm.secondary.default_model": "BILLEX_LLM_SECONDARY_DEFAULT_MODEL",
		"llm.secondary.timeout_secs":  "BILLEX_LLM_SECONDARY_TIMEOUT_SECS",
		"fetch.timeout_secs":          "BILLEX_FETCH_TIMEOUT_SECS",
		"fetch.max_file_size_mb":      "BILLEX_FETCH_MAX_FILE_SIZE_MB",
		"s3.region":                   "BILLEX_S3_REGION",
		"s3.endpoint":                 "BILLEX_S3_ENDPOINT",
		"s3.access_key":               "BILLEX_S3_ACCESS_KEY",
		"s3.secret_key":               "BILLEX_S3_SECRET_KEY",
		"cors.allowed_origins":        "BILLEX_CORS_ALLOWED_ORIGINS",
		"log.level":                   "BILLEX_LOG_LEVEL",
		"log.format":                  "BILLEX_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLEX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.OCR = OCRConfig{
		Languages: splitAndTrim(v.GetString("ocr.languages")),
	}
	cfg.LLM = LLMConfig{
		Provider:     v.GetString("llm.provider"),
		APIKey:       v.GetString("llm.api_key"),
		DefaultModel: v.GetString("llm.default_model"),
		TimeoutSecs:  v.GetInt("llm.timeout_secs"),
		MaxRetries:   v.GetInt("llm.max_retries"),
		Primary: LLMProviderConfig{
			Provider:     v.GetString("llm.primary.provider"),
			APIKey:       v.GetString("llm.primary.api_key"),
			DefaultModel: v.GetString("llm.primary.default_model"),
			TimeoutSecs:  v.GetInt("llm.primary.timeout_secs"),
		},
		Secondary: LLMProviderConfig{
			Provider:     v.GetString("llm.secondary.provider"),
			APIKey:       v.GetString("llm.secondary.api_key"),
			DefaultModel: v.GetString("llm.secondary.default_model"),
			TimeoutSecs:  v.GetInt("llm.secondary.timeout_secs"),
		},
	}
	cfg.Fetch = FetchConfig{
		TimeoutSecs:   v.GetInt("fetch.timeout_secs"),
		MaxFileSizeMB: v.GetInt64("fetch.max_file_size_mb"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("cors.allowed_origins")),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
