package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"resume-analyzer/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	DatabaseURL     string
	MaxUploadBytes  int64

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLM LLMConfig

	JWTSecret          string
	SessionTTL         time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	ServiceName    string
	TracesExporter string
	OTLPEndpoint   string
}

// LLMConfig selects and tunes the generation provider.
type LLMConfig struct {
	Provider     string
	Model        string
	OpenAIAPIKey string
	OpenAIURL    string
	GeminiAPIKey string
	Timeout      time.Duration
	Temperature  float64
	Breaker      BreakerConfig
}

// BreakerConfig tunes the circuit breaker around provider calls.
type BreakerConfig struct {
	Enabled      bool
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// Load reads configuration from environment variables with sensible defaults.
// An optional CONFIG_FILE (yaml, json or toml) is read before the environment.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			telemetry.Warn("config.file_unreadable", map[string]any{"file": file, "err": err})
		}
	}

	env := normalizeEnv(v.GetString("env"))
	cfg := Config{
		Port:            v.GetString("port"),
		Env:             env,
		LogLevel:        v.GetString("log_level"),
		CORSAllowOrigin: splitAndTrim(v.GetString("cors_allow_origins")),
		DatabaseURL:     strings.TrimSpace(v.GetString("database_url")),
		MaxUploadBytes:  v.GetInt64("max_upload_bytes"),

		ObjectStoreType: normalizeStoreType(v.GetString("object_store")),
		LocalStoreDir:   v.GetString("local_store_dir"),
		AWSRegion:       v.GetString("aws_region"),
		S3Bucket:        v.GetString("s3_bucket"),
		S3Prefix:        v.GetString("s3_prefix"),
		SSEKMSKeyID:     v.GetString("sse_kms_key_id"),

		LLM: LLMConfig{
			Provider:     normalizeProvider(v.GetString("llm_provider")),
			Model:        v.GetString("llm_model"),
			OpenAIAPIKey: v.GetString("openai_api_key"),
			OpenAIURL:    v.GetString("openai_base_url"),
			GeminiAPIKey: v.GetString("gemini_api_key"),
			Timeout:      v.GetDuration("llm_timeout"),
			Temperature:  v.GetFloat64("llm_temperature"),
			Breaker: BreakerConfig{
				Enabled:      v.GetBool("llm_breaker_enabled"),
				MaxRequests:  v.GetUint32("llm_breaker_max_requests"),
				Interval:     v.GetDuration("llm_breaker_interval"),
				Timeout:      v.GetDuration("llm_breaker_timeout"),
				MinRequests:  v.GetUint32("llm_breaker_min_requests"),
				FailureRatio: v.GetFloat64("llm_breaker_failure_ratio"),
			},
		},

		JWTSecret:          strings.TrimSpace(v.GetString("jwt_secret")),
		SessionTTL:         v.GetDuration("session_ttl"),
		GoogleClientID:     v.GetString("google_client_id"),
		GoogleClientSecret: v.GetString("google_client_secret"),
		GoogleRedirectURL:  v.GetString("google_redirect_url"),
		UIRedirectURL:      v.GetString("ui_redirect_url"),

		ServiceName:    v.GetString("otel_service_name"),
		TracesExporter: strings.ToLower(strings.TrimSpace(v.GetString("otel_traces_exporter"))),
		OTLPEndpoint:   v.GetString("otel_exporter_otlp_endpoint"),
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel(cfg.LLM.Provider)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")
	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_allow_origins", "http://localhost:5173")
	v.SetDefault("database_url", "")
	v.SetDefault("max_upload_bytes", 10<<20)

	v.SetDefault("object_store", "none")
	v.SetDefault("local_store_dir", "./data")
	v.SetDefault("aws_region", "")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_prefix", "")
	v.SetDefault("sse_kms_key_id", "")

	v.SetDefault("llm_provider", "openai")
	v.SetDefault("llm_model", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("llm_timeout", 120*time.Second)
	v.SetDefault("llm_temperature", 0.2)
	v.SetDefault("llm_breaker_enabled", true)
	v.SetDefault("llm_breaker_max_requests", 1)
	v.SetDefault("llm_breaker_interval", 60*time.Second)
	v.SetDefault("llm_breaker_timeout", 30*time.Second)
	v.SetDefault("llm_breaker_min_requests", 5)
	v.SetDefault("llm_breaker_failure_ratio", 0.6)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("google_redirect_url", "")
	v.SetDefault("ui_redirect_url", "")

	v.SetDefault("otel_service_name", "resume-analyzer")
	v.SetDefault("otel_traces_exporter", "none")
	v.SetDefault("otel_exporter_otlp_endpoint", "")
}

// Validate reports settings that cannot work together. Dev environments
// are allowed to run without a database or credentials.
func (c Config) Validate() error {
	var errs []error
	if c.Env == "production" {
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
	}
	if c.ObjectStoreType == "s3" && c.S3Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required when OBJECT_STORE=s3"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	switch c.TracesExporter {
	case "", "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("unknown OTEL_TRACES_EXPORTER %q", c.TracesExporter))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		// godotenv.Load never overrides variables already set in the process.
		_ = godotenv.Load(path)
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "none"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "placeholder", "none":
		return "placeholder"
	default:
		return "openai"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "openai":
		return "gpt-4o-mini"
	default:
		return ""
	}
}
