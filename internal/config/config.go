package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// sqlite file path, or a postgres:// URL
	DatabaseURL string

	// OpenAI-compatible model API
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIMaxTokens int
	OpenAITimeout   time.Duration

	// Documents longer than this many characters are rejected; 0 disables the check.
	MaxDocumentChars int
	// Multipart bytes held in memory before spilling to disk.
	MultipartMaxMemory int64

	// Supabase auth
	SupabaseURL     string
	SupabaseAnonKey string

	// Redis change notifications
	RedisAddr          string
	RedisPassword      string
	RedisChannelPrefix string

	// S3 upload archive
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	CORSAllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "data/cheatsheets.db")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_MAX_TOKENS", 4096)
	v.SetDefault("OPENAI_TIMEOUT", "120s")
	v.SetDefault("MAX_DOCUMENT_CHARS", 200000)
	v.SetDefault("MULTIPART_MAX_MEMORY", 10*1024*1024)
	v.SetDefault("REDIS_CHANNEL_PREFIX", "summaries")
	v.SetDefault("S3_BUCKET_NAME", "documents")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load reads configuration from the environment. Call godotenv.Load first to
// pick up a local .env file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("OPENAI_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPENAI_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		AppEnv:             strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		OpenAIAPIKey:       v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:      v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:        v.GetString("OPENAI_MODEL"),
		OpenAIMaxTokens:    v.GetInt("OPENAI_MAX_TOKENS"),
		OpenAITimeout:      timeout,
		MaxDocumentChars:   v.GetInt("MAX_DOCUMENT_CHARS"),
		MultipartMaxMemory: v.GetInt64("MULTIPART_MAX_MEMORY"),
		SupabaseURL:        strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseAnonKey:    v.GetString("SUPABASE_ANON_KEY"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisChannelPrefix: v.GetString("REDIS_CHANNEL_PREFIX"),
		S3Endpoint:         v.GetString("S3_ENDPOINT"),
		S3AccessKeyID:      v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:  v.GetString("S3_SECRET_ACCESS_KEY"),
		S3BucketName:       v.GetString("S3_BUCKET_NAME"),
		S3UseSSL:           v.GetBool("S3_USE_SSL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MaxDocumentChars < 0 {
		return fmt.Errorf("MAX_DOCUMENT_CHARS must not be negative")
	}
	if c.OpenAIMaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}
	if (c.SupabaseURL == "") != (c.SupabaseAnonKey == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY must be set together")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
