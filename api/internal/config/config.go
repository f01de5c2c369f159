package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"animate-prompt/api/internal/logger"
)

type Config struct {
	Port string `yaml:"port"`

	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel    string `yaml:"gemini_model"`
	GeminiEndpoint string `yaml:"gemini_endpoint"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	DefaultEngine string `yaml:"default_engine"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	WebhookURL       string `yaml:"webhook_url"`
	DatabaseURL      string `yaml:"database_url"`

	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	RateLimitRPS     float64       `yaml:"rate_limit_rps"`
	RateLimitBurst   int           `yaml:"rate_limit_burst"`
	SettingsCacheTTL time.Duration `yaml:"settings_cache_ttl"`

	LogLevel string `yaml:"log_level"`
}

func defaults() *Config {
	return &Config{
		Port:             "8000",
		GeminiModel:      "gemini-2.5-flash",
		OpenAIModel:      "gpt-4o-mini",
		DefaultEngine:    "gemini",
		MaxUploadBytes:   20 << 20,
		RateLimitRPS:     5,
		RateLimitBurst:   10,
		SettingsCacheTTL: 10 * time.Minute,
		LogLevel:         "info",
	}
}

// Load reads CONFIG_FILE (optional YAML) and then the environment; env wins.
// It exits the process on a malformed file or value.
func Load() *Config {
	cfg, err := LoadFrom(os.Getenv("CONFIG_FILE"), os.Getenv)
	if err != nil {
		logger.WithError(err).Fatal("config")
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg
}

func LoadFrom(path string, getenv func(string) string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	env := func(k string, dst *string) {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			*dst = v
		}
	}
	env("PORT", &cfg.Port)
	env("GEMINI_API_KEY", &cfg.GeminiAPIKey)
	env("GEMINI_MODEL", &cfg.GeminiModel)
	env("GEMINI_ENDPOINT", &cfg.GeminiEndpoint)
	env("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	env("OPENAI_MODEL", &cfg.OpenAIModel)
	env("DEFAULT_ENGINE", &cfg.DefaultEngine)
	env("TELEGRAM_BOT_TOKEN", &cfg.TelegramBotToken)
	env("WEBHOOK_URL", &cfg.WebhookURL)
	env("DATABASE_URL", &cfg.DatabaseURL)
	env("LOG_LEVEL", &cfg.LogLevel)

	if v := getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bad MAX_UPLOAD_BYTES %q", v)
		}
		cfg.MaxUploadBytes = n
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("bad RATE_LIMIT_RPS %q", v)
		}
		cfg.RateLimitRPS = f
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad RATE_LIMIT_BURST %q", v)
		}
		cfg.RateLimitBurst = n
	}
	if v := getenv("SETTINGS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("bad SETTINGS_CACHE_TTL %q: %w", v, err)
		}
		cfg.SettingsCacheTTL = d
	}
	return cfg, nil
}

// APIKey returns the built-in credential for the named engine ("" when unset).
func (c *Config) APIKey(engine string) string {
	switch strings.ToLower(engine) {
	case "gpt", "openai":
		return c.OpenAIAPIKey
	default:
		return c.GeminiAPIKey
	}
}
