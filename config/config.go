package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are the environment variable names, which double as
// config.yaml keys.
type Config struct {
	// Server Configuration
	ServerAddress      string   `mapstructure:"SERVER_ADDRESS"` // e.g., ":8000"
	AppEnv             string   `mapstructure:"APP_ENV"`        // "production" switches gin to release mode
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Completion API Configuration
	LLMProvider string `mapstructure:"LLM_PROVIDER"` // groq, openai-compatible, openai
	LLMBaseURL  string `mapstructure:"LLM_BASE_URL"`
	LLMModel    string `mapstructure:"LLM_MODEL"`
	// Name of the variable holding the API key. The key itself is looked up
	// on every request, see LookupCredential.
	LLMAPIKeyEnv             string        `mapstructure:"LLM_API_KEY_ENV"`
	GenerationTimeout        time.Duration `mapstructure:"GENERATION_TIMEOUT"`
	MaxConcurrentGenerations int64         `mapstructure:"MAX_CONCURRENT_GENERATIONS"`
	PromptAugment            bool          `mapstructure:"PROMPT_AUGMENT"`

	// Quota Configuration
	DailyLimit  int           `mapstructure:"DAILY_LIMIT"`
	QuotaWindow time.Duration `mapstructure:"QUOTA_WINDOW"`
	QuotaStrict bool          `mapstructure:"QUOTA_STRICT"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // text or json
	LogFile   string `mapstructure:"LOG_FILE"`   // optional, rotated

	v *viper.Viper
}

var defaults = map[string]interface{}{
	"SERVER_ADDRESS":             ":8000",
	"APP_ENV":                    "development",
	"CORS_ALLOWED_ORIGINS":       []string{"*"},
	"LLM_PROVIDER":               "groq",
	"LLM_BASE_URL":               "",
	"LLM_MODEL":                  "",
	"LLM_API_KEY_ENV":            "GROQ_API_KEY",
	"GENERATION_TIMEOUT":         "60s",
	"MAX_CONCURRENT_GENERATIONS": 8,
	"PROMPT_AUGMENT":             true,
	"DAILY_LIMIT":                100,
	"QUOTA_WINDOW":               "24h",
	"QUOTA_STRICT":               false,
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "text",
	"LOG_FILE":                   "",
}

// LoadConfig reads configuration from file and environment variables.
// Environment variables win over config.yaml.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")

	// Unmarshal only sees keys viper knows about, so every key needs a default.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Info("config.yaml not found, relying solely on environment variables")
	} else {
		log.Infof("Using configuration file: %s", v.ConfigFileUsed())
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.CORSAllowedOrigins = splitOrigins(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("SERVER_ADDRESS is required"))
	}
	switch strings.ToLower(c.LLMProvider) {
	case "groq", "openai", "openai-compatible":
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLMProvider))
	}
	if c.LLMAPIKeyEnv == "" {
		errs = append(errs, errors.New("LLM_API_KEY_ENV is required"))
	}
	if c.DailyLimit <= 0 {
		errs = append(errs, fmt.Errorf("DAILY_LIMIT must be positive, got %d", c.DailyLimit))
	}
	if c.QuotaWindow <= 0 {
		errs = append(errs, fmt.Errorf("QUOTA_WINDOW must be positive, got %s", c.QuotaWindow))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GENERATION_TIMEOUT must be positive, got %s", c.GenerationTimeout))
	}
	if c.MaxConcurrentGenerations <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENT_GENERATIONS must be positive, got %d", c.MaxConcurrentGenerations))
	}
	return errors.Join(errs...)
}

// LookupCredential returns the current value of the API key variable. It is
// read on every call, so the key can be set or rotated without a restart.
func (c *Config) LookupCredential() string {
	if c.v == nil {
		return ""
	}
	return strings.TrimSpace(c.v.GetString(c.LLMAPIKeyEnv))
}

// Production reports whether APP_ENV selects release mode.
func (c *Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
