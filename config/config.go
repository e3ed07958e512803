package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	OptionStore string `yaml:"option_store"` // memory | redis | postgres
	Cache       string `yaml:"cache"`        // memory | redis
	RedisAddr   string `yaml:"redis_addr"`
	DBConn      string `yaml:"db_conn"`

	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`

	MaxOptions               int      `yaml:"max_options"`
	LegacyArrearsFallthrough bool     `yaml:"legacy_arrears_fallthrough"`
	TraceMetrics             []string `yaml:"trace_metrics"`

	OpenAIAPIKey   string  `yaml:"openai_api_key"`
	SuggestRateMin float64 `yaml:"suggest_rate_min"`
	SuggestRateMax float64 `yaml:"suggest_rate_max"`
	SuggestTerms   []int   `yaml:"suggest_terms"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		OptionStore:    "memory",
		Cache:          "memory",
		RedisAddr:      "localhost:6379",
		RateLimit:      30,
		RateWindow:     time.Minute,
		MaxOptions:     3,
		SuggestRateMin: 4,
		SuggestRateMax: 10,
		SuggestTerms:   []int{120, 180, 240, 360},
	}
}

// NewConfig loads configuration from an optional YAML file named by
// CONFIG_FILE, then lets environment variables override it.
func NewConfig() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.OptionStore = strings.ToLower(getEnv("OPTION_STORE", cfg.OptionStore))
	cfg.Cache = strings.ToLower(getEnv("CACHE", cfg.Cache))
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.DBConn = getEnv("DB_CONN", cfg.DBConn)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)

	var err error
	if cfg.RateLimit, err = getEnvInt("RATE_LIMIT", cfg.RateLimit); err != nil {
		return nil, err
	}
	if cfg.MaxOptions, err = getEnvInt("MAX_OPTIONS", cfg.MaxOptions); err != nil {
		return nil, err
	}
	if cfg.SuggestRateMin, err = getEnvFloat("SUGGEST_RATE_MIN", cfg.SuggestRateMin); err != nil {
		return nil, err
	}
	if cfg.SuggestRateMax, err = getEnvFloat("SUGGEST_RATE_MAX", cfg.SuggestRateMax); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv("RATE_WINDOW"); ok {
		if cfg.RateWindow, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid RATE_WINDOW: %w", err)
		}
	}
	if v, ok := os.LookupEnv("LEGACY_ARREARS_FALLTHROUGH"); ok {
		if cfg.LegacyArrearsFallthrough, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid LEGACY_ARREARS_FALLTHROUGH: %w", err)
		}
	}
	if v, ok := os.LookupEnv("TRACE_METRICS"); ok {
		cfg.TraceMetrics = splitList(v)
	}
	if v, ok := os.LookupEnv("SUGGEST_TERMS"); ok {
		terms, err := parseTerms(v)
		if err != nil {
			return nil, err
		}
		cfg.SuggestTerms = terms
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.OptionStore {
	case "memory", "redis":
	case "postgres":
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required for the postgres option store")
		}
	default:
		return fmt.Errorf("unknown OPTION_STORE %q", c.OptionStore)
	}
	switch c.Cache {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown CACHE %q", c.Cache)
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("rate limit and window must be positive")
	}
	if c.MaxOptions <= 0 {
		return fmt.Errorf("MAX_OPTIONS must be positive")
	}
	if c.SuggestRateMin > c.SuggestRateMax {
		return fmt.Errorf("SUGGEST_RATE_MIN above SUGGEST_RATE_MAX")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTerms(v string) ([]int, error) {
	var terms []int
	for _, part := range splitList(v) {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SUGGEST_TERMS entry %q", part)
		}
		terms = append(terms, n)
	}
	return terms, nil
}
