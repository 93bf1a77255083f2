package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultHTTPAddr = ":8080"
	DefaultLogLevel = "info"
	DefaultAPIURL   = "http://localhost:8080/api"
)

type Config struct {
	HTTPAddr    string   `toml:"http_addr"`
	LogLevel    string   `toml:"log_level"`
	MetricsAddr string   `toml:"metrics_addr"`
	NATSURL     string   `toml:"nats_url"`
	CORSOrigins []string `toml:"cors_origins"`
	APIURL      string   `toml:"api_url"`
}

// Load resolves configuration in order: defaults, the TOML file named by
// TODO_CONFIG, then the environment (preloaded from .env when present).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr:    DefaultHTTPAddr,
		LogLevel:    DefaultLogLevel,
		CORSOrigins: []string{"*"},
		APIURL:      DefaultAPIURL,
	}

	if path := os.Getenv("TODO_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.MetricsAddr, "METRICS_ADDR")
	setString(&cfg.NATSURL, "NATS_URL")
	setString(&cfg.APIURL, "TODO_API_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	if c.HTTPAddr == "" {
		problems = append(problems, "HTTP_ADDR is empty")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a level", c.LogLevel))
	}
	if c.MetricsAddr != "" && c.MetricsAddr == c.HTTPAddr {
		problems = append(problems, "METRICS_ADDR must differ from HTTP_ADDR")
	}
	if c.NATSURL != "" && !strings.Contains(c.NATSURL, "://") {
		problems = append(problems, fmt.Sprintf("NATS_URL %q has no scheme", c.NATSURL))
	}
	if c.APIURL == "" {
		problems = append(problems, "TODO_API_URL is empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %v", problems)
	}
	return nil
}
