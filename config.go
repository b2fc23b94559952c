package tikrelay

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the service settings. Everything has a default; a .env
// file or real environment variables override.
type Config struct {
	Port           string
	ProxyURL       string
	AllowedOrigins []string
	Brand          string
	RequestTimeout time.Duration
	Endpoints      []string
	AltEndpoint    string
}

// LoadConfig reads configuration from the environment, optionally seeded
// by a .env file in the working directory.
func LoadConfig() (Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		ProxyURL:       getEnv("PROXY_URL", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		Brand:          getEnv("BRAND_NAME", ""),
		Endpoints:      splitList(getEnv("API_ENDPOINTS", "")),
		AltEndpoint:    getEnv("ALT_API_ENDPOINT", DefaultAltEndpoint),
	}

	timeout := getEnv("REQUEST_TIMEOUT", "15s")
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return Config{}, fmt.Errorf("parse REQUEST_TIMEOUT %q: %w", timeout, err)
	}
	cfg.RequestTimeout = d

	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = DefaultEndpoints
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
