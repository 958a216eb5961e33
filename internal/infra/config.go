package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	OutputDir     string
	GeoIPDBPath   string
	DefaultLocale string

	SoraEndpoint        string
	SoraAPIKey          string
	SoraDeployment      string
	SoraPollInterval    time.Duration
	SoraMaxPolls        int
	SoraRequestTimeout  time.Duration
	SoraDownloadTimeout time.Duration

	ChatEndpoint   string
	ChatAPIKey     string
	ChatDeployment string

	AllowedOrigins     []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	WorkerIdleInterval time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A .env file in the working directory is honoured when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		OutputDir:     getEnv("OUTPUT_DIR", DefaultOutputDir()),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		SoraEndpoint:        strings.TrimSpace(os.Getenv("SORA_ENDPOINT")),
		SoraAPIKey:          strings.TrimSpace(os.Getenv("SORA_API_KEY")),
		SoraDeployment:      getEnv("SORA_DEPLOYMENT", "sora"),
		SoraPollInterval:    getEnvDuration("SORA_POLL_INTERVAL", 5*time.Second),
		SoraMaxPolls:        getEnvInt("SORA_MAX_POLLS", 120),
		SoraRequestTimeout:  getEnvDuration("SORA_REQUEST_TIMEOUT", 30*time.Second),
		SoraDownloadTimeout: getEnvDuration("SORA_DOWNLOAD_TIMEOUT", 10*time.Minute),

		ChatEndpoint:   strings.TrimSpace(os.Getenv("AZURE_LLM_ENDPOINT")),
		ChatAPIKey:     strings.TrimSpace(os.Getenv("AZURE_LLM_API_KEY")),
		ChatDeployment: strings.TrimSpace(os.Getenv("AZURE_LLM_DEPLOYMENT")),

		AllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		WorkerIdleInterval: getEnvDuration("WORKER_IDLE_INTERVAL", 2*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SoraMaxPolls <= 0 {
		return nil, fmt.Errorf("SORA_MAX_POLLS must be positive, got %d", cfg.SoraMaxPolls)
	}
	if abs, err := filepath.Abs(cfg.OutputDir); err == nil {
		cfg.OutputDir = abs
	}

	return cfg, nil
}

// DefaultOutputDir is the ViralVideos folder inside the user's documents directory.
func DefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", "ViralVideos")
	}
	return filepath.Join(home, "Documents", "ViralVideos")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("5s") or plain seconds ("5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
