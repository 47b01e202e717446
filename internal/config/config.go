// Package config reads server configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort         string
	JWTSecret        string
	TokenTTL         time.Duration
	GeminiAPIKey     string
	FirestoreProject string
	UseMemoryStore   bool
	UploadDir        string
	UploadJobTTL     time.Duration
	AllowedOrigins   []string
}

// Load reads configuration from the environment with reasonable defaults.
// A .env file in the working directory is loaded first if present.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := Config{
		HTTPPort:         getenv("HTTP_PORT", "8090"),
		JWTSecret:        getenv("JWT_SECRET", "dev_secret"),
		TokenTTL:         getenvDuration("TOKEN_TTL", 24*time.Hour),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		FirestoreProject: os.Getenv("GOOGLE_CLOUD_PROJECT"),
		UploadDir:        getenv("UPLOAD_DIR", "uploads"),
		UploadJobTTL:     getenvDuration("UPLOAD_JOB_TTL", time.Hour),
	}

	cfg.UseMemoryStore = os.Getenv("USE_MEMORY_STORE") == "true" ||
		os.Getenv("ENV") == "local" ||
		cfg.FirestoreProject == ""

	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	for _, origin := range strings.Split(origins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8090", cfg.HTTPPort)
		cfg.HTTPPort = "8090"
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %s", key, v, fallback)
		return fallback
	}
	return d
}
