package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "JWT_SECRET", "TOKEN_TTL", "GEMINI_API_KEY",
		"GOOGLE_CLOUD_PROJECT", "USE_MEMORY_STORE", "ENV",
		"UPLOAD_DIR", "UPLOAD_JOB_TTL", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8090", cfg.HTTPPort)
	assert.Equal(t, "dev_secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, time.Hour, cfg.UploadJobTTL)
	assert.True(t, cfg.UseMemoryStore, "no project configured means memory store")
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "retailtally-prod")
	t.Setenv("USE_MEMORY_STORE", "")
	t.Setenv("ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.UseMemoryStore)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("TOKEN_TTL", "soon")

	cfg := Load()
	assert.Equal(t, "8090", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoadMemoryStoreFlags(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "retailtally-prod")

	t.Setenv("USE_MEMORY_STORE", "true")
	t.Setenv("ENV", "")
	assert.True(t, Load().UseMemoryStore)

	t.Setenv("USE_MEMORY_STORE", "")
	t.Setenv("ENV", "local")
	assert.True(t, Load().UseMemoryStore)

	t.Setenv("ENV", "production")
	assert.False(t, Load().UseMemoryStore)
}
