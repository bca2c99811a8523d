package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ENV", "CORS_ALLOW_ORIGINS", "OBJECT_STORE", "LOCAL_STORE_DIR", "S3_BUCKET",
	"LLM_PROVIDER", "LLM_MODEL", "GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_MAX_ATTEMPTS",
	"LLM_RETRY_BASE_DELAY", "SCORE_PROVIDER", "SHARPAPI_KEY", "SHARPAPI_POLL_INTERVAL",
	"SHARPAPI_POLL_TIMEOUT", "MAX_UPLOAD_BYTES", "RESUME_SCHEMA_STRICT", "ARTIFACT_TTL",
	"RATE_LIMIT_ENHANCE_PER_MIN", "REDIS_URL", "JOB_CACHE_TTL",
}

// isolate runs the test in an empty directory with every config key unset.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "llm", cfg.ScoreProvider)
	assert.Equal(t, 5, cfg.LLMMaxAttempts)
	assert.Equal(t, time.Second, cfg.LLMRetryBaseDelay)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.ResumeSchemaStrict)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigin)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.JobCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.ArtifactTTL)
}

func TestLoadOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "prod")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SHARPAPI_POLL_INTERVAL", "2")
	t.Setenv("SHARPAPI_POLL_TIMEOUT", "30s")
	t.Setenv("RESUME_SCHEMA_STRICT", "true")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JOB_CACHE_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey())
	assert.Equal(t, 2*time.Second, cfg.SharpAPIPollInterval)
	assert.Equal(t, 30*time.Second, cfg.SharpAPIPollTimeout)
	assert.True(t, cfg.ResumeSchemaStrict)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 15*time.Minute, cfg.JobCacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)

	t.Setenv("LLM_PROVIDER", "claude")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("SCORE_PROVIDER", "sharpapi")
	_, err = Load()
	assert.Error(t, err, "sharpapi requires SHARPAPI_KEY")

	t.Setenv("SCORE_PROVIDER", "llm")
	t.Setenv("LLM_MAX_ATTEMPTS", "many")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("LLM_MAX_ATTEMPTS", "")
	t.Setenv("REDIS_URL", "not a url")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	isolate(t)
	writeFile(t, ".env", "PORT=9090\nLLM_MODEL=\"gemini-2.5-pro\"\n# comment\n")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLMModel)
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
}
