package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string   `validate:"required,numeric"`
	Env             string   `validate:"oneof=dev local staging production"`
	CORSAllowOrigin []string `validate:"dive,required"`

	ObjectStoreType string `validate:"oneof=local s3"`
	LocalStoreDir   string `validate:"required_if=ObjectStoreType local"`
	AWSRegion       string
	S3Bucket        string `validate:"required_if=ObjectStoreType s3"`
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider       string `validate:"oneof=gemini openai"`
	LLMModel          string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	LLMMaxAttempts    int           `validate:"gte=1,lte=10"`
	LLMRetryBaseDelay time.Duration `validate:"gte=0"`

	ScoreProvider        string `validate:"oneof=llm sharpapi"`
	SharpAPIKey          string `validate:"required_if=ScoreProvider sharpapi"`
	SharpAPIPollInterval time.Duration `validate:"gt=0"`
	SharpAPIPollTimeout  time.Duration `validate:"gtfield=SharpAPIPollInterval"`

	MaxUploadBytes     int64 `validate:"gt=0"`
	ResumeSchemaStrict bool
	PDFFontPath        string
	PDFBoldFontPath    string
	ArtifactTTL        time.Duration `validate:"gte=0"`
	RateLimitPerMinute int           `validate:"gte=0"`

	// RedisURL enables the job posting cache when set.
	RedisURL    string        `validate:"omitempty,url"`
	JobCacheTTL time.Duration `validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from environment variables with sensible defaults.
// Values already present in the environment win over .env files.
func Load() (Config, error) {
	loadEnvFiles(".env", "cmd/.env")

	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:      normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:        getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:          getEnv("SSE_KMS_KEY_ID", ""),
		LLMProvider:          strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:             getEnv("LLM_MODEL", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		ScoreProvider:        strings.ToLower(getEnv("SCORE_PROVIDER", "llm")),
		SharpAPIKey:          getEnv("SHARPAPI_KEY", ""),
		ResumeSchemaStrict:   false,
		PDFFontPath:          getEnv("PDF_FONT_PATH", ""),
		PDFBoldFontPath:      getEnv("PDF_BOLD_FONT_PATH", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		LLMMaxAttempts:       5,
		LLMRetryBaseDelay:    time.Second,
		SharpAPIPollInterval: 5 * time.Second,
		SharpAPIPollTimeout:  60 * time.Second,
		MaxUploadBytes:       16 << 20,
		ArtifactTTL:          24 * time.Hour,
		RateLimitPerMinute:   10,
		JobCacheTTL:          time.Hour,
	}

	var err error
	if cfg.LLMMaxAttempts, err = getInt("LLM_MAX_ATTEMPTS", cfg.LLMMaxAttempts); err != nil {
		return Config{}, err
	}
	if cfg.LLMRetryBaseDelay, err = getDuration("LLM_RETRY_BASE_DELAY", cfg.LLMRetryBaseDelay); err != nil {
		return Config{}, err
	}
	if cfg.SharpAPIPollInterval, err = getDuration("SHARPAPI_POLL_INTERVAL", cfg.SharpAPIPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.SharpAPIPollTimeout, err = getDuration("SHARPAPI_POLL_TIMEOUT", cfg.SharpAPIPollTimeout); err != nil {
		return Config{}, err
	}
	maxUpload, err := getInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes))
	if err != nil {
		return Config{}, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)
	if cfg.ResumeSchemaStrict, err = getBool("RESUME_SCHEMA_STRICT", cfg.ResumeSchemaStrict); err != nil {
		return Config{}, err
	}
	if cfg.ArtifactTTL, err = getDuration("ARTIFACT_TTL", cfg.ArtifactTTL); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_ENHANCE_PER_MIN", cfg.RateLimitPerMinute); err != nil {
		return Config{}, err
	}
	if cfg.JobCacheTTL, err = getDuration("JOB_CACHE_TTL", cfg.JobCacheTTL); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LLMAPIKey returns the key of the selected provider.
func (c Config) LLMAPIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// loadEnvFiles loads the given files if they exist. godotenv.Load never
// overrides variables that are already set.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, def bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// getDuration accepts Go durations ("90s") or plain seconds ("90").
func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
