package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-enhancer/internal/atsmatch"
	"resume-enhancer/internal/enhance"
	"resume-enhancer/internal/jobdesc"
	"resume-enhancer/internal/llm"
	"resume-enhancer/internal/llm/gemini"
	"resume-enhancer/internal/llm/openai"
	"resume-enhancer/internal/oracle"
	"resume-enhancer/internal/services/health"
	"resume-enhancer/internal/shared/cache"
	"resume-enhancer/internal/shared/config"
	"resume-enhancer/internal/shared/server"
	"resume-enhancer/internal/shared/storage/object"
	localstore "resume-enhancer/internal/shared/storage/object/local"
	s3store "resume-enhancer/internal/shared/storage/object/s3"
	"resume-enhancer/internal/shared/telemetry"
	"resume-enhancer/resume/contract"
	"resume-enhancer/resume/render"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Store          object.ObjectStore
	Completer      llm.Completer
	EnhanceService *enhance.Service
	EnhanceHandler *enhance.Handler
}

// Options override dependencies, mostly for tests.
type Options struct {
	Completer llm.Completer
	Scorer    oracle.Scorer
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	return BuildWithOptions(context.Background(), cfg, Options{})
}

// BuildWithOptions is Build with injectable oracles.
func BuildWithOptions(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer := opts.Completer
	if completer == nil {
		completer, err = buildCompleter(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	mode := contract.Lenient
	if cfg.ResumeSchemaStrict {
		mode = contract.Strict
	}
	llmOracle := oracle.NewLLM(completer, mode)

	scorer := opts.Scorer
	if scorer == nil {
		scorer, err = buildScorer(cfg, llmOracle)
		if err != nil {
			return nil, err
		}
	}

	svc := &enhance.Service{
		Scorer:    scorer,
		Suggester: llmOracle,
		Rewriter:  llmOracle,
		Store:     store,
		Jobs:      buildJobFetcher(ctx, cfg),
		PDF: render.PDFOptions{
			FontPath:     cfg.PDFFontPath,
			BoldFontPath: cfg.PDFBoldFontPath,
		},
	}
	handler := enhance.NewHandler(svc, mode, cfg.MaxUploadBytes)

	app := &App{
		Config:         cfg,
		Store:          store,
		Completer:      completer,
		EnhanceService: svc,
		EnhanceHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		EnhanceHandler: handler,
		Health:         health.NewService(cfg),
	})
	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildJobFetcher(ctx context.Context, cfg config.Config) enhance.JobFetcher {
	fetcher := jobdesc.NewFetcher(nil)
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return fetcher
	}
	redisCache, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil || !redisCache.Available() {
		telemetry.Warn("bootstrap.job_cache_disabled", map[string]any{"error": err})
		return fetcher
	}
	return &jobdesc.CachedFetcher{Next: fetcher, Cache: redisCache, TTL: cfg.JobCacheTTL}
}

func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	apiKey := strings.TrimSpace(cfg.LLMAPIKey())
	if apiKey == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": cfg.LLMProvider})
			return llm.PlaceholderCompleter{}, nil
		}
		return nil, fmt.Errorf("api key for LLM_PROVIDER=%s is required", cfg.LLMProvider)
	}

	var (
		base llm.Completer
		err  error
	)
	switch cfg.LLMProvider {
	case "openai":
		base, err = openai.NewClient(apiKey, cfg.LLMModel)
	default:
		base, err = gemini.NewClient(ctx, apiKey, cfg.LLMModel)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s client: %w", cfg.LLMProvider, err)
	}

	policy := llm.DefaultRetryPolicy()
	if cfg.LLMMaxAttempts > 0 {
		policy.MaxAttempts = cfg.LLMMaxAttempts
	}
	if cfg.LLMRetryBaseDelay > 0 {
		policy.BaseDelay = cfg.LLMRetryBaseDelay
	}
	return llm.WithRetry(base, policy), nil
}

func buildScorer(cfg config.Config, fallback oracle.Scorer) (oracle.Scorer, error) {
	if cfg.ScoreProvider != "sharpapi" {
		return fallback, nil
	}
	client, err := atsmatch.NewClient(cfg.SharpAPIKey, atsmatch.Options{
		PollInterval: cfg.SharpAPIPollInterval,
		PollTimeout:  cfg.SharpAPIPollTimeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
