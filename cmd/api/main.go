package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"resume-enhancer/internal/bootstrap"
	"resume-enhancer/internal/shared/config"
	"resume-enhancer/internal/shared/server"
	"resume-enhancer/internal/shared/telemetry"
)

const sweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go app.EnhanceService.RunSweeper(ctx, sweepInterval, cfg.ArtifactTTL)

	addr := server.Addr(cfg.Port)
	telemetry.Info("api.start", map[string]any{
		"addr":           addr,
		"env":            cfg.Env,
		"object_store":   cfg.ObjectStoreType,
		"llm_provider":   cfg.LLMProvider,
		"score_provider": cfg.ScoreProvider,
	})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
