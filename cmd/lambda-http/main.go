package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resume-enhancer/internal/bootstrap"
	"resume-enhancer/internal/shared/config"
	"resume-enhancer/internal/shared/telemetry"
)

const sweepInterval = 10 * time.Minute

var (
	sweepMu   sync.Mutex
	lastSweep time.Time

	initOnce  sync.Once
	initErr   error
	app       *bootstrap.App
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	app, initErr = bootstrap.Build(cfg)
	if initErr != nil {
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr})
		body, _ := json.Marshal(map[string]any{
			"error": map[string]string{"code": "bootstrap_failed", "message": "service unavailable"},
		})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 500,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}

	maybeSweep(ctx)
	return ginLambda.ProxyWithContext(ctx, req)
}

// maybeSweep purges expired artifacts at most once per sweepInterval per
// container; no background goroutine survives between invocations.
func maybeSweep(ctx context.Context) {
	sweepMu.Lock()
	due := time.Since(lastSweep) >= sweepInterval
	if due {
		lastSweep = time.Now()
	}
	sweepMu.Unlock()
	if !due {
		return
	}
	removed, err := app.EnhanceService.PurgeExpired(ctx, app.Config.ArtifactTTL)
	if err != nil {
		telemetry.Warn("lambda.sweep_failed", map[string]any{"error": err})
		return
	}
	if removed > 0 {
		telemetry.Info("lambda.sweep", map[string]any{"removed": removed})
	}
}

func main() {
	lambda.Start(handler)
}
