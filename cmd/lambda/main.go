package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-xray-sdk-go/xray"

	adapterlogger "account-service/internal/adapters/logger"
	"account-service/internal/config"
	"account-service/internal/platform/lambda"
	"account-service/internal/platform/wiring"
)

func main() {
	cfg, err := config.Load()
	logger := adapterlogger.New(cfg.LogLevel)
	if err != nil {
		logger.Error(context.Background(), "configuration error", "error", err)
		os.Exit(1)
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	app, err := wiring.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "failed to initialize service", "error", err)
		os.Exit(1)
	}
	awslambda.Start(lambda.NewHandler(app.Echo))
}
