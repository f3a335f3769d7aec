package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"

	adapterlogger "account-service/internal/adapters/logger"
	"account-service/internal/config"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := wiring.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go func() {
		logger.Info(ctx, "starting http server", "port", cfg.Port)
		if err := app.Echo.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}
}
