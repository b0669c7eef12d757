package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcfg "github.com/park285/pubg-card-studio/internal/config"
	"github.com/park285/pubg-card-studio/internal/obslog"
	"github.com/park285/pubg-card-studio/internal/studiobuilder"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer obslog.Sync()

	deps, err := studiobuilder.New(cfg, logger)
	if err != nil {
		logger.Fatal("studio init error", zap.Error(err))
	}
	deps.Start()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           deps.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("card studio listening", zap.String("addr", cfg.HTTPAddr))
		serverErrors <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			_ = srv.Close()
		}
		cancel()
	}

	if err := deps.Close(); err != nil {
		logger.Warn("capture backend close failed", zap.Error(err))
	}
}
