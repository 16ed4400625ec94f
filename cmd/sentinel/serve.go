package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/agent"
	"github.com/sentinel-agent/sentinel/internal/ai"
	"github.com/sentinel-agent/sentinel/internal/api"
	"github.com/sentinel-agent/sentinel/internal/auth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for browsing stored opportunities",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx := context.Background()
	zl := newLogger()

	cfg, profile, pool, store, err := bootstrap(ctx, zl)
	if err != nil {
		zl.Fatal("bootstrap failed", zap.Error(err))
	}
	defer pool.Close()

	authService, err := auth.NewService(cfg.API.AdminPasswordHash, cfg.API.JWTSecret, zl)
	if err != nil {
		zl.Fatal("auth setup failed", zap.Error(err))
	}

	llm := ai.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.EmbedModel, cfg.LLM.GenModel)
	runner := agent.New(cfg, profile, store, zl)
	server := api.NewServer(store, authService, runner, llm, zl)

	go func() {
		zl.Info("serving api", zap.Int("port", cfg.API.Port))
		if err := server.Start(cfg.API.Port); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}
