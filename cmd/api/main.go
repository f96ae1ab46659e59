// @title           Profile RAG API
// @version         1.0
// @description     Answers questions grounded in scraped profile content and runs ingestion jobs.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/profile-rag/internal/app"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/server"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger_i.Init(cfg.LogLevel, cfg.LogFormat == "json")
	logger := logger_i.NewLogger("main")

	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	handler, err := application.Handler()
	if err != nil {
		logger.Error("Could not build routes", "error", err)
		return
	}

	application.StartWorkers(ctx)
	if err := server.New(*listenAddr, handler).Run(ctx); err != nil {
		logger.Error("Server exited with error", "error", err)
		stop()
	}
	logger.Info("Waiting for running ingestion jobs")
}
