// Command ingest runs one ingestion pass in the foreground and prints the
// report as JSON.
//
//	ingest -sources medium,github -parallel
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/akolanti/profile-rag/internal/app"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

func main() {
	sourcesFlag := flag.String("sources", "", "comma separated sources to ingest (default: all)")
	parallel := flag.Bool("parallel", false, "scrape sources concurrently")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger_i.NewLogger("ingest").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger_i.Init(cfg.LogLevel, cfg.LogFormat == "json")
	logger := logger_i.NewLogger("ingest")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestor, err := app.NewIngestor(ctx, cfg, os.LookupEnv)
	if err != nil {
		logger.Error("Could not build ingestion pipeline", "error", err)
		os.Exit(1)
	}

	report, runErr := ingestor.Run(ctx, splitSources(*sourcesFlag), *parallel)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("Could not print report", "error", err)
	}
	if runErr != nil {
		logger.Error("Ingestion failed", "error", runErr)
		os.Exit(1)
	}
}

func splitSources(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
