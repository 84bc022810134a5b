// Job-submission service - renders uploaded or fetched tracks over HTTP.
//
// Usage: go run ./cmd/server -addr :3000
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/pipeline"
	"github.com/passeth/neural-visuals-v2/server"
	"github.com/passeth/neural-visuals-v2/telemetry"
	"github.com/passeth/neural-visuals-v2/themes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	addr := flag.String("addr", "", "Listen address (empty = config server.addr)")
	outputDir := flag.String("output-dir", "", "Directory for results.csv and config snapshot")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if cfg.Capture.Backend == "raylib" {
		// Handlers run on arbitrary goroutines; the GL context cannot follow them.
		slog.Warn("raylib capture backend is not supported by the server, using software")
		cfg.Capture.Backend = "software"
	}
	if err := os.MkdirAll(cfg.Server.WorkDir, 0755); err != nil {
		slog.Error("failed to create work dir", "path", cfg.Server.WorkDir, "error", err)
		os.Exit(1)
	}

	runner, err := pipeline.NewRunner(cfg, themes.NewRegistry(), pipeline.Options{})
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	svc := server.New(cfg, runner, output)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "output_dir", runner.OutputDir())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown incomplete", "error", err)
	}
	svc.Close()
}
