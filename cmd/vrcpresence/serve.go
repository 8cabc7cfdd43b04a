package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vrclog/presence-go/internal/config"
	"github.com/vrclog/presence-go/internal/server"
)

var (
	serveConfigPath string
	serveAddr       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer as a web app",
	Long: `Run an HTTP server with an upload form and a JSON API.

Upload a log file (or POST its content to /api/analyze) to get the
per-user presence report without installing anything client-side.
Prometheus metrics are exposed on /metrics.

Configuration is read from an optional YAML file, then the environment.
Set SENTRY_DSN to enable error reporting.

Examples:
  # Defaults: listen on 127.0.0.1:8080
  vrcpresence serve

  # With a config file
  vrcpresence serve --config vrcpresence.yaml

  # Override the listen address
  vrcpresence serve --addr 0.0.0.0:9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "",
		"Path to YAML config file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (overrides config host/port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env if present; godotenv never overrides real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		host, port, err := splitListenAddr(serveAddr)
		if err != nil {
			return err
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log := newServeLogger(cfg)

	// Sentry is optional and a no-op without a DSN.
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		sentryEnv := os.Getenv("SENTRY_ENVIRONMENT")
		if sentryEnv == "" {
			sentryEnv = "development"
		}
		release := version
		if commit != "none" {
			release = version + "-" + commit
		}
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: sentryEnv,
			Release:     release,
		})
		if err != nil {
			log.Warn("sentry initialization failed", "error", err)
		} else {
			log.Info("sentry initialized", "environment", sentryEnv, "release", release)
			defer sentry.Flush(2 * time.Second)
		}
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func splitListenAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --addr port %q: %w", portStr, err)
	}
	return host, port, nil
}
