package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daviddd23/job-application-intelligence-engine/internal/pipeline"
	"github.com/daviddd23/job-application-intelligence-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that exposes POST /analyze, POST /analyze/stream, POST /extract,
POST /score and GET /health. Rate limits are read from RATE_LIMIT_* environment variables.`,
	RunE: runServe,
}

var (
	serveFlags runFlags
	servePort  int
)

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := serveFlags.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// long-running services always log
	logger := newLogger(true)
	analyzer, closeClient, err := pipeline.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	srv, err := server.New(analyzer, server.Config{Port: cfg.Port, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
