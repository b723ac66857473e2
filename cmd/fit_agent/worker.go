package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daviddd23/job-application-intelligence-engine/internal/pipeline"
	"github.com/daviddd23/job-application-intelligence-engine/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis requests from RabbitMQ",
	Long: `Start a pool of consumers on the analysis queue. Each message is a JSON analysis request
({id, job_text | job_source, cv_text | cv_source, narratives, use_model_requirements}); status
updates (processing, completed with the result, failed) are published to a topic exchange under
the routing key analysis.<id>. Sources may be s3:// objects or http(s) URLs.`,
	RunE: runWorker,
}

var (
	workerFlags    runFlags
	workerAMQPURL  string
	workerCount    int
	workerQueue    string
	workerExchange string
	workerPrefetch int
)

func init() {
	workerFlags.register(workerCmd)
	workerCmd.Flags().StringVar(&workerAMQPURL, "amqp-url", "", "RabbitMQ URL (defaults to AMQP_URL env var)")
	workerCmd.Flags().IntVar(&workerCount, "workers", 0, "Number of consumer goroutines (default 5)")
	workerCmd.Flags().StringVar(&workerQueue, "queue", worker.DefaultQueue, "Queue to consume analysis requests from")
	workerCmd.Flags().StringVar(&workerExchange, "exchange", worker.DefaultExchange, "Topic exchange for status updates")
	workerCmd.Flags().IntVar(&workerPrefetch, "prefetch", 1, "Unacknowledged messages per consumer")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := workerFlags.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("amqp-url") {
		cfg.AMQPURL = workerAMQPURL
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workerCount
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(true)
	poolCfg := worker.Config{
		URL:      cfg.AMQPURL,
		Queue:    workerQueue,
		Exchange: workerExchange,
		Workers:  cfg.Workers,
		Prefetch: workerPrefetch,
	}
	if err := poolCfg.Validate(); err != nil {
		return err
	}

	analyzer, closeClient, err := pipeline.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	processor := &worker.Processor{
		Analyzer: analyzer,
		Loader:   newLoader(logger, cfg.Verbose, cfg.UseBrowser),
		Logger:   logger,
	}
	pool, err := worker.NewPool(poolCfg, processor, logger)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}

	logger.Printf("[worker] starting workers=%d queue=%s exchange=%s", cfg.Workers, workerQueue, workerExchange)
	return pool.Run(ctx)
}
