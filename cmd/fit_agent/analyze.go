package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daviddd23/job-application-intelligence-engine/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full fit analysis of a CV against a job description",
	Long: `Extracts skills, scores the fit and optionally generates narratives (improvement
suggestions, recruiter talking points, a cover letter, an explanation of the score).

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments
override config file values. Narratives and model requirements need an API key; without one
the deterministic score is still produced.`,
	RunE: runAnalyze,
}

var (
	analyzeFlags   runFlags
	analyzeJob     string
	analyzeCV      string
	analyzeJobText string
	analyzeCVText  string
	analyzeOutput  string
)

func init() {
	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path, URL or s3:// location of the job description")
	analyzeCmd.Flags().StringVarP(&analyzeCV, "cv", "c", "", "Path, URL or s3:// location of the CV")
	analyzeCmd.Flags().StringVar(&analyzeJobText, "job-text", "", "Inline job description (instead of --job)")
	analyzeCmd.Flags().StringVar(&analyzeCVText, "cv-text", "", "Inline CV text (instead of --cv)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to output JSON file (defaults to stdout)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := analyzeFlags.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("job") {
		cfg.Job = analyzeJob
	}
	if cmd.Flags().Changed("cv") {
		cfg.CV = analyzeCV
	}
	if cfg.Job == "" && analyzeJobText == "" {
		return fmt.Errorf("either --job or --job-text must be provided (via flag or config)")
	}
	if cfg.CV == "" && analyzeCVText == "" {
		return fmt.Errorf("either --cv or --cv-text must be provided (via flag or config)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg.Verbose)
	analyzer, closeClient, err := pipeline.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	if analyzer.Generator == nil && (len(cfg.Narratives) > 0 || cfg.UseModelRequirements) {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: no API key configured (set GEMINI_API_KEY or --api-key); narratives and model requirements are unavailable\n")
	}

	loader := newLoader(logger, cfg.Verbose, cfg.UseBrowser)
	jobText, err := readInput(ctx, loader, "job", analyzeJobText, cfg.Job)
	if err != nil {
		return err
	}
	cvText, err := readInput(ctx, loader, "cv", analyzeCVText, cfg.CV)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		JobText:              jobText,
		CVText:               cvText,
		Narratives:           cfg.NarrativeKinds(),
		UseModelRequirements: cfg.UseModelRequirements,
	}
	if cfg.Verbose {
		req.OnProgress = func(e pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Step, e.Message)
		}
	}

	result, err := analyzer.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if result.RequirementsError != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: model requirements unavailable, used deterministic extraction: %s\n", result.RequirementsError)
	}

	return writeJSON(analyzeOutput, result)
}
