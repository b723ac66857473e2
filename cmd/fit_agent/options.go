package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daviddd23/job-application-intelligence-engine/internal/config"
	"github.com/daviddd23/job-application-intelligence-engine/internal/fetch"
	"github.com/daviddd23/job-application-intelligence-engine/internal/ingestion"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// runFlags are the configuration flags shared by analyze, serve and worker.
// Values set on the command line override the --config file.
type runFlags struct {
	configPath       string
	profile          string
	provider         string
	model            string
	apiKey           string
	narrativeTimeout string
	narratives       []string
	useModelReqs     bool
	useBrowser       bool
	verbose          bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "Path to a scoring profile (vocabulary, synonyms, category weights)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Model provider: gemini or genai (defaults to LLM_PROVIDER env var, then gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name used for every tier (optional)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&f.narrativeTimeout, "narrative-timeout", "", "Timeout per narrative, e.g. 45s")
	cmd.Flags().StringSliceVar(&f.narratives, "narratives", nil, "Narratives to generate: improvement_suggestions, talking_points, cover_letter, explanation or all")
	cmd.Flags().BoolVar(&f.useModelReqs, "use-model-requirements", false, "Extract job requirements with the model (falls back to deterministic extraction)")
	cmd.Flags().BoolVar(&f.useBrowser, "use-browser", false, "Use headless browser for SPA job pages (requires Chrome)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// load builds the effective configuration: file, then flag overrides, then environment
// fallbacks, then defaults. The result is validated.
func (f *runFlags) load(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	changed := cmd.Flags().Changed
	if changed("profile") {
		cfg.Profile = f.profile
	}
	if changed("provider") {
		cfg.Provider = f.provider
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if changed("narrative-timeout") {
		cfg.NarrativeTimeout = f.narrativeTimeout
	}
	if changed("narratives") {
		cfg.Narratives = expandNarratives(f.narratives)
	}
	if changed("use-model-requirements") {
		cfg.UseModelRequirements = f.useModelReqs
	}
	if changed("use-browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Provider == "" {
		cfg.Provider = os.Getenv("LLM_PROVIDER")
	}
	if cfg.AMQPURL == "" {
		cfg.AMQPURL = os.Getenv("AMQP_URL")
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		Provider:         config.DefaultProvider,
		NarrativeTimeout: config.DefaultNarrativeTimeout.String(),
		Port:             config.DefaultPort,
		Workers:          config.DefaultWorkers,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Verbose && f.configPath != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Loaded config from: %s\n", f.configPath)
	}
	return &cfg, nil
}

// expandNarratives turns "all" into every narrative kind.
func expandNarratives(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "all" {
			for _, k := range types.AllNarrativeKinds() {
				out = append(out, string(k))
			}
			continue
		}
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// newLogger logs to stderr; CLI one-shot commands stay quiet unless verbose.
func newLogger(enabled bool) *log.Logger {
	if !enabled {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// newLoader returns an ingestion loader, with a Chrome renderer for SPA job pages when asked.
func newLoader(logger *log.Logger, verbose, useBrowser bool) *ingestion.Loader {
	loader := ingestion.NewLoader(logger, verbose)
	if useBrowser {
		opts := fetch.DefaultOptions()
		opts.Logger = logger
		opts.Verbose = verbose
		opts.Renderer = fetch.NewChromeRenderer(logger, verbose)
		loader.FetchOptions = opts
	}
	return loader
}

// readInput returns inline text when given, otherwise loads location.
func readInput(ctx context.Context, loader *ingestion.Loader, name, inline, location string) (string, error) {
	if inline != "" {
		return ingestion.CleanText(inline), nil
	}
	if location == "" {
		return "", fmt.Errorf("--%s is required (path, URL or s3:// location)", name)
	}
	doc, err := loader.Load(ctx, location)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", name, err)
	}
	if doc.Metadata != nil {
		loader.Logger.Printf("[ingest] %s kind=%s bytes=%d hash=%s", name, doc.Metadata.Kind, doc.Metadata.Bytes, doc.Metadata.Hash)
	}
	return doc.Text, nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Output: %s\n", path)
	return nil
}
