package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/daviddd23/job-application-intelligence-engine/internal/config"
	"github.com/daviddd23/job-application-intelligence-engine/internal/llm"
	"github.com/daviddd23/job-application-intelligence-engine/internal/narrative"
	"github.com/daviddd23/job-application-intelligence-engine/internal/observability"
	"github.com/daviddd23/job-application-intelligence-engine/internal/requirements"
)

// Setup builds an Analyzer from a run configuration. A model client is created only when an
// API key is available; the returned close function releases it and is always safe to call.
func Setup(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Analyzer, func() error, error) {
	if logger == nil {
		logger = log.Default()
	}
	noop := func() error { return nil }

	if err := narrative.CheckTemplates(); err != nil {
		return nil, noop, fmt.Errorf("failed to load narrative prompts: %w", err)
	}

	engine, err := config.LoadEngine(cfg.Profile)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to load scoring profile: %w", err)
	}

	analyzer := NewAnalyzer(engine, logger)
	analyzer.NarrativeTimeout = cfg.Timeout()
	if cfg.Verbose {
		analyzer.Printer = observability.NewPrinter(os.Stderr)
	}

	if cfg.APIKey == "" {
		if len(cfg.Narratives) > 0 || cfg.UseModelRequirements {
			logger.Printf("[setup] no API key configured; narratives and model requirements are unavailable")
		}
		return analyzer, noop, nil
	}

	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, noop, err
	}
	llmConfig := llm.DefaultConfig().WithProvider(provider)
	if cfg.Model != "" {
		llmConfig = llmConfig.WithSingleModel(cfg.Model)
	}

	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create LLM client: %w", err)
	}

	analyzer.Generator = narrative.NewLLMGenerator(client, analyzer.NarrativeTimeout)
	analyzer.Requirements = requirements.NewExtractor(client)
	logger.Printf("[setup] provider=%s model=%s", provider, client.GetModel(llm.TierStandard))
	return analyzer, client.Close, nil
}
