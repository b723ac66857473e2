// Package narrative generates model-written prose about a fit report.
// Generation is optional and bounded by a timeout; a failure never invalidates the report.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/daviddd23/job-application-intelligence-engine/internal/llm"
	"github.com/daviddd23/job-application-intelligence-engine/internal/prompts"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// DefaultTimeout bounds a single narrative call.
const DefaultTimeout = 45 * time.Second

// maxDocumentRunes caps the job and CV text inserted into a prompt.
const maxDocumentRunes = 12000

// Request carries everything a narrative may refer to.
type Request struct {
	Kind         types.NarrativeKind
	Report       types.FitReport
	JobText      string
	CVText       string
	Requirements *types.JobRequirements
}

// Generator produces narrative text for one request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// LLMGenerator fills the embedded narrative templates and asks a model for the text.
type LLMGenerator struct {
	client  llm.Client
	timeout time.Duration
}

// NewLLMGenerator returns a generator that bounds every call by timeout.
// A non-positive timeout selects DefaultTimeout.
func NewLLMGenerator(client llm.Client, timeout time.Duration) *LLMGenerator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LLMGenerator{client: client, timeout: timeout}
}

// CheckTemplates verifies that a prompt template exists for every narrative kind.
func CheckTemplates() error {
	kinds := types.AllNarrativeKinds()
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = string(k)
	}
	return prompts.Require(prompts.NarrativeFile, keys...)
}

// Generate returns the narrative text or a *GenerationUnavailableError.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g.client == nil {
		return "", &GenerationUnavailableError{Kind: req.Kind, Reason: ReasonNotConfigured}
	}

	template, err := prompts.Get(prompts.NarrativeFile, string(req.Kind))
	if err != nil {
		return "", &GenerationUnavailableError{Kind: req.Kind, Reason: ReasonProviderError, Cause: err}
	}
	prompt := prompts.Format(template, PromptData(req))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.client.GenerateContent(ctx, prompt, tierFor(req.Kind))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &GenerationUnavailableError{Kind: req.Kind, Reason: ReasonTimeout, Cause: err}
		}
		return "", unavailable(req.Kind, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GenerationUnavailableError{Kind: req.Kind, Reason: ReasonMalformedResponse, Cause: llm.ErrEmptyResponse}
	}
	return text, nil
}

func tierFor(kind types.NarrativeKind) llm.ModelTier {
	if kind == types.NarrativeCoverLetter {
		return llm.TierAdvanced
	}
	return llm.TierStandard
}

// PromptData renders the template fields for req.
func PromptData(req Request) map[string]string {
	return map[string]string{
		"Score":        fmt.Sprintf("%.1f", req.Report.Score),
		"Matched":      listOrNone(req.Report.Matched()),
		"Missing":      listOrNone(req.Report.Missing()),
		"Flags":        listOrNone(req.Report.FlagMessages()),
		"Categories":   describeCategories(req.Report),
		"Requirements": describeRequirements(req.Requirements),
		"JobText":      truncate(req.JobText, maxDocumentRunes),
		"CVText":       truncate(req.CVText, maxDocumentRunes),
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func describeCategories(r types.FitReport) string {
	var sb strings.Builder
	for _, c := range r.Categories {
		fmt.Fprintf(&sb, "- %s (weight %.0f, contributes %.1f): matched %s; missing %s\n",
			c.Name, c.Weight, c.Contribution, listOrNone(c.Matched), listOrNone(c.Missing))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func describeRequirements(r *types.JobRequirements) string {
	if r.IsEmpty() {
		return "not extracted"
	}
	level := r.ExperienceLevel
	if level == "" {
		level = "unspecified"
	}
	return fmt.Sprintf("core skills: %s; tools: %s; soft skills: %s; experience level: %s",
		listOrNone(r.CoreSkills), listOrNone(r.Tools), listOrNone(r.SoftSkills), level)
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "\n[truncated]"
}

// Produce runs g for req and always returns a Narrative; failures become unavailable.
func Produce(ctx context.Context, g Generator, req Request) types.Narrative {
	if g == nil {
		return Unavailable(req.Kind, &GenerationUnavailableError{Kind: req.Kind, Reason: ReasonNotConfigured})
	}
	text, err := g.Generate(ctx, req)
	if err != nil {
		return Unavailable(req.Kind, err)
	}
	return types.Narrative{Kind: req.Kind, Text: text, Available: true}
}
