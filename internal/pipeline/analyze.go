// Package pipeline orchestrates one request-scoped fit analysis:
// skill extraction, scoring and optional narrative generation.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daviddd23/job-application-intelligence-engine/internal/config"
	"github.com/daviddd23/job-application-intelligence-engine/internal/narrative"
	"github.com/daviddd23/job-application-intelligence-engine/internal/observability"
	"github.com/daviddd23/job-application-intelligence-engine/internal/requirements"
	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/skills"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Pipeline steps reported through ProgressCallback.
const (
	StepJobSkills  = "job_skills"
	StepCVSkills   = "cv_skills"
	StepScore      = "score"
	StepNarratives = "narratives"
)

// Requirements sources recorded on a Result.
const (
	SourceDeterministic = "deterministic"
	SourceModel         = "model"
)

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	AnalysisID string `json:"analysis_id"`
	Step       string `json:"step"`
	Message    string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RequirementsExtractor extracts structured job requirements, typically with a model.
type RequirementsExtractor interface {
	Extract(ctx context.Context, jobText string) (*types.JobRequirements, error)
}

// Request is the input to a single analysis.
type Request struct {
	// ID is assigned when nil.
	ID                   uuid.UUID
	JobText              string
	CVText               string
	Narratives           []types.NarrativeKind
	UseModelRequirements bool
	OnProgress           ProgressCallback
}

// Result is the outcome of a single analysis. It is never shared between requests.
type Result struct {
	ID                 uuid.UUID              `json:"id"`
	CreatedAt          time.Time              `json:"created_at"`
	JobSkills          types.JobSkills        `json:"job_skills"`
	CVSkills           types.SkillSet         `json:"cv_skills"`
	Report             types.FitReport        `json:"report"`
	Requirements       *types.JobRequirements `json:"requirements,omitempty"`
	RequirementsSource string                 `json:"requirements_source"`
	RequirementsError  string                 `json:"requirements_error,omitempty"`
	Narratives         []types.Narrative      `json:"narratives,omitempty"`
}

// Analyzer runs analyses. All fields are read-only after construction, so one
// Analyzer may serve concurrent requests.
type Analyzer struct {
	Extractor    *skills.Extractor
	Options      scoring.Options
	ModelWeights scoring.CategoryWeights

	// Generator and Requirements are optional.
	Generator    narrative.Generator
	Requirements RequirementsExtractor

	NarrativeTimeout time.Duration
	Logger           *log.Logger
	// Printer, when set, receives boxed verbose output.
	Printer *observability.Printer
}

// NewAnalyzer returns an Analyzer for engine with no model collaborators.
func NewAnalyzer(engine *config.Engine, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{
		Extractor:        engine.Extractor,
		Options:          engine.Options,
		ModelWeights:     engine.ModelWeights,
		NarrativeTimeout: narrative.DefaultTimeout,
		Logger:           logger,
	}
}

func (a *Analyzer) logger() *log.Logger {
	if a.Logger == nil {
		return log.Default()
	}
	return a.Logger
}

func (r *Request) emit(id uuid.UUID, step, format string, args ...any) {
	if r.OnProgress == nil {
		return
	}
	r.OnProgress(ProgressEvent{AnalysisID: id.String(), Step: step, Message: fmt.Sprintf(format, args...)})
}

// Analyze extracts skills from both texts, scores the fit and generates the requested narratives.
// The only errors are an invalid scoring configuration and cancellation of ctx before scoring.
// Narrative and model requirement failures are recorded on the Result instead.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if a.Extractor == nil {
		return nil, types.NewInvalidConfiguration("extractor", "analyzer has no skill extractor")
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	result := &Result{ID: id, CreatedAt: time.Now().UTC()}

	job, opts := a.jobSkills(ctx, req, result)
	result.JobSkills = job
	req.emit(id, StepJobSkills, "extracted %d job skills (%s)", job.All().Len(), result.RequirementsSource)

	result.CVSkills = a.Extractor.Extract(req.CVText)
	req.emit(id, StepCVSkills, "extracted %d CV skills", result.CVSkills.Len())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := scoring.Score(job, result.CVSkills, opts)
	if err != nil {
		return nil, err
	}
	result.Report = report
	req.emit(id, StepScore, "fit score %.1f with %d risk flags", report.Score, len(report.RiskFlags))

	if a.Printer != nil {
		a.Printer.PrintRequirements(result.Requirements)
		a.Printer.PrintJobSkills(result.JobSkills)
		a.Printer.PrintSkillSet("CV SKILLS", result.CVSkills)
		a.Printer.PrintFitReport(report)
	}

	kinds := uniqueKinds(req.Narratives)
	if len(kinds) > 0 {
		result.Narratives = a.narratives(ctx, kinds, narrative.Request{
			Report:       report,
			JobText:      req.JobText,
			CVText:       req.CVText,
			Requirements: result.Requirements,
		})
		req.emit(id, StepNarratives, "%d of %d narratives available", countAvailable(result.Narratives), len(kinds))
		if a.Printer != nil {
			a.Printer.PrintNarratives(result.Narratives)
		}
	}

	a.logger().Printf("[analyze] id=%s score=%.1f job_skills=%d cv_skills=%d flags=%d source=%s narratives=%d",
		id, report.Score, job.All().Len(), result.CVSkills.Len(), len(report.RiskFlags),
		result.RequirementsSource, len(result.Narratives))
	return result, nil
}

// jobSkills returns the job-side skills and the scoring options that match their categories.
// Model requirements are used when requested and available; otherwise deterministic extraction.
func (a *Analyzer) jobSkills(ctx context.Context, req Request, result *Result) (types.JobSkills, scoring.Options) {
	if req.UseModelRequirements {
		reqs, err := a.modelRequirements(ctx, req.JobText)
		if err == nil {
			result.Requirements = reqs
			result.RequirementsSource = SourceModel
			return requirements.ToJobSkills(reqs, a.Extractor, a.ModelWeights), a.Options.WithWeights(a.ModelWeights)
		}
		result.RequirementsError = err.Error()
		a.logger().Printf("[analyze] model requirements unavailable, using deterministic extraction: %v", err)
	}

	result.RequirementsSource = SourceDeterministic
	return a.Extractor.Partition(a.Extractor.Extract(req.JobText)), a.Options
}

func (a *Analyzer) modelRequirements(ctx context.Context, jobText string) (*types.JobRequirements, error) {
	if a.Requirements == nil {
		return nil, fmt.Errorf("model requirements extraction is not configured")
	}
	if len(a.ModelWeights) == 0 {
		return nil, fmt.Errorf("no model category weights configured")
	}
	reqs, err := a.Requirements.Extract(ctx, jobText)
	if err != nil {
		return nil, err
	}
	if reqs.IsEmpty() {
		return nil, fmt.Errorf("model returned no skills")
	}
	return reqs, nil
}

// narratives generates every kind concurrently. Each call has its own timeout and
// a failure only marks that narrative unavailable.
func (a *Analyzer) narratives(ctx context.Context, kinds []types.NarrativeKind, base narrative.Request) []types.Narrative {
	out := make([]types.Narrative, len(kinds))
	timeout := a.NarrativeTimeout
	if timeout <= 0 {
		timeout = narrative.DefaultTimeout
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gCtx, timeout)
			defer cancel()

			req := base
			req.Kind = kind
			out[i] = narrative.Produce(callCtx, a.Generator, req)
			if !out[i].Available {
				a.logger().Printf("[narrative] kind=%s unavailable reason=%s", kind, out[i].Reason)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func uniqueKinds(kinds []types.NarrativeKind) []types.NarrativeKind {
	seen := make(map[types.NarrativeKind]bool, len(kinds))
	out := make([]types.NarrativeKind, 0, len(kinds))
	for _, k := range kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func countAvailable(narratives []types.Narrative) int {
	n := 0
	for _, item := range narratives {
		if item.Available {
			n++
		}
	}
	return n
}
