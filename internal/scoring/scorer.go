package scoring

import (
	"math"

	"github.com/daviddd23/job-application-intelligence-engine/internal/skills"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Default thresholds for risk flags.
const (
	DefaultLowAlignmentThreshold = 40.0
	DefaultCoreGapThreshold      = 3
)

// Options configures a scoring run. The zero value is not valid; start from DefaultOptions.
type Options struct {
	Weights               CategoryWeights
	LowAlignmentThreshold float64
	CoreGapThreshold      int
	CoreCategory          string
	MustHave              []string
}

// DefaultOptions returns a single core category at 100% with the default thresholds.
func DefaultOptions() Options {
	return Options{
		Weights:               DefaultWeights(),
		LowAlignmentThreshold: DefaultLowAlignmentThreshold,
		CoreGapThreshold:      DefaultCoreGapThreshold,
		CoreCategory:          types.DefaultCategory,
	}
}

// Validate returns a *types.InvalidConfigurationError describing the first problem found.
func (o Options) Validate() error {
	if err := o.Weights.Validate(); err != nil {
		return err
	}
	if o.LowAlignmentThreshold < 0 || o.LowAlignmentThreshold > 100 || math.IsNaN(o.LowAlignmentThreshold) {
		return types.NewInvalidConfiguration("low_alignment_threshold", "must be between 0 and 100, got %v", o.LowAlignmentThreshold)
	}
	if o.CoreGapThreshold < 1 {
		return types.NewInvalidConfiguration("core_gap_threshold", "must be at least 1, got %d", o.CoreGapThreshold)
	}
	if o.CoreCategory == "" {
		return types.NewInvalidConfiguration("core_category", "must not be empty")
	}
	for _, m := range o.MustHave {
		if skills.NormalizeToken(m) == "" {
			return types.NewInvalidConfiguration("must_have", "%q is not a valid skill token", m)
		}
	}
	return nil
}

// WithWeights returns a copy of o using w.
func (o Options) WithWeights(w CategoryWeights) Options {
	o.Weights = w
	return o
}

// Score compares job skills against CV skills. Options are validated before anything is
// computed, and every job category must carry a weight.
func Score(job types.JobSkills, cv types.SkillSet, opts Options) (types.FitReport, error) {
	if err := opts.Validate(); err != nil {
		return types.FitReport{}, err
	}
	seen := make(map[string]struct{}, len(job.Categories))
	for _, c := range job.Categories {
		if _, dup := seen[c.Name]; dup {
			return types.FitReport{}, types.NewInvalidConfiguration("categories", "job category %q appears twice", c.Name)
		}
		seen[c.Name] = struct{}{}
		if _, ok := opts.Weights.Weight(c.Name); !ok {
			return types.FitReport{}, types.NewInvalidConfiguration("weights", "job category %q has no weight", c.Name)
		}
	}

	report := types.FitReport{
		Categories: make([]types.CategoryResult, 0, len(opts.Weights)),
	}
	total := 0.0
	for _, cw := range opts.Weights {
		required, _ := job.Category(cw.Name)
		result := scoreCategory(cw, required, cv)
		total += result.Contribution
		report.Categories = append(report.Categories, result)
	}
	report.Score = roundScore(total)
	report.RiskFlags = riskFlags(report, opts)
	return report, nil
}

// ScoreSet scores an uncategorized job SkillSet as a single core category weighted 100.
func ScoreSet(job, cv types.SkillSet, opts Options) (types.FitReport, error) {
	opts = opts.WithWeights(DefaultWeights())
	opts.CoreCategory = types.DefaultCategory
	return Score(types.Uncategorized(job), cv, opts)
}

func scoreCategory(cw CategoryWeight, required, cv types.SkillSet) types.CategoryResult {
	result := types.CategoryResult{
		Name:     cw.Name,
		Weight:   cw.Weight,
		Required: required.Tokens(),
		Matched:  []string{},
		Missing:  []string{},
	}
	for _, token := range result.Required {
		if cv.Contains(token) {
			result.Matched = append(result.Matched, token)
		} else {
			result.Missing = append(result.Missing, token)
		}
	}
	if n := len(result.Required); n > 0 {
		result.Contribution = float64(len(result.Matched)) / float64(n) * cw.Weight
	}
	return result
}

// roundScore clamps to [0, 100] and rounds to one decimal place.
func roundScore(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 100 {
		x = 100
	}
	return math.Round(x*10) / 10
}
