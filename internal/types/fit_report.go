package types

// Risk flag codes, in evaluation order.
const (
	FlagLowOverallAlignment   = "low_overall_alignment"
	FlagMultipleCoreSkillGaps = "multiple_core_skill_gaps"
	FlagMissingMustHave       = "missing_must_have"
)

// RiskFlag is a rule-triggered warning about alignment quality.
type RiskFlag struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"` // set for must-have flags
}

// CategoryResult is the per-category outcome of scoring.
type CategoryResult struct {
	Name         string   `json:"name"`
	Weight       float64  `json:"weight"`
	Required     []string `json:"required"`
	Matched      []string `json:"matched"`
	Missing      []string `json:"missing"`
	Contribution float64  `json:"contribution"`
}

// FitReport is the structured output of the scorer.
// Reports are produced fresh per analysis; accessors return copies so callers cannot mutate them.
type FitReport struct {
	Score      float64          `json:"score"`
	Categories []CategoryResult `json:"categories"`
	RiskFlags  []RiskFlag       `json:"risk_flags"`
}

// Category returns a copy of the named category result.
func (r FitReport) Category(name string) (CategoryResult, bool) {
	for _, c := range r.Categories {
		if c.Name == name {
			return CategoryResult{
				Name:         c.Name,
				Weight:       c.Weight,
				Required:     copyStrings(c.Required),
				Matched:      copyStrings(c.Matched),
				Missing:      copyStrings(c.Missing),
				Contribution: c.Contribution,
			}, true
		}
	}
	return CategoryResult{}, false
}

// Matched returns the matched tokens of every category, in category order.
func (r FitReport) Matched() []string {
	var out []string
	for _, c := range r.Categories {
		out = append(out, c.Matched...)
	}
	return out
}

// Missing returns the missing tokens of every category, in category order.
func (r FitReport) Missing() []string {
	var out []string
	for _, c := range r.Categories {
		out = append(out, c.Missing...)
	}
	return out
}

// Flags returns a copy of the risk flags.
func (r FitReport) Flags() []RiskFlag {
	out := make([]RiskFlag, len(r.RiskFlags))
	copy(out, r.RiskFlags)
	return out
}

// HasFlag reports whether a flag with the given code is present.
func (r FitReport) HasFlag(code string) bool {
	for _, f := range r.RiskFlags {
		if f.Code == code {
			return true
		}
	}
	return false
}

// FlagMessages returns the human-readable messages of all flags.
func (r FitReport) FlagMessages() []string {
	out := make([]string, len(r.RiskFlags))
	for i, f := range r.RiskFlags {
		out[i] = f.Message
	}
	return out
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
