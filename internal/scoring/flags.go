package scoring

import (
	"fmt"

	"github.com/daviddd23/job-application-intelligence-engine/internal/skills"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Flag messages.
const (
	msgLowOverallAlignment   = "low overall alignment"
	msgMultipleCoreSkillGaps = "multiple core skill gaps"
	msgMissingMustHave       = "missing must-have skill: %s"
)

// riskFlags evaluates every rule in order. Rules are independent of each other.
func riskFlags(report types.FitReport, opts Options) []types.RiskFlag {
	flags := []types.RiskFlag{}

	if report.Score < opts.LowAlignmentThreshold {
		flags = append(flags, types.RiskFlag{
			Code:    types.FlagLowOverallAlignment,
			Message: msgLowOverallAlignment,
		})
	}

	if core, ok := report.Category(opts.CoreCategory); ok && len(core.Missing) >= opts.CoreGapThreshold {
		flags = append(flags, types.RiskFlag{
			Code:    types.FlagMultipleCoreSkillGaps,
			Message: msgMultipleCoreSkillGaps,
		})
	}

	missing := make(map[string]struct{})
	for _, token := range report.Missing() {
		missing[token] = struct{}{}
	}
	flagged := make(map[string]struct{}, len(opts.MustHave))
	for _, raw := range opts.MustHave {
		token := skills.NormalizeToken(raw)
		if _, done := flagged[token]; done {
			continue
		}
		if _, ok := missing[token]; !ok {
			continue
		}
		flagged[token] = struct{}{}
		flags = append(flags, types.RiskFlag{
			Code:    types.FlagMissingMustHave,
			Message: fmt.Sprintf(msgMissingMustHave, token),
			Token:   token,
		})
	}

	return flags
}
