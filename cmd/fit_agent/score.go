package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daviddd23/job-application-intelligence-engine/internal/config"
	"github.com/daviddd23/job-application-intelligence-engine/internal/observability"
	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a CV against a job description without any model calls",
	Long: `Extract skills from both documents (or take explicit skill lists) and compute the
weighted fit score, matched and missing skills per category, and risk flags.`,
	RunE: runScore,
}

var (
	scoreJob       string
	scoreCV        string
	scoreJobSkills []string
	scoreCVSkills  []string
	scoreProfile   string
	scoreOutput    string
	scoreBrowser   bool
	scoreVerbose   bool
)

// ScoreOutput is the JSON written by the score command.
type ScoreOutput struct {
	JobSkills types.JobSkills `json:"job_skills"`
	CVSkills  types.SkillSet  `json:"cv_skills"`
	Report    types.FitReport `json:"report"`
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreJob, "job", "j", "", "Path, URL or s3:// location of the job description")
	scoreCmd.Flags().StringVarP(&scoreCV, "cv", "c", "", "Path, URL or s3:// location of the CV")
	scoreCmd.Flags().StringSliceVar(&scoreJobSkills, "job-skills", nil, "Explicit job skills (instead of --job)")
	scoreCmd.Flags().StringSliceVar(&scoreCVSkills, "cv-skills", nil, "Explicit CV skills (instead of --cv)")
	scoreCmd.Flags().StringVarP(&scoreProfile, "profile", "p", "", "Path to a scoring profile")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	scoreCmd.Flags().BoolVar(&scoreBrowser, "use-browser", false, "Use headless browser for SPA job pages (requires Chrome)")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	if scoreJob == "" && len(scoreJobSkills) == 0 {
		return fmt.Errorf("either --job or --job-skills must be provided")
	}
	if scoreCV == "" && len(scoreCVSkills) == 0 {
		return fmt.Errorf("either --cv or --cv-skills must be provided")
	}

	engine, err := config.LoadEngine(scoreProfile)
	if err != nil {
		return fmt.Errorf("failed to load scoring profile: %w", err)
	}
	ex := engine.Extractor

	ctx := context.Background()
	logger := newLogger(scoreVerbose)
	loader := newLoader(logger, scoreVerbose, scoreBrowser)

	jobSet := ex.CanonicalSet(scoreJobSkills)
	if len(scoreJobSkills) == 0 {
		text, err := readInput(ctx, loader, "job", "", scoreJob)
		if err != nil {
			return err
		}
		jobSet = ex.Extract(text)
	}
	cvSet := ex.CanonicalSet(scoreCVSkills)
	if len(scoreCVSkills) == 0 {
		text, err := readInput(ctx, loader, "cv", "", scoreCV)
		if err != nil {
			return err
		}
		cvSet = ex.Extract(text)
	}

	job := ex.Partition(jobSet)
	report, err := scoring.Score(job, cvSet, engine.Options)
	if err != nil {
		return err
	}

	if scoreVerbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintJobSkills(job)
		printer.PrintSkillSet("CV SKILLS", cvSet)
		printer.PrintFitReport(report)
	}

	return writeJSON(scoreOutput, ScoreOutput{JobSkills: job, CVSkills: cvSet, Report: report})
}
