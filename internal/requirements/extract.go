// Package requirements asks a model for the structured hiring requirements of a job description.
// The result is optional input to scoring; deterministic extraction is always the fallback.
package requirements

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daviddd23/job-application-intelligence-engine/internal/llm"
	"github.com/daviddd23/job-application-intelligence-engine/internal/schemas"
	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/skills"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Error represents a failed requirements extraction
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("requirements extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("requirements extraction failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Extractor extracts JobRequirements with a model.
type Extractor struct {
	client llm.Client
}

// NewExtractor returns an Extractor backed by client.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract returns schema-validated requirements for jobText.
func (e *Extractor) Extract(ctx context.Context, jobText string) (*types.JobRequirements, error) {
	if e.client == nil {
		return nil, &Error{Message: "no model client configured"}
	}
	if strings.TrimSpace(jobText) == "" {
		return nil, &Error{Message: "job text is empty"}
	}

	prompt := llm.BuildExtractionPrompt(llm.JobRequirementsSchema(), jobText)
	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &Error{Message: "model call failed", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.JobRequirements, []byte(cleaned)); err != nil {
		return nil, &Error{Message: "response does not match schema", Cause: err}
	}

	var req types.JobRequirements
	if err := json.Unmarshal([]byte(cleaned), &req); err != nil {
		return nil, &Error{Message: "failed to decode response", Cause: err}
	}

	req.CoreSkills = cleanList(req.CoreSkills)
	req.Tools = cleanList(req.Tools)
	req.SoftSkills = cleanList(req.SoftSkills)
	req.ExperienceLevel = strings.ToLower(strings.TrimSpace(req.ExperienceLevel))
	return &req, nil
}

// cleanList trims entries and drops blanks and case-insensitive duplicates.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ToJobSkills maps requirement lists onto canonical tokens, one category per weight.
// Requirement categories without a weight (soft skills by default) are not scored.
func ToJobSkills(req *types.JobRequirements, ex *skills.Extractor, weights scoring.CategoryWeights) types.JobSkills {
	lists := req.ByCategory()
	job := types.JobSkills{Categories: make([]types.CategorySkills, 0, len(weights))}
	for _, w := range weights {
		job.Categories = append(job.Categories, types.CategorySkills{
			Name:   w.Name,
			Skills: ex.CanonicalSet(lists[w.Name]),
		})
	}
	return job
}
