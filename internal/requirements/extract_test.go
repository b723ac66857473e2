package requirements

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddd23/job-application-intelligence-engine/internal/llm"
	"github.com/daviddd23/job-application-intelligence-engine/internal/schemas"
	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/skills"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

type stubClient struct {
	response string
	err      error
	prompt   string
	tier     llm.ModelTier
}

func (s *stubClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.GenerateJSON(ctx, prompt, tier)
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	s.prompt = prompt
	s.tier = tier
	return s.response, s.err
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub" }

func (s *stubClient) Close() error { return nil }

func TestExtract_Success(t *testing.T) {
	client := &stubClient{response: "```json\n" + `{
		"core_skills": ["SQL", " data analysis ", "sql", ""],
		"tools": ["Excel", "Tableau"],
		"soft_skills": ["Communication"],
		"experience_level": " Senior "
	}` + "\n```"}

	req, err := NewExtractor(client).Extract(context.Background(), "Senior analyst with SQL, Excel and Tableau.")
	require.NoError(t, err)

	assert.Equal(t, []string{"SQL", "data analysis"}, req.CoreSkills)
	assert.Equal(t, []string{"Excel", "Tableau"}, req.Tools)
	assert.Equal(t, []string{"Communication"}, req.SoftSkills)
	assert.Equal(t, "senior", req.ExperienceLevel)

	assert.Equal(t, llm.TierLite, client.tier)
	assert.Contains(t, client.prompt, "Senior analyst with SQL, Excel and Tableau.")
	assert.Contains(t, client.prompt, `"core_skills"`)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		client  llm.Client
		text    string
		wantMsg string
	}{
		{"no client", nil, "SQL", "no model client configured"},
		{"empty text", &stubClient{}, "  ", "job text is empty"},
		{"model error", &stubClient{err: errors.New("quota exceeded")}, "SQL", "model call failed"},
		{"not json", &stubClient{response: "I cannot help with that."}, "SQL", "response does not match schema"},
		{"schema mismatch", &stubClient{response: `{"core_skills": "sql", "tools": [], "soft_skills": []}`}, "SQL", "response does not match schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewExtractor(tt.client).Extract(context.Background(), tt.text)
			require.Error(t, err)
			assert.Nil(t, req)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var reqErr *Error
			assert.True(t, errors.As(err, &reqErr))
		})
	}
}

func TestExtract_SchemaErrorIsWrapped(t *testing.T) {
	client := &stubClient{response: `{"core_skills": ["sql"], "soft_skills": []}`}
	_, err := NewExtractor(client).Extract(context.Background(), "SQL")
	require.Error(t, err)

	var validationErr *schemas.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestToJobSkills(t *testing.T) {
	ex, err := skills.NewExtractor(skills.DefaultConfig())
	require.NoError(t, err)

	req := &types.JobRequirements{
		CoreSkills: []string{"SQL", "Split Testing", "x"},
		Tools:      []string{"JS", "Excel"},
		SoftSkills: []string{"communication"},
	}

	job := ToJobSkills(req, ex, scoring.DefaultModelWeights())
	assert.Equal(t, []string{"core", "tools"}, job.Names())

	core, _ := job.Category("core")
	assert.Equal(t, []string{"sql", "a/b testing"}, core.Tokens())
	tools, _ := job.Category("tools")
	assert.Equal(t, []string{"javascript", "excel"}, tools.Tokens())

	withSoft := ToJobSkills(req, ex, scoring.CategoryWeights{
		{Name: "core", Weight: 50},
		{Name: "tools", Weight: 30},
		{Name: "soft_skills", Weight: 20},
	})
	soft, ok := withSoft.Category("soft_skills")
	require.True(t, ok)
	assert.Equal(t, []string{"communication"}, soft.Tokens())
}

func TestToJobSkills_ScoresLikeOriginalSplit(t *testing.T) {
	ex, err := skills.NewExtractor(skills.DefaultConfig())
	require.NoError(t, err)

	req := &types.JobRequirements{CoreSkills: []string{"sql", "python"}, Tools: []string{"excel"}}
	job := ToJobSkills(req, ex, scoring.DefaultModelWeights())

	opts := scoring.DefaultOptions().WithWeights(scoring.DefaultModelWeights())
	report, err := scoring.Score(job, types.NewSkillSet("sql", "excel"), opts)
	require.NoError(t, err)
	assert.Equal(t, 70.0, report.Score)
}
