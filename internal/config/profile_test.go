package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/skills"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

const sampleProfileYAML = `
vocabulary:
  - token: python
    category: core
  - token: sql
    category: core
  - token: a/b testing
    category: core
  - token: excel
    category: tools
    synonyms: [spreadsheets]
synonyms:
  a/b testing: [split testing]
categories:
  - name: core
    weight: 70
  - name: tools
    weight: 30
low_alignment_threshold: 50
core_gap_threshold: 2
must_have: [Python]
`

func TestLoadProfile_YAML(t *testing.T) {
	p, err := LoadProfile(writeFile(t, "profile.yaml", sampleProfileYAML))
	require.NoError(t, err)

	require.Len(t, p.Vocabulary, 4)
	assert.Equal(t, "tools", p.Vocabulary[3].Category)
	assert.Equal(t, []string{"spreadsheets"}, p.Vocabulary[3].Synonyms)
	assert.Equal(t, []string{"split testing"}, p.Synonyms["a/b testing"])
	require.NotNil(t, p.LowAlignmentThreshold)
	assert.Equal(t, 50.0, *p.LowAlignmentThreshold)

	engine, err := p.Build()
	require.NoError(t, err)

	assert.Equal(t, scoring.CategoryWeights{{Name: "core", Weight: 70}, {Name: "tools", Weight: 30}}, engine.Options.Weights)
	assert.Equal(t, 50.0, engine.Options.LowAlignmentThreshold)
	assert.Equal(t, 2, engine.Options.CoreGapThreshold)
	assert.Equal(t, []string{"python"}, engine.Options.MustHave)
	assert.Equal(t, scoring.DefaultModelWeights(), engine.ModelWeights)

	cv := engine.Extractor.Extract("We used split testing extensively and lived in spreadsheets.")
	assert.Equal(t, []string{"a/b testing", "excel"}, cv.Tokens())
}

func TestLoadProfile_JSON(t *testing.T) {
	content := `{
		"vocabulary": [{"token": "go"}, {"token": "kubernetes"}],
		"use_default_stopwords": false,
		"must_have": ["golang"]
	}`
	p, err := LoadProfile(writeFile(t, "profile.json", content))
	require.NoError(t, err)
	require.NotNil(t, p.UseDefaultStopwords)
	assert.False(t, *p.UseDefaultStopwords)

	engine, err := p.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, engine.Options.MustHave)
	assert.Equal(t, scoring.DefaultWeights(), engine.Options.Weights)

	set := engine.Extractor.Extract("Golang services on k8s")
	assert.Equal(t, []string{"go", "kubernetes"}, set.Tokens())
}

func TestLoadEngine_Default(t *testing.T) {
	engine, err := LoadEngine("")
	require.NoError(t, err)
	assert.False(t, engine.Extractor.HasVocabulary())
	assert.Equal(t, scoring.DefaultOptions(), engine.Options)
}

func TestProfile_UserTokensOverrideDefaultSynonyms(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		text    string
		want    []string
	}{
		{
			name:    "vocabulary token that is a built-in alternate",
			profile: Profile{Vocabulary: []skills.VocabularyEntry{{Token: "python"}, {Token: "aws"}, {Token: "k8s"}}},
			text:    "Python on AWS and k8s",
			want:    []string{"python", "aws", "k8s"},
		},
		{
			name:    "user synonym claims a built-in alternate",
			profile: Profile{Synonyms: map[string][]string{"java": {"js"}}},
			text:    "JS and Go",
			want:    []string{"java", "go"},
		},
		{
			name:    "built-in canonical used as a user alternate",
			profile: Profile{Synonyms: map[string][]string{"k8s": {"kubernetes"}}},
			text:    "Kubernetes clusters",
			want:    []string{"k8s", "clusters"},
		},
		{
			name:    "same canonical keeps built-in alternates",
			profile: Profile{Vocabulary: []skills.VocabularyEntry{{Token: "go", Synonyms: []string{"golang"}}}},
			text:    "Golang and go lang",
			want:    []string{"go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := tt.profile.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, engine.Extractor.Extract(tt.text).Tokens())
		})
	}
}

func TestProfile_DefaultSynonymsDisabled(t *testing.T) {
	off := false
	engine, err := (&Profile{UseDefaultSynonyms: &off}).Build()
	require.NoError(t, err)
	assert.Equal(t, "golang", engine.Extractor.Canonicalize("golang"))
}

func TestLoadProfile_ParseErrors(t *testing.T) {
	_, err := LoadProfile(writeFile(t, "profile.json", `{"vocabulary": "python"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse profile JSON")

	_, err = LoadProfile(writeFile(t, "profile.yaml", "vocabulary: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse profile YAML")

	_, err = LoadProfile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile path is empty")
}

func TestProfile_InvalidEntriesRejected(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name:    "weights do not sum to 100",
			yaml:    "categories:\n  - name: core\n    weight: 80\n",
			wantMsg: "must sum to 100",
		},
		{
			name:    "weight out of range",
			yaml:    "categories:\n  - name: core\n    weight: 120\n",
			wantMsg: "categories[0].weight",
		},
		{
			name:    "missing vocabulary token",
			yaml:    "vocabulary:\n  - category: core\n",
			wantMsg: "vocabulary[0].token",
		},
		{
			name:    "invalid vocabulary token",
			yaml:    "vocabulary:\n  - token: r\n",
			wantMsg: "not a valid skill token",
		},
		{
			name:    "vocabulary category without weight",
			yaml:    "vocabulary:\n  - token: excel\n    category: tools\n",
			wantMsg: `vocabulary category "tools" has no weight`,
		},
		{
			name:    "vocabulary without core weight",
			yaml:    "vocabulary:\n  - token: excel\n    category: tools\ncategories:\n  - name: tools\n    weight: 100\n",
			wantMsg: `need a "core" weight`,
		},
		{
			name:    "no vocabulary and no core weight",
			yaml:    "categories:\n  - name: tools\n    weight: 100\n",
			wantMsg: `need a "core" weight`,
		},
		{
			name:    "conflicting synonyms",
			yaml:    "synonyms:\n  java: [jvm]\n  kotlin: [jvm]\n",
			wantMsg: "maps to both",
		},
		{
			name:    "threshold out of range",
			yaml:    "low_alignment_threshold: 150\n",
			wantMsg: "low_alignment_threshold",
		},
		{
			name:    "core gap threshold zero",
			yaml:    "core_gap_threshold: 0\n",
			wantMsg: "core_gap_threshold",
		},
		{
			name:    "invalid must have",
			yaml:    "must_have: ['?']\n",
			wantMsg: "must_have",
		},
		{
			name:    "model weights do not sum to 100",
			yaml:    "model_categories:\n  - name: core\n    weight: 50\n",
			wantMsg: "model_categories",
		},
		{
			name:    "empty stopword",
			yaml:    "stopwords: ['---']\n",
			wantMsg: "stopwords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := LoadEngine(writeFile(t, "profile.yaml", tt.yaml))
			require.Error(t, err)
			assert.Nil(t, engine)
			assert.True(t, errors.Is(err, types.ErrInvalidConfiguration), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
