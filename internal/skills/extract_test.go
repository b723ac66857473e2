package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

func vocab(tokens ...string) []VocabularyEntry {
	out := make([]VocabularyEntry, len(tokens))
	for i, t := range tokens {
		out[i] = VocabularyEntry{Token: t}
	}
	return out
}

func TestExtract_Vocabulary(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		text   string
		want   []string
		absent []string
	}{
		{
			name: "synonym folds to canonical",
			cfg: Config{
				Vocabulary: vocab("a/b testing"),
				Synonyms:   map[string][]string{"a/b testing": {"split testing"}},
			},
			text: "we used split testing extensively",
			want: []string{"a/b testing"},
		},
		{
			name:   "ai is not found inside air",
			cfg:    Config{Vocabulary: vocab("ai")},
			text:   "Improved air quality monitoring",
			absent: []string{"ai"},
		},
		{
			name:   "java is not found inside javascript",
			cfg:    Config{Vocabulary: vocab("java", "javascript")},
			text:   "Senior JavaScript developer",
			want:   []string{"javascript"},
			absent: []string{"java"},
		},
		{
			name:   "node is not found inside node.js",
			cfg:    Config{Vocabulary: vocab("node", "node.js")},
			text:   "APIs built with Node.js",
			want:   []string{"node.js"},
			absent: []string{"node"},
		},
		{
			name: "sentence punctuation does not block a match",
			cfg:  Config{Vocabulary: vocab("python")},
			text: "I love Python.",
			want: []string{"python"},
		},
		{
			name: "multi word phrase",
			cfg:  Config{Vocabulary: vocab("email marketing", "seo")},
			text: "Ran EMAIL marketing campaigns and SEO audits",
			want: []string{"email marketing", "seo"},
		},
		{
			name: "entry synonyms",
			cfg: Config{Vocabulary: []VocabularyEntry{
				{Token: "kubernetes", Synonyms: []string{"k8s"}},
			}},
			text: "Deployed services on k8s",
			want: []string{"kubernetes"},
		},
		{
			name: "default synonym table applies to vocabulary",
			cfg: Config{
				Vocabulary: vocab("go"),
				Synonyms:   DefaultSynonyms(),
			},
			text: "Golang microservices",
			want: []string{"go"},
		},
		{
			name:   "words outside the vocabulary are ignored",
			cfg:    Config{Vocabulary: vocab("sql")},
			text:   "SQL and Tableau dashboards",
			want:   []string{"sql"},
			absent: []string{"tableau", "dashboards"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.text, tt.cfg)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.True(t, got.Contains(w), "expected %q in %v", w, got.Tokens())
			}
			for _, a := range tt.absent {
				assert.False(t, got.Contains(a), "did not expect %q in %v", a, got.Tokens())
			}
		})
	}
}

func TestExtract_VocabularyOrderAndCounts(t *testing.T) {
	e, err := NewExtractor(Config{Vocabulary: vocab("sql", "python", "excel")})
	require.NoError(t, err)

	got := e.Extract("Python, python and PYTHON. Also SQL.")
	assert.Equal(t, []string{"sql", "python"}, got.Tokens())
	assert.Equal(t, 3, got.Count("python"))
	assert.Equal(t, 1, got.Count("sql"))
	assert.False(t, got.Contains("excel"))
}

func TestExtract_Generic(t *testing.T) {
	e, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)
	assert.False(t, e.HasVocabulary())

	got := e.Extract("Python, SQL and Excel. Python with machine learning on AWS.")
	assert.True(t, got.Contains("python"))
	assert.True(t, got.Contains("sql"))
	assert.True(t, got.Contains("excel"))
	assert.True(t, got.Contains("machine learning"))
	assert.True(t, got.Contains("amazon web services"))
	assert.Equal(t, 2, got.Count("python"))
	assert.False(t, got.Contains("and"))
	assert.False(t, got.Contains("with"))
	assert.False(t, got.Contains("aws"))
}

func TestExtract_EmptyText(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), {Vocabulary: vocab("python")}} {
		e, err := NewExtractor(cfg)
		require.NoError(t, err)
		assert.True(t, e.Extract("").IsEmpty())
		assert.True(t, e.Extract("  \n\t ").IsEmpty())
		assert.True(t, e.Extract("!!! ...").IsEmpty())
	}
}

func TestExtract_DeterministicAndCaseInsensitive(t *testing.T) {
	e, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	text := "Led SQL reporting in Excel; built Python ETL and A/B testing pipelines."
	first := e.Extract(text)
	second := e.Extract(text)
	assert.True(t, first.Equal(second))

	upper := e.Extract("LED SQL REPORTING IN EXCEL; BUILT PYTHON ETL AND A/B TESTING PIPELINES.")
	assert.True(t, first.Equal(upper))
}

func TestRejoin_RecoversTokens(t *testing.T) {
	configs := map[string]Config{
		"generic": DefaultConfig(),
		"vocabulary": {
			Vocabulary: vocab("python", "sql", "a/b testing", "email marketing"),
			Synonyms:   map[string][]string{"a/b testing": {"split testing"}},
		},
	}
	text := "Python and SQL, plus split testing for email marketing."

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			e, err := NewExtractor(cfg)
			require.NoError(t, err)

			set := e.Extract(text)
			require.False(t, set.IsEmpty())

			again := e.Extract(Rejoin(set))
			assert.True(t, again.IsSupersetOf(set), "rejoined %v lost tokens of %v", again.Tokens(), set.Tokens())
		})
	}
}

func TestRejoin_Empty(t *testing.T) {
	assert.Equal(t, "", Rejoin(types.SkillSet{}))
	assert.Equal(t, "python\nsql", Rejoin(types.NewSkillSet("python", "sql")))
}

func TestCanonicalize(t *testing.T) {
	e, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		input    string
		expected string
	}{
		{"Golang", "go"},
		{"JS", "javascript"},
		{"k8s", "kubernetes"},
		{"ML", "machine learning"},
		{"Split Testing", "a/b testing"},
		{"Rust", "rust"},
		{"r", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Canonicalize(tt.input))
		})
	}

	set := e.CanonicalSet([]string{"Golang", "JS", "", "r", "golang"})
	assert.Equal(t, []string{"go", "javascript"}, set.Tokens())
	assert.Equal(t, 2, set.Count("go"))
}

func TestPartition(t *testing.T) {
	e, err := NewExtractor(Config{Vocabulary: []VocabularyEntry{
		{Token: "python", Category: "core"},
		{Token: "excel", Category: "tools"},
		{Token: "sql", Category: "core"},
		{Token: "communication", Category: "soft_skills"},
	}})
	require.NoError(t, err)

	job := e.Partition(e.Extract("Python, SQL and Excel"))
	assert.Equal(t, []string{"core", "tools", "soft_skills"}, job.Names())

	core, ok := job.Category("core")
	require.True(t, ok)
	assert.Equal(t, []string{"python", "sql"}, core.Tokens())

	tools, ok := job.Category("tools")
	require.True(t, ok)
	assert.Equal(t, []string{"excel"}, tools.Tokens())

	soft, ok := job.Category("soft_skills")
	require.True(t, ok)
	assert.True(t, soft.IsEmpty())

	assert.Equal(t, "core", e.Category("python"))
	assert.Equal(t, "tools", e.Category("excel"))
	assert.Equal(t, types.DefaultCategory, e.Category("unknown"))
}

func TestPartition_UnknownTokensGoToDefaultCategory(t *testing.T) {
	e, err := NewExtractor(Config{Vocabulary: []VocabularyEntry{{Token: "excel", Category: "tools"}}})
	require.NoError(t, err)

	job := e.Partition(types.NewSkillSet("excel", "rust"))
	assert.Equal(t, []string{"tools", types.DefaultCategory}, job.Names())

	core, _ := job.Category(types.DefaultCategory)
	assert.Equal(t, []string{"rust"}, core.Tokens())
}

func TestPartition_NoVocabulary(t *testing.T) {
	e, err := NewExtractor(DefaultConfig())
	require.NoError(t, err)

	set := types.NewSkillSet("python", "sql")
	job := e.Partition(set)
	assert.Equal(t, []string{types.DefaultCategory}, job.Names())
	assert.True(t, job.All().Equal(set))
}
