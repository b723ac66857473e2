package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSkillSet_CollapsesDuplicates(t *testing.T) {
	set := NewSkillSet("python", "sql", "python", "", "excel")

	assert.Equal(t, []string{"python", "sql", "excel"}, set.Tokens())
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, 2, set.Count("python"))
	assert.Equal(t, 1, set.Count("sql"))
	assert.Equal(t, 0, set.Count("go"))
	assert.True(t, set.Contains("excel"))
	assert.False(t, set.Contains(""))
}

func TestSkillSet_ZeroValue(t *testing.T) {
	var set SkillSet

	assert.True(t, set.IsEmpty())
	assert.Empty(t, set.Tokens())
	assert.False(t, set.Contains("go"))
	assert.Empty(t, set.Counts())
}

func TestSkillSet_AccessorsReturnCopies(t *testing.T) {
	set := NewSkillSet("go", "sql")

	tokens := set.Tokens()
	tokens[0] = "mutated"
	counts := set.Counts()
	counts["go"] = 99

	assert.Equal(t, []string{"go", "sql"}, set.Tokens())
	assert.Equal(t, 1, set.Count("go"))
}

func TestSkillSet_Equal(t *testing.T) {
	a := NewSkillSet("go", "sql", "go")
	b := NewSkillSet("go", "sql", "go")
	c := NewSkillSet("sql", "go", "go")
	d := NewSkillSet("go", "sql")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "order matters")
	assert.False(t, a.Equal(d), "counts matter")
}

func TestSkillSet_IsSupersetOf(t *testing.T) {
	big := NewSkillSet("go", "sql", "docker")

	assert.True(t, big.IsSupersetOf(NewSkillSet("sql", "go")))
	assert.True(t, big.IsSupersetOf(SkillSet{}))
	assert.False(t, big.IsSupersetOf(NewSkillSet("rust")))
}

func TestSkillSet_Sorted(t *testing.T) {
	set := NewSkillSet("sql", "excel", "python")
	assert.Equal(t, []string{"excel", "python", "sql"}, set.Sorted())
	assert.Equal(t, []string{"sql", "excel", "python"}, set.Tokens())
}

func TestSkillSet_JSONRoundTrip(t *testing.T) {
	set := NewSkillSet("python", "sql", "python")

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"skills":["python","sql"],"counts":{"python":2,"sql":1}}`, string(data))

	var decoded SkillSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, set.Equal(decoded))
}

func TestSkillSet_UnmarshalBareArray(t *testing.T) {
	var set SkillSet
	require.NoError(t, json.Unmarshal([]byte(`["go", "sql", "go"]`), &set))

	assert.Equal(t, []string{"go", "sql"}, set.Tokens())
	assert.Equal(t, 2, set.Count("go"))
}

func TestSkillSet_UnmarshalMissingCountsDefaultsToOne(t *testing.T) {
	var set SkillSet
	require.NoError(t, json.Unmarshal([]byte(`{"skills": ["go"]}`), &set))
	assert.Equal(t, 1, set.Count("go"))
}

func TestSkillSet_UnmarshalInvalid(t *testing.T) {
	var set SkillSet
	err := json.Unmarshal([]byte(`{"skills": "go"}`), &set)
	assert.Error(t, err)
}

func TestJobSkills_Helpers(t *testing.T) {
	job := JobSkills{Categories: []CategorySkills{
		{Name: "core", Skills: NewSkillSet("python", "sql")},
		{Name: "tools", Skills: NewSkillSet("excel", "python")},
	}}

	assert.Equal(t, []string{"core", "tools"}, job.Names())
	assert.Equal(t, []string{"python", "sql", "excel"}, job.All().Tokens())

	tools, ok := job.Category("tools")
	require.True(t, ok)
	assert.Equal(t, []string{"excel", "python"}, tools.Tokens())

	_, ok = job.Category("soft_skills")
	assert.False(t, ok)
	assert.False(t, job.IsEmpty())
	assert.True(t, Uncategorized(SkillSet{}).IsEmpty())
}

func TestUncategorized_UsesCoreCategory(t *testing.T) {
	job := Uncategorized(NewSkillSet("go"))
	require.Len(t, job.Categories, 1)
	assert.Equal(t, DefaultCategory, job.Categories[0].Name)
}

func TestFitReport_AccessorsDoNotLeakState(t *testing.T) {
	report := FitReport{
		Score: 50,
		Categories: []CategoryResult{
			{Name: "core", Weight: 100, Required: []string{"go", "sql"}, Matched: []string{"go"}, Missing: []string{"sql"}},
		},
		RiskFlags: []RiskFlag{{Code: FlagLowOverallAlignment, Message: "low overall alignment"}},
	}

	core, ok := report.Category("core")
	require.True(t, ok)
	core.Matched[0] = "mutated"
	flags := report.Flags()
	flags[0].Code = "mutated"

	assert.Equal(t, []string{"go"}, report.Matched())
	assert.Equal(t, []string{"sql"}, report.Missing())
	assert.True(t, report.HasFlag(FlagLowOverallAlignment))
	assert.Equal(t, []string{"low overall alignment"}, report.FlagMessages())
}

func TestInvalidConfigurationError(t *testing.T) {
	err := NewInvalidConfiguration("categories", "weights sum to %.1f, want 100", 90.0)

	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Equal(t, "invalid configuration: categories: weights sum to 90.0, want 100", err.Error())

	var cfgErr *InvalidConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "categories", cfgErr.Field)

	noField := &InvalidConfigurationError{Message: "bad"}
	assert.Equal(t, "invalid configuration: bad", noField.Error())
}

func TestParseNarrativeKind(t *testing.T) {
	for _, k := range AllNarrativeKinds() {
		parsed, err := ParseNarrativeKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseNarrativeKind("haiku")
	assert.Error(t, err)
}

func TestJobRequirements_ByCategory(t *testing.T) {
	req := &JobRequirements{CoreSkills: []string{"Python"}, Tools: []string{"Excel"}}

	byCat := req.ByCategory()
	assert.Equal(t, []string{"Python"}, byCat[CategoryCore])
	assert.Equal(t, []string{"Excel"}, byCat[CategoryTools])
	assert.Empty(t, byCat[CategorySoftSkills])
	assert.False(t, req.IsEmpty())

	var nilReq *JobRequirements
	assert.True(t, nilReq.IsEmpty())
	assert.Empty(t, nilReq.ByCategory())
}
