package skills

import (
	"strings"

	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Extractor turns free text into SkillSets. It holds only immutable tables built
// by NewExtractor, so a single Extractor may be shared between goroutines.
type Extractor struct {
	t *tables
}

// NewExtractor validates cfg and precomputes its lookup tables.
// Invalid entries are reported as *types.InvalidConfigurationError.
func NewExtractor(cfg Config) (*Extractor, error) {
	t, err := compile(cfg)
	if err != nil {
		return nil, err
	}
	return &Extractor{t: t}, nil
}

// Extract is a one-shot helper that builds an Extractor for cfg and runs it.
func Extract(text string, cfg Config) (types.SkillSet, error) {
	e, err := NewExtractor(cfg)
	if err != nil {
		return types.SkillSet{}, err
	}
	return e.Extract(text), nil
}

// HasVocabulary reports whether extraction is restricted to a vocabulary.
func (e *Extractor) HasVocabulary() bool {
	return len(e.t.vocab) > 0
}

// Extract returns the skills found in text. Empty text yields an empty set.
func (e *Extractor) Extract(text string) types.SkillSet {
	normalized := NormalizeText(text)
	if normalized == "" {
		return types.SkillSet{}
	}
	if e.HasVocabulary() {
		return e.extractVocabulary(normalized)
	}
	return e.extractGeneric(normalized)
}

func (e *Extractor) extractVocabulary(normalized string) types.SkillSet {
	b := types.NewSkillSetBuilder()
	for _, entry := range e.t.vocab {
		total := 0
		for _, surface := range entry.surfaces {
			total += countPhrase(normalized, surface)
		}
		b.Add(entry.canonical, total)
	}
	return b.Build()
}

func (e *Extractor) extractGeneric(normalized string) types.SkillSet {
	b := types.NewSkillSetBuilder()
	for _, field := range strings.Fields(normalized) {
		token := NormalizeToken(field)
		if token == "" {
			continue
		}
		if _, stop := e.t.stopwords[token]; stop {
			continue
		}
		if canonical, ok := e.t.fold[token]; ok {
			token = canonical
		}
		b.Add(token, 1)
	}
	for _, p := range e.t.phrases {
		b.Add(p.canonical, countPhrase(normalized, p.surface))
	}
	return b.Build()
}

// Canonicalize normalizes a single surface term and folds it through the synonym table.
// It returns "" for terms that cannot form a valid token.
func (e *Extractor) Canonicalize(term string) string {
	token := NormalizeToken(term)
	if token == "" {
		return ""
	}
	if canonical, ok := e.t.fold[token]; ok {
		return canonical
	}
	return token
}

// CanonicalSet canonicalizes every term and collects the valid ones into a SkillSet.
func (e *Extractor) CanonicalSet(terms []string) types.SkillSet {
	b := types.NewSkillSetBuilder()
	for _, term := range terms {
		b.Add(e.Canonicalize(term), 1)
	}
	return b.Build()
}

// Category returns the vocabulary category of a canonical token.
func (e *Extractor) Category(token string) string {
	for _, entry := range e.t.vocab {
		if entry.canonical == token {
			return entry.category
		}
	}
	return types.DefaultCategory
}

// Partition splits a job-side SkillSet by vocabulary category.
// Without a vocabulary everything lands in the default category.
// Categories appear in the order they are first declared in the vocabulary.
func (e *Extractor) Partition(set types.SkillSet) types.JobSkills {
	if !e.HasVocabulary() {
		return types.Uncategorized(set)
	}

	builders := make(map[string]*types.SkillSetBuilder, len(e.t.categoryOrder))
	for _, c := range e.t.categoryOrder {
		builders[c] = types.NewSkillSetBuilder()
	}
	for _, token := range set.Tokens() {
		c := e.Category(token)
		b, ok := builders[c]
		if !ok {
			b = types.NewSkillSetBuilder()
			builders[c] = b
		}
		b.Add(token, set.Count(token))
	}

	job := types.JobSkills{}
	for _, c := range e.t.categoryOrder {
		job.Categories = append(job.Categories, types.CategorySkills{Name: c, Skills: builders[c].Build()})
	}
	if _, declared := indexOf(e.t.categoryOrder, types.DefaultCategory); !declared {
		if b := builders[types.DefaultCategory]; b != nil {
			job.Categories = append(job.Categories, types.CategorySkills{Name: types.DefaultCategory, Skills: b.Build()})
		}
	}
	return job
}

// Rejoin renders a SkillSet back to text, one canonical token per line.
// Extracting the rejoined text recovers at least the original tokens.
func Rejoin(set types.SkillSet) string {
	return strings.Join(set.Tokens(), "\n")
}

func indexOf(items []string, s string) (int, bool) {
	for i, v := range items {
		if v == s {
			return i, true
		}
	}
	return -1, false
}
