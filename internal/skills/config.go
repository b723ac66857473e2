package skills

import (
	"sort"

	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// VocabularyEntry is one canonical skill the extractor may recognize.
type VocabularyEntry struct {
	Token    string   `json:"token" yaml:"token" validate:"required"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
}

// Config holds the extraction tables. Every field is optional.
//
// With a Vocabulary, extraction recognizes only vocabulary tokens (and their synonyms).
// Without one, extraction tokenizes the text generically and drops Stopwords.
// Synonyms maps a canonical token to alternate surface forms; folding is alternate → canonical.
type Config struct {
	Vocabulary []VocabularyEntry
	Synonyms   map[string][]string
	Stopwords  []string
}

// surfaceForm is a normalized surface string that folds to a canonical token.
type surfaceForm struct {
	surface   string
	canonical string
}

type compiledEntry struct {
	canonical string
	category  string
	surfaces  []string // canonical first, then alternates in declaration order
}

// tables is the validated, precomputed form of a Config.
type tables struct {
	vocab         []compiledEntry
	fold          map[string]string
	phrases       []surfaceForm
	stopwords     map[string]struct{}
	categoryOrder []string
}

func compile(cfg Config) (*tables, error) {
	t := &tables{
		fold:      make(map[string]string),
		stopwords: make(map[string]struct{}),
	}

	if err := t.addSynonyms(cfg.Synonyms); err != nil {
		return nil, err
	}
	if err := t.addVocabulary(cfg.Vocabulary); err != nil {
		return nil, err
	}

	// Stopwords are compared against generic tokens, so they get the same normalization.
	for _, sw := range cfg.Stopwords {
		n := NormalizeToken(sw)
		if n == "" {
			return nil, types.NewInvalidConfiguration("stopwords", "stopword %q is not a valid skill token", sw)
		}
		t.stopwords[n] = struct{}{}
	}

	// Multi-word surfaces are phrase-searched in generic mode, longest first.
	for surface, canonical := range t.fold {
		if containsSpace(surface) {
			t.phrases = append(t.phrases, surfaceForm{surface: surface, canonical: canonical})
		}
	}
	sort.Slice(t.phrases, func(i, j int) bool {
		if len(t.phrases[i].surface) != len(t.phrases[j].surface) {
			return len(t.phrases[i].surface) > len(t.phrases[j].surface)
		}
		return t.phrases[i].surface < t.phrases[j].surface
	})

	return t, nil
}

func (t *tables) addSynonyms(synonyms map[string][]string) error {
	canonicals := make([]string, 0, len(synonyms))
	for c := range synonyms {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	for _, raw := range canonicals {
		canonical := NormalizeToken(raw)
		if canonical == "" {
			return types.NewInvalidConfiguration("synonyms", "canonical token %q is not a valid skill token", raw)
		}
		if err := t.bind(canonical, canonical); err != nil {
			return err
		}
		for _, alt := range synonyms[raw] {
			surface := NormalizeToken(alt)
			if surface == "" {
				return types.NewInvalidConfiguration("synonyms", "alternate %q for %q is not a valid skill token", alt, canonical)
			}
			if err := t.bind(surface, canonical); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *tables) addVocabulary(entries []VocabularyEntry) error {
	seen := make(map[string]struct{}, len(entries))
	seenCategory := make(map[string]struct{})

	for i, e := range entries {
		canonical := NormalizeToken(e.Token)
		if canonical == "" {
			return types.NewInvalidConfiguration("vocabulary", "entry %d (%q) is not a valid skill token", i, e.Token)
		}
		if _, dup := seen[canonical]; dup {
			return types.NewInvalidConfiguration("vocabulary", "duplicate token %q", canonical)
		}
		seen[canonical] = struct{}{}

		if err := t.bind(canonical, canonical); err != nil {
			return err
		}
		for _, alt := range e.Synonyms {
			surface := NormalizeToken(alt)
			if surface == "" {
				return types.NewInvalidConfiguration("vocabulary", "synonym %q of %q is not a valid skill token", alt, canonical)
			}
			if err := t.bind(surface, canonical); err != nil {
				return err
			}
		}

		category := e.Category
		if category == "" {
			category = types.DefaultCategory
		}
		if _, ok := seenCategory[category]; !ok {
			seenCategory[category] = struct{}{}
			t.categoryOrder = append(t.categoryOrder, category)
		}
		t.vocab = append(t.vocab, compiledEntry{canonical: canonical, category: category})
	}

	// Surfaces are collected after all bindings so table synonyms and entry synonyms both apply.
	for i := range t.vocab {
		entry := &t.vocab[i]
		entry.surfaces = append(entry.surfaces, entry.canonical)
		for _, s := range t.surfacesFor(entry.canonical) {
			if s != entry.canonical {
				entry.surfaces = append(entry.surfaces, s)
			}
		}
	}
	return nil
}

// bind maps a surface to a canonical token, rejecting conflicting mappings.
func (t *tables) bind(surface, canonical string) error {
	if existing, ok := t.fold[surface]; ok && existing != canonical {
		return types.NewInvalidConfiguration("synonyms",
			"%q maps to both %q and %q", surface, existing, canonical)
	}
	if surface != canonical {
		// An alternate may not itself be a canonical token of another skill.
		if target, ok := t.fold[canonical]; ok && target != canonical {
			return types.NewInvalidConfiguration("synonyms",
				"%q is an alternate of %q and cannot be canonical", canonical, target)
		}
	}
	t.fold[surface] = canonical
	return nil
}

// surfacesFor returns every surface folding to canonical, in sorted order.
func (t *tables) surfacesFor(canonical string) []string {
	var out []string
	for s, c := range t.fold {
		if c == canonical {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func containsSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return true
		}
	}
	return false
}
