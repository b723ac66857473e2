package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/skills"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Profile is the scoring profile: extraction tables, category weights and flag thresholds.
// Every field is optional. Nil toggles and thresholds take their defaults.
type Profile struct {
	Vocabulary          []skills.VocabularyEntry `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty" validate:"dive"`
	Synonyms            map[string][]string      `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Stopwords           []string                 `json:"stopwords,omitempty" yaml:"stopwords,omitempty"`
	UseDefaultStopwords *bool                    `json:"use_default_stopwords,omitempty" yaml:"use_default_stopwords,omitempty"`
	UseDefaultSynonyms  *bool                    `json:"use_default_synonyms,omitempty" yaml:"use_default_synonyms,omitempty"`

	Categories      scoring.CategoryWeights `json:"categories,omitempty" yaml:"categories,omitempty" validate:"dive"`
	ModelCategories scoring.CategoryWeights `json:"model_categories,omitempty" yaml:"model_categories,omitempty" validate:"dive"`

	LowAlignmentThreshold *float64 `json:"low_alignment_threshold,omitempty" yaml:"low_alignment_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
	CoreGapThreshold      *int     `json:"core_gap_threshold,omitempty" yaml:"core_gap_threshold,omitempty" validate:"omitempty,gte=1"`
	CoreCategory          string   `json:"core_category,omitempty" yaml:"core_category,omitempty"`
	MustHave              []string `json:"must_have,omitempty" yaml:"must_have,omitempty"`
}

// Engine is a validated profile, ready for extraction and scoring.
type Engine struct {
	Extractor    *skills.Extractor
	Options      scoring.Options
	ModelWeights scoring.CategoryWeights
}

// LoadProfile reads a scoring profile from a JSON or YAML file and validates its structure.
func LoadProfile(path string) (*Profile, error) {
	data, path, err := readFile(path, "profile")
	if err != nil {
		return nil, err
	}

	var p Profile
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
		}
	} else if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadEngine loads and builds the profile at path. An empty path yields the default engine.
func LoadEngine(path string) (*Engine, error) {
	if path == "" {
		return (&Profile{}).Build()
	}
	p, err := LoadProfile(path)
	if err != nil {
		return nil, err
	}
	return p.Build()
}

// Validate runs struct-tag validation and reports the first failure as an
// InvalidConfigurationError.
func (p *Profile) Validate() error {
	if err := newValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return types.NewInvalidConfiguration(fieldPath(fe.Namespace()), "failed %q validation", fe.Tag())
		}
		return types.NewInvalidConfiguration("", "%v", err)
	}
	return nil
}

// Build compiles the profile. Every semantic problem (invalid tokens, conflicting synonyms,
// weights not summing to 100, vocabulary categories without a weight) is reported here,
// before any text is analyzed.
func (p *Profile) Build() (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg := skills.Config{Vocabulary: p.Vocabulary}
	if enabled(p.UseDefaultSynonyms) {
		// built-ins yield to the profile's own tokens
		user := skills.Config{Vocabulary: p.Vocabulary, Synonyms: p.Synonyms}
		cfg.Synonyms = skills.MergeSynonyms(skills.DefaultSynonymsFor(user), p.Synonyms)
	} else {
		cfg.Synonyms = skills.MergeSynonyms(p.Synonyms)
	}
	if enabled(p.UseDefaultStopwords) {
		cfg.Stopwords = append(skills.DefaultStopwords(), p.Stopwords...)
	} else {
		cfg.Stopwords = append([]string(nil), p.Stopwords...)
	}

	extractor, err := skills.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	opts := scoring.DefaultOptions()
	if len(p.Categories) > 0 {
		opts.Weights = append(scoring.CategoryWeights(nil), p.Categories...)
	}
	if p.LowAlignmentThreshold != nil {
		opts.LowAlignmentThreshold = *p.LowAlignmentThreshold
	}
	if p.CoreGapThreshold != nil {
		opts.CoreGapThreshold = *p.CoreGapThreshold
	}
	if p.CoreCategory != "" {
		opts.CoreCategory = p.CoreCategory
	}
	for _, m := range p.MustHave {
		token := extractor.Canonicalize(m)
		if token == "" {
			return nil, types.NewInvalidConfiguration("must_have", "%q is not a valid skill token", m)
		}
		opts.MustHave = append(opts.MustHave, token)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	for _, e := range p.Vocabulary {
		category := e.Category
		if category == "" {
			category = types.DefaultCategory
		}
		if _, ok := opts.Weights.Weight(category); !ok {
			return nil, types.NewInvalidConfiguration("categories", "vocabulary category %q has no weight", category)
		}
	}
	// job skills outside the vocabulary, or all of them when there is none, land in the default category
	if _, ok := opts.Weights.Weight(types.DefaultCategory); !ok {
		return nil, types.NewInvalidConfiguration("categories",
			"categories need a %q weight for skills outside the vocabulary", types.DefaultCategory)
	}

	modelWeights := scoring.DefaultModelWeights()
	if len(p.ModelCategories) > 0 {
		modelWeights = append(scoring.CategoryWeights(nil), p.ModelCategories...)
	}
	if err := modelWeights.Validate(); err != nil {
		var cfgErr *types.InvalidConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, types.NewInvalidConfiguration("model_categories", "%s", cfgErr.Message)
		}
		return nil, err
	}

	return &Engine{
		Extractor:    extractor,
		Options:      opts,
		ModelWeights: modelWeights,
	}, nil
}

func enabled(b *bool) bool {
	return b == nil || *b
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldPath turns "Profile.categories[0].weight" into "categories[0].weight".
func fieldPath(namespace string) string {
	return strings.TrimPrefix(namespace, "Profile.")
}
