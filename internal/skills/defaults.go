package skills

// defaultStopwords are common English and job-posting filler words excluded from generic tokenization.
// Single letters are already dropped by MinTokenLength.
var defaultStopwords = []string{
	"the", "an", "is", "are", "was", "were", "do", "does", "did",
	"have", "has", "had", "be", "been", "being", "will", "would", "could", "should",
	"may", "might", "can", "shall", "not", "no", "and", "or", "but", "if",
	"then", "than", "so", "as", "at", "by", "for", "from", "in", "into",
	"of", "on", "to", "with", "about", "up", "out", "it", "its", "this",
	"that", "these", "those", "what", "which", "who", "how", "when", "where", "why",
	"you", "me", "my", "your", "we", "our", "they", "their", "he",
	"she", "her", "him", "his", "us", "them", "all", "any", "each", "other",
	"such", "also", "very", "more", "most", "well", "etc", "via", "per", "across",
	"including", "within", "using", "used", "use", "able", "strong", "good", "excellent", "ability",
	"experience", "experienced", "years", "year", "work", "working", "role", "team", "teams", "job",
	"candidate", "responsibilities", "requirements", "required", "preferred", "plus", "must", "skills", "knowledge", "understanding",
}

// defaultSynonyms maps canonical tokens to common variants found in CVs and postings.
var defaultSynonyms = map[string][]string{
	"go":               {"golang", "go lang"},
	"javascript":       {"js"},
	"typescript":       {"ts"},
	"kubernetes":       {"k8s"},
	"react":            {"react.js", "reactjs"},
	"vue":              {"vue.js", "vuejs"},
	"node.js":          {"nodejs"},
	"postgresql":       {"postgres"},
	"a/b testing":      {"split testing", "ab testing"},
	"machine learning": {"ml"},
	"ci/cd":            {"cicd", "continuous integration"},

	"search engine optimization": {"seo"},
	"amazon web services":        {"aws"},
	"google cloud platform":      {"gcp"},
}

// DefaultStopwords returns a copy of the built-in stopword list.
func DefaultStopwords() []string {
	out := make([]string, len(defaultStopwords))
	copy(out, defaultStopwords)
	return out
}

// DefaultSynonyms returns a copy of the built-in synonym table.
func DefaultSynonyms() map[string][]string {
	out := make(map[string][]string, len(defaultSynonyms))
	for k, v := range defaultSynonyms {
		alts := make([]string, len(v))
		copy(alts, v)
		out[k] = alts
	}
	return out
}

// DefaultConfig returns generic extraction with the built-in stopwords and synonyms.
func DefaultConfig() Config {
	return Config{
		Synonyms:  DefaultSynonyms(),
		Stopwords: DefaultStopwords(),
	}
}

// MergeSynonyms combines synonym tables; alternates for the same canonical are concatenated.
func MergeSynonyms(tables ...map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for _, t := range tables {
		for canonical, alts := range t {
			out[canonical] = append(out[canonical], alts...)
		}
	}
	return out
}

// DefaultSynonymsFor returns the built-in synonym table minus every binding that collides with
// cfg. An alternate already claimed by a different user token is dropped, and an entry whose
// canonical is a user alternate is dropped whole. Conflicts inside cfg itself are left for
// NewExtractor to report.
func DefaultSynonymsFor(cfg Config) map[string][]string {
	owners := userSurfaces(cfg)
	out := make(map[string][]string, len(defaultSynonyms))
	for canonical, alts := range defaultSynonyms {
		if owner, ok := owners[canonical]; ok && owner != canonical {
			continue
		}
		kept := make([]string, 0, len(alts))
		for _, alt := range alts {
			if owner, ok := owners[alt]; ok && owner != canonical {
				continue
			}
			kept = append(kept, alt)
		}
		out[canonical] = kept
	}
	return out
}

// userSurfaces maps every normalized surface in cfg to the canonical token it folds to.
func userSurfaces(cfg Config) map[string]string {
	owners := make(map[string]string)
	claim := func(surface, canonical string) {
		if s := NormalizeToken(surface); s != "" {
			if _, ok := owners[s]; !ok {
				owners[s] = canonical
			}
		}
	}
	for raw, alts := range cfg.Synonyms {
		canonical := NormalizeToken(raw)
		if canonical == "" {
			continue
		}
		claim(raw, canonical)
		for _, alt := range alts {
			claim(alt, canonical)
		}
	}
	for _, e := range cfg.Vocabulary {
		canonical := NormalizeToken(e.Token)
		if canonical == "" {
			continue
		}
		claim(e.Token, canonical)
		for _, alt := range e.Synonyms {
			claim(alt, canonical)
		}
	}
	return owners
}
