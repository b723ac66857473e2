package types

import "fmt"

// NarrativeKind selects which prose the narrative generator produces.
type NarrativeKind string

// Supported narrative kinds.
const (
	NarrativeImprovements  NarrativeKind = "improvement_suggestions"
	NarrativeTalkingPoints NarrativeKind = "talking_points"
	NarrativeCoverLetter   NarrativeKind = "cover_letter"
	NarrativeExplanation   NarrativeKind = "explanation"
)

// AllNarrativeKinds lists every kind in presentation order.
func AllNarrativeKinds() []NarrativeKind {
	return []NarrativeKind{
		NarrativeImprovements,
		NarrativeTalkingPoints,
		NarrativeCoverLetter,
		NarrativeExplanation,
	}
}

// ParseNarrativeKind validates a kind name. "all" is not accepted here.
func ParseNarrativeKind(s string) (NarrativeKind, error) {
	for _, k := range AllNarrativeKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown narrative kind %q", s)
}

// Narrative is generated prose, or a marker that it could not be produced.
type Narrative struct {
	Kind      NarrativeKind `json:"kind"`
	Text      string        `json:"text,omitempty"`
	Available bool          `json:"available"`
	Reason    string        `json:"reason,omitempty"`
}
