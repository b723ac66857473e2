// Package types provides type definitions for structured data used throughout the fit engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultCategory is the category used when job skills are not partitioned.
const DefaultCategory = "core"

// SkillSet is an ordered set of normalized skill tokens with occurrence counts.
// The zero value is an empty set. A SkillSet is never mutated after it is built.
type SkillSet struct {
	order  []string
	counts map[string]int
}

// NewSkillSet builds a SkillSet from tokens, counting repeats. Empty tokens are skipped.
func NewSkillSet(tokens ...string) SkillSet {
	b := NewSkillSetBuilder()
	for _, t := range tokens {
		b.Add(t, 1)
	}
	return b.Build()
}

// Tokens returns the distinct tokens in insertion order.
func (s SkillSet) Tokens() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Sorted returns the distinct tokens in lexical order.
func (s SkillSet) Sorted() []string {
	out := s.Tokens()
	sort.Strings(out)
	return out
}

// Len returns the number of distinct tokens.
func (s SkillSet) Len() int {
	return len(s.order)
}

// IsEmpty reports whether the set has no tokens.
func (s SkillSet) IsEmpty() bool {
	return len(s.order) == 0
}

// Contains reports whether token is in the set.
func (s SkillSet) Contains(token string) bool {
	_, ok := s.counts[token]
	return ok
}

// Count returns how many times token was observed (0 if absent).
func (s SkillSet) Count(token string) int {
	return s.counts[token]
}

// Counts returns a copy of the token frequency map.
func (s SkillSet) Counts() map[string]int {
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same tokens in the same order with the same counts.
func (s SkillSet) Equal(other SkillSet) bool {
	if len(s.order) != len(other.order) {
		return false
	}
	for i, t := range s.order {
		if other.order[i] != t || other.counts[t] != s.counts[t] {
			return false
		}
	}
	return true
}

// IsSupersetOf reports whether every token of other is contained in s.
func (s SkillSet) IsSupersetOf(other SkillSet) bool {
	for _, t := range other.order {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

// String renders the tokens as a comma separated list.
func (s SkillSet) String() string {
	return strings.Join(s.order, ", ")
}

type skillSetJSON struct {
	Skills []string       `json:"skills"`
	Counts map[string]int `json:"counts,omitempty"`
}

// MarshalJSON encodes the set as {"skills": [...], "counts": {...}}.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(skillSetJSON{Skills: s.Tokens(), Counts: s.Counts()})
}

// UnmarshalJSON accepts either {"skills": [...], "counts": {...}} or a bare array of tokens.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var tokens []string
		if err := json.Unmarshal(data, &tokens); err != nil {
			return fmt.Errorf("failed to decode skill list: %w", err)
		}
		*s = NewSkillSet(tokens...)
		return nil
	}

	var raw skillSetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode skill set: %w", err)
	}
	b := NewSkillSetBuilder()
	for _, t := range raw.Skills {
		n := raw.Counts[t]
		if n <= 0 {
			n = 1
		}
		b.Add(t, n)
	}
	*s = b.Build()
	return nil
}

// SkillSetBuilder accumulates tokens for a SkillSet. It is not safe for concurrent use.
type SkillSetBuilder struct {
	order  []string
	counts map[string]int
}

// NewSkillSetBuilder returns an empty builder.
func NewSkillSetBuilder() *SkillSetBuilder {
	return &SkillSetBuilder{counts: make(map[string]int)}
}

// Add records n occurrences of token. The first Add of a token fixes its position.
func (b *SkillSetBuilder) Add(token string, n int) {
	if token == "" || n <= 0 {
		return
	}
	if _, ok := b.counts[token]; !ok {
		b.order = append(b.order, token)
	}
	b.counts[token] += n
}

// Build returns the accumulated SkillSet. The builder can keep being used afterwards.
func (b *SkillSetBuilder) Build() SkillSet {
	order := make([]string, len(b.order))
	copy(order, b.order)
	counts := make(map[string]int, len(b.counts))
	for k, v := range b.counts {
		counts[k] = v
	}
	return SkillSet{order: order, counts: counts}
}
