// Package skills extracts normalized skill tokens from free text.
package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the minimum rune length of a skill token.
const MinTokenLength = 2

// isAllowedRune reports whether r may appear in a skill token (spaces aside).
func isAllowedRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '/'
}

// isWordRune reports whether r glues two characters into the same word.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NormalizeText lowercases text and reduces it to the token alphabet:
// every character outside letters, digits, '+', '#', '.', '/' becomes a space
// and whitespace runs collapse to a single space.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	// Casers carry state, so each call gets its own.
	lowered := cases.Lower(language.Und).String(norm.NFKC.String(text))

	var sb strings.Builder
	sb.Grow(len(lowered))
	pendingSpace := false
	for _, r := range lowered {
		if !isAllowedRune(r) {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// NormalizeToken returns the canonical form of a single skill token,
// or "" when the input cannot form a valid token.
func NormalizeToken(s string) string {
	t := NormalizeText(s)
	t = strings.TrimRight(t, "./ ")
	t = strings.TrimLeft(t, "/ ")
	if t == "" || utf8.RuneCountInString(t) < MinTokenLength {
		return ""
	}
	if strings.IndexFunc(t, isAlnum) < 0 {
		return ""
	}
	return t
}

// boundaryBefore reports whether a match starting at byte offset i of text is word-aligned.
func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, size := utf8.DecodeLastRuneInString(text[:i])
	if isWordRune(r) {
		return false
	}
	if r == '.' {
		// "asp.net" does not contain "net"
		prev, _ := utf8.DecodeLastRuneInString(text[:i-size])
		return i-size == 0 || !isAlnum(prev)
	}
	return true
}

// boundaryAfter reports whether a match ending at byte offset j of text is word-aligned.
func boundaryAfter(text string, j int) bool {
	if j >= len(text) {
		return true
	}
	r, size := utf8.DecodeRuneInString(text[j:])
	if isWordRune(r) {
		return false
	}
	if r == '.' {
		// "node.js" does not contain "node", but "python." at a sentence end does
		if j+size >= len(text) {
			return true
		}
		next, _ := utf8.DecodeRuneInString(text[j+size:])
		return !isAlnum(next)
	}
	return true
}

// countPhrase counts non-overlapping, boundary-aligned occurrences of phrase in normalized text.
func countPhrase(text, phrase string) int {
	if phrase == "" || len(phrase) > len(text) {
		return 0
	}
	count := 0
	offset := 0
	for offset <= len(text)-len(phrase) {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			offset = end
			continue
		}
		offset = start + 1
	}
	return count
}

// ContainsPhrase reports whether phrase occurs as a whole word or phrase in text.
// Both arguments are normalized first.
func ContainsPhrase(text, phrase string) bool {
	p := NormalizeToken(phrase)
	if p == "" {
		return false
	}
	return countPhrase(NormalizeText(text), p) > 0
}
