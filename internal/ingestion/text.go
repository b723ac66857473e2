package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerWhitespace   = regexp.MustCompile(`\s+`)
	excessBlankLines  = regexp.MustCompile(`\n\n\n+`)
	unicodeBulletMark = []string{"• ", "· ", "▪ ", "◦ ", "– "}
)

// CleanText cleans and normalizes text content while preserving structure.
// Unicode bullets common in PDF and DOCX exports are rewritten as "- ".
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = excessBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)

	// Markdown headings lose their indentation.
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	if isBulletLine(trimmed) {
		trimmed = innerWhitespace.ReplaceAllString(normalizeBullet(trimmed), " ")
		return strings.Repeat(" ", indent) + trimmed
	}

	content := innerWhitespace.ReplaceAllString(trimmed, " ")
	return strings.Repeat(" ", indent) + content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return true
	}
	for _, mark := range unicodeBulletMark {
		if strings.HasPrefix(trimmed, mark) {
			return true
		}
	}
	return false
}

func normalizeBullet(line string) string {
	for _, mark := range unicodeBulletMark {
		if rest, ok := strings.CutPrefix(line, mark); ok {
			return "- " + strings.TrimSpace(rest)
		}
	}
	return line
}
