// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(clip(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// joinLimited joins up to limit items and notes how many were left out.
func joinLimited(items []string, limit int) string {
	if len(items) == 0 {
		return "none"
	}
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s ... and %d more", strings.Join(items[:limit], ", "), len(items)-limit)
}

// PrintSkillSet outputs the tokens of a skill set with their occurrence counts.
func (p *Printer) PrintSkillSet(title string, set types.SkillSet) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Distinct skills: %d\n", set.Len())
	if set.IsEmpty() {
		sb.WriteString("\n(no skills found)")
		p.printBox(title, sb.String())
		return
	}

	sb.WriteString("\n")
	tokens := set.Tokens()
	count := min(len(tokens), maxItemsToShow*2)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&sb, "  • %s", tokens[i])
		if n := set.Count(tokens[i]); n > 1 {
			fmt.Fprintf(&sb, " (x%d)", n)
		}
		sb.WriteString("\n")
	}
	if len(tokens) > count {
		fmt.Fprintf(&sb, "  ... and %d more\n", len(tokens)-count)
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobSkills outputs the job-side skills grouped by category.
func (p *Printer) PrintJobSkills(job types.JobSkills) {
	var sb strings.Builder
	for i, c := range job.Categories {
		fmt.Fprintf(&sb, "%s (%d):\n", c.Name, c.Skills.Len())
		fmt.Fprintf(&sb, "  %s\n", joinLimited(c.Skills.Tokens(), maxItemsToShow))
		if i < len(job.Categories)-1 {
			sb.WriteString("\n")
		}
	}
	if len(job.Categories) == 0 {
		sb.WriteString("(no categories)")
	}

	p.printBox("JOB SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRequirements outputs model-extracted job requirements.
func (p *Printer) PrintRequirements(req *types.JobRequirements) {
	if req == nil {
		return
	}

	var sb strings.Builder
	level := req.ExperienceLevel
	if level == "" {
		level = "unspecified"
	}
	fmt.Fprintf(&sb, "Experience level: %s\n\n", level)
	fmt.Fprintf(&sb, "Core skills: %s\n", joinLimited(req.CoreSkills, maxItemsToShow))
	fmt.Fprintf(&sb, "Tools:       %s\n", joinLimited(req.Tools, maxItemsToShow))
	fmt.Fprintf(&sb, "Soft skills: %s", joinLimited(req.SoftSkills, maxItemsToShow))

	p.printBox("JOB REQUIREMENTS (model)", sb.String())
}

// PrintFitReport outputs the score, the per-category breakdown and any risk flags.
func (p *Printer) PrintFitReport(report types.FitReport) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fit score: %.1f / 100\n", report.Score)

	for _, c := range report.Categories {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s  weight %.0f  →  %.1f\n", c.Name, c.Weight, c.Contribution)
		fmt.Fprintf(&sb, "  ✓ %s\n", joinLimited(c.Matched, maxItemsToShow))
		fmt.Fprintf(&sb, "  ✗ %s\n", joinLimited(c.Missing, maxItemsToShow))
	}

	sb.WriteString("\n")
	if len(report.RiskFlags) == 0 {
		sb.WriteString("No risk flags")
	} else {
		fmt.Fprintf(&sb, "Risk flags (%d):\n", len(report.RiskFlags))
		for _, f := range report.RiskFlags {
			fmt.Fprintf(&sb, "  ⚠ %s\n", f.Message)
		}
	}

	p.printBox("FIT REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNarratives outputs each narrative, or why it is unavailable.
func (p *Printer) PrintNarratives(narratives []types.Narrative) {
	for _, n := range narratives {
		title := strings.ToUpper(strings.ReplaceAll(string(n.Kind), "_", " "))
		if !n.Available {
			p.printBox(title, fmt.Sprintf("unavailable (%s)", n.Reason))
			continue
		}
		p.printBox(title, wrap(n.Text, boxWidth-4))
	}
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
