package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobRequirements")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// JobRequirementsSchema returns the extraction schema for job descriptions.
// Extracts the skills a hiring manager screens for, split the way the fit scorer weights them.
func JobRequirementsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobRequirements",
		Description: `You are an expert technical recruiter reading a job description.
List the concrete skills the role requires. Use short skill names (one to four words) exactly as they
appear in the text, lowercase, without explanations.
EXCLUDE: benefits, company boilerplate, EEO statements, application instructions.`,
		Fields: []SchemaField{
			{
				Name:        "core_skills",
				Type:        "[\"string\"]",
				Description: "Primary technical or domain skills the role depends on",
				Required:    true,
			},
			{
				Name:        "tools",
				Type:        "[\"string\"]",
				Description: "Named tools, languages, platforms and frameworks",
				Required:    true,
			},
			{
				Name:        "soft_skills",
				Type:        "[\"string\"]",
				Description: "Interpersonal and working-style skills",
				Required:    true,
			},
			{
				Name:        "experience_level",
				Type:        "\"string\"",
				Description: "One of: entry, mid, senior, lead, unspecified",
				Required:    true,
			},
		},
	}
}
