package ingestion

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// docxParagraphEnd turns WordprocessingML paragraph and break markup into whitespace.
var docxParagraphEnd = strings.NewReplacer("</w:p>", "\n", "<w:tab/>", "\t", "<w:br/>", "\n")

// ExtractPDFText returns the plain text of every page of a PDF.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ExtractDOCXText returns the text content of a DOCX document.
func ExtractDOCXText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return stripXML(docxParagraphEnd.Replace(doc.Editable().GetContent())), nil
}

// stripXML drops anything between angle brackets and unescapes the basic entities.
func stripXML(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'").Replace(sb.String())
}

// ExtractByContentType decodes data according to its MIME type.
func ExtractByContentType(contentType string, data []byte) (string, Kind, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch mediaType {
	case "text/plain", "":
		return string(data), KindText, nil
	case "text/markdown":
		return string(data), KindMarkdown, nil
	case mimePDF:
		text, err := ExtractPDFText(data)
		return text, KindPDF, err
	case mimeDOCX:
		text, err := ExtractDOCXText(data)
		return text, KindDOCX, err
	default:
		return "", "", fmt.Errorf("%w: content type %s", ErrUnsupportedSource, contentType)
	}
}

// ExtractByKind decodes data of a known file kind.
func ExtractByKind(kind Kind, data []byte) (string, error) {
	switch kind {
	case KindText, KindMarkdown:
		return string(data), nil
	case KindPDF:
		return ExtractPDFText(data)
	case KindDOCX:
		return ExtractDOCXText(data)
	default:
		return "", fmt.Errorf("%w: document kind %s", ErrUnsupportedSource, kind)
	}
}
