// Package ingestion turns a job description or CV source into clean text.
// Sources may be inline text, local files (txt, md, pdf, docx), http(s) URLs or s3:// objects.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/daviddd23/job-application-intelligence-engine/internal/fetch"
)

// Kind identifies how a source is read.
type Kind string

const (
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindURL      Kind = "url"
	KindS3       Kind = "s3"
)

// ErrUnsupportedSource is returned for file types the loader cannot decode.
var ErrUnsupportedSource = errors.New("unsupported source")

// SourceError reports a source that could not be loaded.
type SourceError struct {
	Source  string
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load %s: %s", e.Source, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Document is a loaded, cleaned source.
type Document struct {
	Text     string
	Metadata *Metadata
}

// DetectKind classifies a source string by scheme or file extension.
func DetectKind(source string) Kind {
	lower := strings.ToLower(source)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return KindURL
	case strings.HasPrefix(lower, "s3://"):
		return KindS3
	}
	return kindForExtension(filepath.Ext(lower))
}

func kindForExtension(ext string) Kind {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return KindMarkdown
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	default:
		return KindText
	}
}

// Loader reads sources of every supported kind.
type Loader struct {
	// FetchOptions configures URL sources; nil uses fetch.DefaultOptions.
	FetchOptions *fetch.Options
	// S3 is created lazily from S3Settings when nil.
	S3         ObjectGetter
	S3Settings S3Settings
	Logger     *log.Logger
	Verbose    bool

	mu sync.Mutex
}

// NewLoader returns a Loader with S3 settings taken from the environment.
func NewLoader(logger *log.Logger, verbose bool) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		S3Settings: S3SettingsFromEnv(),
		Logger:     logger,
		Verbose:    verbose,
	}
}

func (l *Loader) logf(format string, args ...any) {
	if !l.Verbose {
		return
	}
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

// Load reads source and returns its cleaned text.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &SourceError{Source: source, Message: "source is empty"}
	}

	kind := DetectKind(source)
	l.logf("[ingest] source=%s kind=%s", source, kind)

	switch kind {
	case KindURL:
		return l.loadURL(ctx, source)
	case KindS3:
		return l.loadS3(ctx, source)
	default:
		return l.loadFile(source, kind)
	}
}

// FromText wraps inline text as a Document.
func FromText(text string) *Document {
	cleaned := CleanText(text)
	return &Document{Text: cleaned, Metadata: NewMetadata("inline", KindText, cleaned, len(text))}
}

func (l *Loader) loadFile(path string, kind Kind) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceError{Source: path, Message: "file not found", Cause: err}
		}
		return nil, &SourceError{Source: path, Message: "failed to read file", Cause: err}
	}

	raw, err := ExtractByKind(kind, data)
	if err != nil {
		return nil, &SourceError{Source: path, Message: fmt.Sprintf("failed to decode %s", kind), Cause: err}
	}
	return l.finish(path, kind, raw, len(data)), nil
}

func (l *Loader) loadURL(ctx context.Context, source string) (*Document, error) {
	opts := l.FetchOptions
	if opts == nil {
		opts = fetch.DefaultOptions()
		opts.Logger = l.Logger
		opts.Verbose = l.Verbose
	}

	result, err := fetch.JobPage(ctx, source, opts)
	if err != nil {
		return nil, &SourceError{Source: source, Message: "fetch failed", Cause: err}
	}

	doc := l.finish(source, KindURL, result.Text, len(result.HTML))
	doc.Metadata.Platform = string(result.Platform)
	doc.Metadata.Rendered = result.Rendered
	return doc, nil
}

func (l *Loader) loadS3(ctx context.Context, source string) (*Document, error) {
	bucket, key, err := ParseS3URI(source)
	if err != nil {
		return nil, &SourceError{Source: source, Message: "invalid s3 uri", Cause: err}
	}

	client, err := l.objectGetter(ctx)
	if err != nil {
		return nil, &SourceError{Source: source, Message: "failed to create s3 client", Cause: err}
	}

	data, contentType, err := downloadObject(ctx, client, bucket, key)
	if err != nil {
		return nil, &SourceError{Source: source, Message: "download failed", Cause: err}
	}

	// The key extension wins over a generic content type such as application/octet-stream.
	kind := kindForExtension(filepath.Ext(key))
	var raw string
	if kind == KindText && contentType != "" && !strings.HasPrefix(contentType, "application/octet-stream") {
		raw, kind, err = ExtractByContentType(contentType, data)
	} else {
		raw, err = ExtractByKind(kind, data)
	}
	if err != nil {
		return nil, &SourceError{Source: source, Message: "failed to decode object", Cause: err}
	}

	doc := l.finish(source, kind, raw, len(data))
	doc.Metadata.Kind = KindS3
	return doc, nil
}

func (l *Loader) objectGetter(ctx context.Context) (ObjectGetter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.S3 == nil {
		client, err := NewS3Client(ctx, l.S3Settings)
		if err != nil {
			return nil, err
		}
		l.S3 = client
	}
	return l.S3, nil
}

func (l *Loader) finish(source string, kind Kind, raw string, rawBytes int) *Document {
	cleaned := CleanText(raw)
	l.logf("[ingest] source=%s kind=%s bytes=%d cleaned=%d", source, kind, rawBytes, len(cleaned))
	return &Document{Text: cleaned, Metadata: NewMetadata(source, kind, cleaned, rawBytes)}
}
