// Package worker consumes analysis requests from RabbitMQ and publishes status updates.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/daviddd23/job-application-intelligence-engine/internal/ingestion"
	"github.com/daviddd23/job-application-intelligence-engine/internal/pipeline"
	"github.com/daviddd23/job-application-intelligence-engine/internal/schemas"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// Update statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// DefaultTimeout bounds one message, including source downloads and narratives.
const DefaultTimeout = 3 * time.Minute

// Message is an analysis request as it arrives on the queue. Either side may be given
// as text or as a remote source (s3:// or http(s) URL) resolved before analysis.
type Message struct {
	ID                   string   `json:"id,omitempty"`
	JobText              string   `json:"job_text,omitempty"`
	CVText               string   `json:"cv_text,omitempty"`
	JobSource            string   `json:"job_source,omitempty"`
	CVSource             string   `json:"cv_source,omitempty"`
	Narratives           []string `json:"narratives,omitempty"`
	UseModelRequirements bool     `json:"use_model_requirements,omitempty"`
}

// analysisRequest is the resolved request checked against the shared schema.
type analysisRequest struct {
	ID                   string   `json:"id,omitempty"`
	JobText              string   `json:"job_text"`
	CVText               string   `json:"cv_text"`
	Narratives           []string `json:"narratives,omitempty"`
	UseModelRequirements bool     `json:"use_model_requirements,omitempty"`
}

// Update is published to the updates exchange under analysis.<id>.
type Update struct {
	AnalysisID string           `json:"analysis_id"`
	Status     string           `json:"status"`
	Step       string           `json:"step,omitempty"`
	Message    string           `json:"message"`
	Result     *pipeline.Result `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Publisher delivers status updates.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, update Update) error
}

// SourceLoader resolves a remote source into cleaned text.
type SourceLoader interface {
	Load(ctx context.Context, source string) (*ingestion.Document, error)
}

// MessageError marks a message that can never succeed and should not be redelivered.
type MessageError struct {
	Message string
	Cause   error
}

func (e *MessageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid message: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid message: %s", e.Message)
}

func (e *MessageError) Unwrap() error {
	return e.Cause
}

// Processor handles one message at a time; a single Processor is shared by all consumers.
type Processor struct {
	Analyzer  *pipeline.Analyzer
	Loader    SourceLoader // optional; required only for messages with sources
	Publisher Publisher
	Timeout   time.Duration
	Logger    *log.Logger
}

// RoutingKey returns the topic routing key for an analysis.
func RoutingKey(id string) string {
	return "analysis." + id
}

func (p *Processor) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

// Handle processes a raw message body. Every message that carries a usable ID ends with
// a completed or failed update. The returned error is a *MessageError for messages that
// are malformed and nil once the outcome has been published.
func (p *Processor) Handle(ctx context.Context, body []byte) error {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return &MessageError{Message: "body is not JSON", Cause: err}
	}

	id := uuid.New()
	if msg.ID != "" {
		parsed, err := uuid.Parse(msg.ID)
		if err != nil {
			return &MessageError{Message: fmt.Sprintf("id %q is not a UUID", msg.ID), Cause: err}
		}
		id = parsed
	}
	key := RoutingKey(id.String())

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.publish(ctx, key, Update{AnalysisID: id.String(), Status: StatusProcessing, Message: "analysis started"})
	p.logger().Printf("[worker] id=%s processing", id)

	req, err := p.resolve(ctx, id, msg)
	if err != nil {
		p.fail(ctx, key, id, err)
		return nil
	}
	req.OnProgress = func(e pipeline.ProgressEvent) {
		p.publish(ctx, key, Update{AnalysisID: id.String(), Status: StatusProcessing, Step: e.Step, Message: e.Message})
	}

	result, err := p.Analyzer.Analyze(ctx, req)
	if err != nil {
		p.fail(ctx, key, id, err)
		return nil
	}

	p.publish(ctx, key, Update{
		AnalysisID: id.String(),
		Status:     StatusCompleted,
		Message:    "analysis completed",
		Result:     result,
	})
	p.logger().Printf("[worker] id=%s completed score=%.1f", id, result.Report.Score)
	return nil
}

// resolve loads any remote sources and validates the resulting request.
func (p *Processor) resolve(ctx context.Context, id uuid.UUID, msg Message) (pipeline.Request, error) {
	jobText, err := p.text(ctx, msg.JobText, msg.JobSource)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("job: %w", err)
	}
	cvText, err := p.text(ctx, msg.CVText, msg.CVSource)
	if err != nil {
		return pipeline.Request{}, fmt.Errorf("cv: %w", err)
	}

	doc, err := json.Marshal(analysisRequest{
		ID:                   id.String(),
		JobText:              jobText,
		CVText:               cvText,
		Narratives:           msg.Narratives,
		UseModelRequirements: msg.UseModelRequirements,
	})
	if err != nil {
		return pipeline.Request{}, err
	}
	if err := schemas.Validate(schemas.AnalysisRequest, doc); err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{
		ID:                   id,
		JobText:              jobText,
		CVText:               cvText,
		UseModelRequirements: msg.UseModelRequirements,
	}
	for _, name := range msg.Narratives {
		kind, err := types.ParseNarrativeKind(name)
		if err != nil {
			return pipeline.Request{}, err
		}
		req.Narratives = append(req.Narratives, kind)
	}
	return req, nil
}

// text returns inline text, or loads source when no text is given.
// Only remote sources are accepted; queue messages never read the local filesystem.
func (p *Processor) text(ctx context.Context, inline, source string) (string, error) {
	if inline != "" || source == "" {
		return inline, nil
	}
	switch ingestion.DetectKind(source) {
	case ingestion.KindS3, ingestion.KindURL:
	default:
		return "", fmt.Errorf("source %q must be an s3:// or http(s) location", source)
	}
	if p.Loader == nil {
		return "", fmt.Errorf("no source loader configured for %s", source)
	}
	doc, err := p.Loader.Load(ctx, source)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

func (p *Processor) fail(ctx context.Context, key string, id uuid.UUID, err error) {
	p.logger().Printf("[worker] id=%s failed: %v", id, err)
	// the request context may be exhausted; the failure must still go out
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	p.publish(pubCtx, key, Update{
		AnalysisID: id.String(),
		Status:     StatusFailed,
		Message:    "analysis failed",
		Error:      err.Error(),
	})
}

func (p *Processor) publish(ctx context.Context, key string, update Update) {
	if p.Publisher == nil {
		return
	}
	update.Timestamp = time.Now().UTC()
	if err := p.Publisher.Publish(ctx, key, update); err != nil {
		p.logger().Printf("[worker] failed to publish %s update for %s: %v", update.Status, update.AnalysisID, err)
	}
}
