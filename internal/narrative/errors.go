package narrative

import (
	"context"
	"errors"
	"fmt"

	"github.com/daviddd23/job-application-intelligence-engine/internal/llm"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// ErrGenerationUnavailable is matched by every GenerationUnavailableError via errors.Is.
var ErrGenerationUnavailable = errors.New("narrative generation unavailable")

// Reason explains why a narrative could not be produced.
type Reason string

// Unavailability reasons.
const (
	ReasonTimeout           Reason = "timeout"
	ReasonQuota             Reason = "quota"
	ReasonMalformedResponse Reason = "malformed_response"
	ReasonProviderError     Reason = "provider_error"
	ReasonNotConfigured     Reason = "not_configured"
)

// GenerationUnavailableError reports a narrative that could not be generated.
// It never aborts an analysis; callers turn it into an unavailable Narrative.
type GenerationUnavailableError struct {
	Kind   types.NarrativeKind
	Reason Reason
	Cause  error
}

func (e *GenerationUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("narrative %s unavailable: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("narrative %s unavailable: %s", e.Kind, e.Reason)
}

func (e *GenerationUnavailableError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrGenerationUnavailable) true.
func (e *GenerationUnavailableError) Is(target error) bool {
	return target == ErrGenerationUnavailable
}

// unavailable wraps err with the reason inferred from it.
func unavailable(kind types.NarrativeKind, err error) *GenerationUnavailableError {
	var gen *GenerationUnavailableError
	if errors.As(err, &gen) {
		return gen
	}
	return &GenerationUnavailableError{Kind: kind, Reason: classify(err), Cause: err}
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case llm.IsQuotaError(err):
		return ReasonQuota
	case errors.Is(err, llm.ErrEmptyResponse):
		return ReasonMalformedResponse
	default:
		return ReasonProviderError
	}
}

// Unavailable converts a generation failure into a Narrative marked unavailable.
func Unavailable(kind types.NarrativeKind, err error) types.Narrative {
	reason := ReasonProviderError
	if err != nil {
		reason = unavailable(kind, err).Reason
	}
	return types.Narrative{Kind: kind, Available: false, Reason: string(reason)}
}
