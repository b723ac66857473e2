package narrative

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// StubGenerator returns canned text without calling a model. It is used offline and in tests.
type StubGenerator struct {
	// Texts overrides the text per kind.
	Texts map[types.NarrativeKind]string
	// Errs makes the listed kinds fail.
	Errs map[types.NarrativeKind]error
	// Delay is waited out (or cut short by ctx) before answering.
	Delay time.Duration

	calls atomic.Int32
}

// Generate implements Generator.
func (s *StubGenerator) Generate(ctx context.Context, req Request) (string, error) {
	s.calls.Add(1)

	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if err, ok := s.Errs[req.Kind]; ok {
		return "", err
	}
	if text, ok := s.Texts[req.Kind]; ok {
		return text, nil
	}
	return fmt.Sprintf("%s: score %.1f, %d matched, %d missing",
		req.Kind, req.Report.Score, len(req.Report.Matched()), len(req.Report.Missing())), nil
}

// Calls returns how many times Generate ran.
func (s *StubGenerator) Calls() int {
	return int(s.calls.Load())
}
