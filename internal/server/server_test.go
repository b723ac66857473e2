package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddd23/job-application-intelligence-engine/internal/config"
	"github.com/daviddd23/job-application-intelligence-engine/internal/narrative"
	"github.com/daviddd23/job-application-intelligence-engine/internal/pipeline"
	"github.com/daviddd23/job-application-intelligence-engine/internal/schemas"
	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/server/ratelimit"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

func newTestAnalyzer(t *testing.T) *pipeline.Analyzer {
	t.Helper()
	engine, err := config.LoadEngine("")
	require.NoError(t, err)
	return pipeline.NewAnalyzer(engine, log.New(io.Discard, "", 0))
}

func newTestServer(t *testing.T, analyzer *pipeline.Analyzer, limits *ratelimit.Config) http.Handler {
	t.Helper()
	if limits == nil {
		limits = &ratelimit.Config{Enabled: false}
	}
	s, err := New(analyzer, Config{Port: 0, RateLimit: limits, Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresAnalyzer(t *testing.T) {
	_, err := New(nil, Config{})
	assert.Error(t, err)

	_, err = New(&pipeline.Analyzer{}, Config{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["narratives"])
}

func TestAnalyze(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodPost, "/analyze", `{"job_text":"Python, SQL, Excel","cv_text":"Python Excel"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, 66.7, result.Report.Score)
	assert.Equal(t, []string{"sql"}, result.Report.Missing())
	assert.Equal(t, pipeline.SourceDeterministic, result.RequirementsSource)
}

func TestAnalyze_WithIDAndNarratives(t *testing.T) {
	a := newTestAnalyzer(t)
	a.Generator = &narrative.StubGenerator{}
	h := newTestServer(t, a, nil)

	id := uuid.New()
	body := fmt.Sprintf(`{"id":%q,"job_text":"sql","cv_text":"sql","narratives":["explanation","cover_letter"]}`, id)
	rec := do(h, http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, id, result.ID)
	require.Len(t, result.Narratives, 2)
	assert.Equal(t, types.NarrativeExplanation, result.Narratives[0].Kind)
	assert.True(t, result.Narratives[0].Available)
}

func TestAnalyze_BadRequests(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{"job_text":`, "invalid request body"},
		{"missing cv", `{"job_text":"sql"}`, "cv_text"},
		{"empty job", `{"job_text":"","cv_text":"sql"}`, "job_text"},
		{"unknown narrative", `{"job_text":"sql","cv_text":"sql","narratives":["poem"]}`, "narratives"},
		{"bad id", `{"id":"nope","job_text":"sql","cv_text":"sql"}`, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.wantErr)
		})
	}
}

func TestAnalyze_InvalidConfiguration(t *testing.T) {
	a := newTestAnalyzer(t)
	a.Options = a.Options.WithWeights(scoring.CategoryWeights{{Name: "core", Weight: 40}})
	h := newTestServer(t, a, nil)

	rec := do(h, http.MethodPost, "/analyze", `{"job_text":"sql","cv_text":"sql"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid configuration")
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	big := fmt.Sprintf(`{"job_text":%q,"cv_text":"sql"}`, strings.Repeat("a", maxBodyBytes+1))
	rec := do(h, http.MethodPost, "/analyze", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")
}

func TestAnalyzeStream(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodPost, "/analyze/stream", `{"job_text":"python sql","cv_text":"python"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	out := rec.Body.String()
	assert.Contains(t, out, "event: progress\ndata: ")
	assert.Contains(t, out, `"step":"score"`)
	assert.Contains(t, out, "event: result\ndata: ")
	assert.Less(t, strings.Index(out, "event: progress"), strings.Index(out, "event: result"))
}

func TestAnalyzeStream_BadRequest(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodPost, "/analyze/stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "event:")
}

func TestExtract(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodPost, "/extract", `{"text":"Python, SQL and python","kind":"job"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"python", "sql"}, resp.Skills.Tokens())
	assert.Equal(t, 2, resp.Skills.Count("python"))
	require.NotNil(t, resp.Categories)
	assert.Equal(t, []string{"core"}, resp.Categories.Names())
}

func TestExtract_Validation(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodPost, "/extract", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "text")

	rec = do(h, http.MethodPost, "/extract", `{"text":"sql","kind":"resume"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "kind")
}

func TestScore(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	tests := []struct {
		name      string
		body      string
		wantScore float64
		wantMiss  []string
	}{
		{"texts", `{"job_text":"python sql excel","cv_text":"python excel"}`, 66.7, []string{"sql"}},
		{"lists", `{"job_skills":["SQL","Python"],"cv_skills":["sql"]}`, 50.0, []string{"python"}},
		{"mixed", `{"job_skills":["sql"],"cv_text":"I use SQL daily"}`, 100.0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/score", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp ScoreResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantScore, resp.Report.Score)
			assert.ElementsMatch(t, tt.wantMiss, resp.Report.Missing())
		})
	}
}

func TestScore_RequiresBothSides(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodPost, "/score", `{"job_text":"sql"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodGet, "/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, newTestAnalyzer(t), nil)

	rec := do(h, http.MethodOptions, "/analyze", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRateLimit(t *testing.T) {
	limits := &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/score", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	}
	h := newTestServer(t, newTestAnalyzer(t), limits)

	rec := do(h, http.MethodPost, "/score", `{"job_text":"sql","cv_text":"sql"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(h, http.MethodPost, "/score", `{"job_text":"sql","cv_text":"sql"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	rec = do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", &ErrValidation{Field: "text", Message: "required"}, http.StatusBadRequest},
		{"schema", &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "cv_text", Message: "required"}}}, http.StatusBadRequest},
		{"invalid configuration", types.NewInvalidConfiguration("weights", "sum to 90"), http.StatusUnprocessableEntity},
		{"wrapped invalid configuration", fmt.Errorf("scoring: %w", types.NewInvalidConfiguration("", "bad")), http.StatusUnprocessableEntity},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrValidation_Error(t *testing.T) {
	assert.Equal(t, "validation error: text - required", (&ErrValidation{Field: "text", Message: "required"}).Error())
	assert.Equal(t, "validation error: bad body", (&ErrValidation{Message: "bad body"}).Error())
}
