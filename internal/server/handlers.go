package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/daviddd23/job-application-intelligence-engine/internal/pipeline"
	"github.com/daviddd23/job-application-intelligence-engine/internal/schemas"
	"github.com/daviddd23/job-application-intelligence-engine/internal/scoring"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

// AnalyzeRequest represents the request body for /analyze and /analyze/stream
type AnalyzeRequest struct {
	ID                   string   `json:"id,omitempty" validate:"omitempty,uuid"`
	JobText              string   `json:"job_text" validate:"required"`
	CVText               string   `json:"cv_text" validate:"required"`
	Narratives           []string `json:"narratives,omitempty" validate:"omitempty,dive,oneof=improvement_suggestions talking_points cover_letter explanation"`
	UseModelRequirements bool     `json:"use_model_requirements,omitempty"`
}

// ExtractRequest represents the request body for /extract
type ExtractRequest struct {
	Text string `json:"text" validate:"required"`
	// Kind "job" additionally partitions the skills into scoring categories.
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=job cv"`
}

// ExtractResponse represents the response for /extract
type ExtractResponse struct {
	Skills     types.SkillSet   `json:"skills"`
	Categories *types.JobSkills `json:"categories,omitempty"`
}

// ScoreRequest represents the request body for /score. Each side is given either as
// text or as an explicit skill list; lists are canonicalized before scoring.
type ScoreRequest struct {
	JobText   string   `json:"job_text,omitempty" validate:"required_without=JobSkills"`
	CVText    string   `json:"cv_text,omitempty" validate:"required_without=CVSkills"`
	JobSkills []string `json:"job_skills,omitempty"`
	CVSkills  []string `json:"cv_skills,omitempty"`
}

// ScoreResponse represents the response for /score
type ScoreResponse struct {
	JobSkills types.JobSkills `json:"job_skills"`
	CVSkills  types.SkillSet  `json:"cv_skills"`
	Report    types.FitReport `json:"report"`
}

// handleAnalyze runs a full analysis and returns the result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAnalyze(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.logger.Printf("[analyze] failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleAnalyzeStream runs an analysis and streams progress as Server-Sent Events.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAnalyze(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	req.OnProgress = sse.WriteProgress
	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.logger.Printf("[analyze] stream failed: %v", err)
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}
	sse.WriteResult(result)
}

// handleExtract returns the skills found in a single text.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ex := s.analyzer.Extractor
	resp := ExtractResponse{Skills: ex.Extract(req.Text)}
	if req.Kind == "job" {
		job := ex.Partition(resp.Skills)
		resp.Categories = &job
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleScore scores job skills against CV skills without any model calls.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	ex := s.analyzer.Extractor
	jobSet := ex.Extract(req.JobText)
	if len(req.JobSkills) > 0 {
		jobSet = ex.CanonicalSet(req.JobSkills)
	}
	cvSet := ex.Extract(req.CVText)
	if len(req.CVSkills) > 0 {
		cvSet = ex.CanonicalSet(req.CVSkills)
	}

	job := ex.Partition(jobSet)
	report, err := scoring.Score(job, cvSet, s.analyzer.Options)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, ScoreResponse{JobSkills: job, CVSkills: cvSet, Report: report})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"narratives": s.analyzer.Generator != nil,
		"model_reqs": s.analyzer.Requirements != nil,
	})
}

// decode reads a size-limited JSON body into dst and validates its struct tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationMessage(err)
	}
	return nil
}

// decodeAnalyze checks the body against the shared analysis request schema, then
// converts it to a pipeline request.
func (s *Server) decodeAnalyze(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	body, err := readBody(w, r)
	if err != nil {
		return pipeline.Request{}, err
	}

	var req AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return pipeline.Request{}, &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	if err := schemas.Validate(schemas.AnalysisRequest, body); err != nil {
		return pipeline.Request{}, validationMessage(err)
	}
	if err := s.validate.Struct(req); err != nil {
		return pipeline.Request{}, validationMessage(err)
	}
	return req.toPipeline()
}

func (req AnalyzeRequest) toPipeline() (pipeline.Request, error) {
	out := pipeline.Request{
		JobText:              req.JobText,
		CVText:               req.CVText,
		UseModelRequirements: req.UseModelRequirements,
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return out, &ErrValidation{Field: "id", Message: "must be a UUID"}
		}
		out.ID = id
	}
	for _, name := range req.Narratives {
		kind, err := types.ParseNarrativeKind(name)
		if err != nil {
			return out, &ErrValidation{Field: "narratives", Message: err.Error()}
		}
		out.Narratives = append(out.Narratives, kind)
	}
	return out, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Message: "request body too large"}
		}
		return nil, &ErrValidation{Message: "failed to read request body"}
	}
	return body, nil
}
