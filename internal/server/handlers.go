package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/metrics"
	"github.com/jonathan/upskill-advisor/internal/pipeline"
	"github.com/jonathan/upskill-advisor/internal/safety"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// maxRequestBytes bounds advise request bodies.
const maxRequestBytes = 1 << 20

// RootResponse is returned by GET /
type RootResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// CatalogDebugResponse lists the loaded course ids
type CatalogDebugResponse struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// RolesDebugResponse lists the loaded role names
type RolesDebugResponse struct {
	Count int      `json:"count"`
	Roles []string `json:"roles"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, RootResponse{OK: true, Service: ServiceName, Version: s.version})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdvise screens the learner profile and returns a study plan
func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAdviseRequest(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	resp := s.advisor.Advise(r.Context(), req)
	s.recordRun(r.Context(), req, resp)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAdviseStream runs the same pipeline as handleAdvise and streams a
// "step" event per stage, then a "result" event and a "complete" event.
func (s *Server) handleAdviseStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeAdviseRequest(w, r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log := logging.Ctx(r.Context())
	advisor := s.advisor.WithProgress(func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			log.Warn().Err(err).Msg("error writing SSE event")
		}
	})

	resp := advisor.Advise(r.Context(), req)
	s.recordRun(r.Context(), req, resp)
	if err := sse.WriteEvent("result", resp); err != nil {
		log.Warn().Err(err).Msg("error writing SSE result")
		return
	}
	sse.WriteComplete(resp.RunID, "completed")
}

// decodeAdviseRequest decodes, validates, screens and redacts the request body.
func (s *Server) decodeAdviseRequest(w http.ResponseWriter, r *http.Request) (*types.AdviseRequest, error) {
	var req types.AdviseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		metrics.RecordAdvise(metrics.OutcomeRejected, 0)
		return nil, &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		metrics.RecordAdvise(metrics.OutcomeRejected, 0)
		return nil, validationError(err)
	}
	if err := safety.Check(req.Skills, req.GoalRole); err != nil {
		metrics.RecordAdvise(metrics.OutcomeRejected, 0)
		logging.Ctx(r.Context()).Warn().Msg("rejected unsafe advise input")
		return nil, err
	}

	req.Skills = safety.RedactAll(req.Skills)
	req.GoalRole = safety.RedactPII(req.GoalRole)
	return &req, nil
}

// recordRun stores the run when history is enabled. Failures are logged and
// leave RunID empty.
func (s *Server) recordRun(ctx context.Context, req *types.AdviseRequest, resp *types.AdviseResponse) {
	if !s.recordRuns {
		return
	}
	id, err := s.runs.SaveAdviceRun(ctx, req, resp)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("failed to record advice run")
		return
	}
	resp.RunID = id.String()
}

// handleGetCourse returns one catalog course
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	course, ok := s.catalog.Course(id)
	if !ok {
		s.errorFrom(w, &ErrCourseNotFound{CourseID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, course)
}

// handleGetRun returns a stored advice run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.errorFrom(w, ErrRunsDisabled)
		return
	}

	idStr := r.PathValue("id")
	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorFrom(w, &ErrValidation{Field: "id", Message: "invalid run ID format"})
		return
	}

	run, err := s.runs.GetAdviceRun(r.Context(), runID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("run_id", idStr).Msg("failed to load advice run")
		s.errorFrom(w, err)
		return
	}
	if run == nil {
		s.errorFrom(w, &ErrRunNotFound{RunID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

func (s *Server) handleDebugCatalog(w http.ResponseWriter, _ *http.Request) {
	ids := s.catalog.CourseIDs()
	s.jsonResponse(w, http.StatusOK, CatalogDebugResponse{Count: len(ids), IDs: ids})
}

func (s *Server) handleDebugRoles(w http.ResponseWriter, _ *http.Request) {
	roles := s.catalog.Roles()
	s.jsonResponse(w, http.StatusOK, RolesDebugResponse{Count: len(roles), Roles: roles})
}
