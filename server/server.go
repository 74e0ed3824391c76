// Package server exposes the job API consumed by the dashboard: submit,
// poll, health, and static artifact serving.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bizradar/jobs"
	"bizradar/models"
)

type Server struct {
	orchestrator *jobs.Orchestrator
	log          *slog.Logger
	artifactDir  string
}

func New(orchestrator *jobs.Orchestrator, artifactDir string, log *slog.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		log:          log,
		artifactDir:  artifactDir,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/status/{jobId}", s.handleStatus)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /screenshots/", http.StripPrefix("/screenshots/", http.FileServer(http.Dir(s.artifactDir))))
	return mux
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	jobID, err := s.orchestrator.Submit(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, jobs.ErrMissingBusinessType) || errors.Is(err, jobs.ErrMissingLocation) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"jobId":   jobID,
		"message": "Analysis started",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	job, ok := s.orchestrator.Status(jobID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Job not found"})
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
