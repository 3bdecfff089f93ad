package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/risk"
)

// AnalyzeRequest is the POST /api/analyze body.
type AnalyzeRequest struct {
	Package  string `json:"package"`
	Range    string `json:"range,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

// AnalyzeResponse is the POST /api/analyze reply.
type AnalyzeResponse struct {
	RunID   string       `json:"run_id"`
	Package string       `json:"package"`
	Report  *risk.Report `json:"report"`
	Graph   *graph.Graph `json:"graph"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding request"))
		return
	}
	if req.Package == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "package name is required"))
		return
	}

	root, err := s.analyzer.Resolve(r.Context(), req.Package, req.Range, req.MaxDepth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	risk.Analyze(root)
	id, _ := r.Context().Value(requestIDKey).(string)
	s.writeJSON(w, http.StatusOK, AnalyzeResponse{
		RunID:   id,
		Package: req.Package,
		Report:  risk.GenerateReport(root),
		Graph:   graph.FromTree(root),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id, _ := r.Context().Value(requestIDKey).(string)
	s.logger.Warnf("%s %s id=%s failed: %v", r.Method, r.URL.Path, id, err)
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}
