package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/etnz/depositplan"
	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds request bodies.
const maxBodySize = 4 << 20

// allocationRequest is the body of /api/allocate and /api/validate.
type allocationRequest struct {
	depositplan.Book
	Deposits []depositplan.Deposit `json:"deposits"`
}

type allocationResponse struct {
	RunID string `json:"runId,omitempty"`
	depositplan.Result
	Warnings depositplan.Warnings `json:"warnings,omitempty"`
}

type validationResponse struct {
	Valid    bool                 `json:"valid"`
	Errors   []string             `json:"errors,omitempty"`
	Warnings depositplan.Warnings `json:"warnings,omitempty"`
}

type runResponse struct {
	ID          string                            `json:"id"`
	CreatedAt   time.Time                         `json:"createdAt"`
	Deposits    int                               `json:"deposits"`
	Total       depositplan.Amount                `json:"total"`
	Allocations []depositplan.PortfolioAllocation `json:"allocations,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "depositplan",
	})
}

// handleAllocate validates the request and runs the allocation.
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	warnings, err := depositplan.Validate(&req.Book, req.Deposits)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res := s.allocator.Run(req.Portfolios, req.Plans, req.Deposits)
	resp := allocationResponse{Result: res, Warnings: warnings}

	if s.store != nil {
		run, err := s.store.SaveRun(r.Context(), res, len(req.Deposits), s.now())
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to save allocation run")
			s.writeError(w, http.StatusInternalServerError, "failed to save allocation run")
			return
		}
		resp.RunID = run.ID
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleValidate reports errors and warnings without allocating.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	warnings, err := depositplan.Validate(&req.Book, req.Deposits)
	resp := validationResponse{Valid: err == nil, Warnings: warnings}
	if err != nil {
		resp.Errors = strings.Split(err.Error(), "\n")
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "no store configured")
		return
	}
	runs, err := s.store.Runs(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list runs")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, runResponse{ID: run.ID, CreatedAt: run.CreatedAt, Deposits: run.Deposits, Total: run.Total})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "no store configured")
		return
	}
	id := chi.URLParam(r, "id")
	allocations, err := s.store.RunAllocations(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("run %q not found", id))
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("run", id).Msg("Failed to get run")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := runResponse{ID: id, Total: depositplan.TotalAllocated(allocations), Allocations: allocations}
	if runs, err := s.store.Runs(r.Context()); err == nil {
		for _, run := range runs {
			if run.ID == id {
				resp.CreatedAt, resp.Deposits = run.CreatedAt, run.Deposits
			}
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*allocationRequest, error) {
	var req allocationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return &req, nil
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
