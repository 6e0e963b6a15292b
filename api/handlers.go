package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/core/compute"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint
var Version = "0.1.0"

// Health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
	}
	s.respondWithJSON(w, http.StatusOK, response)
}

// Kernel request/response types
type KernelRequest struct {
	Precision string            `json:"precision"`
	X         [][]core.Number   `json:"x"`
	Y         [][]core.Number   `json:"y,omitempty"`
	Params    core.ParamsSpec   `json:"params"`
	Store     bool              `json:"store"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type KernelResponse struct {
	ID            string          `json:"id,omitempty"`
	Params        core.ParamsSpec `json:"params"`
	Matrix        *core.Matrix    `json:"matrix"`
	ComputeTimeMs float64         `json:"compute_time_ms"`
}

// handleComputeKernel evaluates the kernel named in the path
func (s *Server) handleComputeKernel(w http.ResponseWriter, r *http.Request) {
	family, err := core.ParseFamily(mux.Vars(r)["family"])
	if err != nil {
		s.respondWithErr(w, err)
		return
	}

	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	var req KernelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Store && s.store == nil {
		s.respondWithError(w, http.StatusNotImplemented, "Result store not configured")
		return
	}

	precision, err := core.ParsePrecision(req.Precision)
	if err != nil {
		s.respondWithErr(w, err)
		return
	}

	x, err := core.PointSetFromRows(core.NumberRows(req.X), precision)
	if err != nil {
		s.respondWithErr(w, err)
		return
	}
	var y *core.PointSet
	if req.Y != nil {
		if y, err = core.PointSetFromRows(core.NumberRows(req.Y), precision); err != nil {
			s.respondWithErr(w, err)
			return
		}
	}

	if s.config.RequireFinite {
		for _, ps := range []*core.PointSet{x, y} {
			if ps == nil {
				continue
			}
			if err := core.CheckFinite(ps); err != nil {
				s.respondWithErr(w, err)
				return
			}
		}
	}

	spec := req.Params
	spec.Family = family.String()
	params, err := spec.Params()
	if err != nil {
		s.respondWithErr(w, err)
		return
	}

	start := time.Now()
	matrix, err := s.evaluator.Evaluate(r.Context(), x, y, params)
	if err != nil {
		s.respondWithErr(w, err)
		return
	}
	elapsed := time.Since(start)

	s.logger.Debug("kernel computed",
		zap.String("family", family.String()),
		zap.Int("rows", matrix.Rows()),
		zap.Int("cols", matrix.Cols()),
		zap.Int("features", x.Cols()),
		zap.Duration("duration", elapsed))

	response := KernelResponse{
		Params:        core.SpecOf(params),
		Matrix:        matrix,
		ComputeTimeMs: float64(elapsed.Microseconds()) / 1000,
	}

	if req.Store {
		result := core.Result{
			ID:        uuid.New().String(),
			Params:    response.Params,
			Matrix:    matrix,
			CreatedAt: time.Now().UTC(),
			Metadata:  req.Metadata,
		}
		if err := s.store.SaveResult(r.Context(), result); err != nil {
			s.respondWithErr(w, err)
			return
		}
		response.ID = result.ID
	}

	s.respondWithJSON(w, http.StatusOK, response)
}

// handleListResults returns the listing of stored results
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	infos, err := s.store.ListResults(r.Context())
	if err != nil {
		s.respondWithErr(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, infos)
}

// handleGetResult returns a stored result
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	result, err := s.store.LoadResult(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondWithErr(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, result)
}

// handleDeleteResult deletes a stored result
func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	if err := s.store.DeleteResult(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondWithErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats response
type StatsResponse struct {
	Device      compute.DeviceInfo       `json:"device"`
	Performance compute.PerformanceStats `json:"performance"`
	Results     int                      `json:"results"`
}

// handleStats returns execution policy statistics
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	policy := s.evaluator.Policy()
	response := StatsResponse{
		Device:      policy.Info(),
		Performance: policy.Stats(),
	}

	if s.store != nil {
		infos, err := s.store.ListResults(r.Context())
		if err != nil {
			s.respondWithErr(w, err)
			return
		}
		response.Results = len(infos)
	}

	s.respondWithJSON(w, http.StatusOK, response)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.respondWithError(w, http.StatusNotImplemented, "Result store not configured")
		return false
	}
	return true
}
