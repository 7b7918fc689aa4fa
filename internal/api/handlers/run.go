package handlers

import (
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RunHandler struct {
	svc *service.SynthesisService
}

func NewRunHandler(svc *service.SynthesisService) *RunHandler {
	return &RunHandler{svc: svc}
}

// synthesizeRequest overrides individual synthesis parameters for one run.
// Omitted fields keep the server defaults.
type synthesizeRequest struct {
	InitialThreshold  *float64 `json:"initial_threshold,omitempty"`
	ThresholdStep     *float64 `json:"threshold_step,omitempty"`
	MaxPasses         *int     `json:"max_passes,omitempty"`
	CascadeThresholds []int    `json:"cascade_thresholds,omitempty"`
	MinOutputs        *int     `json:"min_outputs,omitempty"`
	CoreMin           *int     `json:"core_min,omitempty"`
	DomainMin         *int     `json:"domain_min,omitempty"`
	Replay            string   `json:"replay,omitempty"`
}

func (req synthesizeRequest) apply(cfg domain.SynthesisConfig) domain.SynthesisConfig {
	if req.InitialThreshold != nil {
		cfg.InitialThreshold = *req.InitialThreshold
	}
	if req.ThresholdStep != nil {
		cfg.ThresholdStep = *req.ThresholdStep
	}
	if req.MaxPasses != nil {
		cfg.MaxPasses = *req.MaxPasses
	}
	if len(req.CascadeThresholds) > 0 {
		cfg.CascadeThresholds = req.CascadeThresholds
	}
	if req.MinOutputs != nil {
		cfg.MinOutputs = *req.MinOutputs
	}
	if req.CoreMin != nil {
		cfg.Tiers.CoreMin = *req.CoreMin
	}
	if req.DomainMin != nil {
		cfg.Tiers.DomainMin = *req.DomainMin
	}
	if req.Replay != "" {
		cfg.Replay = domain.ReplayPolicy(req.Replay)
	}
	return cfg
}

func (h *RunHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := req.apply(h.svc.Config())
	run, err := h.svc.Synthesize(r.Context(), &cfg)
	if err != nil {
		writeServiceError(w, err, "synthesis failed")
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

func (h *RunHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get run")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

type runsResponse struct {
	Runs  []domain.Run `json:"runs"`
	Count int          `json:"count"`
}

func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	runs, err := h.svc.ListRuns(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}

	writeJSON(w, http.StatusOK, runsResponse{Runs: runs, Count: len(runs)})
}

func (h *RunHandler) Provenance(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	axiomID, err := uuid.Parse(chi.URLParam(r, "axiomID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid axiom id")
		return
	}

	prov, err := h.svc.Provenance(r.Context(), runID, axiomID)
	if err != nil {
		writeServiceError(w, err, "failed to load provenance")
		return
	}

	writeJSON(w, http.StatusOK, prov)
}
