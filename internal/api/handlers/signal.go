package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/distiller/internal/domain"
	"github.com/Harshitk-cp/distiller/internal/service"
)

type SignalHandler struct {
	svc *service.SynthesisService
}

func NewSignalHandler(svc *service.SynthesisService) *SignalHandler {
	return &SignalHandler{svc: svc}
}

type createSignalRequest struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

func (h *SignalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSignalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sig, err := h.svc.CreateSignal(r.Context(), req.Content, req.Source)
	if err != nil {
		writeServiceError(w, err, "failed to create signal")
		return
	}

	writeJSON(w, http.StatusCreated, sig)
}

type ingestRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

type signalsResponse struct {
	Signals []domain.Signal `json:"signals"`
	Count   int             `json:"count"`
}

// Ingest splits a block of memory text into signals.
func (h *SignalHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	signals, err := h.svc.IngestText(r.Context(), req.Text, req.Source)
	if err != nil {
		writeServiceError(w, err, "failed to ingest text")
		return
	}

	writeJSON(w, http.StatusCreated, signalsResponse{Signals: signals, Count: len(signals)})
}

func (h *SignalHandler) List(w http.ResponseWriter, r *http.Request) {
	signals, err := h.svc.ListSignals(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list signals")
		return
	}
	if signals == nil {
		signals = []domain.Signal{}
	}

	writeJSON(w, http.StatusOK, signalsResponse{Signals: signals, Count: len(signals)})
}
