// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mdhender/brackets"
	"github.com/mdhender/brackets/model"
	"github.com/mdhender/brackets/pipelines/stages"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store  model.Store
	parser *brackets.Parser
	ingest *stages.IngestService
	worker *stages.WorkerService // optional, runs uploaded documents through the pipeline
}

// New creates a new Handlers with the given store and parser.
// Uploads are queued for an external worker unless SetWorker is called.
func New(s model.Store, parser *brackets.Parser) *Handlers {
	if parser == nil {
		parser, _ = brackets.New()
	}
	return &Handlers{
		store:  s,
		parser: parser,
		ingest: stages.NewIngestService(s, ""),
	}
}

// SetWorker makes uploads drain the pipeline before responding.
func (h *Handlers) SetWorker(worker *stages.WorkerService) {
	h.worker = worker
}

// Routes registers the API on mux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("POST /api/parse", h.Parse)
	mux.HandleFunc("GET /api/documents", h.Documents)
	mux.HandleFunc("POST /api/documents", h.Upload)
	mux.HandleFunc("GET /api/documents/{id}", h.DocumentDetail)
	mux.HandleFunc("GET /api/stats", h.Stats)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
