// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"unicode/utf8"

	"github.com/mdhender/brackets/pipelines/stages"
)

type uploadResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Name       string `json:"name,omitempty"`
	DocumentID int64  `json:"documentId,omitempty"`
	UUID       string `json:"uuid,omitempty"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Upload stores a notation file from a multipart form field named "file"
// and queues it for parsing. When a worker is configured the pipeline is
// drained first so the response carries the parse status.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSourceBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: "failed to parse form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: "no file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSourceBytes+1))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Error: "failed to read file: " + err.Error()})
		return
	} else if len(data) > maxSourceBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, uploadResponse{Error: "file too large"})
		return
	} else if !utf8.Valid(data) {
		writeJSON(w, http.StatusBadRequest, uploadResponse{Error: "file is not valid UTF-8"})
		return
	}

	name := filepath.Base(header.Filename)
	result, err := h.ingest.Ingest(r.Context(), stages.IngestRequest{Name: name, Data: data})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, uploadResponse{Error: "failed to store document: " + err.Error()})
		return
	}

	if h.worker != nil && !result.Duplicate {
		if _, _, err := h.worker.Drain(r.Context()); err != nil {
			log.Printf("upload: %s: drain: %v", name, err)
		}
	}

	resp := uploadResponse{
		Success:    true,
		Name:       name,
		DocumentID: result.DocumentID,
		UUID:       result.UUID,
		Duplicate:  result.Duplicate,
	}
	if doc, err := h.store.GetDocumentByID(r.Context(), result.DocumentID); err == nil && doc != nil {
		resp.Status = doc.Status()
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}
