// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mdhender/brackets/model"
)

const defaultListLimit = 50

// documentSummary is a document without its source and tree.
type documentSummary struct {
	ID        int64                `json:"id"`
	UUID      string               `json:"uuid"`
	Name      string               `json:"name"`
	SHA256    string               `json:"sha256"`
	Status    string               `json:"status"`
	Error     *model.DocumentError `json:"error,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	ParsedAt  *time.Time           `json:"parsedAt,omitempty"`
}

type documentDetail struct {
	*model.Document
	Status string `json:"status"`
}

// Documents lists the most recent documents. ?limit=N changes the page size.
func (h *Handlers) Documents(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	docs, err := h.store.ListDocuments(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	list := make([]documentSummary, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		list = append(list, documentSummary{
			ID:        doc.ID,
			UUID:      doc.UUID,
			Name:      doc.Name,
			SHA256:    doc.SHA256,
			Status:    doc.Status(),
			Error:     doc.Error,
			CreatedAt: doc.CreatedAt,
			ParsedAt:  doc.ParsedAt,
		})
	}
	writeJSON(w, http.StatusOK, list)
}

// DocumentDetail returns one document by numeric ID or UUID.
func (h *Handlers) DocumentDetail(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("id")

	var doc *model.Document
	var err error
	if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil {
		doc, err = h.store.GetDocumentByID(r.Context(), id)
	} else {
		doc, err = h.store.GetDocumentByUUID(r.Context(), key)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	} else if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	if doc.Tree != nil && !json.Valid(doc.Tree) {
		writeError(w, http.StatusInternalServerError, "stored tree is corrupt")
		return
	}
	writeJSON(w, http.StatusOK, documentDetail{Document: doc, Status: doc.Status()})
}

type statsResponse struct {
	Documents int                         `json:"documents"`
	Parsed    int                         `json:"parsed"`
	Failed    int                         `json:"failed"`
	Queued    int                         `json:"queued"`
	Work      map[string]model.WorkCounts `json:"work"`
}

// Stats reports document counts and the work queue by stage and status.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	summary, err := h.store.WorkSummary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get work summary")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Documents: stats.Documents,
		Parsed:    stats.Parsed,
		Failed:    stats.Failed,
		Queued:    stats.Queued,
		Work:      summary,
	})
}
