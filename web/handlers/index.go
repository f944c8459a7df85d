// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"net/http"

	"github.com/mdhender/brackets"
)

type indexResponse struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	MaxDepth int    `json:"maxDepth"`
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, indexResponse{
		Name:     "brackets",
		Version:  brackets.Version().String(),
		MaxDepth: h.parser.MaxDepth(),
	})
}
