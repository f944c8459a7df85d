// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mdhender/brackets"
	"github.com/mdhender/brackets/model"
)

// maxSourceBytes limits request bodies.
const maxSourceBytes = 100 << 10

type parseRequest struct {
	Source string `json:"source"`
}

type parseResponse struct {
	Success bool                 `json:"success"`
	Tree    *brackets.Sequence   `json:"tree,omitempty"`
	Source  string               `json:"source,omitempty"` // canonical notation for the tree
	Error   *model.DocumentError `json:"error,omitempty"`
}

// Parse parses the source in the request without storing it.
// A source that does not parse is still a successful request; the
// response carries the error and its position.
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	body := http.MaxBytesReader(w, r.Body, maxSourceBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "source too large")
			return
		} else if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty request")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	seq, err := h.parser.ParseSequentialNodes(req.Source)
	if err != nil {
		var perr *brackets.Error
		if !errors.As(err, &perr) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, parseResponse{
			Error: &model.DocumentError{
				Code:    perr.Kind.Code(),
				Message: perr.Error(),
				Line:    perr.Pos.Line,
				Column:  perr.Pos.Column,
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Success: true,
		Tree:    &seq,
		Source:  brackets.Source(seq.Contents...),
	})
}
