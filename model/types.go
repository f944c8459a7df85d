// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package model

import (
	"encoding/json"
	"time"
)

// Document is one notation source submitted for parsing.
type Document struct {
	ID        int64           `json:"id"                 db:"id"`
	UUID      string          `json:"uuid"               db:"uuid"`
	Name      string          `json:"name"               db:"name"`
	SHA256    string          `json:"sha256"             db:"sha256"`
	Source    string          `json:"source"             db:"source"`
	Tree      json.RawMessage `json:"tree,omitempty"     db:"tree_json"` // JSON encoded sequence, nil until parsed
	Error     *DocumentError  `json:"error,omitempty"    db:"-"`
	CreatedAt time.Time       `json:"createdAt"          db:"created_at"`
	ParsedAt  *time.Time      `json:"parsedAt,omitempty" db:"parsed_at"`
}

// DocumentError is the parse failure recorded for a document.
// Line and Column are 1-based; they are zero for errors that have no position.
type DocumentError struct {
	Code    string `json:"code"             db:"error_code"`
	Message string `json:"message"          db:"error_message"`
	Line    int    `json:"line,omitempty"   db:"error_line"`
	Column  int    `json:"column,omitempty" db:"error_column"`
}

// Status summarizes where the document is in the pipeline.
func (d *Document) Status() string {
	switch {
	case d.Error != nil:
		return DocumentStatusFailed
	case d.ParsedAt != nil:
		return DocumentStatusParsed
	}
	return DocumentStatusPending
}

const (
	DocumentStatusPending = "pending"
	DocumentStatusParsed  = "parsed"
	DocumentStatusFailed  = "failed"
)

// Work is a job in the pipeline queue.
// ClaimedBy is empty unless the job is running.
type Work struct {
	ID          int64      `json:"id"                   db:"id"`
	DocumentID  int64      `json:"documentId"           db:"document_id"`
	Document    string     `json:"document,omitempty"   db:"-"`      // document name, only set by ListFailedWork
	Stage       string     `json:"stage"                db:"stage"`  // parse|render
	Status      string     `json:"status"               db:"status"` // queued|running|ok|failed
	Attempt     int        `json:"attempt"              db:"attempt"`
	AvailableAt time.Time  `json:"availableAt"          db:"available_at"`
	ClaimedBy   string     `json:"claimedBy,omitempty"  db:"claimed_by"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"  db:"claimed_at"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty" db:"finished_at"`
	Error       *WorkError `json:"error,omitempty"      db:"-"`
}

// WorkError is why a job failed.
type WorkError struct {
	Code    string `json:"code"    db:"error_code"`
	Message string `json:"message" db:"error_message"`
}

// WorkResult is what a worker reports when it finishes a job.
type WorkResult struct {
	Status string // WorkStatusOk or WorkStatusFailed
	Error  *WorkError
}

// WorkSucceeded is the result for a job that completed.
func WorkSucceeded() WorkResult {
	return WorkResult{Status: WorkStatusOk}
}

// WorkFailed is the result for a job that failed with the given code.
func WorkFailed(code, message string) WorkResult {
	return WorkResult{Status: WorkStatusFailed, Error: &WorkError{Code: code, Message: message}}
}

// WorkCounts is the number of jobs in each status for one stage.
type WorkCounts struct {
	Queued  int `json:"queued"`
	Running int `json:"running"`
	Ok      int `json:"ok"`
	Failed  int `json:"failed"`
}

const (
	WorkStageParse  = "parse"
	WorkStageRender = "render"
)

const (
	WorkStatusQueued  = "queued"
	WorkStatusRunning = "running"
	WorkStatusOk      = "ok"
	WorkStatusFailed  = "failed"
)

// WorkStages lists the stages in pipeline order.
var WorkStages = []string{WorkStageParse, WorkStageRender}
