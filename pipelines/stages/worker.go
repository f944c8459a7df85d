// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mdhender/brackets"
	"github.com/mdhender/brackets/model"
	"github.com/mdhender/brackets/renderer"
	"github.com/spf13/afero"
)

// WorkerService claims and executes pipeline jobs.
type WorkerService struct {
	store    WorkerStore
	parser   *brackets.Parser
	renderer *renderer.Renderer
	dataDir  string
	workerID string
	fs       afero.Fs
	logger   *slog.Logger
}

// WorkerStore defines the store operations needed by WorkerService.
type WorkerStore interface {
	ClaimWork(ctx context.Context, stage, workerID string) (*model.Work, error)
	FinishWork(ctx context.Context, id int64, result model.WorkResult) error
	InsertWork(ctx context.Context, work *model.Work) (int64, error)
	GetDocumentByID(ctx context.Context, id int64) (*model.Document, error)
	UpdateDocumentResult(ctx context.Context, doc *model.Document) error
}

// NewWorkerService creates a new WorkerService. Outlines are written under dataDir.
// A nil parser uses the default settings.
func NewWorkerService(store WorkerStore, parser *brackets.Parser, dataDir, workerID string) *WorkerService {
	if workerID == "" {
		hostname, _ := os.Hostname()
		workerID = fmt.Sprintf("%s:%d", hostname, os.Getpid())
	}
	if parser == nil {
		parser, _ = brackets.New()
	}
	r, _ := renderer.New(renderer.WithSummary(true))
	return &WorkerService{
		store:    store,
		parser:   parser,
		renderer: r,
		dataDir:  dataDir,
		workerID: workerID,
		fs:       afero.NewOsFs(),
	}
}

// SetFS sets the filesystem for testing.
func (w *WorkerService) SetFS(fs afero.Fs) {
	w.fs = fs
}

// SetLogger sets the logger for job tracing. Nil disables it.
func (w *WorkerService) SetLogger(logger *slog.Logger) {
	w.logger = logger
}

// ClaimJob atomically claims a queued job for the given stage.
// Returns nil if no work is available.
func (w *WorkerService) ClaimJob(ctx context.Context, stage string) (*model.Work, error) {
	return w.store.ClaimWork(ctx, stage, w.workerID)
}

// ExecuteParse parses the document source and records the tree or the error.
// On success, creates a 'render' work row for the next stage.
func (w *WorkerService) ExecuteParse(ctx context.Context, job *model.Work, doc *model.Document) error {
	seq, err := w.parser.ParseSequentialNodes(doc.Source)
	if err != nil {
		var perr *brackets.Error
		if !errors.As(err, &perr) {
			return err
		}
		doc.Tree = nil
		doc.ParsedAt = nil
		doc.Error = &model.DocumentError{
			Code:    perr.Kind.Code(),
			Message: perr.Error(),
			Line:    perr.Pos.Line,
			Column:  perr.Pos.Column,
		}
		if err := w.store.UpdateDocumentResult(ctx, doc); err != nil {
			return &ErrDatabase{Op: "record parse error", Err: err}
		}
		return &ErrParseSyntax{Name: doc.Name, Err: perr}
	}

	tree, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	doc.Tree = tree
	doc.Error = nil
	doc.ParsedAt = nil
	if err := w.store.UpdateDocumentResult(ctx, doc); err != nil {
		return &ErrDatabase{Op: "record parse result", Err: err}
	}

	return w.queueStage(ctx, model.WorkStageRender, job.DocumentID)
}

// ExecuteRender writes the outline of a parsed document to
// outlines/{uuid}.txt in the data directory.
func (w *WorkerService) ExecuteRender(ctx context.Context, job *model.Work, doc *model.Document) error {
	if doc.Tree == nil {
		return &ErrCorruptTree{DocumentID: doc.ID, Err: fmt.Errorf("document has not been parsed")}
	}
	seq, err := brackets.DecodeSequenceJSON(doc.Tree)
	if err != nil {
		return &ErrCorruptTree{DocumentID: doc.ID, Err: err}
	}

	path := w.OutlinePath(doc)
	if err := w.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ErrWriteFile{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := afero.WriteFile(w.fs, path, []byte(w.renderer.String(seq)), 0644); err != nil {
		return &ErrWriteFile{Op: "write", Path: path, Err: err}
	}
	return nil
}

// OutlinePath returns where ExecuteRender writes the outline for doc.
func (w *WorkerService) OutlinePath(doc *model.Document) string {
	return filepath.Join(w.dataDir, "outlines", doc.UUID+".txt")
}

// FinishJob records the result of a claimed job.
func (w *WorkerService) FinishJob(ctx context.Context, job *model.Work, result model.WorkResult) error {
	if err := w.store.FinishWork(ctx, job.ID, result); err != nil {
		return err
	}
	job.Status, job.Error, job.ClaimedBy = result.Status, result.Error, ""
	return nil
}

// ProcessJob claims, executes, and finishes a single job for the given stage.
// Returns (jobProcessed, error). jobProcessed is true if a job was claimed.
func (w *WorkerService) ProcessJob(ctx context.Context, stage string) (bool, error) {
	job, err := w.ClaimJob(ctx, stage)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}
	started := time.Now()

	doc, err := w.store.GetDocumentByID(ctx, job.DocumentID)
	if err != nil {
		w.FinishJob(ctx, job, model.WorkFailed(ErrCodeDatabase, fmt.Sprintf("get document: %v", err)))
		return true, fmt.Errorf("get document: %w", err)
	}
	if doc == nil {
		w.FinishJob(ctx, job, model.WorkFailed(ErrCodeDatabase, "document not found"))
		return true, fmt.Errorf("document %d not found", job.DocumentID)
	}

	var execErr error
	switch stage {
	case model.WorkStageParse:
		execErr = w.ExecuteParse(ctx, job, doc)
	case model.WorkStageRender:
		execErr = w.ExecuteRender(ctx, job, doc)
	default:
		execErr = fmt.Errorf("unknown stage: %s", stage)
	}

	if execErr != nil {
		w.debug("job failed", "job", job.ID, "stage", stage, "document", doc.Name, "err", execErr)
		if err := w.FinishJob(ctx, job, model.WorkFailed(ErrorCode(execErr), execErr.Error())); err != nil {
			return true, fmt.Errorf("finish job: %w", err)
		}
		return true, execErr
	}

	if err := w.FinishJob(ctx, job, model.WorkSucceeded()); err != nil {
		return true, fmt.Errorf("finish job: %w", err)
	}
	w.debug("job done", "job", job.ID, "stage", stage, "document", doc.Name, "elapsed", time.Since(started))

	return true, nil
}

// Drain processes jobs for every stage, in pipeline order, until none are
// left or ctx is done. Failed jobs are counted, not returned as errors.
func (w *WorkerService) Drain(ctx context.Context) (processed, failed int, err error) {
	for _, stage := range model.WorkStages {
		for {
			if err := ctx.Err(); err != nil {
				return processed, failed, err
			}
			ok, err := w.ProcessJob(ctx, stage)
			if !ok {
				if err != nil {
					return processed, failed, err
				}
				break
			}
			processed++
			if err != nil {
				failed++
			}
		}
	}
	return processed, failed, nil
}

// queueStage creates a work row for the next stage.
func (w *WorkerService) queueStage(ctx context.Context, stage string, documentID int64) error {
	work := &model.Work{
		DocumentID:  documentID,
		Stage:       stage,
		Status:      model.WorkStatusQueued,
		Attempt:     0,
		AvailableAt: time.Now().UTC(),
	}
	_, err := w.store.InsertWork(ctx, work)
	if err != nil {
		return &ErrDatabase{Op: "insert " + stage + " work", Err: err}
	}
	return nil
}

func (w *WorkerService) debug(msg string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Debug(msg, args...)
}
