// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mdhender/brackets/model"
	store "github.com/mdhender/brackets/stores/sqlite"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertDocument(t *testing.T, s *store.SQLiteStore, name, source string) *model.Document {
	t.Helper()
	doc := &model.Document{
		Name:   name,
		SHA256: fmt.Sprintf("sha-%s", name),
		Source: source,
	}
	if _, err := s.InsertDocument(context.Background(), doc); err != nil {
		t.Fatalf("insert document: %v", err)
	}
	return doc
}

func TestNewSQLiteStore_Isolated(t *testing.T) {
	a, b := newStore(t), newStore(t)
	insertDocument(t, a, "a.brk", "a")

	docs, err := b.ListDocuments(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected second store to be empty, got %d documents", len(docs))
	}
}

func TestInsertDocument_AssignsIDAndUUID(t *testing.T) {
	s := newStore(t)
	doc := insertDocument(t, s, "hello.brk", "hello[world]")

	if doc.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if doc.UUID == "" {
		t.Error("expected UUID to be generated")
	}
	if doc.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := s.GetDocumentByUUID(context.Background(), doc.UUID)
	if err != nil {
		t.Fatalf("get by uuid: %v", err)
	}
	if got == nil || got.ID != doc.ID || got.Source != "hello[world]" {
		t.Errorf("get by uuid: got %+v", got)
	}
	if got.Status() != model.DocumentStatusPending {
		t.Errorf("status: expected %q, got %q", model.DocumentStatusPending, got.Status())
	}
}

func TestInsertDocument_DuplicateSHA256(t *testing.T) {
	s := newStore(t)
	insertDocument(t, s, "a.brk", "a")
	_, err := s.InsertDocument(context.Background(), &model.Document{Name: "a.brk", SHA256: "sha-a.brk", Source: "a"})
	if err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if doc, err := s.GetDocumentByID(ctx, 42); err != nil || doc != nil {
		t.Errorf("by id: expected nil, nil; got %v, %v", doc, err)
	}
	if doc, err := s.GetDocumentBySHA256(ctx, "nope"); err != nil || doc != nil {
		t.Errorf("by sha256: expected nil, nil; got %v, %v", doc, err)
	}
	if doc, err := s.GetDocumentByUUID(ctx, "nope"); err != nil || doc != nil {
		t.Errorf("by uuid: expected nil, nil; got %v, %v", doc, err)
	}
}

func TestUpdateDocumentResult(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := insertDocument(t, s, "bad.brk", "[")

	doc.Error = &model.DocumentError{Code: "UNCLOSED_BRACKET", Message: "1:1: unclosed bracket", Line: 1, Column: 1}
	if err := s.UpdateDocumentResult(ctx, doc); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetDocumentByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status() != model.DocumentStatusFailed {
		t.Errorf("status: expected failed, got %q", got.Status())
	}
	if *got.Error != *doc.Error {
		t.Errorf("error: expected %+v, got %+v", *doc.Error, *got.Error)
	}

	// a later success clears the error
	doc.Error = nil
	doc.ParsedAt = nil
	doc.Tree = json.RawMessage(`{"kind":"sequence","contents":[]}`)
	if err := s.UpdateDocumentResult(ctx, doc); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = s.GetDocumentByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Error != nil {
		t.Errorf("expected error to be cleared, got %+v", got.Error)
	}
	if string(got.Tree) != string(doc.Tree) {
		t.Errorf("tree: expected %s, got %s", doc.Tree, got.Tree)
	}
	if got.Status() != model.DocumentStatusParsed {
		t.Errorf("status: expected parsed, got %q", got.Status())
	}
}

func TestUpdateDocumentResult_Missing(t *testing.T) {
	s := newStore(t)
	err := s.UpdateDocumentResult(context.Background(), &model.Document{ID: 99})
	if err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestListDocuments_NewestFirst(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"one", "two", "three"} {
		insertDocument(t, s, name, name)
	}

	docs, err := s.ListDocuments(context.Background(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != "three" || docs[1].Name != "two" {
		t.Errorf("expected three, two; got %s, %s", docs[0].Name, docs[1].Name)
	}
}

func TestClaimWork_AtomicLocking(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := insertDocument(t, s, "a.brk", "a")

	if _, err := s.InsertWork(ctx, &model.Work{
		DocumentID: doc.ID,
		Stage:      model.WorkStageParse,
		Status:     model.WorkStatusQueued,
	}); err != nil {
		t.Fatalf("insert work: %v", err)
	}

	const numWorkers = 10
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	claimedCount := 0
	var mu sync.Mutex

	for i := 0; i < numWorkers; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		go func() {
			defer wg.Done()
			work, err := s.ClaimWork(ctx, model.WorkStageParse, workerID)
			if err != nil {
				t.Errorf("%s: claim error: %v", workerID, err)
				return
			}
			if work != nil {
				mu.Lock()
				claimedCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if claimedCount != 1 {
		t.Errorf("expected exactly 1 worker to claim the job, got %d", claimedCount)
	}
}

func TestClaimWork_ReturnsNilWhenNoWork(t *testing.T) {
	s := newStore(t)
	work, err := s.ClaimWork(context.Background(), model.WorkStageParse, "test-worker")
	if err != nil {
		t.Fatalf("claim work: %v", err)
	}
	if work != nil {
		t.Errorf("expected nil work when no jobs available, got %+v", work)
	}
}

func TestClaimWork_OnlyMatchingStage(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := insertDocument(t, s, "a.brk", "a")
	if _, err := s.InsertWork(ctx, &model.Work{DocumentID: doc.ID, Stage: model.WorkStageRender, Status: model.WorkStatusQueued}); err != nil {
		t.Fatalf("insert work: %v", err)
	}

	work, err := s.ClaimWork(ctx, model.WorkStageParse, "w")
	if err != nil || work != nil {
		t.Fatalf("parse stage: expected nil, nil; got %+v, %v", work, err)
	}
	work, err = s.ClaimWork(ctx, model.WorkStageRender, "w")
	if err != nil {
		t.Fatalf("render stage: %v", err)
	}
	if work == nil {
		t.Fatal("render stage: expected a job")
	}
	if work.Status != model.WorkStatusRunning || work.Attempt != 1 {
		t.Errorf("expected running attempt 1, got %s attempt %d", work.Status, work.Attempt)
	}
	if work.ClaimedBy != "w" || work.ClaimedAt == nil {
		t.Errorf("expected claimed by w, got %q at %v", work.ClaimedBy, work.ClaimedAt)
	}
}

func TestRequeueFailedWork_RequeuesFailedJobs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := insertDocument(t, s, "a.brk", "[")

	workID, err := s.InsertWork(ctx, &model.Work{DocumentID: doc.ID, Stage: model.WorkStageParse, Status: model.WorkStatusQueued})
	if err != nil {
		t.Fatalf("insert work: %v", err)
	}
	if _, err := s.ClaimWork(ctx, model.WorkStageParse, "w"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := s.FinishWork(ctx, workID, model.WorkFailed("PARSE_SYNTAX_ERROR", "1:1: unclosed bracket")); err != nil {
		t.Fatalf("finish: %v", err)
	}

	failed, err := s.ListFailedWork(ctx, model.WorkStageParse)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed job, got %d", len(failed))
	}
	if failed[0].Document != "a.brk" {
		t.Errorf("expected document a.brk, got %q", failed[0].Document)
	}
	if failed[0].Error == nil || failed[0].Error.Code != "PARSE_SYNTAX_ERROR" {
		t.Errorf("expected error code PARSE_SYNTAX_ERROR, got %+v", failed[0].Error)
	}
	if failed[0].FinishedAt == nil {
		t.Error("expected FinishedAt to be set")
	}
	if failed[0].ClaimedBy != "" {
		t.Errorf("expected claim to be released, got %q", failed[0].ClaimedBy)
	}

	n, err := s.RequeueFailedWork(ctx, model.WorkStageParse)
	if err != nil {
		t.Fatalf("requeue: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 job requeued, got %d", n)
	}

	work, err := s.ClaimWork(ctx, model.WorkStageParse, "w")
	if err != nil {
		t.Fatalf("claim after requeue: %v", err)
	}
	if work == nil {
		t.Fatal("expected job to be claimable after requeue")
	}
	if work.Attempt != 2 {
		t.Errorf("expected attempt 2, got %d", work.Attempt)
	}
	if work.Error != nil {
		t.Errorf("expected error to be cleared, got %+v", work.Error)
	}
}

func TestFinishWork_RequiresRunningJob(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := insertDocument(t, s, "a.brk", "a")
	workID, err := s.InsertWork(ctx, &model.Work{DocumentID: doc.ID, Stage: model.WorkStageParse, Status: model.WorkStatusQueued})
	if err != nil {
		t.Fatalf("insert work: %v", err)
	}

	if err := s.FinishWork(ctx, workID, model.WorkSucceeded()); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("queued job: expected sql.ErrNoRows, got %v", err)
	}
	if _, err := s.ClaimWork(ctx, model.WorkStageParse, "w"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := s.FinishWork(ctx, workID, model.WorkResult{Status: model.WorkStatusQueued}); err == nil {
		t.Error("expected error finishing with a non-final status")
	}
	if err := s.FinishWork(ctx, workID, model.WorkSucceeded()); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := s.FinishWork(ctx, workID, model.WorkSucceeded()); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("finished job: expected sql.ErrNoRows, got %v", err)
	}
}

func TestClaimWork_OldestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	doc := insertDocument(t, s, "a.brk", "a")
	now := time.Now().UTC()
	later, _ := s.InsertWork(ctx, &model.Work{DocumentID: doc.ID, Stage: model.WorkStageParse, Status: model.WorkStatusQueued, AvailableAt: now.Add(-time.Second)})
	earlier, _ := s.InsertWork(ctx, &model.Work{DocumentID: doc.ID, Stage: model.WorkStageParse, Status: model.WorkStatusQueued, AvailableAt: now.Add(-time.Minute)})
	if _, err := s.InsertWork(ctx, &model.Work{DocumentID: doc.ID, Stage: model.WorkStageParse, Status: model.WorkStatusQueued, AvailableAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("insert work: %v", err)
	}

	for _, want := range []int64{earlier, later} {
		work, err := s.ClaimWork(ctx, model.WorkStageParse, "w")
		if err != nil || work == nil {
			t.Fatalf("claim: %v, %v", work, err)
		}
		if work.ID != want {
			t.Errorf("expected job %d, got %d", want, work.ID)
		}
	}
	// the third job is not available yet
	if work, err := s.ClaimWork(ctx, model.WorkStageParse, "w"); err != nil || work != nil {
		t.Errorf("expected nil, nil; got %+v, %v", work, err)
	}
}

func TestWorkSummaryAndStats(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a := insertDocument(t, s, "a.brk", "a")
	b := insertDocument(t, s, "b.brk", "b")
	for _, doc := range []*model.Document{a, b} {
		if _, err := s.InsertWork(ctx, &model.Work{DocumentID: doc.ID, Stage: model.WorkStageParse, Status: model.WorkStatusQueued}); err != nil {
			t.Fatalf("insert work: %v", err)
		}
	}
	work, err := s.ClaimWork(ctx, model.WorkStageParse, "w")
	if err != nil || work == nil {
		t.Fatalf("claim: %v, %v", work, err)
	}
	if err := s.FinishWork(ctx, work.ID, model.WorkSucceeded()); err != nil {
		t.Fatalf("finish: %v", err)
	}

	summary, err := s.WorkSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := model.WorkCounts{Queued: 1, Ok: 1}
	if summary[model.WorkStageParse] != want {
		t.Errorf("expected %+v, got %+v", want, summary[model.WorkStageParse])
	}
	if _, ok := summary[model.WorkStageRender]; ok {
		t.Errorf("expected no render counts, got %+v", summary)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Documents != 2 || stats.Queued != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brackets.db")

	if _, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: path}); err == nil {
		t.Fatal("expected error opening a missing database file")
	}
	if err := store.InitDatabase(path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.InitDatabase(path); err == nil {
		t.Error("expected error initializing an existing file")
	}

	s, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	insertDocument(t, s, "a.brk", "a")
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := store.CompactDatabase(path); err != nil {
		t.Fatalf("compact: %v", err)
	}
}
