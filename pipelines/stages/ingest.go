// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mdhender/brackets/model"
	"github.com/spf13/afero"
)

// IngestService loads notation sources into the pipeline.
type IngestService struct {
	store   IngestStore
	dataDir string
	fs      afero.Fs
}

// IngestStore defines the store operations needed by IngestService.
type IngestStore interface {
	GetDocumentBySHA256(ctx context.Context, sha256 string) (*model.Document, error)
	InsertDocument(ctx context.Context, doc *model.Document) (int64, error)
	InsertWork(ctx context.Context, work *model.Work) (int64, error)
}

// NewIngestService creates a new IngestService.
func NewIngestService(store IngestStore, dataDir string) *IngestService {
	return &IngestService{
		store:   store,
		dataDir: dataDir,
		fs:      afero.NewOsFs(),
	}
}

// SetFS sets the filesystem for testing.
func (s *IngestService) SetFS(fs afero.Fs) {
	s.fs = fs
}

// IngestRequest contains the parameters for ingesting a source.
type IngestRequest struct {
	Name string // file name or caller supplied label
	Data []byte
}

// IngestResult contains the result of an ingest operation.
type IngestResult struct {
	Name       string
	DocumentID int64
	UUID       string
	WorkID     int64
	Duplicate  bool // true if the source was already ingested (idempotent no-op)
}

// Ingest stores a single source and queues it for parsing.
// Returns IngestResult with Duplicate=true if the same bytes were ingested before.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	hash := sha256.Sum256(req.Data)
	hashStr := hex.EncodeToString(hash[:])

	existing, err := s.store.GetDocumentBySHA256(ctx, hashStr)
	if err != nil {
		return nil, &ErrDatabase{Op: "check duplicate", Err: err}
	}
	if existing != nil {
		return &IngestResult{
			Name:       req.Name,
			DocumentID: existing.ID,
			UUID:       existing.UUID,
			Duplicate:  true,
		}, nil
	}

	doc := &model.Document{
		Name:      req.Name,
		SHA256:    hashStr,
		Source:    string(req.Data),
		CreatedAt: time.Now().UTC(),
	}
	docID, err := s.store.InsertDocument(ctx, doc)
	if err != nil {
		return nil, &ErrDatabase{Op: "insert document", Err: err}
	}

	work := &model.Work{
		DocumentID:  docID,
		Stage:       model.WorkStageParse,
		Status:      model.WorkStatusQueued,
		Attempt:     0,
		AvailableAt: time.Now().UTC(),
	}
	workID, err := s.store.InsertWork(ctx, work)
	if err != nil {
		return nil, &ErrDatabase{Op: "insert work", Err: err}
	}

	return &IngestResult{
		Name:       req.Name,
		DocumentID: docID,
		UUID:       doc.UUID,
		WorkID:     workID,
	}, nil
}

// IngestFile reads a file relative to the data directory and ingests it.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*IngestResult, error) {
	fullPath := filepath.Join(s.dataDir, path)
	data, err := afero.ReadFile(s.fs, fullPath)
	if err != nil {
		return nil, &ErrReadFile{Op: "read", Path: fullPath, Err: err}
	}
	return s.Ingest(ctx, IngestRequest{Name: filepath.ToSlash(path), Data: data})
}

// IngestDir ingests every file under the data directory with the given
// extension, in lexical order. It stops at the first error and returns the
// results collected so far.
func (s *IngestService) IngestDir(ctx context.Context, ext string) ([]IngestResult, error) {
	ext = strings.ToLower(ext)
	var paths []string
	err := afero.Walk(s.fs, s.dataDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.ToLower(filepath.Ext(path)) != ext {
			return nil
		}
		rel, err := filepath.Rel(s.dataDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, &ErrReadFile{Op: "walk", Path: s.dataDir, Err: err}
	}
	sort.Strings(paths)

	var results []IngestResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.IngestFile(ctx, path)
		if err != nil {
			return results, fmt.Errorf("ingest %s: %w", path, err)
		}
		results = append(results, *result)
	}
	return results, nil
}
