// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package model

import "context"

// Store is the persistence layer used by the pipeline and the web server.
type Store interface {
	// documents

	InsertDocument(ctx context.Context, doc *Document) (int64, error)
	GetDocumentByID(ctx context.Context, id int64) (*Document, error)
	GetDocumentByUUID(ctx context.Context, uuid string) (*Document, error)
	GetDocumentBySHA256(ctx context.Context, sha256 string) (*Document, error)
	ListDocuments(ctx context.Context, limit int) ([]Document, error)
	UpdateDocumentResult(ctx context.Context, doc *Document) error

	// stages

	InsertWork(ctx context.Context, work *Work) (int64, error)
	ClaimWork(ctx context.Context, stage, workerID string) (*Work, error)
	FinishWork(ctx context.Context, id int64, result WorkResult) error
	RequeueFailedWork(ctx context.Context, stage string) (int, error)
	ListFailedWork(ctx context.Context, stage string) ([]Work, error)
	WorkSummary(ctx context.Context) (map[string]WorkCounts, error)

	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats holds store statistics.
type Stats struct {
	Documents int
	Parsed    int
	Failed    int
	Queued    int
}
