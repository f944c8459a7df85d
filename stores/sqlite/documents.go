// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdhender/brackets/model"
)

const documentColumns = `id, uuid, name, sha256, source, tree_json,
		       error_code, error_message, error_line, error_column, created_at, parsed_at`

// InsertDocument inserts a Document and returns its assigned ID.
// A UUID is generated when doc.UUID is empty.
func (s *SQLiteStore) InsertDocument(ctx context.Context, doc *model.Document) (int64, error) {
	if doc.UUID == "" {
		doc.UUID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	const query = `
		INSERT INTO documents (uuid, name, sha256, source, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		doc.UUID,
		doc.Name,
		doc.SHA256,
		doc.Source,
		millis(doc.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get document id: %w", err)
	}
	doc.ID = id
	return id, nil
}

// GetDocumentByID returns a document by ID, or nil if not found.
func (s *SQLiteStore) GetDocumentByID(ctx context.Context, id int64) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return getDocument(row, "id")
}

// GetDocumentByUUID returns a document by UUID, or nil if not found.
func (s *SQLiteStore) GetDocumentByUUID(ctx context.Context, id string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE uuid = ?`, id)
	return getDocument(row, "uuid")
}

// GetDocumentBySHA256 returns a document by SHA256 hash, or nil if not found.
func (s *SQLiteStore) GetDocumentBySHA256(ctx context.Context, sha256 string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE sha256 = ?`, sha256)
	return getDocument(row, "sha256")
}

// ListDocuments returns the most recent documents first.
// A limit of zero or less returns all of them.
func (s *SQLiteStore) ListDocuments(ctx context.Context, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// UpdateDocumentResult records the outcome of parsing a document.
// Either doc.Tree or doc.Error should be set; parsed_at is always updated.
func (s *SQLiteStore) UpdateDocumentResult(ctx context.Context, doc *model.Document) error {
	if doc.ParsedAt == nil {
		now := time.Now().UTC()
		doc.ParsedAt = &now
	}
	var code, msg sql.NullString
	var line, column sql.NullInt64
	if doc.Error != nil {
		code = sql.NullString{String: doc.Error.Code, Valid: true}
		msg = sql.NullString{String: doc.Error.Message, Valid: true}
		line = nullInt(doc.Error.Line)
		column = nullInt(doc.Error.Column)
	}
	const query = `
		UPDATE documents
		SET tree_json = ?,
		    error_code = ?,
		    error_message = ?,
		    error_line = ?,
		    error_column = ?,
		    parsed_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		nullString(string(doc.Tree)),
		code,
		msg,
		line,
		column,
		millis(*doc.ParsedAt),
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("update document: %d: %w", doc.ID, sql.ErrNoRows)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func getDocument(row *sql.Row, key string) (*model.Document, error) {
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get document by %s: %w", key, err)
	}
	return doc, nil
}

func scanDocument(row scanner) (*model.Document, error) {
	var doc model.Document
	var tree, errorCode, errorMessage sql.NullString
	var errorLine, errorColumn, parsedAt sql.NullInt64
	var createdAt int64
	if err := row.Scan(
		&doc.ID,
		&doc.UUID,
		&doc.Name,
		&doc.SHA256,
		&doc.Source,
		&tree,
		&errorCode,
		&errorMessage,
		&errorLine,
		&errorColumn,
		&createdAt,
		&parsedAt,
	); err != nil {
		return nil, err
	}
	if tree.Valid {
		doc.Tree = json.RawMessage(tree.String)
	}
	if errorCode.Valid {
		doc.Error = &model.DocumentError{
			Code:    errorCode.String,
			Message: errorMessage.String,
			Line:    int(errorLine.Int64),
			Column:  int(errorColumn.Int64),
		}
	}
	doc.CreatedAt = fromMillis(createdAt)
	doc.ParsedAt = fromNullMillis(parsedAt)
	return &doc, nil
}
