// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"fmt"

	"github.com/mdhender/brackets"
)

// ErrReadFile is returned when reading a source file fails.
type ErrReadFile struct {
	Op   string // stat, read, walk
	Path string
	Err  error
}

func (e *ErrReadFile) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ErrReadFile) Unwrap() error {
	return e.Err
}

// ErrWriteFile is returned when writing an output file fails.
type ErrWriteFile struct {
	Op   string // mkdir, write
	Path string
	Err  error
}

func (e *ErrWriteFile) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ErrWriteFile) Unwrap() error {
	return e.Err
}

// ErrDatabase is returned when database operations fail.
type ErrDatabase struct {
	Op  string
	Err error
}

func (e *ErrDatabase) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ErrDatabase) Unwrap() error {
	return e.Err
}

// ErrParseSyntax is returned when a document does not parse.
type ErrParseSyntax struct {
	Name string
	Err  *brackets.Error
}

func (e *ErrParseSyntax) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s:%v", e.Name, e.Err)
}

func (e *ErrParseSyntax) Unwrap() error {
	return e.Err
}

// ErrCorruptTree is returned when a stored tree can't be decoded.
type ErrCorruptTree struct {
	DocumentID int64
	Err        error
}

func (e *ErrCorruptTree) Error() string {
	return fmt.Sprintf("document %d: corrupt tree: %v", e.DocumentID, e.Err)
}

func (e *ErrCorruptTree) Unwrap() error {
	return e.Err
}

// Error code constants for database storage.
const (
	ErrCodeReadFile    = "READ_FILE"
	ErrCodeWriteFile   = "WRITE_FILE"
	ErrCodeDatabase    = "DATABASE"
	ErrCodeParseSyntax = "PARSE_SYNTAX_ERROR"
	ErrCodeCorruptTree = "CORRUPT_TREE"
	ErrCodeUnknown     = "UNKNOWN"
)

// ErrorCode returns the error code string for a given error.
func ErrorCode(err error) string {
	switch err.(type) {
	case *ErrReadFile:
		return ErrCodeReadFile
	case *ErrWriteFile:
		return ErrCodeWriteFile
	case *ErrDatabase:
		return ErrCodeDatabase
	case *ErrParseSyntax:
		return ErrCodeParseSyntax
	case *ErrCorruptTree:
		return ErrCodeCorruptTree
	default:
		return ErrCodeUnknown
	}
}
