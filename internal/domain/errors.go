package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that carry their own bridge status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrValidation     = errors.New("validation failed")
	ErrInvalidArchive = errors.New("invalid backup archive")
	ErrIO             = errors.New("storage unavailable")
	ErrParse          = errors.New("stored document is malformed")
	ErrUnauthorized   = errors.New("unauthorized")
)

type (
	// ValidationError indicates malformed input from the front end
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates a missing or rejected bridge session token
	UnauthorizedError struct {
		Message string
	}
)

func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// ConflictError reports an entry id that already lives in the other collection.
type ConflictError struct {
	Message    string
	Collection string // collection holding the conflicting entry
	EntryID    string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidArchiveError describes why an archive cannot be imported.
type InvalidArchiveError struct {
	Path    string
	Missing []string // required entries absent from the archive
	Reason  string
}

func (e *InvalidArchiveError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid backup file: missing %v", e.Missing)
	}
	return "invalid backup file: " + e.Reason
}

func (e *InvalidArchiveError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *InvalidArchiveError) Is(target error) bool {
	return target == ErrInvalidArchive
}

// StorageError wraps a failure reading, parsing or writing a document.
// Kind is ErrIO or ErrParse.
type StorageError struct {
	Op       string // read, write, lock, ...
	Document string
	Kind     error
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Document, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == e.Kind
}

func (e *StorageError) StatusCode() int { return http.StatusInternalServerError }

// NewIOError wraps err as an unreadable/unwritable document failure.
func NewIOError(op, document string, err error) error {
	return &StorageError{Op: op, Document: document, Kind: ErrIO, Err: err}
}

// NewParseError wraps err as a malformed stored document failure.
func NewParseError(document string, err error) error {
	return &StorageError{Op: "parse", Document: document, Kind: ErrParse, Err: err}
}
