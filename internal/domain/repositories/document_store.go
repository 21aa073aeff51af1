package repositories

import (
	"context"

	"diarykeeper/internal/domain/models"
)

// DocumentKind names one of the three persisted documents.
type DocumentKind string

const (
	KindDiaries  DocumentKind = "diaries"
	KindTrash    DocumentKind = "trash"
	KindSettings DocumentKind = "settings"
)

// AllDocuments lists every kind in lock acquisition order.
var AllDocuments = []DocumentKind{KindDiaries, KindTrash, KindSettings}

// FileName returns the document's file name in the storage root, which is
// also its entry name inside archives.
func (k DocumentKind) FileName() string {
	switch k {
	case KindDiaries:
		return models.DiariesFileName
	case KindTrash:
		return models.TrashFileName
	case KindSettings:
		return models.SettingsFileName
	default:
		return string(k) + ".json"
	}
}

// rank orders kinds for lock acquisition.
func (k DocumentKind) rank() int {
	for i, kind := range AllDocuments {
		if kind == k {
			return i
		}
	}
	return len(AllDocuments)
}

// Less reports whether k is locked before other.
func (k DocumentKind) Less(other DocumentKind) bool {
	return k.rank() < other.rank()
}

// DocumentStore reads and replaces whole documents in the storage root.
// Calls outside ExecLocked lock the document for their own duration.
type DocumentStore interface {
	// Init creates the storage root, the backups directory and any missing
	// document with its default contents. Existing documents are untouched.
	Init(ctx context.Context) error

	// Read returns the raw bytes of a document.
	Read(ctx context.Context, kind DocumentKind) ([]byte, error)

	// Write replaces a document. Readers see either the old or new contents.
	Write(ctx context.Context, kind DocumentKind, data []byte) error

	// WriteAll replaces several documents, staging every file before
	// swapping any of them in.
	WriteAll(ctx context.Context, docs map[DocumentKind][]byte) error

	// Root is the storage root directory.
	Root() string

	// BackupDir is the directory holding timestamped backups.
	BackupDir() string
}
