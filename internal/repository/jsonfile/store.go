package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/repositories"
)

// BackupDirName is the backups directory inside the storage root.
const BackupDirName = "backups"

var errUnknownDocument = errors.New("unknown document kind")

// StoreConfig holds configuration for the file-backed document store
type StoreConfig struct {
	Root            string
	LockTimeout     time.Duration
	DefaultSettings models.Settings
	Logger          *slog.Logger
}

// Store keeps each document as one JSON file under Root.
type Store struct {
	root            string
	backupDir       string
	lockTimeout     time.Duration
	defaultSettings models.Settings
	locks           map[repositories.DocumentKind]*docLock
	logger          *slog.Logger
}

// NewStore creates the storage root if needed and returns a store over it.
// Call Init before serving requests.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Root == "" {
		return nil, errors.New("storage root cannot be empty")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	locks := make(map[repositories.DocumentKind]*docLock, len(repositories.AllDocuments))
	for _, kind := range repositories.AllDocuments {
		locks[kind] = newDocLock(root, kind)
	}

	return &Store{
		root:            root,
		backupDir:       filepath.Join(root, BackupDirName),
		lockTimeout:     cfg.LockTimeout,
		defaultSettings: cfg.DefaultSettings,
		locks:           locks,
		logger:          logger,
	}, nil
}

func (s *Store) Root() string      { return s.root }
func (s *Store) BackupDir() string { return s.backupDir }

// Init creates the backups directory and writes the default contents of
// every document that does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return domain.NewIOError("init", BackupDirName, err)
	}

	return s.ExecLocked(ctx, func(ctx context.Context) error {
		for _, kind := range repositories.AllDocuments {
			_, err := os.Stat(s.path(kind))
			if err == nil {
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return domain.NewIOError("stat", kind.FileName(), err)
			}

			data, err := s.defaultDocument(kind)
			if err != nil {
				return err
			}
			if err := writeFileAtomic(s.path(kind), data); err != nil {
				return domain.NewIOError("write", kind.FileName(), err)
			}
			s.logger.Info("created default document", "document", kind.FileName(), "root", s.root)
		}
		return nil
	}, repositories.AllDocuments...)
}

// Read returns the raw bytes of a document.
func (s *Store) Read(ctx context.Context, kind repositories.DocumentKind) ([]byte, error) {
	var data []byte
	err := s.ExecLocked(ctx, func(ctx context.Context) error {
		var err error
		data, err = os.ReadFile(s.path(kind))
		if err != nil {
			return domain.NewIOError("read", kind.FileName(), err)
		}
		return nil
	}, kind)
	return data, err
}

// Write replaces a document through a temp file and rename.
func (s *Store) Write(ctx context.Context, kind repositories.DocumentKind, data []byte) error {
	return s.ExecLocked(ctx, func(ctx context.Context) error {
		if err := writeFileAtomic(s.path(kind), data); err != nil {
			return domain.NewIOError("write", kind.FileName(), err)
		}
		s.logger.Debug("document written", "document", kind.FileName(), "bytes", len(data))
		return nil
	}, kind)
}

// WriteAll stages every document before renaming any into place. A staging
// failure leaves all documents untouched.
func (s *Store) WriteAll(ctx context.Context, docs map[repositories.DocumentKind][]byte) error {
	kinds := make([]repositories.DocumentKind, 0, len(docs))
	for kind := range docs {
		if _, ok := s.locks[kind]; !ok {
			return domain.NewIOError("write", string(kind), errUnknownDocument)
		}
		kinds = append(kinds, kind)
	}
	kinds = repositories.SortKinds(kinds)

	return s.ExecLocked(ctx, func(ctx context.Context) error {
		staged := make(map[repositories.DocumentKind]string, len(kinds))
		cleanup := func() {
			for _, tmp := range staged {
				os.Remove(tmp)
			}
		}

		for _, kind := range kinds {
			tmp, err := stageFile(s.path(kind), docs[kind])
			if err != nil {
				cleanup()
				return domain.NewIOError("stage", kind.FileName(), err)
			}
			staged[kind] = tmp
		}

		for _, kind := range kinds {
			if err := os.Rename(staged[kind], s.path(kind)); err != nil {
				cleanup()
				return domain.NewIOError("replace", kind.FileName(), err)
			}
			delete(staged, kind)
		}
		s.logger.Debug("documents replaced", "count", len(kinds))
		return nil
	}, kinds...)
}

func (s *Store) path(kind repositories.DocumentKind) string {
	return filepath.Join(s.root, kind.FileName())
}

func (s *Store) defaultDocument(kind repositories.DocumentKind) ([]byte, error) {
	var v any
	switch kind {
	case repositories.KindDiaries, repositories.KindTrash:
		v = models.DiaryCollection{Diaries: []models.DiaryEntry{}}
	case repositories.KindSettings:
		v = s.defaultSettings
	default:
		return nil, domain.NewIOError("init", string(kind), errUnknownDocument)
	}

	data, err := encodeDocument(v)
	if err != nil {
		return nil, fmt.Errorf("encode default %s: %w", kind.FileName(), err)
	}
	return data, nil
}
