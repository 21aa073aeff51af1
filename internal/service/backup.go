package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"diarykeeper/internal/config"
	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/repositories"
	"diarykeeper/internal/domain/services"
	"diarykeeper/internal/utils"
)

const (
	backupPrefix = "backup-"
	backupExt    = ".zip"

	// mirrorUploadTimeout bounds the off-site copy made by CreateBackup.
	mirrorUploadTimeout = 30 * time.Second
)

// backupNameReplacer keeps timestamps file-system safe.
var backupNameReplacer = strings.NewReplacer(":", "-", ".", "-")

// BackupFileName returns the archive name for a backup taken at t, e.g.
// backup-2024-03-01T12-34-56-789Z.zip.
func BackupFileName(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return backupPrefix + backupNameReplacer.Replace(iso) + backupExt
}

// backupService implements the BackupService interface
type backupService struct {
	store  repositories.DocumentStore
	locks  repositories.LockManager
	mirror services.BackupMirror // nil when no mirror is configured
	now    Clock
	logger *slog.Logger

	mirrorTimeout time.Duration
}

// NewBackupService creates a new backup service. mirror may be nil.
func NewBackupService(
	store repositories.DocumentStore,
	locks repositories.LockManager,
	mirror services.BackupMirror,
	now Clock,
	logger *slog.Logger,
) services.BackupService {
	if now == nil {
		now = time.Now
	}
	return &backupService{
		store:  store,
		locks:  locks,
		mirror: mirror,
		now:    now,
		logger: logger,

		mirrorTimeout: mirrorUploadTimeout,
	}
}

// Export writes the three documents, byte for byte, into a zip at dest.
func (s *backupService) Export(ctx context.Context, dest string) error {
	if strings.TrimSpace(dest) == "" {
		return &domain.ValidationError{Message: "export destination is required"}
	}

	size, err := s.writeArchive(ctx, dest)
	if err != nil {
		return err
	}

	s.logger.Info("data exported", "path", dest, "size", size)
	return nil
}

// Import replaces all documents with the archive's contents. The archive
// is fully read and checked before any document is touched.
func (s *backupService) Import(ctx context.Context, src string) error {
	if strings.TrimSpace(src) == "" {
		return &domain.ValidationError{Message: "import source is required"}
	}

	s.logger.Info("import started", "path", src)

	entries, err := utils.ReadZipEntries(src, models.ArchiveEntries, config.MaxDocumentBytes)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return domain.NewIOError("open", src, err)
		}
		return &domain.InvalidArchiveError{Path: src, Reason: err.Error()}
	}

	var missing []string
	for _, name := range models.ArchiveEntries {
		if _, ok := entries[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		s.logger.Warn("import rejected: incomplete archive", "path", src, "missing", missing)
		return &domain.InvalidArchiveError{Path: src, Missing: missing}
	}

	docs := make(map[repositories.DocumentKind][]byte, len(repositories.AllDocuments))
	for _, kind := range repositories.AllDocuments {
		data := entries[kind.FileName()]
		if err := checkDocumentShape(kind, data); err != nil {
			s.logger.Warn("import rejected: malformed document", "path", src, "document", kind.FileName(), "error", err)
			return &domain.InvalidArchiveError{Path: src, Reason: fmt.Sprintf("%s: %v", kind.FileName(), err)}
		}
		docs[kind] = data
	}

	if err := checkUniqueIDs(docs); err != nil {
		s.logger.Warn("import rejected: duplicate entry ids", "path", src, "error", err)
		return &domain.InvalidArchiveError{Path: src, Reason: err.Error()}
	}

	if err := s.store.WriteAll(ctx, docs); err != nil {
		return err
	}

	s.logger.Info("import complete", "path", src, "documents", len(docs))
	return nil
}

// CreateBackup writes a timestamped archive into the backups directory and
// mirrors it when a mirror is configured. Mirror failures are logged only.
func (s *backupService) CreateBackup(ctx context.Context) (*models.BackupInfo, error) {
	createdAt := s.now().UTC()
	name := BackupFileName(createdAt)
	path := filepath.Join(s.store.BackupDir(), name)

	size, err := s.writeArchive(ctx, path)
	if err != nil {
		return nil, err
	}

	info := &models.BackupInfo{
		Name:      name,
		Path:      path,
		Size:      size,
		CreatedAt: createdAt.Truncate(time.Millisecond),
	}

	if s.mirror != nil {
		info.Mirrored = s.uploadMirror(ctx, name, path)
	}

	s.logger.Info("backup created", "path", path, "size", size, "mirrored", info.Mirrored)
	return info, nil
}

// uploadMirror copies the backup off-site within mirrorTimeout and reports
// whether it succeeded.
func (s *backupService) uploadMirror(ctx context.Context, name, path string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.mirrorTimeout)
	defer cancel()

	if err := s.mirror.Upload(ctx, name, path); err != nil {
		s.logger.Warn("backup mirror upload failed", "name", name, "timeout", s.mirrorTimeout, "error", err)
		return false
	}
	return true
}

// ListBackups returns the backup archives, newest first.
func (s *backupService) ListBackups(ctx context.Context) ([]models.BackupInfo, error) {
	dirEntries, err := os.ReadDir(s.store.BackupDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.BackupInfo{}, nil
		}
		return nil, domain.NewIOError("list", "backups", err)
	}

	backups := make([]models.BackupInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			s.logger.Warn("skipping unreadable backup", "name", name, "error", err)
			continue
		}
		backups = append(backups, models.BackupInfo{
			Name:      name,
			Path:      filepath.Join(s.store.BackupDir(), name),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime().UTC(),
		})
	}

	// Names embed the UTC timestamp, so name order is creation order.
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

// Location reports the storage root and backups directory.
func (s *backupService) Location() models.DataLocation {
	return models.DataLocation{
		DataDir:   s.store.Root(),
		BackupDir: s.store.BackupDir(),
	}
}

// writeArchive snapshots all three documents under their locks, then
// writes the archive outside them.
func (s *backupService) writeArchive(ctx context.Context, dest string) (int64, error) {
	entries := make([]utils.ArchiveEntry, 0, len(repositories.AllDocuments))
	err := s.locks.ExecLocked(ctx, func(ctx context.Context) error {
		for _, kind := range repositories.AllDocuments {
			data, err := s.store.Read(ctx, kind)
			if err != nil {
				return err
			}
			entries = append(entries, utils.ArchiveEntry{Name: kind.FileName(), Data: data})
		}
		return nil
	}, repositories.AllDocuments...)
	if err != nil {
		return 0, err
	}

	size, err := utils.WriteZipFile(dest, entries, s.now())
	if err != nil {
		return 0, domain.NewIOError("write archive", dest, err)
	}
	return size, nil
}

// checkDocumentShape rejects archive entries that would not load back.
func checkDocumentShape(kind repositories.DocumentKind, data []byte) error {
	switch kind {
	case repositories.KindDiaries, repositories.KindTrash:
		var coll models.DiaryCollection
		return json.Unmarshal(data, &coll)
	case repositories.KindSettings:
		var settings models.Settings
		return json.Unmarshal(data, &settings)
	default:
		return fmt.Errorf("unexpected document %q", kind)
	}
}

// checkUniqueIDs rejects archives where an id appears twice, within a
// collection or across diaries and trash.
func checkUniqueIDs(docs map[repositories.DocumentKind][]byte) error {
	seen := make(map[string]repositories.DocumentKind)
	for _, kind := range []repositories.DocumentKind{repositories.KindDiaries, repositories.KindTrash} {
		var coll models.DiaryCollection
		if err := json.Unmarshal(docs[kind], &coll); err != nil {
			return fmt.Errorf("%s: %w", kind.FileName(), err)
		}
		for _, entry := range coll.Diaries {
			if first, dup := seen[entry.ID]; dup {
				if first == kind {
					return fmt.Errorf("entry id %q appears twice in %s", entry.ID, kind.FileName())
				}
				return fmt.Errorf("entry id %q appears in both %s and %s", entry.ID, first.FileName(), kind.FileName())
			}
			seen[entry.ID] = kind
		}
	}
	return nil
}
