package services

import (
	"context"

	"diarykeeper/internal/domain/models"
)

// BackupService packages the documents into zip archives and restores them.
type BackupService interface {
	// Export writes an archive of the current documents to dest.
	Export(ctx context.Context, dest string) error

	// Import replaces all three documents with the contents of the archive
	// at src. Nothing changes unless the archive is complete and well formed.
	Import(ctx context.Context, src string) error

	// CreateBackup writes a timestamped archive into the backups directory.
	CreateBackup(ctx context.Context) (*models.BackupInfo, error)

	// ListBackups returns the archives in the backups directory, newest first.
	ListBackups(ctx context.Context) ([]models.BackupInfo, error)

	// Location reports where documents and backups are kept.
	Location() models.DataLocation
}

// BackupMirror keeps an off-site copy of created backups.
type BackupMirror interface {
	Upload(ctx context.Context, name, path string) error
}
