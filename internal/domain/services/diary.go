package services

import (
	"context"

	"diarykeeper/internal/domain/models"
)

// DiaryService handles diary and trash business logic
type DiaryService interface {
	// SaveDiary creates or replaces an entry and returns what was persisted.
	// An empty request ID gets a freshly generated one.
	SaveDiary(ctx context.Context, req *models.SaveDiaryRequest) (*models.DiaryEntry, error)

	// ListDiaries returns the active collection in stored order
	ListDiaries(ctx context.Context) ([]models.DiaryEntry, error)

	// LoadDiary returns the active entry with id, or nil when there is none
	LoadDiary(ctx context.Context, id string) (*models.DiaryEntry, error)

	// DeleteDiary removes an active entry without passing through the trash
	DeleteDiary(ctx context.Context, id string) error

	// GetStatistics counts active, this-month and trashed entries
	GetStatistics(ctx context.Context) (*models.Statistics, error)

	// MoveToTrash moves an active entry to the trash. Unknown ids are a no-op.
	MoveToTrash(ctx context.Context, id string) error

	// ListTrash returns the trash collection in stored order
	ListTrash(ctx context.Context) ([]models.DiaryEntry, error)

	// RestoreFromTrash moves a trashed entry back. Unknown ids are a no-op.
	RestoreFromTrash(ctx context.Context, id string) error

	// PermanentDelete erases a trashed entry
	PermanentDelete(ctx context.Context, id string) error

	// ClearTrash empties the trash
	ClearTrash(ctx context.Context) error
}
