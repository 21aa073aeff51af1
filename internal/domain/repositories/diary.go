package repositories

import (
	"context"

	"diarykeeper/internal/domain/models"
)

// DiaryRepository defines typed access to the active and trash collections.
// kind must be KindDiaries or KindTrash.
type DiaryRepository interface {
	// Load returns the whole collection in stored order.
	Load(ctx context.Context, kind DocumentKind) (*models.DiaryCollection, error)

	// Save replaces the whole collection.
	Save(ctx context.Context, kind DocumentKind, coll *models.DiaryCollection) error
}
