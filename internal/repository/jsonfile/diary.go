package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/repositories"
)

// DiaryRepository implements repositories.DiaryRepository over a Store
type DiaryRepository struct {
	store repositories.DocumentStore
}

// NewDiaryRepository creates a DiaryRepository
func NewDiaryRepository(store repositories.DocumentStore) repositories.DiaryRepository {
	return &DiaryRepository{store: store}
}

// Load decodes the active or trash collection.
func (r *DiaryRepository) Load(ctx context.Context, kind repositories.DocumentKind) (*models.DiaryCollection, error) {
	if err := checkCollectionKind(kind); err != nil {
		return nil, err
	}

	data, err := r.store.Read(ctx, kind)
	if err != nil {
		return nil, err
	}

	var coll models.DiaryCollection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, domain.NewParseError(kind.FileName(), err)
	}
	if coll.Diaries == nil {
		coll.Diaries = []models.DiaryEntry{}
	}
	return &coll, nil
}

// Save replaces the active or trash collection.
func (r *DiaryRepository) Save(ctx context.Context, kind repositories.DocumentKind, coll *models.DiaryCollection) error {
	if err := checkCollectionKind(kind); err != nil {
		return err
	}

	out := models.DiaryCollection{Diaries: coll.Diaries}
	if out.Diaries == nil {
		out.Diaries = []models.DiaryEntry{}
	}

	data, err := encodeDocument(out)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind.FileName(), err)
	}
	return r.store.Write(ctx, kind, data)
}

func checkCollectionKind(kind repositories.DocumentKind) error {
	if kind != repositories.KindDiaries && kind != repositories.KindTrash {
		return fmt.Errorf("%q is not a diary collection: %w", kind, errUnknownDocument)
	}
	return nil
}
