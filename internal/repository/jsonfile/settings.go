package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/repositories"
)

// SettingsRepository implements repositories.SettingsRepository over a Store
type SettingsRepository struct {
	store    repositories.DocumentStore
	defaults models.Settings
}

// NewSettingsRepository creates a SettingsRepository. defaults fill keys
// missing from the stored document.
func NewSettingsRepository(store repositories.DocumentStore, defaults models.Settings) repositories.SettingsRepository {
	return &SettingsRepository{store: store, defaults: defaults}
}

// Get decodes settings.json over the defaults.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	data, err := r.store.Read(ctx, repositories.KindSettings)
	if err != nil {
		return nil, err
	}

	settings := r.defaults
	settings.Extra = nil
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, domain.NewParseError(repositories.KindSettings.FileName(), err)
	}
	return &settings, nil
}

// Save replaces settings.json.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	data, err := encodeDocument(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.store.Write(ctx, repositories.KindSettings, data)
}
