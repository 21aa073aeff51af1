package repositories

import (
	"context"

	"diarykeeper/internal/domain/models"
)

// SettingsRepository defines access to the settings document
type SettingsRepository interface {
	// Get returns the stored settings with missing recognized keys filled
	// from defaults.
	Get(ctx context.Context) (*models.Settings, error)

	// Save replaces the settings document wholesale.
	Save(ctx context.Context, settings *models.Settings) error
}
