package services

import (
	"context"
	"encoding/json"

	"diarykeeper/internal/domain/models"
)

// SettingsService loads and saves preferences and keeps the host theme in step.
type SettingsService interface {
	// GetSettings returns the stored settings, defaults filling missing keys.
	GetSettings(ctx context.Context) (*models.Settings, error)

	// SaveSettings replaces the settings document with raw, which must be a
	// JSON object with valid values for the recognized keys.
	SaveSettings(ctx context.Context, raw json.RawMessage) (*models.Settings, error)
}

// ThemeHost is the host's theming subsystem.
type ThemeHost interface {
	// AmbientDark reports whether the host's own appearance is dark.
	AmbientDark() bool

	// Apply switches the host to theme.
	Apply(theme models.EffectiveTheme)
}
