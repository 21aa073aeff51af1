package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diarykeeper/internal/config"
	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/repositories"
	"diarykeeper/internal/domain/services"
)

// SettingsService implements the SettingsService interface
type SettingsService struct {
	repo     repositories.SettingsRepository
	host     services.ThemeHost
	defaults models.Settings
	logger   *slog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	repo repositories.SettingsRepository,
	host services.ThemeHost,
	defaults models.Settings,
	logger *slog.Logger,
) services.SettingsService {
	return &SettingsService{
		repo:     repo,
		host:     host,
		defaults: defaults,
		logger:   logger,
	}
}

// GetSettings loads settings and applies the resulting theme to the host
func (s *SettingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	s.applyTheme(settings)
	return settings, nil
}

// SaveSettings validates raw and replaces the stored document with it.
// Recognized keys absent from raw take their default values.
func (s *SettingsService) SaveSettings(ctx context.Context, raw json.RawMessage) (*models.Settings, error) {
	settings := s.defaults
	settings.Extra = nil
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid settings: %v", err)}
	}

	if err := validateSettings(&settings); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.repo.Save(ctx, &settings); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	theme := s.applyTheme(&settings)
	s.logger.Info("settings saved",
		"theme", settings.Theme,
		"effective_theme", theme,
		"editor_type", settings.EditorType,
		"auto_save", settings.AutoSave,
		"extra_keys", len(settings.Extra),
	)

	return &settings, nil
}

// applyTheme derives the effective theme from the host's current ambient
// appearance. Never cached: the ambient appearance can change at any time.
func (s *SettingsService) applyTheme(settings *models.Settings) models.EffectiveTheme {
	theme := settings.Effective(s.host.AmbientDark())
	s.host.Apply(theme)
	return theme
}

func validateSettings(settings *models.Settings) error {
	return validation.ValidateStruct(settings,
		validation.Field(&settings.Theme,
			validation.Required,
			validation.In(models.ThemeLight, models.ThemeDark, models.ThemeSystem),
		),
		validation.Field(&settings.EditorType,
			validation.Required,
			validation.In(models.EditorRichText, models.EditorPlainText),
		),
		validation.Field(&settings.FontSize, validation.Min(config.MinFontSize), validation.Max(config.MaxFontSize)),
		validation.Field(&settings.AutoSaveInterval,
			validation.Min(config.MinAutoSaveInterval),
			validation.Max(config.MaxAutoSaveInterval),
		),
	)
}
