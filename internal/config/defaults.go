package config

import (
	_ "embed"
	"fmt"
	"sync"

	"diarykeeper/internal/domain/models"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/settings.yaml
var defaultSettingsYAML []byte

var (
	defaultSettings     models.Settings
	defaultSettingsErr  error
	defaultSettingsOnce sync.Once
)

// DefaultSettings returns a copy of the built-in settings document.
func DefaultSettings() (models.Settings, error) {
	defaultSettingsOnce.Do(func() {
		if err := yaml.Unmarshal(defaultSettingsYAML, &defaultSettings); err != nil {
			defaultSettingsErr = fmt.Errorf("parse embedded default settings: %w", err)
		}
	})
	return defaultSettings, defaultSettingsErr
}
