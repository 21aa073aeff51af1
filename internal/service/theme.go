package service

import (
	"log/slog"
	"sync"

	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/services"
)

// HostTheme is the bridge's view of the host theming subsystem. The front
// end reports the ambient appearance and reads back the applied theme.
type HostTheme struct {
	mu          sync.RWMutex
	ambientDark bool
	applied     models.EffectiveTheme
	logger      *slog.Logger
}

var _ services.ThemeHost = (*HostTheme)(nil)

// NewHostTheme creates a HostTheme seeded with the ambient appearance.
func NewHostTheme(ambientDark bool, logger *slog.Logger) *HostTheme {
	return &HostTheme{
		ambientDark: ambientDark,
		applied:     models.EffectiveLight,
		logger:      logger,
	}
}

func (h *HostTheme) AmbientDark() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ambientDark
}

// SetAmbientDark records the host's appearance as reported by the front end.
func (h *HostTheme) SetAmbientDark(dark bool) {
	h.mu.Lock()
	h.ambientDark = dark
	h.mu.Unlock()
	h.logger.Debug("ambient theme reported", "dark", dark)
}

// Apply records theme as the host's current theme.
func (h *HostTheme) Apply(theme models.EffectiveTheme) {
	h.mu.Lock()
	changed := h.applied != theme
	h.applied = theme
	h.mu.Unlock()

	if changed {
		h.logger.Info("host theme applied", "theme", theme)
	}
}

// Applied returns the theme most recently applied.
func (h *HostTheme) Applied() models.EffectiveTheme {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.applied
}

