package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/repository/jsonfile"

	"github.com/stretchr/testify/require"
)

var testDefaults = models.Settings{
	Theme:            models.ThemeLight,
	FontSize:         16,
	EditorType:       models.EditorRichText,
	AutoSaveInterval: 60,
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeThemeHost records applied themes.
type fakeThemeHost struct {
	ambientDark bool
	applied     []models.EffectiveTheme
}

func (h *fakeThemeHost) AmbientDark() bool { return h.ambientDark }

func (h *fakeThemeHost) Apply(theme models.EffectiveTheme) {
	h.applied = append(h.applied, theme)
}

func (h *fakeThemeHost) last() models.EffectiveTheme {
	if len(h.applied) == 0 {
		return ""
	}
	return h.applied[len(h.applied)-1]
}

func newTestStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	store, err := jsonfile.NewStore(jsonfile.StoreConfig{
		Root:            t.TempDir(),
		LockTimeout:     10 * time.Second,
		DefaultSettings: testDefaults,
		Logger:          discardLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	return store
}
