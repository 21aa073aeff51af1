package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"diarykeeper/internal/auth"
	"diarykeeper/internal/httputil"
	"diarykeeper/internal/middleware"
)

// Handlers groups every bridge handler served by the router.
type Handlers struct {
	Diary    *DiaryHandler
	Settings *SettingsHandler
	Theme    *ThemeHandler
	Backup   *BackupHandler
	Health   *HealthHandler
}

// RouterConfig controls the middleware around the bridge routes.
type RouterConfig struct {
	CORSOrigins []string
	// Verifier guards /api; nil disables bridge auth.
	Verifier auth.TokenVerifier
	Logger   *slog.Logger
}

// NewRouter builds the bridge router.
// Order: CORS → RequestID → RealIP → Logging → Recovery → Auth → Routes
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusNotFound, "no such bridge operation")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.Health.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		if cfg.Verifier != nil {
			r.Use(middleware.BridgeAuth(cfg.Verifier, cfg.Logger))
		}

		// Diaries
		r.Post("/diaries", h.Diary.SaveDiary)
		r.Get("/diaries", h.Diary.ListDiaries)
		r.Get("/diaries/{id}", h.Diary.LoadDiary)
		r.Delete("/diaries/{id}", h.Diary.DeleteDiary)
		r.Post("/diaries/{id}/trash", h.Diary.MoveToTrash)
		r.Get("/statistics", h.Diary.GetStatistics)

		// Trash
		r.Get("/trash", h.Diary.ListTrash)
		r.Delete("/trash", h.Diary.ClearTrash)
		r.Post("/trash/{id}/restore", h.Diary.RestoreFromTrash)
		r.Delete("/trash/{id}", h.Diary.PermanentDelete)

		// Settings and host theme
		r.Get("/settings", h.Settings.GetSettings)
		r.Put("/settings", h.Settings.SaveSettings)
		r.Get("/host/theme", h.Theme.GetTheme)
		r.Put("/host/ambient-theme", h.Theme.SetAmbientTheme)

		// Data and backups
		r.Post("/data/export", h.Backup.ExportData)
		r.Post("/data/import", h.Backup.ImportData)
		r.Get("/data/location", h.Backup.GetLocation)
		r.Post("/backups", h.Backup.CreateBackup)
		r.Get("/backups", h.Backup.ListBackups)
	})

	// CORS must wrap auth so OPTIONS pre-flight requests get answered
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	return corsHandler.Handler(r)
}
