package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"diarykeeper/internal/auth"
	"diarykeeper/internal/config"
	"diarykeeper/internal/domain/services"
	"diarykeeper/internal/handler"
	"diarykeeper/internal/repository/jsonfile"
	"diarykeeper/internal/service"
	"diarykeeper/internal/storage"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	dataDir := flag.String("data", "", "Storage root (overrides DATA_DIR)")
	addr := flag.String("addr", "", "Listen address host:port (overrides HOST and PORT)")
	flag.Parse()

	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *addr != "" {
		host, port, err := net.SplitHostPort(*addr)
		if err != nil {
			log.Fatalf("Invalid -addr: %v", err)
		}
		cfg.Host, cfg.Port = host, port
	}

	// Setup structured logging, mirrored to a rotated file when LOG_DIR is set
	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles, time.Now())
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(out, cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"addr", cfg.Addr(),
		"data_dir", cfg.DataDir,
	)

	defaults, err := config.DefaultSettings()
	if err != nil {
		log.Fatalf("Failed to load default settings: %v", err)
	}

	// Storage
	store, err := jsonfile.NewStore(jsonfile.StoreConfig{
		Root:            cfg.DataDir,
		LockTimeout:     cfg.LockTimeout,
		DefaultSettings: defaults,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to open storage root: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("storage initialized", "root", store.Root())

	diaryRepo := jsonfile.NewDiaryRepository(store)
	settingsRepo := jsonfile.NewSettingsRepository(store, defaults)

	// Optional off-site backup mirror
	var mirror services.BackupMirror
	if cfg.Mirror.Enabled() {
		minioMirror, err := storage.NewMinioMirror(cfg.Mirror, logger)
		if err != nil {
			log.Fatalf("Failed to create backup mirror: %v", err)
		}
		mirror = minioMirror
		logger.Info("backup mirror enabled", "endpoint", cfg.Mirror.Endpoint, "bucket", cfg.Mirror.BucketName)
	}

	// Services
	hostTheme := service.NewHostTheme(cfg.SystemDarkMode, logger)
	diaryService := service.NewDiaryService(diaryRepo, store, time.Now, logger)
	settingsService := service.NewSettingsService(settingsRepo, hostTheme, defaults, logger)
	backupService := service.NewBackupService(store, store, mirror, time.Now, logger)

	// Apply the stored theme before the front end asks for it
	if _, err := settingsService.GetSettings(ctx); err != nil {
		logger.Warn("initial theme not applied", "error", err)
	}

	logger.Info("services initialized")

	// Bridge session
	var verifier auth.TokenVerifier
	if cfg.BridgeAuth {
		sessions, err := auth.NewSessionManager(cfg.BridgeSecret, cfg.SessionTTL, logger)
		if err != nil {
			log.Fatalf("Failed to create session manager: %v", err)
		}
		token, err := sessions.Issue()
		if err != nil {
			log.Fatalf("Failed to issue session token: %v", err)
		}
		sessionFile, err := auth.WriteSessionFile(store.Root(), token)
		if err != nil {
			log.Fatalf("Failed to write session file: %v", err)
		}
		defer os.Remove(sessionFile)
		verifier = sessions
		logger.Info("bridge auth enabled", "session_file", sessionFile)
	} else {
		logger.Warn("bridge auth disabled (BRIDGE_AUTH=false)")
	}

	router := handler.NewRouter(handler.Handlers{
		Diary:    handler.NewDiaryHandler(diaryService, logger),
		Settings: handler.NewSettingsHandler(settingsService, logger),
		Theme:    handler.NewThemeHandler(hostTheme, settingsService, logger),
		Backup:   handler.NewBackupHandler(backupService, logger),
		Health:   handler.NewHealthHandler(store.Root()),
	}, handler.RouterConfig{
		CORSOrigins: strings.Split(cfg.CORSOrigins, ","),
		Verifier:    verifier,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // export and import of large archives
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr())
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
